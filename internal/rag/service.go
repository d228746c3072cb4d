// Package rag wires the chunk store, the embedder and the searcher into the
// retrieval service the bot and the CLI query.
package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"kbbot/internal/config"
	"kbbot/internal/db"
	"kbbot/internal/index"
	"kbbot/internal/llm"
	"kbbot/internal/logger"
)

// Service answers questions from the locally indexed document corpus.
type Service struct {
	db       *db.DB
	embedder llm.Embedder
	answerer llm.Answerer

	topK         int
	chunkSize    int
	chunkOverlap int

	mu       sync.RWMutex
	searcher *index.Searcher
}

// Answer is the result of one query.
type Answer struct {
	Found   bool
	Text    string         // synthesized answer, or the raw context when no answerer is configured
	Context string         // concatenated retrieved chunks
	Sources []index.Result // ranked chunks backing the answer
}

// IndexStats summarizes an indexing run.
type IndexStats struct {
	Files   int
	Indexed int
	Skipped int
	Failed  int
	Chunks  int
}

// New builds the service and loads the existing index into memory.
func New(database *db.DB, embedder llm.Embedder, answerer llm.Answerer, cfg *config.Settings) (*Service, error) {
	s := &Service{
		db:           database,
		embedder:     embedder,
		answerer:     answerer,
		topK:         cfg.TopK,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the in-memory searcher from the chunk store.
func (s *Service) Reload() error {
	chunks, err := s.db.AllChunks()
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	s.mu.Lock()
	s.searcher = index.NewSearcher(chunks)
	s.mu.Unlock()
	return nil
}

// Counts reports indexed documents and chunks.
func (s *Service) Counts() (documents, chunks int) {
	return s.db.Counts()
}

// IndexDir indexes every *.md file under dir. Unchanged files (same content
// hash, same embedder) are skipped; per-file failures are logged and counted
// without stopping the run.
func (s *Service) IndexDir(ctx context.Context, dir string) (IndexStats, error) {
	var stats IndexStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read docs dir: %w", err)
	}

	force := s.embedderChanged()
	if force {
		logger.Warn("INDEX", "Embedding provider changed, reindexing everything")
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		stats.Files++
		path := filepath.Join(dir, e.Name())

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("INDEX", fmt.Sprintf("%s: %v", e.Name(), err))
			stats.Failed++
			continue
		}
		hash := contentHash(raw)
		if prev, ok := s.db.DocumentHash(e.Name()); ok && prev == hash && !force {
			stats.Skipped++
			continue
		}

		n, err := s.indexDocument(ctx, e.Name(), string(raw), hash)
		if err != nil {
			logger.Error("INDEX", fmt.Sprintf("%s: %v", e.Name(), err))
			stats.Failed++
			continue
		}
		stats.Indexed++
		stats.Chunks += n
		logger.Success("INDEX", fmt.Sprintf("%s: %d chunks", e.Name(), n))
	}

	if stats.Indexed > 0 || force {
		s.rememberEmbedder()
		if err := s.Reload(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// IndexText indexes a single in-memory document under the given source name,
// replacing any previous version. Returns the chunk count.
func (s *Service) IndexText(ctx context.Context, source, text string) (int, error) {
	n, err := s.indexDocument(ctx, source, text, contentHash([]byte(text)))
	if err != nil {
		return 0, err
	}
	s.rememberEmbedder()
	return n, s.Reload()
}

func (s *Service) indexDocument(ctx context.Context, source, text, hash string) (int, error) {
	chunks := index.ChunkDocument(source, text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document produced no chunks")
	}

	inputs := make([]string, len(chunks))
	for i, ch := range chunks {
		inputs[i] = ch.EmbedInput()
	}
	vectors, err := s.embedder.EmbedTexts(ctx, inputs)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embeddings mismatch: %d != %d", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := s.db.ReplaceDocument(source, hash, chunks); err != nil {
		return 0, fmt.Errorf("store: %w", err)
	}
	return len(chunks), nil
}

// Ask retrieves the most relevant chunks for the query and, when an answer
// provider is configured, synthesizes a grounded reply. Found is false when
// the index is empty or nothing matched.
func (s *Service) Ask(ctx context.Context, query string) (Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Answer{}, nil
	}

	s.mu.RLock()
	searcher := s.searcher
	s.mu.RUnlock()
	if searcher == nil || searcher.Len() == 0 {
		return Answer{}, nil
	}

	var queryVec []float32
	if vecs, err := s.embedder.EmbedTexts(ctx, []string{query}); err != nil {
		// Keyword search still works without the vector leg.
		logger.Warn("RAG", fmt.Sprintf("query embedding failed: %v", err))
	} else if len(vecs) == 1 {
		queryVec = vecs[0]
	}

	results := searcher.Search(queryVec, query, s.topK)
	if len(results) == 0 {
		return Answer{}, nil
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Content)
	}
	contextText := strings.Join(parts, "\n\n")

	answer := Answer{
		Found:   true,
		Text:    contextText,
		Context: contextText,
		Sources: results,
	}
	if synthesized, err := s.answerer.Answer(ctx, query, contextText); err != nil {
		logger.Warn("RAG", fmt.Sprintf("answer generation failed, returning context: %v", err))
	} else if synthesized != "" {
		answer.Text = synthesized
	}
	return answer, nil
}

// embedderChanged reports whether the stored index was built by a different
// embedding provider or model.
func (s *Service) embedderChanged() bool {
	kind := s.db.GetMeta("embedding_kind")
	model := s.db.GetMeta("embedding_model")
	if kind == "" && model == "" {
		return false
	}
	return kind != s.embedder.Kind() || model != s.embedder.Model()
}

func (s *Service) rememberEmbedder() {
	meta := map[string]string{
		"embedding_kind":  s.embedder.Kind(),
		"embedding_model": s.embedder.Model(),
	}
	if _, ok := s.embedder.(*llm.Local); ok {
		meta["embedding_dim"] = strconv.Itoa(llm.LocalEmbeddingDim)
	}
	for key, value := range meta {
		if err := s.db.SetMeta(key, value); err != nil {
			// A lost meta write makes the next run misdetect a provider
			// change and reindex; worth surfacing.
			logger.Warn("INDEX", fmt.Sprintf("store %s: %v", key, err))
		}
	}
}

func contentHash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
