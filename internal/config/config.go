package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings holds application configuration (in-memory representation).
// Values come from environment variables, with .env file support.
type Settings struct {
	// Telegram bot
	BotToken string

	// Embedding / answer providers
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	// EmbeddingProvider selects the embedder: "openai", "gemini", "local"
	// or "" for automatic (openai if a key is set, then gemini, local
	// otherwise).
	EmbeddingProvider string
	EmbeddingModel    string
	AnswerModel       string

	// Retrieval parameters
	ChunkSize    int // token budget per chunk
	ChunkOverlap int // token overlap between adjacent chunks
	TopK         int

	// Paths
	DBPath  string
	DocsDir string
}

// Default returns Settings with sensible defaults.
func Default() *Settings {
	return &Settings{
		OpenAIBaseURL:  "https://api.openai.com/v1",
		EmbeddingModel: "text-embedding-3-small",
		AnswerModel:    "gpt-4o-mini",
		ChunkSize:      500,
		ChunkOverlap:   50,
		TopK:           3,
		DBPath:         "kbbot.db",
		DocsDir:        filepath.Join("data", "documents"),
	}
}

// Load reads settings from the environment, honoring a .env file in the
// working directory when present.
func Load() *Settings {
	_ = godotenv.Load() // missing .env is fine, env vars still apply

	s := Default()
	s.BotToken = envOr("BOT_TOKEN", s.BotToken)
	s.OpenAIAPIKey = envOr("OPENAI_API_KEY", s.OpenAIAPIKey)
	s.OpenAIBaseURL = envOr("OPENAI_BASE_URL", s.OpenAIBaseURL)
	s.GeminiAPIKey = envOr("GEMINI_API_KEY", s.GeminiAPIKey)
	s.EmbeddingProvider = envOr("EMBEDDING_PROVIDER", s.EmbeddingProvider)
	s.EmbeddingModel = envOr("EMBEDDING_MODEL", s.EmbeddingModel)
	s.AnswerModel = envOr("ANSWER_MODEL", s.AnswerModel)
	s.ChunkSize = envIntOr("CHUNK_SIZE", s.ChunkSize)
	s.ChunkOverlap = envIntOr("CHUNK_OVERLAP", s.ChunkOverlap)
	s.TopK = envIntOr("TOP_K", s.TopK)
	s.DBPath = envOr("KBBOT_DB", s.DBPath)
	s.DocsDir = envOr("DOCS_DIR", s.DocsDir)
	return s
}

// MarkdownDir is where cleaned Markdown documents live.
func (s *Settings) MarkdownDir() string {
	return filepath.Join(s.DocsDir, "md_docs")
}

// PDFDir is where source PDF documents live.
func (s *Settings) PDFDir() string {
	return filepath.Join(s.DocsDir, "pdf_docs")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
