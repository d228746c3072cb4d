package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
	rrfK   = 60.0
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_+\-]+`)

// Result is a ranked chunk with its component scores.
type Result struct {
	Chunk        Chunk
	VectorScore  float64
	KeywordScore float64
	HybridScore  float64
}

// Searcher ranks a fixed chunk set. Build once per index load; rebuilding
// after chunk changes is the caller's job.
type Searcher struct {
	chunks    []Chunk
	docTF     []map[string]int
	docLen    []int
	docFreq   map[string]int
	avgDocLen float64
}

// NewSearcher precomputes the lexical statistics for BM25.
func NewSearcher(chunks []Chunk) *Searcher {
	s := &Searcher{
		chunks:  chunks,
		docTF:   make([]map[string]int, len(chunks)),
		docLen:  make([]int, len(chunks)),
		docFreq: make(map[string]int, 512),
	}
	totalLen := 0
	for i, ch := range chunks {
		tf := make(map[string]int, 64)
		seen := make(map[string]struct{}, 64)
		for _, tok := range Tokenize(ch.Content + "\n" + ch.Section + "\n" + ch.Source) {
			tf[tok]++
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				s.docFreq[tok]++
			}
		}
		docLen := 0
		for _, c := range tf {
			docLen += c
		}
		s.docTF[i] = tf
		s.docLen[i] = docLen
		totalLen += docLen
	}
	if len(chunks) > 0 {
		s.avgDocLen = float64(totalLen) / float64(len(chunks))
	}
	return s
}

// Len reports the number of indexed chunks.
func (s *Searcher) Len() int { return len(s.chunks) }

// Search fuses cosine similarity over queryVec with BM25 over the query text
// using reciprocal rank fusion. queryVec may be nil (keyword-only search).
func (s *Searcher) Search(queryVec []float32, query string, topK int) []Result {
	if len(s.chunks) == 0 || topK <= 0 {
		return nil
	}

	var vectorScores []scoredDoc
	if len(queryVec) > 0 {
		for i, ch := range s.chunks {
			score := Cosine(queryVec, ch.Vector)
			if score <= 0 {
				continue
			}
			vectorScores = append(vectorScores, scoredDoc{index: i, score: score})
		}
		sortScored(vectorScores)
	}

	var keywordScores []scoredDoc
	queryTokens := Tokenize(query)
	if len(queryTokens) > 0 && s.avgDocLen > 0 {
		for i := range s.chunks {
			score := s.bm25(queryTokens, i)
			if score <= 0 {
				continue
			}
			keywordScores = append(keywordScores, scoredDoc{index: i, score: score})
		}
		sortScored(keywordScores)
	}

	if len(vectorScores) == 0 && len(keywordScores) == 0 {
		return nil
	}

	ranked := make(map[int]*Result, topK*4)
	pushRRF := func(list []scoredDoc, isVector bool) {
		for rank, ds := range list {
			entry := ranked[ds.index]
			if entry == nil {
				entry = &Result{Chunk: s.chunks[ds.index]}
				ranked[ds.index] = entry
			}
			if isVector {
				entry.VectorScore = ds.score
			} else {
				entry.KeywordScore = ds.score
			}
			entry.HybridScore += 1.0 / (rrfK + float64(rank+1))
		}
	}
	pushRRF(vectorScores, true)
	pushRRF(keywordScores, false)

	out := make([]Result, 0, len(ranked))
	for _, entry := range ranked {
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HybridScore == out[j].HybridScore {
			return out[i].VectorScore > out[j].VectorScore
		}
		return out[i].HybridScore > out[j].HybridScore
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

func (s *Searcher) bm25(queryTokens []string, doc int) float64 {
	tf := s.docTF[doc]
	docLen := s.docLen[doc]
	if len(tf) == 0 || docLen <= 0 {
		return 0
	}
	nDocs := len(s.chunks)
	score := 0.0
	seen := map[string]struct{}{}
	for _, term := range queryTokens {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		freq := tf[term]
		if freq <= 0 {
			continue
		}
		df := s.docFreq[term]
		if df <= 0 {
			continue
		}
		idf := math.Log(1 + (float64(nDocs-df)+0.5)/(float64(df)+0.5))
		numer := float64(freq) * (bm25K1 + 1)
		denom := float64(freq) + bm25K1*(1-bm25B+bm25B*(float64(docLen)/s.avgDocLen))
		score += idf * (numer / denom)
	}
	return score
}

type scoredDoc struct {
	index int
	score float64
}

func sortScored(list []scoredDoc) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score == list[j].score {
			return list[i].index < list[j].index
		}
		return list[i].score > list[j].score
	})
}

// Tokenize lowercases text and extracts word tokens of length >= 2.
func Tokenize(text string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if utf8.RuneCountInString(t) < 2 {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Cosine computes the dot product of two normalized vectors.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}
