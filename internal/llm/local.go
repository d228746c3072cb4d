package llm

import (
	"context"
	"math"

	"kbbot/internal/index"
)

// LocalEmbeddingDim is the dimension of the hash embedder.
const LocalEmbeddingDim = 384

// Local is an offline embedder: each token hashes to a signed position in a
// fixed-dimension vector. Crude, but deterministic, free and good enough to
// keep hybrid retrieval working without any API access.
type Local struct {
	dim int
}

// NewLocal creates a local hash embedder; dim <= 0 selects the default.
func NewLocal(dim int) *Local {
	if dim <= 0 {
		dim = LocalEmbeddingDim
	}
	return &Local{dim: dim}
}

func (l *Local) Kind() string  { return "local" }
func (l *Local) Model() string { return "local-hash" }

func (l *Local) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec := make([]float32, l.dim)
		for _, tok := range index.Tokenize(text) {
			h := hashToken(tok)
			pos := int(h % uint64(l.dim))
			sign := float32(1.0)
			if (h>>63)&1 == 1 {
				sign = -1.0
			}
			vec[pos] += sign
		}
		NormalizeVector(vec)
		out = append(out, vec)
	}
	return out, nil
}

// hashToken is FNV-1a 64-bit.
func hashToken(token string) uint64 {
	const (
		offset uint64 = 1469598103934665603
		prime  uint64 = 1099511628211
	)
	h := offset
	for i := 0; i < len(token); i++ {
		h ^= uint64(token[i])
		h *= prime
	}
	return h
}

// NormalizeVector scales vec to unit length in place. Zero vectors are left
// untouched.
func NormalizeVector(vec []float32) {
	sum := 0.0
	for _, v := range vec {
		sum += float64(v * v)
	}
	if sum <= 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) * inv)
	}
}
