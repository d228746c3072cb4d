// Package llm provides embedding and answer-generation providers. The bot
// works without any API key: a deterministic local hash embedder keeps
// retrieval functional, and without an Answerer the retrieved context itself
// is the reply.
package llm

import (
	"context"

	"kbbot/internal/config"
)

// Embedder turns texts into normalized vectors. Implementations must return
// one vector per input, all of the same dimension.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Kind() string
	Model() string
}

// Answerer synthesizes an answer to a question grounded on retrieved
// context. An empty answer means "use the context directly".
type Answerer interface {
	Answer(ctx context.Context, question, context string) (string, error)
}

// Noop is an Answerer that never produces a synthesized answer.
type Noop struct{}

func (Noop) Answer(ctx context.Context, question, contextText string) (string, error) {
	return "", nil
}

// NewEmbedder picks an embedding provider from settings. Provider "" means
// automatic: OpenAI when a key is configured, then Gemini, then local.
func NewEmbedder(ctx context.Context, cfg *config.Settings) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.AnswerModel)
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, "")
	case "local":
		return NewLocal(0), nil
	}
	if cfg.OpenAIAPIKey != "" {
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.AnswerModel)
	}
	if cfg.GeminiAPIKey != "" {
		return NewGemini(ctx, cfg.GeminiAPIKey, "")
	}
	return NewLocal(0), nil
}

// NewAnswerer returns the answer provider matching the configured embedder,
// or Noop when the provider cannot generate text.
func NewAnswerer(embedder Embedder) Answerer {
	if a, ok := embedder.(Answerer); ok {
		return a
	}
	return Noop{}
}
