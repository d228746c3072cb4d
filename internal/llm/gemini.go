package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Gemini provides embeddings and answers through the Google GenAI API.
type Gemini struct {
	client      *genai.Client
	embedModel  string
	answerModel string
}

// NewGemini builds a Gemini provider; model "" selects defaults.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, embedModel: "gemini-embedding-001", answerModel: model}, nil
}

func (g *Gemini) Kind() string  { return "gemini" }
func (g *Gemini) Model() string { return g.embedModel }

func (g *Gemini) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIEmbedBatch {
		end := min(start+openAIEmbedBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
		res, err := g.client.Models.EmbedContent(ctx, g.embedModel, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embeddings: %w", err)
		}
		for _, emb := range res.Embeddings {
			vec := append([]float32(nil), emb.Values...)
			NormalizeVector(vec)
			out = append(out, vec)
		}
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("gemini embeddings count mismatch: %d != %d", len(out), len(texts))
	}
	return out, nil
}

func (g *Gemini) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt := answerSystemPrompt + "\n\nКонтекст:\n" + contextText + "\n\nВопрос: " + question
	res, err := g.client.Models.GenerateContent(ctx, g.answerModel, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return strings.TrimSpace(res.Text()), nil
}
