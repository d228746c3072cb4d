package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const openAIEmbedBatch = 64

// OpenAI calls the OpenAI-compatible embeddings and chat APIs over plain
// HTTP. BaseURL may point at any compatible server.
type OpenAI struct {
	apiKey      string
	baseURL     string
	embedModel  string
	answerModel string
	client      *http.Client
}

// NewOpenAI builds an OpenAI provider. The key is required; models fall back
// to the service defaults when empty.
func NewOpenAI(apiKey, baseURL, embedModel, answerModel string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}
	if answerModel == "" {
		answerModel = "gpt-4o-mini"
	}
	return &OpenAI{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		embedModel:  embedModel,
		answerModel: answerModel,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (o *OpenAI) Kind() string  { return "openai" }
func (o *OpenAI) Model() string { return o.embedModel }

func (o *OpenAI) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	type request struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	type response struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += openAIEmbedBatch {
		end := min(start+openAIEmbedBatch, len(texts))

		var parsed response
		err := o.post(ctx, "/embeddings", request{Model: o.embedModel, Input: texts[start:end]}, &parsed)
		if err != nil {
			return nil, err
		}
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("openai embeddings: %s", parsed.Error.Message)
		}
		sort.SliceStable(parsed.Data, func(i, j int) bool {
			return parsed.Data[i].Index < parsed.Data[j].Index
		})
		for _, item := range parsed.Data {
			vec := make([]float32, len(item.Embedding))
			for i, v := range item.Embedding {
				vec[i] = float32(v)
			}
			NormalizeVector(vec)
			out = append(out, vec)
		}
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("openai embeddings count mismatch: %d != %d", len(out), len(texts))
	}
	return out, nil
}

// Answer asks the chat model for a grounded reply; the model is instructed
// to answer only from the supplied context.
func (o *OpenAI) Answer(ctx context.Context, question, contextText string) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type request struct {
		Model    string    `json:"model"`
		Messages []message `json:"messages"`
	}
	type response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	req := request{
		Model: o.answerModel,
		Messages: []message{
			{Role: "system", Content: answerSystemPrompt},
			{Role: "user", Content: "Контекст:\n" + contextText + "\n\nВопрос: " + question},
		},
	}
	var parsed response
	if err := o.post(ctx, "/chat/completions", req, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("openai chat: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (o *OpenAI) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openai %s http %d", path, resp.StatusCode)
	}
	return json.Unmarshal(raw, result)
}

const answerSystemPrompt = "Ты — помощник базы знаний. Отвечай кратко и только " +
	"по предоставленному контексту. Если в контексте нет ответа, так и скажи."
