package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL = "http://localhost:11434"
	defaultOpenAIURL = "https://api.openai.com/v1/embeddings"
	remoteTimeout    = 30 * time.Second
)

// OllamaEngine embeds text through a local Ollama server.
type OllamaEngine struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaEngine creates an engine calling Ollama's embedding API.
func NewOllamaEngine(baseURL, model string) *OllamaEngine {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &OllamaEngine{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: remoteTimeout},
	}
}

// ModelID identifies the model for cache keys.
func (p *OllamaEngine) ModelID() string {
	return "ollama/" + p.model
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedText generates a single embedding vector from text.
func (p *OllamaEngine) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ollama: status %d: %s", resp.StatusCode, string(body))
	}
	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, errors.New("ollama: empty embedding returned")
	}
	return result.Embedding, nil
}

// OpenAIEngine embeds text using the OpenAI embeddings API.
type OpenAIEngine struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIEngine creates an engine for the given key and model.
func NewOpenAIEngine(apiKey, model string) *OpenAIEngine {
	return &OpenAIEngine{
		apiKey:     apiKey,
		model:      model,
		endpoint:   defaultOpenAIURL,
		httpClient: &http.Client{Timeout: remoteTimeout},
	}
}

// ModelID identifies the model for cache keys.
func (p *OpenAIEngine) ModelID() string {
	return "openai/" + p.model
}

type openAIRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// EmbedText generates a single embedding.
func (p *OpenAIEngine) EmbedText(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(openAIRequest{Input: []string{text}, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}
	var result openAIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("openai: unmarshal response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("openai: %s: %s", result.Error.Type, result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	for _, d := range result.Data {
		if d.Index == 0 && len(d.Embedding) > 0 {
			return d.Embedding, nil
		}
	}
	return nil, errors.New("openai: empty embedding returned")
}
