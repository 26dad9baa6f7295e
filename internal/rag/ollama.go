package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaEmbedder implements Embedder against an Ollama embeddings endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	dimension  int
}

// OllamaConfig configures the embedder.
type OllamaConfig struct {
	BaseURL   string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// NewOllamaEmbedder creates an embedder. When Dimension is zero it is
// determined by embedding a probe string.
func NewOllamaEmbedder(cfg OllamaConfig) (*OllamaEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required for ollama embedder")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required for ollama embedder")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	e := &OllamaEmbedder{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		dimension:  cfg.Dimension,
	}

	if e.dimension == 0 {
		probe, err := e.Embed(context.Background(), "dimension probe")
		if err != nil {
			return nil, fmt.Errorf("failed to determine embedding dimension: %w", err)
		}
		e.dimension = len(probe)
	}

	return e, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed generates the embedding vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	url := e.baseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var out ollamaEmbedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse embed response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding")
	}
	return out.Embedding, nil
}

// Dimension returns the embedding vector size.
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}
