// Package embedding provides an OpenAI-compatible embeddings client.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"assistant/internal/fault"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	dimension   int
	client      *http.Client
	maxAttempts uint64
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      key,
		model:       cfg.Model,
		client:      &http.Client{Timeout: t},
		maxAttempts: 3,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Dimension returns the dimensionality of the produced embedding vectors.
// It is zero until the first successful Embed call.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var out []float64
	err := fault.Retry(ctx, c.maxAttempts, func() error {
		vec, err := c.embed(ctx, text)
		if err != nil {
			return err
		}
		out = vec
		return nil
	})
	if err != nil {
		return nil, err
	}
	if c.dimension == 0 {
		c.dimension = len(out)
	}
	return out, nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float64, error) {
	body := struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}{Input: text, Model: c.model}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := fault.FromStatus("embeddings", resp.StatusCode); err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w: %v", fault.ErrNetwork, err)
	}
	var parsed struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("embeddings: %w: %v", fault.ErrMalformed, err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings: %w: no embedding returned", fault.ErrMalformed)
	}
	return parsed.Data[0].Embedding, nil
}
