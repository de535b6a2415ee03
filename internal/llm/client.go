// Package llm provides an OpenAI-compatible chat-completions client.
package llm

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

	"assistant/internal/domain"
	"assistant/internal/fault"
)

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	client      *http.Client
	maxAttempts uint64
}

// Config configures the chat-completions client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new chat client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
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

// Complete sends the message list and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	var out string
	err := fault.Retry(ctx, c.maxAttempts, func() error {
		text, err := c.complete(ctx, messages)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

func (c *Client) complete(ctx context.Context, messages []domain.Message) (string, error) {
	body := struct {
		Model       string           `json:"model"`
		Messages    []domain.Message `json:"messages"`
		Temperature float64          `json:"temperature"`
	}{Model: c.model, Messages: messages}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat: %w: %v", fault.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := fault.FromStatus("chat", resp.StatusCode); err != nil {
		return "", err
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("chat: %w: %v", fault.ErrNetwork, err)
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("chat: %w: %v", fault.ErrMalformed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat: %w: no choices", fault.ErrMalformed)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
