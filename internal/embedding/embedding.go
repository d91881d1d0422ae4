// Package embedding provides the optional sentence-embedding source used by the
// cross-document linker. Absence of an embedder is a supported degraded mode:
// callers hold a nil Embedder and fall back to textual similarity.
package embedding

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

// ErrUnavailable is returned when the embedding source cannot produce a vector.
var ErrUnavailable = errors.New("embedding source unavailable")

// Embedder turns a short string into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config configures an OpenAI-compatible /v1/embeddings endpoint.
type Config struct {
	Provider string // "ollama", "openai", "custom"
	Model    string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Validate checks that the configuration is complete.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Provider != "ollama" && c.Provider != "custom" && c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %q", c.Provider)
	}
	return nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// HTTPError is a non-200 reply from the embedding endpoint.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client implements Embedder over HTTP.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates an embedding client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding config: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

// Embed returns the embedding of text. Failures are wrapped with ErrUnavailable.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}

	body, err := json.Marshal(embedRequest{Model: c.config.Model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &HTTPError{StatusCode: resp.StatusCode, Message: string(payload)})
	}

	var out embedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	if len(out.Data) != 1 || len(out.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrUnavailable, len(out.Data))
	}
	return out.Data[0].Embedding, nil
}

// Probe checks once, at startup, whether the embedder answers. A nil result
// means the capability is present.
func Probe(ctx context.Context, e Embedder) error {
	if e == nil {
		return ErrUnavailable
	}
	vec, err := e.Embed(ctx, "probe")
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return ErrUnavailable
	}
	return nil
}
