package annotation

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

const defaultTimeout = 30 * time.Second

// annotateRequest is the body posted to the annotation service.
type annotateRequest struct {
	Text string `json:"text"`
}

// annotateResponse is the annotation service's reply.
type annotateResponse struct {
	Sentences []Sentence `json:"sentences"`
}

// HTTPError is a non-2xx reply from the annotation service.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client implements Annotator against an HTTP annotation service that accepts
// {"text": ...} and answers {"sentences": [...]}.
// It performs a single attempt per call; retry policy belongs to the caller.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("annotation endpoint is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// Annotate sends text to the annotation service.
// Transport failures and non-2xx replies are wrapped with ErrUnavailable.
func (c *Client) Annotate(ctx context.Context, text string) ([]Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	body, err := json.Marshal(annotateRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(payload),
		})
	}

	var out annotateResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	return out.Sentences, nil
}
