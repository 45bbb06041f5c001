package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"clipvault/internal/config"
)

const (
	generateTemperature = 0.7
	generateMaxTokens   = 2000
	generateAttempts    = 3
	retryBaseDelay      = 500 * time.Millisecond
)

// Client talks to an Ollama server. Requests are rate limited and retried on
// transient failures.
type Client struct {
	endpoint string
	model    string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient builds an Ollama client from configuration. A zero or negative
// request rate disables rate limiting.
func NewClient(cfg *config.Config) *Client {
	var limiter *rate.Limiter
	if cfg.Ollama.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Ollama.RequestsPerMinute/60), 1)
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Ollama.Endpoint, "/"),
		model:    cfg.Ollama.Model,
		http: &http.Client{
			Timeout: time.Duration(cfg.Ollama.TimeoutSeconds) * time.Second,
		},
		limiter: limiter,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate sends a prompt to /api/generate and returns the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, generateMaxTokens)
}

func (c *Client) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: generateTemperature,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= generateAttempts; attempt++ {
		if attempt > 1 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-2))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, retryable, err := c.generateOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", true, fmt.Errorf("read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable = resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("ollama returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", false, fmt.Errorf("decode ollama response: %w", err)
	}
	if decoded.Error != "" {
		return "", false, fmt.Errorf("ollama error: %s", decoded.Error)
	}
	return decoded.Response, false, nil
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckModel verifies the Ollama server is reachable, the configured model is
// installed, and the model actually responds to a tiny generate request.
func (c *Client) CheckModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach ollama at %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama at %s returned HTTP %d", c.endpoint, resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode ollama model list: %w", err)
	}
	found := false
	for _, m := range tags.Models {
		if m.Name == c.model || m.Name == c.model+":latest" {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("model %q not installed in ollama (try: ollama pull %s)", c.model, c.model)
	}

	// The model can exist but fail to load. A tiny generate proves it responds.
	if _, err := c.generate(ctx, "Ready.", 5); err != nil {
		return fmt.Errorf("model %q failed to respond: %w", c.model, err)
	}
	return nil
}
