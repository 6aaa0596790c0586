package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	errx "github.com/stacks-chat-assistant/server/internal/core/error"
	logx "github.com/stacks-chat-assistant/server/pkg/logger"
)

// Message is one chat-completion message in OpenAI-compatible form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the request body for the chat-completion endpoint.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Config holds everything needed to reach the OpenRouter API.
type Config struct {
	APIKey  string
	BaseURL string
	// Referer and Title are forwarded as the attribution headers OpenRouter
	// expects from client applications.
	Referer string
	Title   string
}

// Client issues chat-completion and model-listing requests. Per-attempt
// timeouts are controlled by the caller through the request context, not by
// the embedded http.Client.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient builds a Client. A nil httpClient gets http.DefaultClient
// semantics without a client-level timeout so context deadlines stay in
// charge.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Title == "" {
		cfg.Title = "Stacks Chat Assistant"
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

// ChatCompletion issues one completion request for a single candidate model
// and returns the reply text. Failures are classified so the caller can
// decide whether to advance to the next candidate:
//   - HTTP 404 wraps errx.ErrModelUnavailable
//   - any payload deviating from {choices:[{message:{content}}]} wraps
//     errx.ErrBadResponse
func (c *Client) ChatCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request for %s: %w", req.Model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("model %s: %w", req.Model, errx.ErrModelUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logx.Warn().
			Str("model", req.Model).
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("completion request rejected")
		return "", fmt.Errorf("model %s: status %d", req.Model, resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("model %s: decode: %w", req.Model, errx.ErrBadResponse)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model %s: no choices: %w", req.Model, errx.ErrBadResponse)
	}
	content := parsed.Choices[0].Message.Content
	if content == nil || strings.TrimSpace(*content) == "" {
		return "", fmt.Errorf("model %s: empty content: %w", req.Model, errx.ErrBadResponse)
	}

	return *content, nil
}

// ModelInfo describes one model the API serves.
type ModelInfo struct {
	ID      string `json:"id"`
	Pricing struct {
		Prompt string `json:"prompt"`
	} `json:"pricing"`
}

type modelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// ListModels fetches the models the API currently serves. Doubles as a
// connection test: a non-nil error means the key or endpoint is bad.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("models request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("models request: status %d", resp.StatusCode)
	}

	var parsed modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	return parsed.Data, nil
}

// FreeModels filters ListModels down to zero-cost models, capped at limit.
func (c *Client) FreeModels(ctx context.Context, limit int) ([]string, error) {
	all, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	free := make([]string, 0, limit)
	for _, m := range all {
		if m.Pricing.Prompt == "0" || strings.Contains(m.ID, ":free") {
			free = append(free, m.ID)
			if len(free) == limit {
				break
			}
		}
	}
	return free, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	req.Header.Set("X-Title", c.cfg.Title)
}
