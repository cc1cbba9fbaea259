package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/ports"
)

const (
	defaultRequestTimeout = 90 * time.Second
	appTitle              = "vidtitle"
)

// Client implements ports.Completer against the OpenRouter chat API
type Client struct {
	key            string
	baseURL        string
	requestTimeout time.Duration
	client         *http.Client
}

// New creates a client. The base URL is not validated here; see
// ValidateBaseURL. A zero timeout uses the 90s default.
func New(apiKey, baseURL string, requestTimeout time.Duration) *Client {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Client{
		key:            apiKey,
		baseURL:        normalizeBaseURL(baseURL),
		requestTimeout: requestTimeout,
		client:         &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// Complete sends req as a single user message and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := c.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.key)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Title", appTitle)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", domain.Wrap(domain.ErrTimeout,
				fmt.Sprintf("openrouter timeout after %s (model=%s)", c.requestTimeout, req.Model), err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", domain.Wrap(domain.ErrGenerationFailed, "openrouter request", errors.New(redactSecrets(err.Error(), c.key)))
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.Wrap(domain.ErrGenerationFailed, fmt.Sprintf("openrouter status %d: read body", resp.StatusCode), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.GenerationError{
			StatusCode: resp.StatusCode,
			Message:    c.errorMessage(rb),
		}
	}

	var raw chatResponse
	if err := json.Unmarshal(rb, &raw); err != nil {
		return "", domain.Wrap(domain.ErrGenerationFailed, "decode openrouter response", err)
	}
	// Upstream provider failures can arrive with a 200 status
	if raw.Error != nil && raw.Error.Message != "" {
		return "", &domain.GenerationError{
			StatusCode: statusFromCode(raw.Error.Code, resp.StatusCode),
			Message:    truncate(redactSecrets(raw.Error.Message, c.key), 400),
		}
	}
	if len(raw.Choices) == 0 {
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Message: "no choices returned"}
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", &domain.GenerationError{StatusCode: resp.StatusCode, Message: err.Error()}
	}
	return strings.TrimSpace(content), nil
}

// errorMessage prefers the provider's error.message over the raw body
func (c *Client) errorMessage(body []byte) string {
	var raw chatResponse
	if err := json.Unmarshal(body, &raw); err == nil && raw.Error != nil && raw.Error.Message != "" {
		return truncate(redactSecrets(raw.Error.Message, c.key), 400)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	return truncate(redactSecrets(msg, c.key), 400)
}

func statusFromCode(code any, fallback int) int {
	if f, ok := code.(float64); ok && f >= 100 && f < 600 {
		return int(f)
	}
	return fallback
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	case nil:
		return "", errors.New("openrouter: empty content")
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}

var _ ports.Completer = (*Client)(nil)
