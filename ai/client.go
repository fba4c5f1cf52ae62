// Package ai talks to the Gemini generative language API to infer due dates
// from task text and to answer questions about the task list.
package ai

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

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is the Gemini model used when none is configured
	DefaultModel = "gemini-1.5-flash"

	// DefaultAPIURL is the Gemini API endpoint
	DefaultAPIURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single HTTP call
	DefaultTimeout = 30 * time.Second

	defaultMaxAttempts   = 3
	defaultRetryInterval = time.Second
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("gemini: API key is not configured")
	// ErrUnavailable marks a temporary service outage worth retrying.
	ErrUnavailable = errors.New("gemini: service unavailable")
	// ErrNoCandidates is returned when the model produced no text.
	ErrNoCandidates = errors.New("gemini: response has no candidates")
)

// Config configures a Client.
type Config struct {
	APIKey        string
	Model         string
	APIURL        string
	Timeout       time.Duration
	RatePerMinute int           // 0 disables throttling
	MaxAttempts   int           // attempts for unavailable errors
	RetryInterval time.Duration // first backoff interval, doubled per attempt
	HTTPClient    *http.Client
}

// Client is a minimal Gemini generateContent client.
type Client struct {
	apiKey        string
	model         string
	apiURL        string
	maxAttempts   int
	retryInterval time.Duration
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *zap.Logger
}

// NewClient creates a client, filling unset fields with defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	return &Client{
		apiKey:        strings.TrimSpace(cfg.APIKey),
		model:         cfg.Model,
		apiURL:        strings.TrimRight(cfg.APIURL, "/"),
		maxAttempts:   cfg.MaxAttempts,
		retryInterval: cfg.RetryInterval,
		httpClient:    cfg.HTTPClient,
		limiter:       limiter,
		logger:        logger.With(zap.String("model", cfg.Model)),
	}
}

// Model returns the model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends a single-turn prompt and returns the model's text.
// Unavailable errors are retried with exponential backoff.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	req := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.Multiplier = 2

	attempt := 0
	operation := func() (string, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return "", backoff.Permanent(err)
		}

		resp, err := c.generateContent(ctx, req)
		if err != nil {
			c.logger.Warn("gemini attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			if errors.Is(err, ErrUnavailable) {
				return "", err
			}
			return "", backoff.Permanent(err)
		}
		return resp.text()
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.maxAttempts)))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) generateContent(ctx context.Context, req generateRequest) (*generateResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.apiURL, c.model, c.apiKey)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to call API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return nil, fmt.Errorf("gemini: API error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gemini: failed to decode response: %w", err)
	}
	return &result, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

func (r *generateResponse) text() (string, error) {
	if len(r.Candidates) == 0 {
		return "", backoff.Permanent(ErrNoCandidates)
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", backoff.Permanent(ErrNoCandidates)
	}
	return sb.String(), nil
}
