package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/redact"
)

// Defaults applied by NewClient.
const (
	DefaultAPIURL     = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel      = "openai/gpt-4o-mini"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = time.Second
)

// Attribution headers sent with every request.
const (
	Referer = "https://repetix.com"
	Title   = "Repetix - AI Flashcards"
)

const (
	maxResponseBytes = 10 << 20
	maxErrorBody     = 1 << 10
)

// Config configures a Client.
type Config struct {
	APIKey string
	APIURL string
	Model  string
	// Params replaces DefaultParams when set.
	Params *Params
	// Timeout bounds each attempt.
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is multiplied by the attempt number before each retry.
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ConfigFromLLM maps the application LLM settings to a Config.
func ConfigFromLLM(cfg config.LLMConfig, log *slog.Logger) Config {
	return Config{
		APIKey:     cfg.OpenRouterAPIKey,
		APIURL:     cfg.OpenRouterAPIURL,
		Model:      cfg.ModelName,
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Logger:     log,
	}
}

// Client sends chat completion requests to OpenRouter.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	params     Params
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates cfg and fills in defaults.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: openrouter api key is required", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		params:     DefaultParams(),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if cfg.Params != nil {
		c.params = *cfg.Params
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.retryDelay < 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With(slog.String("component", "openrouter"))
	return c, nil
}

// Model returns the default model.
func (c *Client) Model() string {
	return c.model
}

// SendChatCompletion sends a system and a user message and decodes the
// JSON content of the first choice into out. opts may be nil.
func (c *Client) SendChatCompletion(
	ctx context.Context,
	systemMessage, userMessage string,
	opts *ChatOptions,
	out any,
) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	payload, err := c.buildPayload(systemMessage, userMessage, opts)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return err
			}
		}

		log.Info("openrouter request",
			slog.Int("attempt", attempt+1),
			slog.String("model", payload.Model))

		content, err := c.do(ctx, body)
		if err == nil {
			return decodeContent(content, out)
		}
		lastErr = err

		log.Warn("openrouter request failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", redact.Error(err)))

		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() != nil {
		return contextError(ctx.Err())
	}
	return lastErr
}

func (c *Client) buildPayload(systemMessage, userMessage string, opts *ChatOptions) (*chatRequest, error) {
	if strings.TrimSpace(systemMessage) == "" {
		return nil, fmt.Errorf("%w: system message is required", generation.ErrInputValidation)
	}
	if strings.TrimSpace(userMessage) == "" {
		return nil, fmt.Errorf("%w: user message is required", generation.ErrInputValidation)
	}
	if opts == nil {
		opts = &ChatOptions{}
	}

	req := &chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: userMessage},
		},
		Params:         c.params.merge(opts.Params),
		ResponseFormat: opts.ResponseFormat,
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if req.ResponseFormat == nil {
		req.ResponseFormat = defaultResponseFormat()
	}
	return req, nil
}

// wait sleeps retryDelay*attempt unless ctx ends first.
func (c *Client) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryDelay * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return contextError(ctx.Err())
	}
}

// do performs one attempt and returns the raw message content.
func (c *Client) do(ctx context.Context, body []byte) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", Referer)
	req.Header.Set("X-Title", Title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		return nil, fmt.Errorf("%w: failed to read response: %v", generation.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", generation.ErrSchemaValidation, err)
	}
	if len(parsed.Choices) == 0 || isEmptyContent(parsed.Choices[0].Message.Content) {
		return nil, fmt.Errorf("%w: invalid response structure from openrouter", generation.ErrSchemaValidation)
	}
	return parsed.Choices[0].Message.Content, nil
}

// retryable reports whether another attempt may succeed: server errors,
// transport failures and per-attempt timeouts.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, generation.ErrNetwork) || errors.Is(err, generation.ErrTimeout)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
	}
	return err
}

func isEmptyContent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}

// decodeContent decodes content into out. Content is usually a JSON string
// holding a JSON document, but some models return the object itself.
func decodeContent(content json.RawMessage, out any) error {
	doc := []byte(content)

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		doc = []byte(stripCodeFence(s))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("%w: failed to parse response content as JSON: %v", generation.ErrSchemaValidation, err)
	}
	return nil
}

// stripCodeFence removes a surrounding ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
