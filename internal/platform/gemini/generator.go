package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/redact"
	"google.golang.org/genai"
)

// DefaultModel is used when no Gemini model is configured. OpenRouter style
// names ("vendor/model") are not valid Gemini models and fall back to it.
const DefaultModel = "gemini-2.0-flash"

// Config configures a Generator.
type Config struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// ConfigFromLLM maps the application LLM settings to a Config.
func ConfigFromLLM(cfg config.LLMConfig, log *slog.Logger) Config {
	return Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.ModelName,
		Timeout:    cfg.RequestTimeout(),
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		Logger:     log,
	}
}

// contentGenerator is the part of *genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator with Gemini.
type Generator struct {
	models     contentGenerator
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewGenerator creates a genai client for cfg.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", generation.ErrInvalidConfig, err)
	}
	return newGenerator(client.Models, cfg), nil
}

func newGenerator(models contentGenerator, cfg Config) *Generator {
	g := &Generator{
		models:     models,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
	if g.model == "" || strings.Contains(g.model, "/") {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = 30 * time.Second
	}
	if g.maxRetries < 0 {
		g.maxRetries = 0
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With(slog.String("component", "gemini"))
	return g
}

var _ generation.Generator = (*Generator)(nil)

// Model implements generation.Generator.
func (g *Generator) Model() string {
	return g.model
}

// GenerateCandidates implements generation.Generator.
func (g *Generator) GenerateCandidates(ctx context.Context, text string) ([]domain.Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", generation.ErrInputValidation)
	}
	log := logger.FromContextOrDefault(ctx, g.logger)

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	}}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: generation.SystemPrompt}}},
		Temperature:       genai.Ptr[float32](generation.Temperature),
		TopP:              genai.Ptr[float32](generation.TopP),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(g.retryDelay * time.Duration(attempt))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, contextError(ctx.Err())
			}
		}

		log.Info("gemini request", slog.Int("attempt", attempt+1), slog.String("model", g.model))

		candidates, err := g.call(ctx, contents, cfg)
		if err == nil {
			return candidates, nil
		}
		lastErr = err

		log.Warn("gemini request failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", redact.Error(err)))

		if !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
	}
	return nil, lastErr
}

func (g *Generator) call(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: gemini status %d: %w", generation.ErrAPI, apiErr.Code, err)
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrNetwork, err)
	}
	return parseResponse(resp)
}

func parseResponse(resp *genai.GenerateContentResponse) ([]domain.Candidate, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrSchemaValidation)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrSchemaValidation)
	}
	first := resp.Candidates[0]
	if first.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	var sb strings.Builder
	for _, part := range first.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, fmt.Errorf("%w: empty response text", generation.ErrSchemaValidation)
	}

	var parsed generation.Response
	if err := json.Unmarshal([]byte(sb.String()), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response as JSON: %v", generation.ErrSchemaValidation, err)
	}
	return generation.NormalizeCandidates(parsed.Candidates)
}

// retryable reports whether another attempt may succeed: server errors,
// transport failures and per-attempt timeouts. The OpenRouter client
// retries the same set.
func retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}
	return errors.Is(err, generation.ErrNetwork) || errors.Is(err, generation.ErrTimeout)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err)
	}
	return err
}
