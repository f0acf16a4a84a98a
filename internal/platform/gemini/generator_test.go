package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	GenerateContentFn func(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	calls int
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.calls++
	return f.GenerateContentFn(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func testConfig() Config {
	return Config{
		APIKey:     "key",
		Model:      "gemini-test",
		RetryDelay: time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestGenerateCandidates(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{GenerateContentFn: func(
		_ context.Context,
		model string,
		contents []*genai.Content,
		cfg *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error) {
		assert.Equal(t, "gemini-test", model)
		require.Len(t, contents, 1)
		assert.Equal(t, "the text", contents[0].Parts[0].Text)
		assert.Equal(t, "application/json", cfg.ResponseMIMEType)
		assert.Equal(t, generation.SystemPrompt, cfg.SystemInstruction.Parts[0].Text)
		assert.Equal(t, []string{"candidates"}, cfg.ResponseSchema.Required)
		return textResponse(`{"candidates":[{"front_text":"Q ","back_text":" A"},{"front_text":"","back_text":"x"}]}`), nil
	}}

	g := newGenerator(fake, testConfig())
	got, err := g.GenerateCandidates(context.Background(), "the text")
	require.NoError(t, err)
	assert.Equal(t, []domain.Candidate{{FrontText: "Q", BackText: "A"}}, got)
	assert.Equal(t, "gemini-test", g.Model())
}

func TestGenerateCandidates_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resp      *genai.GenerateContentResponse
		err       error
		retries   int
		wantErr   error
		wantCalls int
	}{
		{
			name:      "safety stop",
			resp:      &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{}, FinishReason: genai.FinishReasonSafety}}},
			wantErr:   generation.ErrContentBlocked,
			wantCalls: 1,
		},
		{
			name:      "prompt blocked",
			resp:      &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"}},
			wantErr:   generation.ErrContentBlocked,
			wantCalls: 1,
		},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: generation.ErrSchemaValidation, wantCalls: 1},
		{name: "not json", resp: textResponse("Here you go"), wantErr: generation.ErrSchemaValidation, wantCalls: 1},
		{name: "empty text", resp: textResponse("  "), wantErr: generation.ErrSchemaValidation, wantCalls: 1},
		{
			name:      "client error not retried",
			err:       genai.APIError{Code: 400, Message: "bad request"},
			retries:   2,
			wantErr:   generation.ErrAPI,
			wantCalls: 1,
		},
		{
			name:      "server error retried",
			err:       genai.APIError{Code: 503, Message: "unavailable"},
			retries:   2,
			wantErr:   generation.ErrAPI,
			wantCalls: 3,
		},
		{
			name:      "transport error retried",
			err:       errors.New("connection reset"),
			retries:   1,
			wantErr:   generation.ErrNetwork,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeModels{GenerateContentFn: func(
				context.Context, string, []*genai.Content, *genai.GenerateContentConfig,
			) (*genai.GenerateContentResponse, error) {
				return tt.resp, tt.err
			}}
			cfg := testConfig()
			cfg.MaxRetries = tt.retries

			_, err := newGenerator(fake, cfg).GenerateCandidates(context.Background(), "text")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalls, fake.calls)
		})
	}
}

func TestGenerateCandidates_Timeout(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{GenerateContentFn: func(
		ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond

	_, err := newGenerator(fake, cfg).GenerateCandidates(context.Background(), "text")
	assert.ErrorIs(t, err, generation.ErrTimeout)
}

func TestGenerateCandidates_TimeoutRetried(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{}
	fake.GenerateContentFn = func(
		ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error) {
		if fake.calls == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return textResponse(`{"candidates":[{"front_text":"Q","back_text":"A"}]}`), nil
	}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRetries = 1

	_, err := newGenerator(fake, cfg).GenerateCandidates(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestGenerateCandidates_TimeoutExhaustsRetries(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{GenerateContentFn: func(
		ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxRetries = 2

	_, err := newGenerator(fake, cfg).GenerateCandidates(context.Background(), "text")
	assert.ErrorIs(t, err, generation.ErrTimeout)
	assert.Equal(t, 3, fake.calls)
}

func TestGenerateCandidates_EmptyInput(t *testing.T) {
	t.Parallel()

	fake := &fakeModels{}
	_, err := newGenerator(fake, testConfig()).GenerateCandidates(context.Background(), " ")
	assert.ErrorIs(t, err, generation.ErrInputValidation)
	assert.Zero(t, fake.calls)
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(context.Background(), Config{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestModelFallback(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromLLM(config.LLMConfig{GeminiAPIKey: "k", ModelName: "openai/gpt-4o-mini", RequestTimeoutSeconds: 5}, nil)
	g := newGenerator(&fakeModels{}, cfg)
	assert.Equal(t, DefaultModel, g.Model())
	assert.Equal(t, 5*time.Second, g.timeout)
}
