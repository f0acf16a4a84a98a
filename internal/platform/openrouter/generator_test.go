package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/repetix/repetix-api/internal/config"
	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GenerateCandidates(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, completion(t, generation.Response{Candidates: []domain.Candidate{
			{FrontText: " What is Go? ", BackText: "A language."},
			{FrontText: strings.Repeat("x", 300), BackText: "too long front"},
		}}))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "k", APIURL: srv.URL, Model: "meta/llama", HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, "meta/llama", g.Model())

	candidates, err := g.GenerateCandidates(context.Background(), "source text")
	require.NoError(t, err)
	assert.Equal(t, []domain.Candidate{{FrontText: "What is Go?", BackText: "A language."}}, candidates)

	assert.Equal(t, "meta/llama", got["model"])
	assert.InDelta(t, 0.4, got["temperature"], 1e-9)
	assert.InDelta(t, 0.8, got["top_p"], 1e-9)
	assert.InDelta(t, 0.5, got["frequency_penalty"], 1e-9)
	assert.InDelta(t, 0.5, got["presence_penalty"], 1e-9)
	assert.NotContains(t, got, "max_tokens")

	format := got["response_format"].(map[string]any)
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, generation.SchemaName, schema["name"])

	messages := got["messages"].([]any)
	assert.Equal(t, generation.SystemPrompt, messages[0].(map[string]any)["content"])
	assert.Equal(t, "source text", messages[1].(map[string]any)["content"])
}

func TestGenerator_NoUsableCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, completion(t, map[string]any{"candidates": []any{}}))
	}))
	defer srv.Close()

	g, err := NewGenerator(Config{APIKey: "k", APIURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	_, err = g.GenerateCandidates(context.Background(), "text")
	assert.ErrorIs(t, err, generation.ErrSchemaValidation)
}

func TestConfigFromLLM(t *testing.T) {
	t.Parallel()

	cfg := ConfigFromLLM(config.LLMConfig{
		OpenRouterAPIKey:      "sk-or-abc",
		OpenRouterAPIURL:      "https://example.test/v1/chat",
		ModelName:             "openai/gpt-4o-mini",
		RequestTimeoutSeconds: 12,
		MaxRetries:            2,
		RetryDelayMS:          250,
	}, nil)

	assert.Equal(t, "sk-or-abc", cfg.APIKey)
	assert.Equal(t, "https://example.test/v1/chat", cfg.APIURL)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "12s", cfg.Timeout.String())
	assert.Equal(t, "250ms", cfg.RetryDelay.String())
}
