package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/repetix/repetix-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completion renders an OpenRouter response whose message content is the
// JSON encoding of v, as a string.
func completion(t *testing.T, v any) string {
	t.Helper()
	inner, err := json.Marshal(v)
	require.NoError(t, err)
	outer, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": string(inner)}}},
	})
	require.NoError(t, err)
	return string(outer)
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		APIKey:     "sk-or-test-key",
		APIURL:     srv.URL,
		RetryDelay: time.Millisecond,
		HTTPClient: srv.Client(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewClient(Config{APIKey: "k", MaxRetries: -1})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	c, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultAPIURL, c.apiURL)
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, DefaultParams(), c.params)
}

func TestSendChatCompletion_Request(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sk-or-test-key", r.Header.Get("Authorization"))
		assert.Equal(t, Referer, r.Header.Get("HTTP-Referer"))
		assert.Equal(t, Title, r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, completion(t, map[string]any{
			"reply": "hi",
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 1},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	var out ChatResponse
	err := c.SendChatCompletion(context.Background(), "be brief", "hello",
		&ChatOptions{Params: Params{Temperature: Float(0.1)}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Reply)
	assert.Equal(t, 3, out.Usage.PromptTokens)

	assert.Equal(t, DefaultModel, got["model"])
	assert.InDelta(t, 0.1, got["temperature"], 1e-9)
	assert.InDelta(t, 150, got["max_tokens"], 1e-9)
	assert.InDelta(t, 1, got["top_p"], 1e-9)
	assert.InDelta(t, 0.3, got["frequency_penalty"], 1e-9)
	assert.InDelta(t, 0.3, got["presence_penalty"], 1e-9)

	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "be brief"}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "hello"}, messages[1])

	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "chat_response", format["json_schema"].(map[string]any)["name"])
}

func TestSendChatCompletion_InputValidation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	err := c.SendChatCompletion(context.Background(), " ", "hello", nil, nil)
	assert.ErrorIs(t, err, generation.ErrInputValidation)

	err = c.SendChatCompletion(context.Background(), "system", "", nil, nil)
	assert.ErrorIs(t, err, generation.ErrInputValidation)

	assert.Zero(t, calls.Load())
}

func TestSendChatCompletion_Retries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statuses   []int
		maxRetries int
		wantCalls  int32
		wantStatus int
	}{
		{name: "client error is not retried", statuses: []int{400}, maxRetries: 3, wantCalls: 1, wantStatus: 400},
		{name: "rate limit is not retried", statuses: []int{429}, maxRetries: 3, wantCalls: 1, wantStatus: 429},
		{name: "server error with no retries", statuses: []int{502}, maxRetries: 0, wantCalls: 1, wantStatus: 502},
		{name: "server errors exhaust retries", statuses: []int{500, 503, 500}, maxRetries: 2, wantCalls: 3, wantStatus: 500},
		{name: "server error then success", statuses: []int{500, 200}, maxRetries: 2, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				status := tt.statuses[int(n)-1]
				if status != http.StatusOK {
					w.WriteHeader(status)
					_, _ = io.WriteString(w, `{"error":{"message":"nope"}}`)
					return
				}
				_, _ = io.WriteString(w, completion(t, map[string]any{"reply": "ok"}))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, func(cfg *Config) { cfg.MaxRetries = tt.maxRetries })

			var out ChatResponse
			err := c.SendChatCompletion(context.Background(), "s", "u", nil, &out)
			assert.Equal(t, tt.wantCalls, calls.Load())

			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, "ok", out.Reply)
				return
			}
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Contains(t, apiErr.Body, "nope")
			assert.ErrorIs(t, err, generation.ErrAPI)
			assert.NotContains(t, err.Error(), "nope")
		})
	}
}

func TestSendChatCompletion_SchemaErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"no choices", `{"choices":[]}`},
		{"empty content", `{"choices":[{"message":{"content":""}}]}`},
		{"null content", `{"choices":[{"message":{"content":null}}]}`},
		{"content not json", `{"choices":[{"message":{"content":"Sure! Here are your flashcards"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			var out ChatResponse
			err := newTestClient(t, srv, nil).SendChatCompletion(context.Background(), "s", "u", nil, &out)
			assert.ErrorIs(t, err, generation.ErrSchemaValidation)
		})
	}
}

func TestSendChatCompletion_ContentVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"object content", `{"choices":[{"message":{"content":{"reply":"obj"}}}]}`},
		{"fenced content", `{"choices":[{"message":{"content":"` + "```json\\n{\\\"reply\\\":\\\"obj\\\"}\\n```" + `"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			var out ChatResponse
			require.NoError(t, newTestClient(t, srv, nil).SendChatCompletion(context.Background(), "s", "u", nil, &out))
			assert.Equal(t, "obj", out.Reply)
		})
	}
}

func TestSendChatCompletion_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{
		APIKey:     "k",
		APIURL:     url,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		HTTPClient: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
	})
	require.NoError(t, err)

	err = c.SendChatCompletion(context.Background(), "s", "u", nil, nil)
	assert.ErrorIs(t, err, generation.ErrNetwork)
	assert.Equal(t, generation.CodeNetwork, generation.ErrorCode(err))
}

func TestSendChatCompletion_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	var calls atomic.Int32
	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.MaxRetries = 1
		cfg.HTTPClient = &http.Client{Transport: countingTransport{next: srv.Client().Transport, calls: &calls}}
	})

	err := c.SendChatCompletion(context.Background(), "s", "u", nil, nil)
	assert.ErrorIs(t, err, generation.ErrTimeout)
	assert.Equal(t, generation.CodeTimeout, generation.ErrorCode(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendChatCompletion_CancelDuringRetryWait(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) {
		cfg.MaxRetries = 5
		cfg.RetryDelay = time.Hour
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := c.SendChatCompletion(ctx, "s", "u", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

type countingTransport struct {
	next  http.RoundTripper
	calls *atomic.Int32
}

func (c countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.next.RoundTrip(r)
}
