// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-discovery/internal/httputil"
	"github.com/pdiddy/research-discovery/pkg/types"
)

var fastRetry = httputil.Policy{MaxAttempts: 3, Delay: time.Millisecond}

func TestClaudeBackend_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "score this idea", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Here: "},{"type":"tool_use"},{"type":"text","text":"{\"novelty_score\":4}"}]}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "test-key", ModelName: "claude-test", Client: ts.Client(), Retry: fastRetry}
	got, err := c.Generate(context.Background(), "score this idea")
	require.NoError(t, err)
	assert.Equal(t, `Here: {"novelty_score":4}`, got)
}

func TestClaudeBackend_ClientError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "k", ModelName: "m", Client: ts.Client(), Retry: fastRetry}
	_, err := c.Generate(context.Background(), "p")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, apiErr.IsTransient())
	assert.Contains(t, apiErr.Message, "bad key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClaudeBackend_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{APIKey: "k", ModelName: "m", Client: ts.Client(), Retry: fastRetry}
	_, err := c.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGeminiBackend_Generate(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "hello", req.Contents[0].Parts[0].Text)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"title\":"},{"text":"\"A\"}]"}]},"finishReason":"STOP"}]}`))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &GeminiBackend{APIKey: "g-key", ModelName: "gemini-test", Client: ts.Client(), Retry: fastRetry}
	got, err := g.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"A"}]`, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGeminiBackend_Blocked(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &GeminiBackend{APIKey: "k", ModelName: "m", Client: ts.Client(), Retry: fastRetry}
	_, err := g.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGeminiBackend_ExhaustsOnServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	g := &GeminiBackend{APIKey: "k", ModelName: "m", Client: ts.Client(), Retry: fastRetry}
	_, err := g.Generate(context.Background(), "p")
	assert.True(t, httputil.IsExhausted(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(FactoryConfig{Provider: types.ProviderAnthropic, Model: "claude-x", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", g.Provider())
	assert.Equal(t, "claude-x", g.Model())

	g, err = NewGenerator(FactoryConfig{Provider: types.ProviderGemini, Model: "gemini-x", APIKey: "k", MaxRetries: 2})
	require.NoError(t, err)
	assert.Equal(t, "gemini", g.Provider())
	assert.Equal(t, 3, g.(*GeminiBackend).Retry.MaxAttempts)

	_, err = NewGenerator(FactoryConfig{Provider: types.ProviderGemini, Model: "m"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewGenerator(FactoryConfig{Provider: "openai", Model: "m", APIKey: "k"})
	assert.Error(t, err)
}

func TestFactoryConfigFrom(t *testing.T) {
	cfg := types.DefaultPipelineConfig().AI
	cfg.APIKey = "k"

	assert.Equal(t, "gemini-2.5-pro", FactoryConfigFrom(cfg, false).Model)
	assert.Equal(t, "gemini-2.5-flash", FactoryConfigFrom(cfg, true).Model)

	cfg.ReaderModel = ""
	assert.Equal(t, "gemini-2.5-pro", FactoryConfigFrom(cfg, true).Model)
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})
	got, err := g.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "echo: x", got)
}
