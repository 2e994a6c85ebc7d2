// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides generative-text backends behind a single interface.
// A backend accepts a prompt and returns the model's raw text completion;
// callers are responsible for locating any structured payload in it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/research-discovery/internal/httputil"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// RetryBaseDelay is the initial backoff between attempts on transient API
// failures. It doubles after each retry. Tests shorten it.
var RetryBaseDelay = 2 * time.Second

// ErrMissingAPIKey is returned by NewGenerator when no key is configured.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyCompletion is returned when the provider answers without text.
var ErrEmptyCompletion = errors.New("empty completion")

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient reports whether the failure may succeed on a later call.
func (e *APIError) IsTransient() bool {
	return httputil.IsTransientStatus(e.StatusCode)
}

// FactoryConfig selects and configures a backend.
type FactoryConfig struct {
	Provider   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// FactoryConfigFrom builds a FactoryConfig from the AI section of the
// pipeline configuration. When reader is true the reader model is used.
func FactoryConfigFrom(cfg types.AIConfig, reader bool) FactoryConfig {
	model := cfg.Model
	if reader && cfg.ReaderModel != "" {
		model = cfg.ReaderModel
	}
	return FactoryConfig{
		Provider:   cfg.Provider,
		Model:      model,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}
}

// NewGenerator returns the backend named by cfg.Provider.
func NewGenerator(cfg FactoryConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
	}
	client := &http.Client{Timeout: cfg.Timeout}
	retry := httputil.Policy{
		MaxAttempts: cfg.MaxRetries + 1,
		Delay:       RetryBaseDelay,
		Exponential: true,
	}

	switch cfg.Provider {
	case types.ProviderAnthropic:
		return &ClaudeBackend{APIKey: cfg.APIKey, ModelName: cfg.Model, Client: client, Retry: retry}, nil
	case types.ProviderGemini:
		return &GeminiBackend{APIKey: cfg.APIKey, ModelName: cfg.Model, Client: client, Retry: retry}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (GeneratorFunc) Provider() string { return "func" }

func (GeneratorFunc) Model() string { return "func" }
