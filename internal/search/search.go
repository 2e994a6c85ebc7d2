// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search finds literature related to a candidate idea. An Adapter
// wraps one bibliographic Backend with bounded retries, a rate-limit
// throttle, and record normalization, and never returns an error: every
// failure degrades to an empty result with a status describing why.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/httputil"
	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// ErrMalformed marks a response that cannot be interpreted. It is a data
// problem, so the adapter does not retry it.
var ErrMalformed = errors.New("malformed search response")

// Backend is one bibliographic service. It builds the HTTP request for a
// query and parses the response body into raw records; the adapter owns
// transport, retries, and normalization.
type Backend interface {
	Name() string
	NewRequest(ctx context.Context, query string, limit int) (*http.Request, error)
	Parse(body io.Reader) ([]types.PaperRecord, error)
}

// queryDescriptionPrefix is how much of an idea's description goes into
// its search query.
const queryDescriptionPrefix = 100

// BuildQuery returns the search text for an idea: its title followed by the
// first 100 characters of its description.
func BuildQuery(idea types.Idea) string {
	desc := idea.Description
	if utf8.RuneCountInString(desc) > queryDescriptionPrefix {
		desc = string([]rune(desc)[:queryDescriptionPrefix])
	}
	return strings.TrimSpace(idea.Title + " " + desc)
}

// Adapter searches one backend with retry, throttle, and normalization.
type Adapter struct {
	backend   Backend
	client    *http.Client
	throttle  *httputil.Throttle
	retry     httputil.Policy
	userAgent string
	log       zerolog.Logger
	metrics   *observability.Metrics
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock replaces the throttle clock.
func WithClock(c httputil.Clock) Option {
	return func(a *Adapter) {
		a.throttle = httputil.NewThrottle(a.throttle.Interval(), c)
	}
}

// WithHTTPClient replaces the HTTP client. The client's Timeout is used as is.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithMetrics records search outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter returns an adapter for backend configured from cfg.
func NewAdapter(backend Backend, cfg types.SearchConfig, opts ...Option) *Adapter {
	a := &Adapter{
		backend:  backend,
		client:   &http.Client{Timeout: cfg.Timeout},
		throttle: httputil.NewThrottle(cfg.MinInterval, nil),
		retry: httputil.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
		},
		userAgent: cfg.UserAgent,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Backend returns the name of the wrapped backend.
func (a *Adapter) Backend() string { return a.backend.Name() }

// Search queries the backend and returns at most limit normalized records.
// It waits on the throttle before the call and releases it when the call
// completes, so consecutive searches are always separated by the minimum
// interval.
func (a *Adapter) Search(ctx context.Context, query string, limit int) types.SearchOutcome {
	out := a.search(ctx, query, limit)
	a.metrics.RecordSearch(a.backend.Name(), string(out.Status), out.Attempts, len(out.Papers))

	ev := a.log.Debug()
	if out.Status != types.SearchOK {
		ev = a.log.Warn()
	}
	ev.Str("backend", a.backend.Name()).
		Str("query", query).
		Str("status", string(out.Status)).
		Int("attempts", out.Attempts).
		Int("papers", len(out.Papers)).
		Str("error", out.Err).
		Msg("literature search")
	return out
}

func (a *Adapter) search(ctx context.Context, query string, limit int) types.SearchOutcome {
	if err := a.throttle.Wait(ctx); err != nil {
		return degraded(types.SearchCancelled, 0, err)
	}

	req, err := a.backend.NewRequest(ctx, query, limit)
	if err != nil {
		return degraded(types.SearchMalformed, 0, err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	attempts := 1
	policy := a.retry
	policy.OnRetry = func(attempt int, err error) {
		attempts = attempt + 1
		a.log.Debug().Str("backend", a.backend.Name()).Int("attempt", attempt).Err(err).Msg("retrying search")
	}

	resp, err := httputil.DoWithRetry(ctx, a.client, req, policy)
	defer a.throttle.Release()
	if err != nil {
		var ex *httputil.ExhaustedError
		switch {
		case errors.As(err, &ex):
			return degraded(types.SearchExhausted, ex.Attempts, err)
		case ctx.Err() != nil:
			return degraded(types.SearchCancelled, attempts, err)
		default:
			return degraded(types.SearchExhausted, attempts, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return degraded(types.SearchMalformed, attempts,
			fmt.Errorf("%w: %s returned HTTP %d", ErrMalformed, a.backend.Name(), resp.StatusCode))
	}

	records, err := a.backend.Parse(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return degraded(types.SearchCancelled, attempts, ctx.Err())
		}
		return degraded(types.SearchMalformed, attempts, err)
	}

	return types.SearchOutcome{
		Papers:   normalize(records, limit, a.backend.Name()),
		Status:   types.SearchOK,
		Attempts: attempts,
	}
}

func degraded(status types.SearchStatus, attempts int, err error) types.SearchOutcome {
	return types.SearchOutcome{
		Papers:   []types.PaperRecord{},
		Status:   status,
		Attempts: attempts,
		Err:      err.Error(),
	}
}

// NewBackend returns the backend named in cfg.Backend.
func NewBackend(cfg types.SearchConfig) (Backend, error) {
	switch cfg.Backend {
	case types.BackendArxiv, "":
		return &ArxivBackend{}, nil
	case types.BackendSemanticScholar:
		return &SemanticScholarBackend{APIKey: cfg.SemanticScholarAPIKey}, nil
	case types.BackendOpenAlex:
		return &OpenAlexBackend{Email: cfg.OpenAlexEmail}, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
