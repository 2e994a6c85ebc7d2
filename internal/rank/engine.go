// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank turns a batch of candidate ideas into a short, diverse list
// of finalists. Each idea is enriched with literature, scored on novelty,
// doability, and topic match, and given a weighted composite score; the
// batch is sorted and a diverse top N is selected and synthesized.
package rank

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-discovery/internal/assess"
	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/internal/search"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// ErrNoIdeas is returned when Rank is called with an empty batch.
var ErrNoIdeas = errors.New("no ideas to rank")

// Searcher finds literature for a query. Implementations never fail.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) types.SearchOutcome
}

// NoveltyAssessor judges how explored an idea is.
type NoveltyAssessor interface {
	Assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.NoveltyAssessment
}

// DoabilityAssessor judges how practical an idea is.
type DoabilityAssessor interface {
	Assess(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.DoabilityAssessment
}

// Synthesizer summarizes a finalist's literature.
type Synthesizer interface {
	Synthesize(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.LiteratureSynthesis
}

// Engine ranks ideas. Ideas are processed one at a time in input order;
// only the two assessments of a single idea run concurrently.
type Engine struct {
	searcher    Searcher
	novelty     NoveltyAssessor
	doability   DoabilityAssessor
	synthesizer Synthesizer

	cfg         types.RankingConfig
	resultLimit int

	log      zerolog.Logger
	metrics  *observability.Metrics
	progress io.Writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics records scored ideas on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithProgress writes one line per scored idea to w.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) { e.progress = w }
}

// WithResultLimit sets how many papers are requested per idea (default 20).
func WithResultLimit(n int) Option {
	return func(e *Engine) { e.resultLimit = n }
}

// NewEngine wires the collaborators. A zero cfg.Weights uses the default
// 0.3/0.4/0.3 blend, non-positive TopN and RetainedPapers fall back to the
// defaults, and a zero MaxSharedTitleWords means the default of 3. Pass
// types.NoSharedTitleWords to reject any shared title word.
func NewEngine(s Searcher, n NoveltyAssessor, d DoabilityAssessor, syn Synthesizer, cfg types.RankingConfig, opts ...Option) *Engine {
	defaults := types.DefaultPipelineConfig().Ranking
	if cfg.Weights == (types.Weights{}) {
		cfg.Weights = defaults.Weights
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaults.TopN
	}
	if cfg.RetainedPapers <= 0 {
		cfg.RetainedPapers = defaults.RetainedPapers
	}
	switch {
	case cfg.MaxSharedTitleWords == 0:
		cfg.MaxSharedTitleWords = defaults.MaxSharedTitleWords
	case cfg.MaxSharedTitleWords < 0:
		cfg.MaxSharedTitleWords = 0
	}

	e := &Engine{
		searcher:    s,
		novelty:     n,
		doability:   d,
		synthesizer: syn,
		cfg:         cfg,
		resultLimit: types.DefaultPipelineConfig().Search.ResultLimit,
		log:         zerolog.Nop(),
		progress:    io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rank scores every idea, sorts by composite score, selects a diverse top
// N, and synthesizes the literature of each finalist.
//
// The context is checked before each idea. When it ends, Rank returns the
// ranking of the ideas completed so far, without syntheses, together with
// the context error.
func (e *Engine) Rank(ctx context.Context, ideas []types.Idea, topics []string) (types.RankingResult, error) {
	if len(ideas) == 0 {
		return types.RankingResult{}, ErrNoIdeas
	}

	scored := make([]types.ScoredIdea, 0, len(ideas))
	var runErr error
	for i, idea := range ideas {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		si := e.scoreIdea(ctx, i, idea, topics)
		if err := ctx.Err(); err != nil {
			// Assessments made while cancelling are degraded, not real.
			runErr = err
			break
		}
		scored = append(scored, si)
		fmt.Fprintf(e.progress, "[%d/%d] %s: composite %.2f (novelty %.1f, doability %.1f, topic %.1f)\n",
			i+1, len(ideas), idea.Title, si.CompositeScore,
			si.Novelty.NoveltyScore, si.Doability.DoabilityScore, si.TopicMatchScore)
	}

	SortByComposite(scored)
	top := SelectDiverse(scored, e.cfg.TopN, e.cfg.MaxSharedTitleWords)

	if runErr == nil {
		for i := range top {
			if err := ctx.Err(); err != nil {
				runErr = err
				break
			}
			syn := e.synthesizer.Synthesize(ctx, top[i].Idea, top[i].Papers)
			top[i].Synthesis = &syn
		}
	}
	if runErr != nil {
		for i := range top {
			top[i].Synthesis = nil
		}
		e.log.Warn().Err(runErr).Int("completed", len(scored)).Int("total", len(ideas)).Msg("ranking interrupted")
	}

	return types.RankingResult{
		TopIdeas:           top,
		TotalIdeasAnalyzed: len(scored),
	}, runErr
}

func (e *Engine) scoreIdea(ctx context.Context, i int, idea types.Idea, topics []string) types.ScoredIdea {
	log := observability.WithIdea(e.log, i+1, idea.Title)

	found := e.searcher.Search(ctx, search.BuildQuery(idea), e.resultLimit)

	var (
		novelty   types.NoveltyAssessment
		doability types.DoabilityAssessment
		g         errgroup.Group
	)
	g.Go(func() error {
		novelty = e.novelty.Assess(ctx, idea, found.Papers)
		return nil
	})
	g.Go(func() error {
		doability = e.doability.Assess(ctx, idea, found.Papers)
		return nil
	})
	_ = g.Wait()

	topic := assess.TopicMatch(idea, topics)
	composite := Composite(e.cfg.Weights, novelty.NoveltyScore, doability.DoabilityScore, topic)

	retained := found.Papers
	if len(retained) > e.cfg.RetainedPapers {
		retained = retained[:e.cfg.RetainedPapers]
	}
	retained = append([]types.PaperRecord{}, retained...)

	e.metrics.RecordScoredIdea(composite)
	log.Info().
		Str("search_status", string(found.Status)).
		Int("papers", len(found.Papers)).
		Float64("novelty", novelty.NoveltyScore).
		Str("novelty_status", string(novelty.Status)).
		Float64("doability", doability.DoabilityScore).
		Str("doability_status", string(doability.Status)).
		Float64("topic_match", topic).
		Float64("composite", composite).
		Msg("idea scored")

	return types.ScoredIdea{
		Idea:            idea,
		Papers:          retained,
		Novelty:         novelty,
		Doability:       doability,
		TopicMatchScore: topic,
		CompositeScore:  composite,
	}
}

// Composite blends the three axis scores with w.
func Composite(w types.Weights, novelty, doability, topic float64) float64 {
	return w.Novelty*novelty + w.Doability*doability + w.TopicMatch*topic
}
