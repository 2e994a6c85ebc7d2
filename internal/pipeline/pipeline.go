// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs a full analysis: register the paper, extract its
// text, read it into candidate ideas, rank them, and persist the result.
// Each stage advances the analysis status so clients can follow progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// ErrNoTopics is returned when an analysis is started without topics.
var ErrNoTopics = errors.New("at least one topic is required")

// ErrNoIdeas marks an analysis whose reader stage produced no ideas.
var ErrNoIdeas = errors.New("no ideas generated from paper")

// Store is the persistence the pipeline needs.
type Store interface {
	CreatePaper(ctx context.Context, srcPath string) (types.UploadedPaper, error)
	CreateAnalysis(ctx context.Context, paperID string, topics []string) (types.Analysis, error)
	UpdateStatus(ctx context.Context, id string, status types.AnalysisStatus) error
	SaveReaderOutput(ctx context.Context, id string, out types.ReaderOutput) error
	SaveRanking(ctx context.Context, id string, result types.RankingResult) error
	FailAnalysis(ctx context.Context, id, msg string) error
}

// Reader turns paper text into candidate ideas.
type Reader interface {
	Analyze(ctx context.Context, text string, topics []string) types.ReaderOutput
}

// Ranker selects the finalists from a batch of ideas.
type Ranker interface {
	Rank(ctx context.Context, ideas []types.Idea, topics []string) (types.RankingResult, error)
}

// TextExtractor returns the plain text of the PDF at path.
type TextExtractor func(path string) (string, error)

// Pipeline wires the stages together.
type Pipeline struct {
	store   Store
	extract TextExtractor
	reader  Reader
	ranker  Ranker

	log      zerolog.Logger
	metrics  *observability.Metrics
	progress io.Writer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics records analysis outcomes on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgress writes one line per stage to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// New returns a Pipeline.
func New(store Store, extract TextExtractor, reader Reader, ranker Ranker, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		extract:  extract,
		reader:   reader,
		ranker:   ranker,
		log:      zerolog.Nop(),
		progress: io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes the PDF at pdfPath for the given topics and returns the id
// of the analysis. Once the analysis is registered, any later failure
// marks it as errored and is returned together with the id.
func (p *Pipeline) Run(ctx context.Context, pdfPath string, topics []string) (string, error) {
	topics = cleanTopics(topics)
	if len(topics) == 0 {
		return "", ErrNoTopics
	}

	paper, err := p.store.CreatePaper(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("registering paper: %w", err)
	}
	a, err := p.store.CreateAnalysis(ctx, paper.ID, topics)
	if err != nil {
		return "", fmt.Errorf("registering analysis: %w", err)
	}

	log := observability.WithAnalysis(p.log, a.ID, paper.ID)
	p.stage(a.ID, types.AnalysisUploaded, paper.Filename)

	if err := p.process(ctx, log, a.ID, paper.Path, topics); err != nil {
		p.metrics.RecordAnalysis(string(types.AnalysisError))
		log.Error().Err(err).Msg("analysis failed")
		fmt.Fprintf(p.progress, "analysis %s failed: %v\n", a.ID, err)
		if ferr := p.store.FailAnalysis(context.WithoutCancel(ctx), a.ID, err.Error()); ferr != nil {
			log.Error().Err(ferr).Msg("recording failure")
		}
		return a.ID, err
	}

	p.metrics.RecordAnalysis(string(types.AnalysisComplete))
	log.Info().Msg("analysis complete")
	p.stage(a.ID, types.AnalysisComplete, "")
	return a.ID, nil
}

func (p *Pipeline) process(ctx context.Context, log zerolog.Logger, id, path string, topics []string) error {
	if err := p.advance(ctx, id, types.AnalysisParsing); err != nil {
		return err
	}
	text, err := p.extract(path)
	if err != nil {
		return fmt.Errorf("extracting text from PDF: %w", err)
	}
	log.Debug().Int("chars", len(text)).Msg("text extracted")

	if err := p.advance(ctx, id, types.AnalysisReading); err != nil {
		return err
	}
	out := p.reader.Analyze(ctx, text, topics)
	if err := p.store.SaveReaderOutput(ctx, id, out); err != nil {
		return fmt.Errorf("saving reader output: %w", err)
	}
	if len(out.Ideas) == 0 {
		return ErrNoIdeas
	}
	log.Info().Int("ideas", len(out.Ideas)).Msg("ideas generated")

	if err := p.advance(ctx, id, types.AnalysisSearching); err != nil {
		return err
	}
	result, err := p.ranker.Rank(ctx, out.Ideas, topics)
	if err != nil {
		return fmt.Errorf("ranking ideas: %w", err)
	}

	if err := p.store.SaveRanking(ctx, id, result); err != nil {
		return fmt.Errorf("saving ranking: %w", err)
	}
	return nil
}

func (p *Pipeline) advance(ctx context.Context, id string, status types.AnalysisStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("updating status to %s: %w", status, err)
	}
	p.stage(id, status, "")
	return nil
}

func (p *Pipeline) stage(id string, status types.AnalysisStatus, detail string) {
	if detail != "" {
		fmt.Fprintf(p.progress, "[%3d%%] %s %s (%s)\n", status.Progress(), id, status, detail)
		return
	}
	fmt.Fprintf(p.progress, "[%3d%%] %s %s\n", status.Progress(), id, status)
}

func cleanTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
