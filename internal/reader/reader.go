// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reader turns a paper's text into a structured extraction and a
// batch of candidate follow-up ideas. Both steps call a generative backend
// and degrade to empty results rather than failing.
package reader

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/llm"
	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/internal/payload"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// MaxPaperChars bounds how much paper text is sent for concept extraction.
const MaxPaperChars = 15000

// UntitledIdea replaces a missing idea title.
const UntitledIdea = "Untitled Idea"

// Extraction is the structured reading of a paper.
type Extraction struct {
	Summary     string   `json:"summary"`
	Concepts    []string `json:"concepts"`
	Findings    []string `json:"findings"`
	Limitations []string `json:"limitations"`
	Datasets    []string `json:"datasets"`
	FutureWork  []string `json:"future_work"`
}

func (e Extraction) withEmptyLists() Extraction {
	for _, l := range []*[]string{&e.Concepts, &e.Findings, &e.Limitations, &e.Datasets, &e.FutureWork} {
		if *l == nil {
			*l = []string{}
		}
	}
	return e
}

// Reader runs concept extraction and idea generation.
type Reader struct {
	gen     llm.Generator
	log     zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// WithMetrics counts degradations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

// New returns a Reader backed by gen.
func New(gen llm.Generator, opts ...Option) *Reader {
	r := &Reader{gen: gen, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analyze extracts concepts from text and generates ideas for topics.
// The ideas list is empty when generation failed.
func (r *Reader) Analyze(ctx context.Context, text string, topics []string) types.ReaderOutput {
	ex := r.ExtractConcepts(ctx, text)
	ideas := r.GenerateIdeas(ctx, ex, topics)
	return types.ReaderOutput{
		Summary:     ex.Summary,
		Concepts:    ex.Concepts,
		Findings:    ex.Findings,
		Limitations: ex.Limitations,
		Datasets:    ex.Datasets,
		FutureWork:  ex.FutureWork,
		Ideas:       ideas,
	}
}

// ExtractConcepts reads the first MaxPaperChars characters of text. On any
// backend or parse failure it returns an empty extraction.
func (r *Reader) ExtractConcepts(ctx context.Context, text string) Extraction {
	prompt, err := render(extractPromptTmpl, struct{ Text string }{head(text, MaxPaperChars)})
	if err == nil {
		var out string
		if out, err = r.gen.Generate(ctx, prompt); err == nil {
			var ex Extraction
			if err = payload.DecodeObject(out, &ex); err == nil {
				return ex.withEmptyLists()
			}
		}
	}
	r.degraded("extraction", err)
	return Extraction{}.withEmptyLists()
}

type ideaResponse struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Rationale   *string  `json:"rationale"`
	TopicTags   []string `json:"topic_tags"`
}

// GenerateIdeas asks for eight to ten follow-up ideas. Missing fields are
// filled with defaults. On failure it returns an empty, non-nil list.
func (r *Reader) GenerateIdeas(ctx context.Context, ex Extraction, topics []string) []types.Idea {
	ideas, err := r.generateIdeas(ctx, ex, topics)
	if err != nil {
		r.degraded("ideas", err)
		return []types.Idea{}
	}
	return ideas
}

func (r *Reader) generateIdeas(ctx context.Context, ex Extraction, topics []string) ([]types.Idea, error) {
	prompt, err := render(ideasPromptTmpl, ideasPromptData{
		Summary:     ex.Summary,
		Concepts:    strings.Join(firstN(ex.Concepts, 10), ", "),
		Findings:    strings.Join(ex.Findings, ", "),
		Limitations: strings.Join(ex.Limitations, ", "),
		FutureWork:  strings.Join(ex.FutureWork, ", "),
		Topics:      strings.Join(topics, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	out, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating: %w", err)
	}

	var resp []ideaResponse
	if err := payload.DecodeArray(out, &resp); err != nil {
		return nil, err
	}

	ideas := make([]types.Idea, 0, len(resp))
	for _, ir := range resp {
		idea := types.Idea{
			Title:       UntitledIdea,
			Description: deref(ir.Description),
			Rationale:   deref(ir.Rationale),
			TopicTags:   ir.TopicTags,
		}
		if t := strings.TrimSpace(deref(ir.Title)); t != "" {
			idea.Title = t
		}
		if idea.TopicTags == nil {
			idea.TopicTags = []string{}
		}
		ideas = append(ideas, idea)
	}
	r.log.Debug().Int("ideas", len(ideas)).Msg("ideas generated")
	return ideas, nil
}

func (r *Reader) degraded(step string, err error) {
	r.metrics.RecordDegradation("reader_" + step)
	r.log.Warn().Err(err).Str("step", step).Msg("reader step degraded to empty result")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// head returns at most n leading characters of s.
func head(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
