// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesize produces a structured literature synthesis for a
// finalist idea from the papers retrieved for it.
package synthesize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/llm"
	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/internal/payload"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// MaxPapers is the number of papers enumerated in the prompt. Key paper
// indexes refer to this 1-based list.
const MaxPapers = 8

const abstractExcerptLen = 200

var synthesisPromptTmpl = template.Must(template.New("synthesis").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"excerpt": func(s string) string {
		if utf8.RuneCountInString(s) <= abstractExcerptLen {
			return s
		}
		return string([]rune(s)[:abstractExcerptLen])
	},
}).Parse(`Synthesize the literature for this research idea.

Research Idea: {{.Idea.Title}}

Related Papers:
{{range $i, $p := .Papers}}{{if $i}}
{{end}}[{{inc $i}}] {{$p.Title}} ({{$p.YearString}})
{{excerpt $p.Abstract}}...
{{else}}No related papers were found.
{{end}}
Create a synthesis that includes:
1. A brief overview of what has been done (2-3 sentences)
2. Key papers categorized as: Foundational Work, Recent Advances, or Identifies Gaps
3. What's missing or unexplored
4. Suggested approach (methodology, potential datasets, concrete next steps)

Refer to papers by their bracketed number as paper_index.

Return ONLY valid JSON:
{
  "overview": "What has been done...",
  "key_papers": [
    {"paper_index": 1, "category": "Foundational/Recent/Gap", "summary": "2 sentence summary"}
  ],
  "whats_missing": "The specific gap...",
  "suggested_approach": "Concrete next steps..."
}
`))

// Synthesizer asks a generative backend for a literature synthesis.
type Synthesizer struct {
	gen     llm.Generator
	log     zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger used to report degradations.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synthesizer) { s.log = l }
}

// WithMetrics counts degradations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Synthesizer) { s.metrics = m }
}

// New returns a Synthesizer backed by gen.
func New(gen llm.Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{gen: gen, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize never fails. Backend or parse errors yield the neutral
// synthesis with Status degraded. Key papers whose index is outside the
// enumerated list, or whose category is not recognised, are dropped.
func (s *Synthesizer) Synthesize(ctx context.Context, idea types.Idea, papers []types.PaperRecord) types.LiteratureSynthesis {
	if len(papers) > MaxPapers {
		papers = papers[:MaxPapers]
	}
	res, err := s.synthesize(ctx, idea, papers)
	if err != nil {
		s.metrics.RecordDegradation("synthesis")
		s.log.Warn().Str("idea", idea.Title).Err(err).Msg("synthesis degraded to neutral default")
		return types.DefaultSynthesis(err.Error())
	}
	return res
}

type synthesisResponse struct {
	Overview          string        `json:"overview"`
	KeyPapers         []keyPaperRaw `json:"key_papers"`
	WhatsMissing      string        `json:"whats_missing"`
	SuggestedApproach string        `json:"suggested_approach"`
}

type keyPaperRaw struct {
	PaperIndex json.RawMessage `json:"paper_index"`
	Category   string          `json:"category"`
	Summary    string          `json:"summary"`
}

func (s *Synthesizer) synthesize(ctx context.Context, idea types.Idea, papers []types.PaperRecord) (types.LiteratureSynthesis, error) {
	var buf bytes.Buffer
	if err := synthesisPromptTmpl.Execute(&buf, struct {
		Idea   types.Idea
		Papers []types.PaperRecord
	}{idea, papers}); err != nil {
		return types.LiteratureSynthesis{}, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := s.gen.Generate(ctx, buf.String())
	if err != nil {
		return types.LiteratureSynthesis{}, fmt.Errorf("generating: %w", err)
	}

	var resp synthesisResponse
	if err := payload.DecodeObject(text, &resp); err != nil {
		return types.LiteratureSynthesis{}, err
	}

	out := types.LiteratureSynthesis{
		Overview:          strings.TrimSpace(resp.Overview),
		KeyPapers:         []types.KeyPaper{},
		WhatsMissing:      strings.TrimSpace(resp.WhatsMissing),
		SuggestedApproach: strings.TrimSpace(resp.SuggestedApproach),
		Status:            types.StatusAssessed,
	}
	for _, kp := range resp.KeyPapers {
		idx, ok := parseIndex(kp.PaperIndex)
		if !ok || idx < 1 || idx > len(papers) {
			s.log.Debug().Str("idea", idea.Title).RawJSON("paper_index", rawOrNull(kp.PaperIndex)).Msg("dropping key paper with invalid index")
			continue
		}
		category, ok := NormalizeCategory(kp.Category)
		if !ok {
			s.log.Debug().Str("idea", idea.Title).Str("category", kp.Category).Msg("dropping key paper with unknown category")
			continue
		}
		out.KeyPapers = append(out.KeyPapers, types.KeyPaper{
			PaperIndex: idx,
			Category:   category,
			Summary:    strings.TrimSpace(kp.Summary),
		})
	}
	return out, nil
}

// NormalizeCategory maps the labels a model uses ("Foundational Work",
// "Recent Advances", "Identifies Gaps", ...) onto the three categories.
func NormalizeCategory(c string) (string, bool) {
	c = strings.ToLower(c)
	switch {
	case strings.Contains(c, "foundation"):
		return types.CategoryFoundational, true
	case strings.Contains(c, "recent"):
		return types.CategoryRecent, true
	case strings.Contains(c, "gap"):
		return types.CategoryGap, true
	default:
		return "", false
	}
}

// parseIndex accepts an integer, an integral float, or a numeric string.
func parseIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	return n, err == nil
}

func rawOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
