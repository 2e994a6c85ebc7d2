// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assess scores a candidate idea along three independent axes:
// novelty and doability, judged by a generative backend against the
// idea's related literature, and topic match, a pure lexical comparison
// with the user's declared interests.
//
// The model-backed assessors never fail. Any backend or parse error
// yields the neutral default with Status set to degraded and the cause in
// Reason. A reply that parses but lacks a usable score keeps its other
// fields, takes the neutral score, and is likewise marked degraded.
package assess

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// Option configures an assessor.
type Option func(*options)

type options struct {
	log     zerolog.Logger
	metrics *observability.Metrics
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used to report degradations.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics counts degradations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func (o options) degraded(component string, idea types.Idea, reason string) {
	o.metrics.RecordDegradation(component)
	o.log.Warn().
		Str("component", component).
		Str("idea", idea.Title).
		Str("reason", reason).
		Msg("assessment degraded to neutral default")
}

// score is a 1-5 rating as returned by a model. Models emit numbers,
// numeric strings, or nothing; set records whether a value was present.
type score struct {
	value float64
	set   bool
}

func (s *score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		s.value, s.set = f, true
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("score is neither number nor string: %s", data)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return fmt.Errorf("score %q is not numeric", str)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("score %q is not finite", str)
	}
	s.value, s.set = f, true
	return nil
}

// errNoScore marks a reply whose qualitative fields parsed but whose score
// is absent. The assessment keeps those fields with the neutral score.
var errNoScore = errors.New("score missing")

// clamp bounds v to the 1-5 scale. NaN maps to the neutral score.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return types.NeutralScore
	}
	return math.Max(types.MinScore, math.Min(types.MaxScore, v))
}

// normalizeChoice returns the allowed value equal to v ignoring case and
// surrounding space, or types.Unknown.
func normalizeChoice(v string, allowed ...string) string {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	return types.Unknown
}

func truncate(s string, n int) string {
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
