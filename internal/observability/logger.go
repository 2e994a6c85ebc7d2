// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the structured logger and the prometheus
// metrics shared by every pipeline stage.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// NewLogger creates a zerolog logger writing to w (stderr when nil). Format
// "console" produces human-readable lines; anything else is JSON.
func NewLogger(cfg types.LoggingConfig, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := w
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithAnalysis adds analysis fields to a logger.
func WithAnalysis(logger zerolog.Logger, analysisID, paperID string) zerolog.Logger {
	return logger.With().
		Str("analysis_id", analysisID).
		Str("paper_id", paperID).
		Logger()
}

// WithIdea adds the idea position and title to a logger.
func WithIdea(logger zerolog.Logger, index int, title string) zerolog.Logger {
	return logger.With().
		Int("idea", index).
		Str("title", title).
		Logger()
}
