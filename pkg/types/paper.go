// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"time"
)

// PaperRecord is one normalized literature entry returned by a search
// backend. Records are ephemeral except for the prefix retained on a
// ScoredIdea.
type PaperRecord struct {
	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Abstract is truncated to MaxAbstractLen characters.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year, nil when the source had no usable date.
	Year *int `json:"year" yaml:"year"`

	// Authors holds at most MaxAuthors names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// CitationCount is 0 when the source does not report citations.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// URL is the landing page or identifier URL for the paper.
	URL string `json:"url" yaml:"url"`

	// Source identifies the backend that found this record (e.g. "arxiv").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Limits applied when normalizing search results.
const (
	MaxAbstractLen = 500
	MaxAuthors     = 3
)

// YearString renders the year for prompts, "unknown" when absent.
func (p PaperRecord) YearString() string {
	if p.Year == nil {
		return "unknown"
	}
	return strconv.Itoa(*p.Year)
}

// UploadedPaper is a source PDF registered for analysis.
type UploadedPaper struct {
	ID         string    `json:"id" yaml:"id"`
	Filename   string    `json:"filename" yaml:"filename"`
	Path       string    `json:"path" yaml:"path"`
	SizeBytes  int64     `json:"size_bytes" yaml:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`

	// AnalysisCount is filled by listings.
	AnalysisCount int `json:"analysis_count" yaml:"analysis_count"`
}
