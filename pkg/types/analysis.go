// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalysisStatus tracks an analysis through the pipeline stages.
type AnalysisStatus string

const (
	AnalysisUploaded  AnalysisStatus = "uploaded"
	AnalysisParsing   AnalysisStatus = "parsing"
	AnalysisReading   AnalysisStatus = "reading"
	AnalysisSearching AnalysisStatus = "searching"
	AnalysisComplete  AnalysisStatus = "complete"
	AnalysisError     AnalysisStatus = "error"
)

// Progress returns the percentage reported to clients for the status.
// AnalysisError has no fixed progress and returns -1.
func (s AnalysisStatus) Progress() int {
	switch s {
	case AnalysisUploaded:
		return 10
	case AnalysisParsing:
		return 20
	case AnalysisReading:
		return 30
	case AnalysisSearching:
		return 50
	case AnalysisComplete:
		return 100
	default:
		return -1
	}
}

// ReaderOutput is the concept extraction and idea generation result for a
// single paper.
type ReaderOutput struct {
	Summary     string   `json:"summary" yaml:"summary"`
	Concepts    []string `json:"concepts" yaml:"concepts"`
	Findings    []string `json:"findings" yaml:"findings"`
	Limitations []string `json:"limitations" yaml:"limitations"`
	Datasets    []string `json:"datasets" yaml:"datasets"`
	FutureWork  []string `json:"future_work" yaml:"future_work"`
	Ideas       []Idea   `json:"ideas" yaml:"ideas"`
}

// Analysis is one run of the pipeline over an uploaded paper.
type Analysis struct {
	ID          string         `json:"id" yaml:"id"`
	PaperID     string         `json:"paper_id" yaml:"paper_id"`
	Topics      []string       `json:"topics" yaml:"topics"`
	Status      AnalysisStatus `json:"status" yaml:"status"`
	Progress    int            `json:"progress" yaml:"progress"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Reader      *ReaderOutput  `json:"reader_output,omitempty" yaml:"reader_output,omitempty"`
	Ranking     *RankingResult `json:"searcher_output,omitempty" yaml:"searcher_output,omitempty"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// RankedIdea is a persisted finalist with its 1-based rank. Scored.Papers
// holds the idea's stored references.
type RankedIdea struct {
	ID         int64      `json:"id" yaml:"id"`
	AnalysisID string     `json:"analysis_id" yaml:"analysis_id"`
	Rank       int        `json:"rank" yaml:"rank"`
	Scored     ScoredIdea `json:"scored" yaml:"scored"`
}
