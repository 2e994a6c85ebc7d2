// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-discovery pipeline:
// candidate ideas, the literature records found for them, the three
// assessments that score them, and the ranked result.
package types

// Idea is a candidate follow-up research direction produced by the reader
// stage. It is treated as immutable once it enters ranking.
type Idea struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Rationale   string   `json:"rationale" yaml:"rationale"`
	TopicTags   []string `json:"topic_tags" yaml:"topic_tags"`
}

// AssessmentStatus distinguishes a real judgment from the neutral fallback
// substituted when the generative backend could not produce one.
type AssessmentStatus string

const (
	StatusAssessed AssessmentStatus = "assessed"
	StatusDegraded AssessmentStatus = "degraded"
)

// NeutralScore is the midpoint of the 1-5 scale, used whenever an external
// judgment is unavailable.
const NeutralScore = 3.0

// Score bounds shared by every axis.
const (
	MinScore = 1.0
	MaxScore = 5.0
)

// Exploration levels reported by the novelty assessor.
const (
	ExploredYes       = "Yes"
	ExploredPartially = "Partially"
	ExploredNo        = "No"
	Unknown           = "Unknown"
)

// Research maturity levels reported by the novelty assessor.
const (
	MaturityUnexplored = "Unexplored"
	MaturityEmerging   = "Emerging"
	MaturityActive     = "Active"
	MaturitySaturated  = "Saturated"
)

// NoveltyAssessment records how explored an idea already is.
type NoveltyAssessment struct {
	Explored     string           `json:"explored" yaml:"explored"`
	Maturity     string           `json:"maturity" yaml:"maturity"`
	Gap          string           `json:"gap" yaml:"gap"`
	NoveltyScore float64          `json:"novelty_score" yaml:"novelty_score"`
	Status       AssessmentStatus `json:"status" yaml:"status"`
	Reason       string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// DefaultNovelty returns the neutral novelty assessment with the given
// degradation reason.
func DefaultNovelty(reason string) NoveltyAssessment {
	return NoveltyAssessment{
		Explored:     Unknown,
		Maturity:     Unknown,
		Gap:          "Unable to assess",
		NoveltyScore: NeutralScore,
		Status:       StatusDegraded,
		Reason:       reason,
	}
}

// DoabilityAssessment records how practical an idea is to pursue.
type DoabilityAssessment struct {
	DataAvailability string           `json:"data_availability" yaml:"data_availability"`
	Methodology      string           `json:"methodology" yaml:"methodology"`
	Timeline         string           `json:"timeline" yaml:"timeline"`
	ExpertiseLevel   string           `json:"expertise_level" yaml:"expertise_level"`
	DoabilityScore   float64          `json:"doability_score" yaml:"doability_score"`
	Status           AssessmentStatus `json:"status" yaml:"status"`
	Reason           string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// DefaultDoability returns the neutral doability assessment with the given
// degradation reason.
func DefaultDoability(reason string) DoabilityAssessment {
	return DoabilityAssessment{
		DataAvailability: Unknown,
		Methodology:      Unknown,
		Timeline:         Unknown,
		ExpertiseLevel:   Unknown,
		DoabilityScore:   NeutralScore,
		Status:           StatusDegraded,
		Reason:           reason,
	}
}

// Key paper categories used by the literature synthesis.
const (
	CategoryFoundational = "Foundational"
	CategoryRecent       = "Recent"
	CategoryGap          = "Gap"
)

// KeyPaper points at one entry of the idea's paper list. PaperIndex is
// 1-based.
type KeyPaper struct {
	PaperIndex int    `json:"paper_index" yaml:"paper_index"`
	Category   string `json:"category" yaml:"category"`
	Summary    string `json:"summary" yaml:"summary"`
}

// LiteratureSynthesis is the structured summary produced for each finalist.
type LiteratureSynthesis struct {
	Overview          string           `json:"overview" yaml:"overview"`
	KeyPapers         []KeyPaper       `json:"key_papers" yaml:"key_papers"`
	WhatsMissing      string           `json:"whats_missing" yaml:"whats_missing"`
	SuggestedApproach string           `json:"suggested_approach" yaml:"suggested_approach"`
	Status            AssessmentStatus `json:"status" yaml:"status"`
	Reason            string           `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// DefaultSynthesis returns the neutral synthesis with the given degradation
// reason.
func DefaultSynthesis(reason string) LiteratureSynthesis {
	return LiteratureSynthesis{
		Overview:          "Unable to synthesize",
		KeyPapers:         []KeyPaper{},
		WhatsMissing:      "Unable to assess",
		SuggestedApproach: "Unable to provide",
		Status:            StatusDegraded,
		Reason:            reason,
	}
}

// ScoredIdea is an idea enriched with its literature and assessments.
// CompositeScore is always the weighted blend of the three axis scores.
type ScoredIdea struct {
	Idea            Idea                 `json:"idea" yaml:"idea"`
	Papers          []PaperRecord        `json:"papers" yaml:"papers"`
	Novelty         NoveltyAssessment    `json:"novelty_assessment" yaml:"novelty_assessment"`
	Doability       DoabilityAssessment  `json:"doability_assessment" yaml:"doability_assessment"`
	TopicMatchScore float64              `json:"topic_match_score" yaml:"topic_match_score"`
	CompositeScore  float64              `json:"composite_score" yaml:"composite_score"`
	Synthesis       *LiteratureSynthesis `json:"literature_synthesis,omitempty" yaml:"literature_synthesis,omitempty"`
}

// RankingResult is the output of ranking a batch of ideas.
type RankingResult struct {
	TopIdeas           []ScoredIdea `json:"top_ideas" yaml:"top_ideas"`
	TotalIdeasAnalyzed int          `json:"total_ideas_analyzed" yaml:"total_ideas_analyzed"`
}
