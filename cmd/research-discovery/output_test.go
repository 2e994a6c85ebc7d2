// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-discovery/pkg/types"
)

func sampleResult() types.RankingResult {
	syn := types.LiteratureSynthesis{
		Overview:  "Two strands of prior work.",
		KeyPapers: []types.KeyPaper{{PaperIndex: 1, Category: types.CategoryFoundational}, {PaperIndex: 9, Category: types.CategoryGap}},
		Status:    types.StatusAssessed,
	}
	return types.RankingResult{
		TopIdeas: []types.ScoredIdea{{
			Idea:            types.Idea{Title: "Graph priors for retrieval", Description: "Use citation graphs as priors."},
			Papers:          []types.PaperRecord{{Title: "Citation graphs in IR"}},
			Novelty:         types.NoveltyAssessment{NoveltyScore: 4, Gap: "No dense retrievers use them."},
			Doability:       types.DoabilityAssessment{DoabilityScore: 3},
			TopicMatchScore: 5,
			CompositeScore:  3.9,
			Synthesis:       &syn,
		}},
		TotalIdeasAnalyzed: 7,
	}
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	printRanking(&buf, sampleResult())
	out := buf.String()

	assert.Contains(t, out, "Graph priors for retrieval")
	assert.Contains(t, out, "3.90")
	assert.Contains(t, out, "1 finalists from 7 ideas")
	assert.Contains(t, out, "Literature: Two strands of prior work.")
	assert.Contains(t, out, "[Foundational] Citation graphs in IR")
	assert.NotContains(t, out, "[Gap]", "out-of-range key paper is skipped")
}

func TestPrintResultsJSON(t *testing.T) {
	r := sampleResult()
	a := types.Analysis{ID: "a1", Status: types.AnalysisComplete, Ranking: &r}

	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, a, true))

	var got types.Analysis
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "a1", got.ID)
	require.NotNil(t, got.Ranking)
	assert.Equal(t, 7, got.Ranking.TotalIdeasAnalyzed)
}

func TestPrintResultsWithoutRanking(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, types.Analysis{ID: "a2", Status: types.AnalysisError, Topics: []string{"nlp"}}, false))
	assert.Contains(t, buf.String(), "No ranking stored.")
	assert.Contains(t, buf.String(), "Topics: nlp")
}
