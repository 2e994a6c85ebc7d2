// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// printResults writes the stored outcome of a completed analysis.
func printResults(w io.Writer, a types.Analysis, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	fmt.Fprintf(w, "Analysis %s (%s)\n", a.ID, a.Status)
	fmt.Fprintf(w, "Topics: %s\n", strings.Join(a.Topics, ", "))
	if a.Reader != nil && a.Reader.Summary != "" {
		fmt.Fprintf(w, "\nSummary: %s\n", a.Reader.Summary)
	}
	if a.Ranking == nil {
		fmt.Fprintln(w, "\nNo ranking stored.")
		return nil
	}
	fmt.Fprintln(w)
	printRanking(w, *a.Ranking)
	return nil
}

// printRanking writes the finalists with their scores and syntheses.
func printRanking(w io.Writer, r types.RankingResult) {
	fmt.Fprintf(w, "%-4s  %-50s  %9s  %7s  %9s  %5s\n",
		"Rank", "Idea", "Composite", "Novelty", "Doability", "Topic")
	fmt.Fprintln(w, strings.Repeat("-", 95))

	for i, si := range r.TopIdeas {
		title := si.Idea.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-50s  %9.2f  %7.1f  %9.1f  %5.1f\n",
			i+1, title, si.CompositeScore,
			si.Novelty.NoveltyScore, si.Doability.DoabilityScore, si.TopicMatchScore)
	}
	fmt.Fprintf(w, "\n%d finalists from %d ideas\n", len(r.TopIdeas), r.TotalIdeasAnalyzed)

	for i, si := range r.TopIdeas {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, si.Idea.Title)
		if si.Idea.Description != "" {
			fmt.Fprintf(w, "   %s\n", si.Idea.Description)
		}
		if si.Novelty.Gap != "" {
			fmt.Fprintf(w, "   Gap: %s\n", si.Novelty.Gap)
		}
		if si.Synthesis == nil {
			continue
		}
		fmt.Fprintf(w, "   Literature: %s\n", si.Synthesis.Overview)
		for _, kp := range si.Synthesis.KeyPapers {
			if kp.PaperIndex >= 1 && kp.PaperIndex <= len(si.Papers) {
				fmt.Fprintf(w, "     [%s] %s\n", kp.Category, si.Papers[kp.PaperIndex-1].Title)
			}
		}
		if si.Synthesis.WhatsMissing != "" {
			fmt.Fprintf(w, "   Missing: %s\n", si.Synthesis.WhatsMissing)
		}
		if si.Synthesis.SuggestedApproach != "" {
			fmt.Fprintf(w, "   Approach: %s\n", si.Synthesis.SuggestedApproach)
		}
	}
}
