// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-discovery/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank <ideas.yaml|ideas.json>",
	Short: "Rank a prepared list of ideas",
	Long: `Rank reads candidate ideas from a YAML or JSON file (a list of objects
with title, description, rationale, and topic_tags) and runs only the ranking
stage: literature search, novelty, doability, topic match, diversity
selection, and synthesis of the finalists. Nothing is stored.

If interrupted, the ideas scored so far are still ranked and printed,
without syntheses.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringSlice("topic", nil, "research topic of interest (repeatable or comma-separated)")
	rankCmd.Flags().Bool("json", false, "print the ranking as JSON")
	rankCmd.Flags().String("out", "", "also write the ranking as YAML to this file")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	topics, _ := cmd.Flags().GetStringSlice("topic")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	outPath, _ := cmd.Flags().GetString("out")

	ideas, err := loadIdeas(args[0])
	if err != nil {
		return err
	}

	engine, err := newEngine(os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	result, rankErr := engine.Rank(ctx, ideas, topics)
	if rankErr != nil && len(result.TopIdeas) == 0 {
		return rankErr
	}

	if outPath != "" {
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printRanking(os.Stdout, result)
	}

	if rankErr != nil {
		return fmt.Errorf("ranking interrupted after %d ideas: %w", result.TotalIdeasAnalyzed, rankErr)
	}
	return nil
}

// loadIdeas reads a list of ideas from a YAML or JSON file. JSON is valid
// YAML, so one decoder serves both.
func loadIdeas(path string) ([]types.Idea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ideas: %w", err)
	}
	var ideas []types.Idea
	if err := yaml.Unmarshal(data, &ideas); err != nil {
		return nil, fmt.Errorf("parsing ideas in %s: %w", path, err)
	}
	if len(ideas) == 0 {
		return nil, errors.New("ideas file contains no ideas")
	}
	return ideas, nil
}
