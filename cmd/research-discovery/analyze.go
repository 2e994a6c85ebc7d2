// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-discovery/internal/acquire"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <paper.pdf | arXiv ID | DOI | URL>",
	Short: "Run the full pipeline on a PDF",
	Long: `Analyze registers the PDF, extracts its text, generates follow-up ideas,
ranks them against the literature for the given topics, and stores the
result. Progress is printed as each stage and idea completes.

The paper may be a local file or an arXiv ID, DOI, or http(s) URL, which
is downloaded first. A DOI prefers the open-access copy OpenAlex knows of.

At least one --topic is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSlice("topic", nil, "research topic of interest (repeatable or comma-separated)")
	analyzeCmd.Flags().Bool("json", false, "print the final results as JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	topics, _ := cmd.Flags().GetStringSlice("topic")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := newPipeline(st, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	pdfPath, cleanup, err := resolvePaper(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := p.Run(ctx, pdfPath, topics)
	if err != nil {
		if id != "" {
			return fmt.Errorf("analysis %s: %w", id, err)
		}
		return err
	}

	a, err := st.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}
	return printResults(os.Stdout, a, jsonOutput)
}

// resolvePaper returns a local path for arg, downloading it when arg is a
// remote identifier rather than an existing file. cleanup removes any
// download once the store has copied it.
func resolvePaper(ctx context.Context, arg string) (string, func(), error) {
	noop := func() {}
	if _, err := os.Stat(arg); err == nil || !acquire.IsRemote(arg) {
		return arg, noop, nil
	}

	dir, err := os.MkdirTemp("", "research-discovery-*")
	if err != nil {
		return "", noop, fmt.Errorf("creating download directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	fmt.Fprintf(os.Stderr, "Fetching %s\n", arg)
	path, err := acquire.New(appConfig.Search, acquire.WithLogger(logger)).Fetch(ctx, arg, dir)
	if err != nil {
		cleanup()
		return "", noop, err
	}
	return path, cleanup, nil
}
