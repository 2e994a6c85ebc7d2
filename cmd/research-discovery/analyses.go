// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status <analysis-id>",
	Short: "Show the status and progress of an analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := st.GetAnalysis(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-9s  %3d%%\n", a.ID, a.Status, a.Progress)
		if a.Error != "" {
			fmt.Printf("error: %s\n", a.Error)
		}
		return nil
	},
}

// --- results ---

var resultsCmd = &cobra.Command{
	Use:   "results <analysis-id>",
	Short: "Show the ranked ideas of a completed analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := st.GetAnalysis(context.Background(), args[0])
		if err != nil {
			return err
		}
		if a.Status != types.AnalysisComplete {
			return fmt.Errorf("analysis %s is not complete (status %s)", a.ID, a.Status)
		}
		return printResults(os.Stdout, a, jsonOutput)
	},
}

// --- papers ---

var papersCmd = &cobra.Command{
	Use:   "papers [paper-id]",
	Short: "List analyzed papers, or the analyses of one paper",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := context.Background()

		if len(args) == 1 {
			if _, err := st.GetPaper(ctx, args[0]); err != nil {
				return err
			}
			analyses, err := st.ListAnalyses(ctx, args[0])
			if err != nil {
				return err
			}
			for _, a := range analyses {
				fmt.Printf("%s  %-9s  %3d%%  %s  %s\n", a.ID, a.Status, a.Progress,
					a.CreatedAt.Local().Format("2006-01-02 15:04"), strings.Join(a.Topics, ", "))
			}
			fmt.Printf("\n%d analyses\n", len(analyses))
			return nil
		}

		papers, err := st.ListPapers(ctx)
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			fmt.Println("No papers found.")
			return nil
		}
		fmt.Printf("%-36s  %-40s  %-16s  %s\n", "ID", "File", "Uploaded", "Analyses")
		fmt.Println(strings.Repeat("-", 106))
		for _, p := range papers {
			name := p.Filename
			if len(name) > 40 {
				name = name[:37] + "..."
			}
			fmt.Printf("%-36s  %-40s  %-16s  %d\n", p.ID, name,
				p.UploadedAt.Local().Format("2006-01-02 15:04"), p.AnalysisCount)
		}
		fmt.Printf("\n%d papers\n", len(papers))
		return nil
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export <analysis-id>",
	Short: "Export an analysis to YAML or JSON",
	Long: `Export writes everything stored for an analysis (the paper, the reader
output, the ranking, and the finalists with their references) to stdout or
to the file given with --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		w := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			w = f
		}

		ctx := context.Background()
		switch format {
		case "yaml", "":
			err = st.ExportYAML(ctx, args[0], w)
		case "json":
			err = st.ExportJSON(ctx, args[0], w)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		if outPath != "" {
			fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().Bool("json", false, "print the full analysis as JSON")
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("out", "", "write to this file instead of stdout")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(papersCmd)
	rootCmd.AddCommand(exportCmd)
}
