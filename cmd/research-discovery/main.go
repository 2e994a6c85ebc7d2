// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-discovery CLI.
// It reads a paper, generates follow-up research ideas, ranks them against
// the literature, and serves stored analyses over HTTP.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-discovery/internal/observability"
	"github.com/pdiddy/research-discovery/internal/secrets"
	"github.com/pdiddy/research-discovery/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state prepared in PersistentPreRunE.
var (
	appConfig types.PipelineConfig
	logger    = zerolog.Nop()
	metrics   *observability.Metrics
)

// rootCmd is the base command for the research-discovery CLI.
var rootCmd = &cobra.Command{
	Use:   "research-discovery",
	Short: "Generate and rank follow-up research ideas from a paper",
	Long: `research-discovery reads a research paper, generates candidate follow-up
ideas, and ranks them by novelty, doability, and match with your topics.
Each idea is checked against the literature from arXiv, Semantic Scholar,
or OpenAlex; the three best, mutually distinct ideas get a short literature
synthesis.

Analyses are stored in a local SQLite database and can be inspected with
status, results, papers, and export, or served over HTTP with serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger = observability.NewLogger(cfg.Logging, os.Stderr)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("secrets", keys).Msg("loaded secrets")
		}
		secrets.Apply(&cfg, s)

		if err := cfg.Validate(); err != nil {
			return err
		}
		appConfig = cfg
		metrics = observability.NewMetrics()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("metrics_file")
		if path == "" {
			return nil
		}
		if err := metrics.WriteTextfile(path); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./research-discovery.yaml or ~/.config/research-discovery/research-discovery.yaml)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error, off")
	pf.String("log-format", "", "log format: console or json")
	pf.String("db", "", "SQLite database path")
	pf.String("metrics-file", "", "write Prometheus metrics to this file on exit")

	viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	viper.BindPFlag("store.path", pf.Lookup("db"))
	viper.BindPFlag("metrics_file", pf.Lookup("metrics-file"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-discovery")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-discovery"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_DISCOVERY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), types.DefaultPipelineConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
