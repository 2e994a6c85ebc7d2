// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables such as RESEARCH_DISCOVERY_SEARCH_BACKEND are seen by Unmarshal.
func setDefaults(v *viper.Viper, d types.PipelineConfig) {
	defaults := map[string]any{
		"search.timeout":                  d.Search.Timeout,
		"search.user_agent":               d.Search.UserAgent,
		"search.backend":                  d.Search.Backend,
		"search.result_limit":             d.Search.ResultLimit,
		"search.max_attempts":             d.Search.MaxAttempts,
		"search.retry_delay":              d.Search.RetryDelay,
		"search.min_interval":             d.Search.MinInterval,
		"search.semantic_scholar_api_key": d.Search.SemanticScholarAPIKey,
		"search.openalex_email":           d.Search.OpenAlexEmail,

		"ai.provider":     d.AI.Provider,
		"ai.model":        d.AI.Model,
		"ai.reader_model": d.AI.ReaderModel,
		"ai.api_key":      d.AI.APIKey,
		"ai.timeout":      d.AI.Timeout,
		"ai.max_retries":  d.AI.MaxRetries,

		"ranking.weights.novelty":        d.Ranking.Weights.Novelty,
		"ranking.weights.doability":      d.Ranking.Weights.Doability,
		"ranking.weights.topic_match":    d.Ranking.Weights.TopicMatch,
		"ranking.top_n":                  d.Ranking.TopN,
		"ranking.max_shared_title_words": d.Ranking.MaxSharedTitleWords,
		"ranking.retained_papers":        d.Ranking.RetainedPapers,

		"store.path":       d.Store.Path,
		"store.upload_dir": d.Store.UploadDir,

		"logging.level":  d.Logging.Level,
		"logging.format": d.Logging.Format,

		"server.address":       d.Server.Address,
		"server.read_timeout":  d.Server.ReadTimeout,
		"server.write_timeout": d.Server.WriteTimeout,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig decodes the merged defaults, config file, environment, and
// flags into a PipelineConfig.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
