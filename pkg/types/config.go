package types

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the hard per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-discovery/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Search backend identifiers.
const (
	BackendArxiv           = "arxiv"
	BackendSemanticScholar = "semantic_scholar"
	BackendOpenAlex        = "openalex"
)

// SearchConfig holds settings for the external search adapter.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the bibliographic service: arxiv, semantic_scholar, or openalex.
	Backend string `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=arxiv semantic_scholar openalex"`

	// ResultLimit caps the records fetched per idea (default 20).
	ResultLimit int `json:"result_limit" yaml:"result_limit" mapstructure:"result_limit" validate:"gt=0"`

	// MaxAttempts bounds attempts on transient failures (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts" validate:"gt=0"`

	// RetryDelay is the fixed delay between attempts (default 3s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay" validate:"gte=0"`

	// MinInterval is the mandatory gap after each call before the next one
	// may start (default 3s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval" validate:"gte=0"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// OpenAlexEmail is sent as mailto for the OpenAlex polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// Generative backend providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// AIConfig holds shared settings for stages that call a generative AI API.
type AIConfig struct {
	// Provider selects the backend: anthropic or gemini.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider" validate:"oneof=anthropic gemini"`

	// Model is the AI model identifier used for ranking-stage judgments.
	Model string `json:"model" yaml:"model" mapstructure:"model" validate:"required"`

	// ReaderModel is the model used for concept extraction and idea
	// generation. Empty means Model.
	ReaderModel string `json:"reader_model,omitempty" yaml:"reader_model,omitempty" mapstructure:"reader_model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds each generation request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// MaxRetries is the number of retries on transient API failures (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0"`
}

// Weights are the composite score coefficients. They must sum to 1 so the
// composite stays on the 1-5 scale.
type Weights struct {
	Novelty    float64 `json:"novelty" yaml:"novelty" mapstructure:"novelty" validate:"gte=0,lte=1"`
	Doability  float64 `json:"doability" yaml:"doability" mapstructure:"doability" validate:"gte=0,lte=1"`
	TopicMatch float64 `json:"topic_match" yaml:"topic_match" mapstructure:"topic_match" validate:"gte=0,lte=1"`
}

// DefaultWeights returns the 30/40/30 novelty/doability/topic blend.
func DefaultWeights() Weights {
	return Weights{Novelty: 0.3, Doability: 0.4, TopicMatch: 0.3}
}

// NoSharedTitleWords is the MaxSharedTitleWords value that treats any
// shared title word as a near-duplicate.
const NoSharedTitleWords = -1

// RankingConfig holds settings for the idea ranking engine.
type RankingConfig struct {
	Weights Weights `json:"weights" yaml:"weights" mapstructure:"weights"`

	// TopN is the number of finalists selected (default 3).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n" validate:"gt=0"`

	// MaxSharedTitleWords is the largest title word overlap two finalists
	// may have before the later one is treated as a near-duplicate. Zero
	// means the default 3; NoSharedTitleWords allows no overlap at all.
	MaxSharedTitleWords int `json:"max_shared_title_words" yaml:"max_shared_title_words" mapstructure:"max_shared_title_words" validate:"gte=-1"`

	// RetainedPapers is how many fetched papers are kept per idea (default 8).
	RetainedPapers int `json:"retained_papers" yaml:"retained_papers" mapstructure:"retained_papers" validate:"gt=0"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/research.db").
	Path string `json:"path" yaml:"path" mapstructure:"path" validate:"required"`

	// UploadDir is where source PDFs are copied on registration.
	UploadDir string `json:"upload_dir" yaml:"upload_dir" mapstructure:"upload_dir" validate:"required"`
}

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json console"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address      string        `json:"address" yaml:"address" mapstructure:"address" validate:"required"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	AI      AIConfig      `json:"ai" yaml:"ai" mapstructure:"ai"`
	Ranking RankingConfig `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   15 * time.Second,
				UserAgent: "research-discovery/0.1",
			},
			Backend:     BackendArxiv,
			ResultLimit: 20,
			MaxAttempts: 3,
			RetryDelay:  3 * time.Second,
			MinInterval: 3 * time.Second,
		},
		AI: AIConfig{
			Provider:    ProviderGemini,
			Model:       "gemini-2.5-pro",
			ReaderModel: "gemini-2.5-flash",
			Timeout:     120 * time.Second,
			MaxRetries:  2,
		},
		Ranking: RankingConfig{
			Weights:             DefaultWeights(),
			TopN:                3,
			MaxSharedTitleWords: 3,
			RetainedPapers:      8,
		},
		Store: StoreConfig{
			Path:      "data/research.db",
			UploadDir: "data/uploads",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Address:      ":5001",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

const weightTolerance = 1e-9

// Validate checks field constraints and that the ranking weights sum to 1.
func (c PipelineConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	w := c.Ranking.Weights
	if sum := w.Novelty + w.Doability + w.TopicMatch; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("invalid configuration: ranking weights sum to %g, want 1", sum)
	}
	return nil
}
