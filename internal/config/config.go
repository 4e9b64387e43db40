// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Scoring strategy names accepted by the config layer.
const (
	StrategyLexical   = "lexical"
	StrategyEmbedding = "embedding"
)

// Summarizer names accepted by the config layer.
const (
	SummarizerExtractive = "extractive"
	SummarizerLLM        = "llm"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Summary SummaryConfig `mapstructure:"summary"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Report  ReportConfig  `mapstructure:"report"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl bounds and politeness pacing.
type CrawlerConfig struct {
	MaxDepth     int `mapstructure:"max_depth"`
	MaxPages     int `mapstructure:"max_pages"`
	DelaySeconds int `mapstructure:"delay_seconds"`
}

// FetchConfig configures the resilient fetch layer.
type FetchConfig struct {
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxRetries     int      `mapstructure:"max_retries"`
	UserAgents     []string `mapstructure:"user_agents"`
}

// ScoringConfig selects and tunes the similarity scorer.
type ScoringConfig struct {
	Strategy            string  `mapstructure:"strategy"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// SummaryConfig selects the group summarizer.
type SummaryConfig struct {
	Strategy string `mapstructure:"strategy"`
}

// OpenAIConfig holds credentials for the embedding and LLM backends.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
}

// ReportConfig controls where the markdown report lands.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Stdout    bool   `mapstructure:"stdout"`
}

// MetricsConfig enables the optional observability listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Delay returns the politeness delay as a duration.
func (c CrawlerConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KEYSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_depth", 2)
	v.SetDefault("crawler.max_pages", 50)
	v.SetDefault("crawler.delay_seconds", 1)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("scoring.strategy", StrategyLexical)
	v.SetDefault("scoring.similarity_threshold", 0.3)
	v.SetDefault("summary.strategy", SummarizerExtractive)
	v.SetDefault("report.output_dir", "outputs")
	v.SetDefault("report.stdout", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler.max_depth must be >= 0")
	}
	if c.Crawler.MaxPages < 1 {
		return fmt.Errorf("crawler.max_pages must be >= 1")
	}
	if c.Crawler.DelaySeconds < 0 {
		return fmt.Errorf("crawler.delay_seconds must be >= 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must be >= 0")
	}
	if c.Scoring.SimilarityThreshold < 0 || c.Scoring.SimilarityThreshold > 1 {
		return fmt.Errorf("scoring.similarity_threshold must be in [0, 1]")
	}
	switch c.Scoring.Strategy {
	case StrategyLexical:
	case StrategyEmbedding:
		// The embedding backend is explicit configuration, never a silent
		// runtime fallback.
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("scoring.strategy %q requires openai.api_key", c.Scoring.Strategy)
		}
	default:
		return fmt.Errorf("scoring.strategy must be %q or %q", StrategyLexical, StrategyEmbedding)
	}
	switch c.Summary.Strategy {
	case SummarizerExtractive:
	case SummarizerLLM:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("summary.strategy %q requires openai.api_key", c.Summary.Strategy)
		}
	default:
		return fmt.Errorf("summary.strategy must be %q or %q", SummarizerExtractive, SummarizerLLM)
	}
	return nil
}
