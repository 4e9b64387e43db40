package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 2, cfg.Crawler.MaxDepth)
	require.Equal(t, 50, cfg.Crawler.MaxPages)
	require.Equal(t, time.Second, cfg.Crawler.Delay())
	require.Equal(t, 15*time.Second, cfg.Fetch.Timeout())
	require.Equal(t, 3, cfg.Fetch.MaxRetries)
	require.Equal(t, StrategyLexical, cfg.Scoring.Strategy)
	require.InDelta(t, 0.3, cfg.Scoring.SimilarityThreshold, 1e-9)
	require.Equal(t, SummarizerExtractive, cfg.Summary.Strategy)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyscout.yaml")
	body := []byte(`crawler:
  max_depth: 1
  max_pages: 5
  delay_seconds: 0
scoring:
  similarity_threshold: 0.5
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Crawler.MaxDepth)
	require.Equal(t, 5, cfg.Crawler.MaxPages)
	require.Equal(t, time.Duration(0), cfg.Crawler.Delay())
	require.InDelta(t, 0.5, cfg.Scoring.SimilarityThreshold, 1e-9)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Crawler.MaxDepth = -1
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Crawler.MaxPages = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scoring.SimilarityThreshold = 1.5
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scoring.Strategy = "cosine"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Fetch.MaxRetries = -2
	require.Error(t, cfg.Validate())
}

func TestEmbeddingStrategyRequiresBackend(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Scoring.Strategy = StrategyEmbedding
	require.Error(t, cfg.Validate(), "embedding without an API key is a configuration error")

	cfg.OpenAI.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}

func TestLLMSummarizerRequiresBackend(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Summary.Strategy = SummarizerLLM
	require.Error(t, cfg.Validate())

	cfg.OpenAI.APIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}
