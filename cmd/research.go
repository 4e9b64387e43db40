package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keyscout/keyscout/internal/api"
	"github.com/keyscout/keyscout/internal/config"
	"github.com/keyscout/keyscout/internal/crawl"
	openaiembed "github.com/keyscout/keyscout/internal/embed/openai"
	"github.com/keyscout/keyscout/internal/fetch"
	"github.com/keyscout/keyscout/internal/input"
	"github.com/keyscout/keyscout/internal/logging"
	"github.com/keyscout/keyscout/internal/pipeline"
	"github.com/keyscout/keyscout/internal/report"
	"github.com/keyscout/keyscout/internal/similarity"
	"github.com/keyscout/keyscout/internal/summary"
)

// newResearchCmd creates and configures the 'research' subcommand. It runs
// the full pipeline: crawl the seeds, score and filter pages against the
// keywords, group and summarize, and write the Markdown report.
func newResearchCmd() *cobra.Command {
	var (
		urlsFile, keywordsFile string
		overrides              researchOverrides
	)

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Runs a keyword research crawl and writes a report",
		Long: `Crawls the seed URLs from the urls file, scores every page against
the keyword definitions from the keywords file, and renders the grouped
findings as a Markdown report.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides.changed = cmd.Flags().Changed
			return runResearch(cmd.Context(), urlsFile, keywordsFile, overrides)
		},
	}

	cmd.Flags().StringVar(&urlsFile, "urls", "urls.txt", "file with one seed URL per line")
	cmd.Flags().StringVar(&keywordsFile, "keywords", "keywords.txt", "file with 'keyword: description' lines")
	cmd.Flags().IntVar(&overrides.maxDepth, "max-depth", 0, "override crawler.max_depth")
	cmd.Flags().IntVar(&overrides.maxPages, "max-pages", 0, "override crawler.max_pages")
	cmd.Flags().Float64Var(&overrides.threshold, "threshold", 0, "override scoring.similarity_threshold")
	cmd.Flags().StringVar(&overrides.metricsAddr, "metrics-addr", "", "serve /healthz and /metrics on this address during the run")

	return cmd
}

// researchOverrides carries flag values that take precedence over the
// config file when the flag was set explicitly.
type researchOverrides struct {
	maxDepth    int
	maxPages    int
	threshold   float64
	metricsAddr string
	changed     func(name string) bool
}

func (o researchOverrides) apply(cfg config.Config) (config.Config, error) {
	if o.changed == nil {
		return cfg, nil
	}
	if o.changed("max-depth") {
		cfg.Crawler.MaxDepth = o.maxDepth
	}
	if o.changed("max-pages") {
		cfg.Crawler.MaxPages = o.maxPages
	}
	if o.changed("threshold") {
		cfg.Scoring.SimilarityThreshold = o.threshold
	}
	if o.changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runResearch(ctx context.Context, urlsFile, keywordsFile string, overrides researchOverrides) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg, err = overrides.apply(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	seeds, err := input.URLs(urlsFile)
	if err != nil {
		return err
	}
	keywords, err := input.Keywords(keywordsFile)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := api.NewServer(logger)
		go func() {
			if serr := srv.Serve(ctx, cfg.Metrics.Addr); serr != nil && !errors.Is(serr, context.Canceled) {
				logger.Warn("observability server stopped", zap.Error(serr))
			}
		}()
	}

	runner, err := buildRunner(cfg, logger)
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, pipeline.Request{
		Seeds:    seeds,
		Keywords: keywords,
		MaxDepth: cfg.Crawler.MaxDepth,
		MaxPages: cfg.Crawler.MaxPages,
		Delay:    cfg.Crawler.Delay(),
	})
	if err != nil {
		return fmt.Errorf("run research: %w", err)
	}

	return writeReport(cfg.Report, logger, result)
}

// buildRunner assembles the pipeline from configuration: the resilient
// fetch stack, the crawler, the configured scorer, and the configured
// summarizer.
func buildRunner(cfg config.Config, logger *zap.Logger) (*pipeline.Runner, error) {
	collyFetcher := fetch.NewCollyFetcher(cfg.Fetch.Timeout(), logger)
	resilient := fetch.NewResilient(collyFetcher, cfg.Fetch.UserAgents, cfg.Fetch.MaxRetries, logger)
	crawler := crawl.New(resilient, logger)

	scorer, err := buildScorer(cfg)
	if err != nil {
		return nil, err
	}
	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		return nil, err
	}

	return pipeline.New(crawler, scorer, summarizer, cfg.Scoring.SimilarityThreshold, logger), nil
}

func buildScorer(cfg config.Config) (similarity.Scorer, error) {
	switch cfg.Scoring.Strategy {
	case config.StrategyEmbedding:
		embedder, err := openaiembed.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("init embedding backend: %w", err)
		}
		return similarity.NewEmbeddingScorer(embedder)
	default:
		return similarity.NewLexical(), nil
	}
}

func buildSummarizer(cfg config.Config) (summary.Summarizer, error) {
	switch cfg.Summary.Strategy {
	case config.SummarizerLLM:
		clientCfg := goopenai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			clientCfg.BaseURL = cfg.OpenAI.BaseURL
		}
		return summary.NewLLM(goopenai.NewClientWithConfig(clientCfg), cfg.OpenAI.ChatModel)
	default:
		return summary.NewExtractive(), nil
	}
}

func writeReport(cfg config.ReportConfig, logger *zap.Logger, result pipeline.Result) error {
	var sinks []io.Writer
	var path string

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		path = filepath.Join(cfg.OutputDir, "report-"+result.Metadata.RunID+".md")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		sinks = append(sinks, f)
	}
	if cfg.Stdout || len(sinks) == 0 {
		sinks = append(sinks, os.Stdout)
	}

	if err := report.NewMarkdownWriter(io.MultiWriter(sinks...)).Write(result.Metadata, result.Groups); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if path != "" {
		logger.Info("report written", zap.String("path", path))
	}
	return nil
}
