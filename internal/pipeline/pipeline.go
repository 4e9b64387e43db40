// Package pipeline orchestrates one research run: crawl, score and filter,
// group and summarize, report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keyscout/keyscout/internal/crawl"
	"github.com/keyscout/keyscout/internal/group"
	"github.com/keyscout/keyscout/internal/report"
	"github.com/keyscout/keyscout/internal/similarity"
	"github.com/keyscout/keyscout/internal/summary"
)

// Crawler runs the traversal stage.
type Crawler interface {
	Run(ctx context.Context, req crawl.Request) (map[string]crawl.Page, error)
}

// Request carries everything one run needs.
type Request struct {
	Seeds    []string
	Keywords []similarity.Keyword
	MaxDepth int
	MaxPages int
	Delay    time.Duration
}

// Result is the material a report is rendered from. A run with zero kept
// pages is a successful run with an empty result, not an error.
type Result struct {
	Metadata report.Metadata
	Groups   []report.GroupSummary
}

// Runner wires the four stages together. Collaborators are injected; the
// runner owns only sequencing, run identity, and the summarizer fallback.
type Runner struct {
	crawler    Crawler
	scorer     similarity.Scorer
	summarizer summary.Summarizer
	fallback   summary.Summarizer
	threshold  float64
	logger     *zap.Logger
	now        func() time.Time
}

// New constructs a Runner. The summarizer may be nil, in which case the
// extractive strategy is used directly.
func New(crawler Crawler, scorer similarity.Scorer, summarizer summary.Summarizer, threshold float64, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	fallback := summary.NewExtractive()
	if summarizer == nil {
		summarizer = fallback
	}
	return &Runner{
		crawler:    crawler,
		scorer:     scorer,
		summarizer: summarizer,
		fallback:   fallback,
		threshold:  threshold,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes all stages in order. Structural input errors and scorer
// failures abort the run; a single group's summarization failure degrades to
// the extractive fallback.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	runID := uuid.NewString()
	start := r.now()
	logger := r.logger.With(zap.String("run_id", runID))

	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		keywords = append(keywords, kw.Keyword)
	}

	logger.Info("crawl stage starting",
		zap.Strings("seeds", req.Seeds),
		zap.Int("max_depth", req.MaxDepth),
		zap.Int("max_pages", req.MaxPages),
	)
	pages, err := r.crawler.Run(ctx, crawl.Request{
		Seeds:    req.Seeds,
		Keywords: keywords,
		MaxDepth: req.MaxDepth,
		MaxPages: req.MaxPages,
		Delay:    req.Delay,
	})
	if err != nil {
		return Result{}, fmt.Errorf("crawl stage: %w", err)
	}
	logger.Info("crawl stage finished", zap.Int("pages", len(pages)))

	scores, err := r.scorer.ScoreAll(ctx, pages, req.Keywords)
	if err != nil {
		return Result{}, fmt.Errorf("scoring stage: %w", err)
	}
	filtered := similarity.Filter(pages, scores, r.threshold)
	logger.Info("scoring stage finished",
		zap.Int("scored", len(scores)),
		zap.Int("kept", len(filtered)),
		zap.Float64("threshold", r.threshold),
	)

	groups := group.Assign(filtered, req.Keywords)
	summaries := make([]report.GroupSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, report.GroupSummary{
			Group:   g,
			Summary: r.summarize(ctx, logger, g),
		})
	}
	logger.Info("grouping stage finished", zap.Int("groups", len(groups)))

	finished := r.now()
	return Result{
		Metadata: report.Metadata{
			RunID:         runID,
			Seeds:         req.Seeds,
			Keywords:      keywords,
			CrawledPages:  len(pages),
			FilteredPages: len(filtered),
			GroupCount:    len(groups),
			Elapsed:       finished.Sub(start),
			GeneratedAt:   finished,
		},
		Groups: summaries,
	}, nil
}

// summarize tries the configured strategy and degrades to the extractive
// fallback on failure.
func (r *Runner) summarize(ctx context.Context, logger *zap.Logger, g group.Group) string {
	sg := toSummaryGroup(g)

	text, err := r.summarizer.Summarize(ctx, sg)
	if err == nil {
		return text
	}
	logger.Warn("summarizer failed; falling back to extractive",
		zap.String("keyword", g.Keyword),
		zap.Error(err),
	)

	text, err = r.fallback.Summarize(ctx, sg)
	if err != nil {
		logger.Error("extractive fallback failed", zap.String("keyword", g.Keyword), zap.Error(err))
		return summary.EmptySummary
	}
	return text
}

func toSummaryGroup(g group.Group) summary.Group {
	sources := make([]summary.Source, 0, len(g.Items))
	for _, item := range g.Items {
		sources = append(sources, summary.Source{URL: item.URL, Title: item.Title, Content: item.Content})
	}
	return summary.Group{Keyword: g.Keyword, Description: g.Description, Items: sources}
}
