package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keyscout/keyscout/internal/crawl"
	"github.com/keyscout/keyscout/internal/similarity"
	"github.com/keyscout/keyscout/internal/summary"
)

type fakeCrawler struct {
	pages map[string]crawl.Page
	err   error
	last  crawl.Request
}

func (f *fakeCrawler) Run(_ context.Context, req crawl.Request) (map[string]crawl.Page, error) {
	f.last = req
	return f.pages, f.err
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, summary.Group) (string, error) {
	return "", errors.New("llm unavailable")
}

func request() Request {
	return Request{
		Seeds:    []string{"https://example.org/"},
		Keywords: []similarity.Keyword{{Keyword: "golang", Description: "the go language"}},
		MaxDepth: 1,
		MaxPages: 10,
		Delay:    time.Second,
	}
}

func crawledPages() map[string]crawl.Page {
	return map[string]crawl.Page{
		"https://example.org/go": {
			URL:     "https://example.org/go",
			Title:   "Golang notes",
			Content: "Golang concurrency explained in enough detail to summarize properly. More golang text.",
		},
		"https://example.org/off": {
			URL:     "https://example.org/off",
			Title:   "Cooking",
			Content: "Pasta recipes with no overlap at all.",
		},
	}
}

func TestRunProducesGroupedResult(t *testing.T) {
	crawler := &fakeCrawler{pages: crawledPages()}
	runner := New(crawler, similarity.NewLexical(), nil, 0.3, nil)

	result, err := runner.Run(context.Background(), request())
	require.NoError(t, err)

	require.NotEmpty(t, result.Metadata.RunID)
	require.Equal(t, 2, result.Metadata.CrawledPages)
	require.Equal(t, 1, result.Metadata.FilteredPages, "the off-topic page falls below the threshold")
	require.Len(t, result.Groups, 1)
	require.Equal(t, "golang", result.Groups[0].Keyword)
	require.NotEmpty(t, result.Groups[0].Summary)

	require.Equal(t, []string{"golang"}, result.Metadata.Keywords)
	require.Equal(t, []string{"golang"}, crawler.last.Keywords, "crawler receives bare keyword strings")
	require.Equal(t, 1, crawler.last.MaxDepth)
}

func TestRunEmptyCrawlIsSuccess(t *testing.T) {
	crawler := &fakeCrawler{pages: map[string]crawl.Page{}}
	runner := New(crawler, similarity.NewLexical(), nil, 0.3, nil)

	result, err := runner.Run(context.Background(), request())
	require.NoError(t, err)
	require.Zero(t, result.Metadata.CrawledPages)
	require.Empty(t, result.Groups)
}

func TestRunPassesThroughCrawlErrors(t *testing.T) {
	crawler := &fakeCrawler{err: crawl.ErrNoSeeds}
	runner := New(crawler, similarity.NewLexical(), nil, 0.3, nil)

	_, err := runner.Run(context.Background(), Request{})
	require.ErrorIs(t, err, crawl.ErrNoSeeds)
}

func TestRunSummarizerFallsBackToExtractive(t *testing.T) {
	crawler := &fakeCrawler{pages: crawledPages()}
	runner := New(crawler, similarity.NewLexical(), failingSummarizer{}, 0.3, nil)

	result, err := runner.Run(context.Background(), request())
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)
	require.Contains(t, result.Groups[0].Summary, "Golang concurrency explained")
}

func TestRunMetadataTimestamps(t *testing.T) {
	crawler := &fakeCrawler{pages: crawledPages()}
	runner := New(crawler, similarity.NewLexical(), nil, 0.3, nil)

	times := []time.Time{
		time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 10, 0, 42, 0, time.UTC),
	}
	runner.now = func() time.Time {
		next := times[0]
		times = times[1:]
		return next
	}

	result, err := runner.Run(context.Background(), request())
	require.NoError(t, err)
	require.Equal(t, 42*time.Second, result.Metadata.Elapsed)
	require.Equal(t, time.Date(2025, 6, 1, 10, 0, 42, 0, time.UTC), result.Metadata.GeneratedAt)
}

type failingScorer struct{}

func (failingScorer) ScoreAll(context.Context, map[string]crawl.Page, []similarity.Keyword) (map[string]float64, error) {
	return nil, errors.New("embedding backend down")
}

func TestRunAbortsOnScorerError(t *testing.T) {
	crawler := &fakeCrawler{pages: crawledPages()}
	runner := New(crawler, failingScorer{}, nil, 0.3, nil)

	_, err := runner.Run(context.Background(), request())
	require.Error(t, err)
}
