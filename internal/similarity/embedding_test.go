package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyscout/keyscout/internal/crawl"
)

// fakeEmbedder returns fixed vectors keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}

func TestNewEmbeddingScorerRequiresBackend(t *testing.T) {
	_, err := NewEmbeddingScorer(nil)
	require.Error(t, err)
}

func TestBuildQueryText(t *testing.T) {
	text := BuildQueryText([]Keyword{
		{Keyword: "AI", Description: "artificial intelligence"},
		{Keyword: "Go", Description: "programming language"},
	})
	require.Equal(t, "AI: artificial intelligence Go: programming language", text)
}

func TestEmbeddingScorerRanksByCosine(t *testing.T) {
	query := []Keyword{{Keyword: "ml", Description: "machine learning"}}
	pages := map[string]crawl.Page{
		"https://example.org/aligned": {URL: "https://example.org/aligned", Title: "aligned", Content: "doc"},
		"https://example.org/oblique": {URL: "https://example.org/oblique", Title: "oblique", Content: "doc"},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		BuildQueryText(query): {1, 0},
		"aligned doc":         {1, 0},
		"oblique doc":         {1, 1},
	}}

	scorer, err := NewEmbeddingScorer(embedder)
	require.NoError(t, err)
	scores, err := scorer.ScoreAll(context.Background(), pages, query)
	require.NoError(t, err)

	require.InDelta(t, 1.0, scores["https://example.org/aligned"], 1e-6)
	require.InDelta(t, 0.7071, scores["https://example.org/oblique"], 1e-3)
	require.Equal(t, 1, embedder.calls, "query and pages embed in a single request")
}

func TestEmbeddingScorerClampsNegativeSimilarity(t *testing.T) {
	query := []Keyword{{Keyword: "k", Description: "d"}}
	pages := map[string]crawl.Page{
		"https://example.org/anti": {URL: "https://example.org/anti", Title: "anti", Content: "doc"},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		BuildQueryText(query): {1, 0},
		"anti doc":            {-1, 0},
	}}

	scorer, err := NewEmbeddingScorer(embedder)
	require.NoError(t, err)
	scores, err := scorer.ScoreAll(context.Background(), pages, query)
	require.NoError(t, err)
	require.Equal(t, 0.0, scores["https://example.org/anti"], "scores stay in [0, 1]")
}

func TestEmbeddingScorerPropagatesBackendError(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	scorer, err := NewEmbeddingScorer(embedder)
	require.NoError(t, err)

	_, err = scorer.ScoreAll(context.Background(), map[string]crawl.Page{
		"https://example.org/": {URL: "https://example.org/"},
	}, []Keyword{{Keyword: "k"}})
	require.Error(t, err)
}

func TestEmbeddingScorerEmptyPages(t *testing.T) {
	embedder := &fakeEmbedder{}
	scorer, err := NewEmbeddingScorer(embedder)
	require.NoError(t, err)

	scores, err := scorer.ScoreAll(context.Background(), nil, []Keyword{{Keyword: "k"}})
	require.NoError(t, err)
	require.Empty(t, scores)
	require.Zero(t, embedder.calls, "no backend call without pages")
}
