package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/keyscout/keyscout/internal/crawl"
)

// Embedder encodes texts into vectors. The backend is injected at
// construction so this package carries no dependency on any particular
// embedding provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingScorer scores pages by cosine similarity between the query text
// and each page's text.
type EmbeddingScorer struct {
	embedder Embedder
}

// NewEmbeddingScorer builds the semantic strategy. A missing backend is a
// configuration error, not a silent fallback.
func NewEmbeddingScorer(embedder Embedder) (*EmbeddingScorer, error) {
	if embedder == nil {
		return nil, errors.New("similarity: embedding scorer requires an embedding backend")
	}
	return &EmbeddingScorer{embedder: embedder}, nil
}

// BuildQueryText concatenates the query as "keyword: description" segments
// separated by single spaces.
func BuildQueryText(query []Keyword) string {
	parts := make([]string, 0, len(query))
	for _, kw := range query {
		parts = append(parts, kw.Keyword+": "+kw.Description)
	}
	return strings.Join(parts, " ")
}

// ScoreAll embeds the query and every page in one request and scores each
// page by cosine similarity, clamped to [0, 1].
func (s *EmbeddingScorer) ScoreAll(ctx context.Context, pages map[string]crawl.Page, query []Keyword) (map[string]float64, error) {
	scores := make(map[string]float64, len(pages))
	if len(pages) == 0 {
		return scores, nil
	}

	urls := make([]string, 0, len(pages))
	for url := range pages {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	texts := make([]string, 0, len(urls)+1)
	texts = append(texts, BuildQueryText(query))
	for _, url := range urls {
		page := pages[url]
		texts = append(texts, page.Title+" "+page.Content)
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed query and pages: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(vectors), len(texts))
	}

	queryVec := vectors[0]
	for i, url := range urls {
		scores[url] = clamp01(cosine(queryVec, vectors[i+1]))
	}
	return scores, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
