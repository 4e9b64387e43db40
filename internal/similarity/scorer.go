// Package similarity ranks crawled pages against a weighted keyword query.
// Two interchangeable strategies implement the Scorer capability: a lexical
// weighted-match scorer and an embedding cosine-similarity scorer with an
// injected backend.
package similarity

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/keyscout/keyscout/internal/crawl"
)

// Keyword is one (keyword, description) query pair. Query order matters only
// for downstream tie-breaking, never for scoring.
type Keyword struct {
	Keyword     string
	Description string
}

// Scorer maps every page URL to a relevance score in [0, 1] for one query.
type Scorer interface {
	ScoreAll(ctx context.Context, pages map[string]crawl.Page, query []Keyword) (map[string]float64, error)
}

// descTokenRe matches word runs of length >= 2 inside descriptions.
var descTokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Lexical scores pages by weighted token matching. It is deterministic:
// identical inputs always produce identical scores.
type Lexical struct{}

// NewLexical returns the default scoring strategy.
func NewLexical() *Lexical {
	return &Lexical{}
}

// ScoreAll combines token coverage (60%) with a clamped term-frequency weight
// (40%) per page.
func (l *Lexical) ScoreAll(_ context.Context, pages map[string]crawl.Page, query []Keyword) (map[string]float64, error) {
	tokens := queryTokens(query)

	scores := make(map[string]float64, len(pages))
	for url, page := range pages {
		scores[url] = lexicalScore(page, tokens)
	}
	return scores, nil
}

// queryTokens builds the deduplicated token set: each keyword plus every
// description word of length >= 2, lowercased, in first-occurrence order.
func queryTokens(query []Keyword) []string {
	seen := make(map[string]struct{})
	var tokens []string
	add := func(token string) {
		if token == "" {
			return
		}
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	for _, kw := range query {
		add(strings.ToLower(strings.TrimSpace(kw.Keyword)))
		for _, word := range descTokenRe.FindAllString(strings.ToLower(kw.Description), -1) {
			add(word)
		}
	}
	return tokens
}

func lexicalScore(page crawl.Page, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	text := strings.ToLower(page.Title + " " + page.Content)
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		wordCount = 1
	}

	matched := 0
	weighted := 0.0
	for _, token := range tokens {
		count := strings.Count(text, token)
		if count == 0 {
			continue
		}
		matched++
		weighted += float64(count) / float64(wordCount) * 100
	}

	coverage := float64(matched) / float64(len(tokens))
	return coverage*0.6 + math.Min(weighted, 1.0)*0.4
}
