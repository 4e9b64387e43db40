// Package summary condenses a keyword group into a few lines of prose for
// the report. The extractive strategy works offline; the LLM strategy asks a
// chat model and is expected to be wrapped with an extractive fallback.
package summary

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmptySummary is emitted when a group yields no usable material.
const EmptySummary = "No summary available."

const (
	maxSentences    = 5
	maxSourceItems  = 5
	minSentenceLen  = 20
	maxSentenceLen  = 300
	fallbackSources = 3
)

// Summarizer produces a short summary for one keyword group.
type Summarizer interface {
	Summarize(ctx context.Context, g Group) (string, error)
}

// Group is the slice of a keyword bucket a summarizer needs. It mirrors the
// grouping output without importing it, so either side can evolve alone.
type Group struct {
	Keyword     string
	Description string
	Items       []Source
}

// Source is one page feeding a summary, highest-relevance first.
type Source struct {
	URL     string
	Title   string
	Content string
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]\s+`)

// Extractive pulls keyword-bearing sentences straight out of the group's
// top pages. Deterministic and dependency-free.
type Extractive struct{}

// NewExtractive returns the default summarization strategy.
func NewExtractive() *Extractive {
	return &Extractive{}
}

// Summarize selects up to five distinct sentences of reasonable length that
// mention the group's keyword, scanning the top pages in relevance order.
// When no sentence qualifies it falls back to title lines, and when even
// those are missing it reports that no summary is available.
func (e *Extractive) Summarize(_ context.Context, g Group) (string, error) {
	keyword := strings.ToLower(g.Keyword)

	var picked []string
	seen := make(map[string]struct{})
	sources := g.Items
	if len(sources) > maxSourceItems {
		sources = sources[:maxSourceItems]
	}

	for _, src := range sources {
		if len(picked) >= maxSentences {
			break
		}
		for _, sentence := range splitSentences(src.Content) {
			if len(picked) >= maxSentences {
				break
			}
			n := utf8.RuneCountInString(sentence)
			if n < minSentenceLen || n > maxSentenceLen {
				continue
			}
			if keyword != "" && !strings.Contains(strings.ToLower(sentence), keyword) {
				continue
			}
			if _, dup := seen[sentence]; dup {
				continue
			}
			seen[sentence] = struct{}{}
			picked = append(picked, sentence)
		}
	}

	if len(picked) == 0 {
		picked = titleFallback(g.Items)
	}
	if len(picked) == 0 {
		return EmptySummary, nil
	}
	return "• " + strings.Join(picked, "\n• "), nil
}

// titleFallback builds "Title: first sentence" lines from the top pages.
func titleFallback(items []Source) []string {
	if len(items) > fallbackSources {
		items = items[:fallbackSources]
	}
	var lines []string
	for _, src := range items {
		if src.Title == "" {
			continue
		}
		line := src.Title
		if sentences := splitSentences(src.Content); len(sentences) > 0 && sentences[0] != "" {
			line += ": " + sentences[0]
		}
		lines = append(lines, line)
	}
	return lines
}

func splitSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
