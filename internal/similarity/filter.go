package similarity

import (
	"sort"

	"github.com/keyscout/keyscout/internal/crawl"
)

// Scored is a page copy carrying its similarity score. The crawl result is
// never mutated; downstream stages work on these copies.
type Scored struct {
	crawl.Page
	Score float64
}

// Filter keeps pages scoring at or above threshold, sorted by score
// descending. Ties are broken by URL ascending so the output is fully
// deterministic for a given (pages, scores) input.
func Filter(pages map[string]crawl.Page, scores map[string]float64, threshold float64) []Scored {
	filtered := make([]Scored, 0, len(pages))
	for url, page := range pages {
		score := scores[url]
		if score >= threshold {
			filtered = append(filtered, Scored{Page: page, Score: score})
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		return filtered[i].URL < filtered[j].URL
	})
	return filtered
}
