package crawl

import (
	"math"
	"strings"
)

// GateScore is the cheap crawl-time relevance score deciding whether a page
// is kept at all. Keyword occurrences in the title weigh double; the total is
// normalized by len(keywords)*10 and capped at 1.0. With no keywords every
// page passes with score 1.0.
func GateScore(title, content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 1.0
	}

	lowerTitle := strings.ToLower(title)
	text := lowerTitle + " " + strings.ToLower(content)

	var total float64
	for _, keyword := range keywords {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}
		total += float64(2*strings.Count(lowerTitle, k) + strings.Count(text, k))
	}

	return math.Min(total/float64(len(keywords)*10), 1.0)
}
