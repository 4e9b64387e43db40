// Package group buckets filtered pages under the keyword each page matches
// most strongly, producing the ordered sections a report is built from.
package group

import (
	"regexp"
	"sort"
	"strings"

	"github.com/keyscout/keyscout/internal/similarity"
)

// UnmatchedKeyword labels the bucket for pages that match no keyword at all.
const UnmatchedKeyword = "unmatched"

// descWordRe matches description words of length >= 3 used as half-weight
// grouping signals.
var descWordRe = regexp.MustCompile(`[\p{L}\p{N}_]{3,}`)

// Item is one page inside a group, keeping its similarity score for
// within-group ordering.
type Item struct {
	URL     string
	Title   string
	Content string
	Score   float64
}

// Group collects every page assigned to one keyword.
type Group struct {
	Keyword     string
	Description string
	Items       []Item
	ItemCount   int
}

// Assign buckets each page under the keyword with the strictly highest match
// strength. A keyword occurrence counts full weight, a description word of
// length >= 3 counts half. Ties go to the earlier keyword in the query; pages
// matching nothing land in the unmatched bucket. Groups come back ordered by
// item count descending, with the first-assignment order breaking count ties,
// and items inside each group ordered by score descending.
func Assign(pages []similarity.Scored, query []similarity.Keyword) []Group {
	type bucket struct {
		keyword     string
		description string
		items       []Item
		order       int
	}

	buckets := make(map[string]*bucket)
	var sequence []string
	place := func(keyword, description string, item Item) {
		b, ok := buckets[keyword]
		if !ok {
			b = &bucket{keyword: keyword, description: description, order: len(sequence)}
			buckets[keyword] = b
			sequence = append(sequence, keyword)
		}
		b.items = append(b.items, item)
	}

	descWords := make([][]string, len(query))
	for i, kw := range query {
		descWords[i] = descWordRe.FindAllString(strings.ToLower(kw.Description), -1)
	}

	for _, page := range pages {
		text := strings.ToLower(page.Title + " " + page.Content)

		best := -1
		bestStrength := 0.0
		for i, kw := range query {
			strength := float64(strings.Count(text, strings.ToLower(kw.Keyword)))
			for _, word := range descWords[i] {
				strength += 0.5 * float64(strings.Count(text, word))
			}
			if strength > bestStrength {
				bestStrength = strength
				best = i
			}
		}

		item := Item{URL: page.URL, Title: page.Title, Content: page.Content, Score: page.Score}
		if best < 0 {
			place(UnmatchedKeyword, "", item)
			continue
		}
		place(query[best].Keyword, query[best].Description, item)
	}

	groups := make([]Group, 0, len(sequence))
	for _, keyword := range sequence {
		b := buckets[keyword]
		sort.SliceStable(b.items, func(i, j int) bool {
			return b.items[i].Score > b.items[j].Score
		})
		groups = append(groups, Group{
			Keyword:     b.keyword,
			Description: b.description,
			Items:       b.items,
			ItemCount:   len(b.items),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].ItemCount > groups[j].ItemCount
	})
	return groups
}
