// Package extract turns raw HTML into cleaned page text and same-host links.
// Both operations are pure functions of the fetched bytes.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxContentChars is a hard contract: downstream relevance scoring is
	// count-based, so the cap must not drift.
	maxContentChars = 5000

	// minCandidateChars is the minimum text length for a content candidate
	// to be accepted over the full-body fallback.
	minCandidateChars = 100
)

// untitledPlaceholder is used when a page has neither <title> nor <h1>.
const untitledPlaceholder = "Untitled page"

// strippedSelector removes non-content elements wholesale.
const strippedSelector = "script, style, nav, footer, header, noscript"

// denylist marks boilerplate containers by class/id substring: advertising,
// sidebar/related widgets, popups and cookie banners, comment sections, and
// social share blocks.
var denylist = []string{
	"advert", "adsbygoogle", "sponsor", "promo", "banner",
	"sidebar", "related", "recommend", "widget",
	"popup", "modal", "cookie",
	"comment", "disqus",
	"share", "social",
}

// candidateSelectors are tried in order; the first one with enough text wins.
var candidateSelectors = []string{
	"article",
	"main",
	`div[class*="content"]`,
	`div[class*="article"]`,
}

// Content extracts (title, bodyText) from a raw HTML body. The body text has
// boilerplate stripped, whitespace normalized, and is truncated to 5000
// characters.
func Content(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title := extractTitle(doc)

	doc.Find(strippedSelector).Remove()
	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		if denylisted(s.AttrOr("class", "")) || denylisted(s.AttrOr("id", "")) {
			s.Remove()
		}
	})

	for _, selector := range candidateSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}
		text := normalizeText(candidate.Text())
		if len([]rune(text)) > minCandidateChars {
			return title, truncate(text), nil
		}
	}

	return title, truncate(normalizeText(doc.Find("body").Text())), nil
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return untitledPlaceholder
}

func denylisted(attr string) bool {
	if attr == "" {
		return false
	}
	lower := strings.ToLower(attr)
	for _, needle := range denylist {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}

// normalizeText collapses all whitespace runs to single spaces.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxContentChars {
		return text
	}
	return string(runes[:maxContentChars])
}
