package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keyscout/keyscout/internal/crawl"
)

func scoredFixture() (map[string]crawl.Page, map[string]float64) {
	pages := map[string]crawl.Page{
		"https://example.org/a": {URL: "https://example.org/a", Title: "a"},
		"https://example.org/b": {URL: "https://example.org/b", Title: "b"},
		"https://example.org/c": {URL: "https://example.org/c", Title: "c"},
	}
	scores := map[string]float64{
		"https://example.org/a": 0.9,
		"https://example.org/b": 0.4,
		"https://example.org/c": 0.4,
	}
	return pages, scores
}

func TestFilterZeroThresholdKeepsEverything(t *testing.T) {
	pages, scores := scoredFixture()
	kept := Filter(pages, scores, 0.0)
	require.Len(t, kept, len(pages))
}

func TestFilterPerfectThresholdKeepsOnlyPerfectScores(t *testing.T) {
	pages, scores := scoredFixture()
	scores["https://example.org/a"] = 1.0
	kept := Filter(pages, scores, 1.0)
	require.Len(t, kept, 1)
	require.Equal(t, "https://example.org/a", kept[0].URL)
}

func TestFilterThresholdIsInclusive(t *testing.T) {
	pages, scores := scoredFixture()
	kept := Filter(pages, scores, 0.4)
	require.Len(t, kept, 3, "pages scoring exactly the threshold survive")
}

func TestFilterSortsByScoreThenURL(t *testing.T) {
	pages, scores := scoredFixture()
	kept := Filter(pages, scores, 0.0)
	require.Equal(t, "https://example.org/a", kept[0].URL)
	require.Equal(t, "https://example.org/b", kept[1].URL, "equal scores break ties by URL ascending")
	require.Equal(t, "https://example.org/c", kept[2].URL)
}

func TestFilterIsDeterministic(t *testing.T) {
	pages, scores := scoredFixture()
	first := Filter(pages, scores, 0.0)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Filter(pages, scores, 0.0))
	}
}

func TestFilterMissingScoreTreatedAsZero(t *testing.T) {
	pages, scores := scoredFixture()
	delete(scores, "https://example.org/b")
	kept := Filter(pages, scores, 0.1)
	require.Len(t, kept, 2)
	for _, item := range kept {
		require.NotEqual(t, "https://example.org/b", item.URL)
	}
}
