package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestLinksKeepsSameHostOnly(t *testing.T) {
	base := mustParse(t, "https://example.org/docs/")
	html := `<html><body>
		<a href="/about">about</a>
		<a href="page2">relative</a>
		<a href="https://example.org/contact">absolute same host</a>
		<a href="https://sub.example.org/">subdomain</a>
		<a href="https://other.com/">cross domain</a>
	</body></html>`

	links, err := Links([]byte(html), base)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.org/about",
		"https://example.org/docs/page2",
		"https://example.org/contact",
	}, links)
}

func TestLinksDeduplicates(t *testing.T) {
	base := mustParse(t, "https://example.org/")
	html := `<html><body>
		<a href="/a">one</a>
		<a href="/a">again</a>
		<a href="/a#section">fragment stripped</a>
		<a href="/b">two</a>
	</body></html>`

	links, err := Links([]byte(html), base)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://example.org/a",
		"https://example.org/b",
	}, links)
}

func TestLinksIgnoresNonHTTPSchemes(t *testing.T) {
	base := mustParse(t, "https://example.org/")
	html := `<html><body>
		<a href="mailto:team@example.org">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="ftp://example.org/file">ftp</a>
		<a href="/real">real</a>
	</body></html>`

	links, err := Links([]byte(html), base)
	require.NoError(t, err)
	require.Equal(t, []string{"https://example.org/real"}, links)
}

func TestLinksHostMatchIsCaseInsensitive(t *testing.T) {
	base := mustParse(t, "https://Example.ORG/")
	html := `<html><body><a href="https://example.org/x">x</a></body></html>`

	links, err := Links([]byte(html), base)
	require.NoError(t, err)
	require.Len(t, links, 1)
}

func TestLinksEmptyDocument(t *testing.T) {
	base := mustParse(t, "https://example.org/")
	links, err := Links([]byte("<html><body></body></html>"), base)
	require.NoError(t, err)
	require.Empty(t, links)
}
