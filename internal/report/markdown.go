// Package report renders a finished research run as a Markdown document.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/keyscout/keyscout/internal/group"
)

const (
	maxReferences = 5
	previewChars  = 1000
)

// Metadata describes the run a report covers.
type Metadata struct {
	RunID         string
	Seeds         []string
	Keywords      []string
	CrawledPages  int
	FilteredPages int
	GroupCount    int
	Elapsed       time.Duration
	GeneratedAt   time.Time
}

// GroupSummary pairs a keyword group with its generated summary text.
type GroupSummary struct {
	group.Group
	Summary string
}

// MarkdownWriter renders research reports with the nao1215/markdown builder.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter writes reports to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders the full report: run overview, per-keyword findings with
// summaries and top references, and a content-preview appendix.
func (w *MarkdownWriter) Write(meta Metadata, groups []GroupSummary) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, meta)
	w.writeFindings(md, groups)
	w.writeAppendix(md, groups)
	w.writeFooter(md, meta)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, meta Metadata) {
	md.H1("Research Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + meta.RunID + "`"},
			{"Generated", meta.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", meta.Elapsed.Round(time.Millisecond).String()},
			{"Pages Crawled", strconv.Itoa(meta.CrawledPages)},
			{"Pages Kept", strconv.Itoa(meta.FilteredPages)},
			{"Keyword Groups", strconv.Itoa(meta.GroupCount)},
		},
	})
	md.PlainText("")

	if len(meta.Seeds) > 0 {
		md.H2("Seed URLs")
		md.PlainText("")
		md.BulletList(meta.Seeds...)
		md.PlainText("")
	}

	if len(meta.Keywords) > 0 {
		md.H2("Query Keywords")
		md.PlainText("")
		md.BulletList(meta.Keywords...)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, groups []GroupSummary) {
	md.H2("Findings")
	md.PlainText("")

	if len(groups) == 0 {
		md.PlainText("No relevant pages were found for the given keywords.")
		md.PlainText("")
		return
	}

	for _, g := range groups {
		header := g.Keyword
		if g.Description != "" {
			header += " — " + g.Description
		}
		md.PlainText("### " + header)
		md.PlainText("")
		md.PlainTextf("%d page(s) matched.", g.ItemCount)
		md.PlainText("")
		md.PlainText(g.Summary)
		md.PlainText("")

		refs := g.Items
		if len(refs) > maxReferences {
			refs = refs[:maxReferences]
		}
		lines := make([]string, 0, len(refs))
		for _, item := range refs {
			lines = append(lines, fmt.Sprintf("[%s](%s) — %.0f%% relevance", item.Title, item.URL, item.Score*100))
		}
		if len(lines) > 0 {
			md.PlainText("Top references:")
			md.PlainText("")
			md.BulletList(lines...)
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeAppendix(md *markdown.Markdown, groups []GroupSummary) {
	var any bool
	for _, g := range groups {
		if len(g.Items) > 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}

	md.H2("Appendix: Page Previews")
	md.PlainText("")
	for _, g := range groups {
		for _, item := range g.Items {
			md.PlainText("#### " + item.Title)
			md.PlainText("")
			md.PlainTextf("Source: <%s>", item.URL)
			md.PlainText("")
			md.PlainText(preview(item.Content, previewChars))
			md.PlainText("")
		}
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, meta Metadata) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by keyscout, run `%s`*", meta.RunID)
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
