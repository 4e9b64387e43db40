// Package crawl implements the depth-bounded, domain-confined crawler. All
// traversal state lives in a per-invocation session, so one Crawler can run
// independent concurrent crawls.
package crawl

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/keyscout/keyscout/internal/extract"
	"github.com/keyscout/keyscout/internal/fetch"
	"github.com/keyscout/keyscout/internal/metrics"
)

// Structural input errors, rejected before any network activity. An empty
// result map is a valid non-error outcome; these are not.
var (
	ErrNoSeeds    = errors.New("crawl: no seed URLs provided")
	ErrNoKeywords = errors.New("crawl: no keywords provided")
)

// Page is one retained crawl result. Never mutated after insertion.
type Page struct {
	URL       string
	Title     string
	Content   string
	Relevance float64
	Depth     int
}

// Request carries the inputs and bounds for one crawl invocation.
type Request struct {
	Seeds    []string
	Keywords []string
	MaxDepth int
	MaxPages int
	Delay    time.Duration
}

// Fetcher is the resilient fetch layer the crawler walks through.
type Fetcher interface {
	Do(ctx context.Context, rawURL string) fetch.Outcome
}

// Crawler holds collaborators only; per-run state lives in a session.
type Crawler struct {
	fetcher Fetcher
	pauser  pauseController
	logger  *zap.Logger
}

// New constructs a Crawler.
func New(fetcher Fetcher, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		fetcher: fetcher,
		pauser:  &timerPauseController{},
		logger:  logger,
	}
}

// target is one pending stack entry. Discovered targets get the politeness
// pause before their fetch; seeds do not.
type target struct {
	url        string
	depth      int
	discovered bool
}

// session owns the visited set and result set for one invocation.
type session struct {
	visited *visitTracker
	pages   map[string]Page
}

// Run walks the graph depth-first from the seeds. Per-node fetch and
// extraction failures degrade to skipped nodes; the crawl only fails for
// structurally invalid input or cancellation. On cancellation the partial
// result set is returned together with the context error.
func (c *Crawler) Run(ctx context.Context, req Request) (map[string]Page, error) {
	if len(req.Seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if len(req.Keywords) == 0 {
		return nil, ErrNoKeywords
	}

	s := &session{visited: newVisitTracker(), pages: make(map[string]Page)}

	stack := make([]target, 0, len(req.Seeds))
	for i := len(req.Seeds) - 1; i >= 0; i-- {
		stack = append(stack, target{url: req.Seeds[i]})
	}

	for len(stack) > 0 {
		if s.visited.Len() >= req.MaxPages {
			c.logger.Info("page budget reached", zap.Int("max_pages", req.MaxPages))
			break
		}

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.depth > req.MaxDepth {
			continue
		}
		base, ok := wellFormed(t.url)
		if !ok {
			c.logger.Debug("skipping malformed url", zap.String("url", t.url))
			continue
		}
		if err := ctx.Err(); err != nil {
			return s.pages, err
		}
		// Mark before fetching so re-entrant link cycles cannot revisit.
		if !s.visited.MarkIfNew(t.url) {
			continue
		}
		if t.discovered {
			c.pauser.Pause(ctx, req.Delay)
			if err := ctx.Err(); err != nil {
				return s.pages, err
			}
		}

		metrics.IncPageVisited()
		c.logger.Info("crawling", zap.String("url", t.url), zap.Int("depth", t.depth))

		outcome := c.fetcher.Do(ctx, t.url)
		if !outcome.OK {
			c.logger.Warn("skipping url after fetch failure",
				zap.String("url", t.url),
				zap.String("kind", string(outcome.Kind)),
				zap.String("detail", outcome.Detail),
			)
			continue
		}

		children := c.processPage(s, t, base, outcome.Body, req)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, target{url: children[i], depth: t.depth + 1, discovered: true})
		}
	}

	return s.pages, nil
}

// processPage extracts content, applies the relevance gate, and collects the
// node's unvisited same-host links. A failure or panic while processing one
// page skips that node only.
func (c *Crawler) processPage(s *session, t target, base *url.URL, body []byte, req Request) (children []string) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("page processing panicked; skipping node",
				zap.String("url", t.url),
				zap.Any("panic", rec),
			)
			children = nil
		}
	}()

	title, content, err := extract.Content(body)
	if err != nil {
		c.logger.Warn("content extraction failed; skipping node",
			zap.String("url", t.url),
			zap.Error(err),
		)
		return nil
	}

	if score := GateScore(title, content, req.Keywords); score > 0 {
		s.pages[t.url] = Page{
			URL:       t.url,
			Title:     title,
			Content:   content,
			Relevance: score,
			Depth:     t.depth,
		}
		metrics.IncPageKept()
		c.logger.Info("page kept",
			zap.String("url", t.url),
			zap.String("title", title),
			zap.Float64("relevance", score),
		)
	}

	if t.depth >= req.MaxDepth {
		return nil
	}

	links, err := extract.Links(body, base)
	if err != nil {
		c.logger.Warn("link extraction failed",
			zap.String("url", t.url),
			zap.Error(err),
		)
		return nil
	}
	for _, link := range links {
		if !s.visited.Seen(link) {
			children = append(children, link)
		}
	}
	return children
}

// wellFormed requires both a scheme and a host.
func wellFormed(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}
