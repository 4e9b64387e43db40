package crawl

import (
	"context"
	"sync"
	"time"
)

// visitTracker provides thread-safe visited URL tracking to prevent revisits.
// The set only grows for the lifetime of one crawl session.
type visitTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitTracker() *visitTracker {
	return &visitTracker{seen: make(map[string]struct{})}
}

// MarkIfNew stores the URL if it has not been seen before and returns true.
// The check and the insert are atomic so a parallelized walk cannot visit a
// URL twice.
func (t *visitTracker) MarkIfNew(url string) bool {
	if url == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.seen[url]; ok {
		return false
	}
	t.seen[url] = struct{}{}
	return true
}

// Seen reports whether the URL was already visited. Advisory only; MarkIfNew
// remains the authoritative check-and-set.
func (t *visitTracker) Seen(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[url]
	return ok
}

// Len returns the number of visited URLs.
func (t *visitTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// pauseController abstracts the politeness pause between descents.
type pauseController interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauseController struct{}

func (p *timerPauseController) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
