// Package metrics exposes Prometheus collectors for the research pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchAttemptsTotal       *prometheus.CounterVec
	fetchRetriesTotal        *prometheus.CounterVec
	fetchFailuresTotal       *prometheus.CounterVec
	fetchDurationSeconds     prometheus.Histogram
	crawlerPagesVisitedTotal prometheus.Counter
	crawlerPagesKeptTotal    prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyscout_fetch_attempts_total",
				Help: "Total number of fetch attempts, labeled by result.",
			},
			[]string{"result"},
		)

		fetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyscout_fetch_retries_total",
				Help: "Total number of fetch retries, labeled by failure kind.",
			},
			[]string{"kind"},
		)

		fetchFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keyscout_fetch_failures_total",
				Help: "Total number of exhausted fetches, labeled by failure kind.",
			},
			[]string{"kind"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "keyscout_fetch_duration_seconds",
				Help:    "Histogram of single fetch attempt latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
		)

		crawlerPagesVisitedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "keyscout_crawler_pages_visited_total",
				Help: "Total number of URLs the crawler attempted to fetch.",
			},
		)

		crawlerPagesKeptTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "keyscout_crawler_pages_kept_total",
				Help: "Total number of pages retained by the crawl-time relevance gate.",
			},
		)
	})
}

// ObserveFetchAttempt records one fetch attempt and its latency.
func ObserveFetchAttempt(result string, duration time.Duration) {
	Init()
	fetchAttemptsTotal.WithLabelValues(result).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// IncFetchRetry counts a scheduled retry for the given failure kind.
func IncFetchRetry(kind string) {
	Init()
	fetchRetriesTotal.WithLabelValues(kind).Inc()
}

// IncFetchFailure counts a fetch that exhausted its retry budget.
func IncFetchFailure(kind string) {
	Init()
	fetchFailuresTotal.WithLabelValues(kind).Inc()
}

// IncPageVisited counts a crawler fetch attempt for a new URL.
func IncPageVisited() {
	Init()
	crawlerPagesVisitedTotal.Inc()
}

// IncPageKept counts a page that passed the relevance gate.
func IncPageKept() {
	Init()
	crawlerPagesKeptTotal.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
