package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// CollyFetcher implements Fetcher using the Colly collector.
type CollyFetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher. Redirects are
// followed and TLS verification stays enabled.
func NewCollyFetcher(timeout time.Duration, logger *zap.Logger) *CollyFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	base := colly.NewCollector()
	// Revisits are allowed here; deduplication belongs to the crawler and
	// retries re-request the same URL.
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(timeout)

	return &CollyFetcher{
		baseCollector: base,
		logger:        logger,
	}
}

// Fetch retrieves rawURL once with the supplied user agent.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL, userAgent string) (Response, error) {
	collector := f.baseCollector.Clone()
	collector.AllowURLRevisit = true
	if userAgent != "" {
		collector.UserAgent = userAgent
	}

	resultCh := make(chan attemptResult, 1)
	var once sync.Once
	send := func(res attemptResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(attemptResult{resp: Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
			FinalURL:   r.Request.URL.String(),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		// Colly reports non-2xx statuses through OnError with the status
		// attached; surface those as responses so the retry policy can
		// classify them by code.
		if r != nil && r.StatusCode != 0 {
			finalURL := rawURL
			if r.Request != nil && r.Request.URL != nil {
				finalURL = r.Request.URL.String()
			}
			send(attemptResult{resp: Response{
				StatusCode: r.StatusCode,
				Body:       append([]byte{}, r.Body...),
				FinalURL:   finalURL,
			}})
			return
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(attemptResult{err: err})
	})

	visitErr := collector.Visit(rawURL)
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return res.resp, res.err
	default:
		if visitErr != nil {
			return Response{}, visitErr
		}
		return Response{}, errors.New("colly fetch produced no result")
	}
}

type attemptResult struct {
	resp Response
	err  error
}
