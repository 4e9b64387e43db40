package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyscout/keyscout/internal/metrics"
)

// DefaultMaxRetries bounds the attempt sequence when no override is given.
const DefaultMaxRetries = 3

// DefaultUserAgents is the identity pool rotated round-robin when a host
// answers 403.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// pauseController abstracts how the fetcher waits between attempts.
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

// Resilient wraps a Fetcher with bounded retries, per-failure-class backoff,
// and identity rotation. It never returns an error to its caller: every
// exhausted attempt sequence degrades to a classified Failure outcome.
type Resilient struct {
	fetcher    Fetcher
	agents     []string
	maxRetries int
	pauser     pauseController
	logger     *zap.Logger
}

// NewResilient builds the retry layer. A maxRetries of zero or below falls
// back to DefaultMaxRetries; an empty agent pool falls back to
// DefaultUserAgents.
func NewResilient(fetcher Fetcher, agents []string, maxRetries int, logger *zap.Logger) *Resilient {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resilient{
		fetcher:    fetcher,
		agents:     agents,
		maxRetries: maxRetries,
		pauser:     &timerPauseController{},
		logger:     logger,
	}
}

// Do fetches rawURL, retrying per the failure-class policy, and returns the
// terminal outcome.
func (r *Resilient) Do(ctx context.Context, rawURL string) Outcome {
	agentIdx := 0
	var last verdict

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Failure(FailureOther, "canceled: "+err.Error())
		}

		start := time.Now()
		resp, err := r.fetcher.Fetch(ctx, rawURL, r.agents[agentIdx%len(r.agents)])
		elapsed := time.Since(start)

		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			metrics.ObserveFetchAttempt("success", elapsed)
			return Success(resp.Body, resp.FinalURL)
		}

		last = classify(resp.StatusCode, err)
		metrics.ObserveFetchAttempt(string(last.kind), elapsed)

		if !last.retryable {
			metrics.IncFetchFailure(string(last.kind))
			r.logger.Warn("fetch failed without retry",
				zap.String("url", rawURL),
				zap.String("kind", string(last.kind)),
				zap.String("detail", last.detail),
			)
			return Failure(last.kind, last.detail)
		}

		if last.kind == FailureForbidden {
			agentIdx++
		}

		if attempt == r.maxRetries-1 {
			break
		}

		metrics.IncFetchRetry(string(last.kind))
		r.logger.Debug("retrying fetch",
			zap.String("url", rawURL),
			zap.String("kind", string(last.kind)),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", last.backoff(attempt)),
		)
		r.pauser.Pause(ctx, last.backoff(attempt))
	}

	metrics.IncFetchFailure(string(last.kind))
	if last.kind == FailureForbidden {
		r.logger.Warn("fetch exhausted retries; host may be blocking automated clients",
			zap.String("url", rawURL),
			zap.String("detail", last.detail),
		)
	} else {
		r.logger.Warn("fetch exhausted retries",
			zap.String("url", rawURL),
			zap.String("kind", string(last.kind)),
			zap.String("detail", last.detail),
		)
	}
	return Failure(last.kind, last.detail)
}

// verdict is the retry policy decision for one failed attempt.
type verdict struct {
	kind      FailureKind
	detail    string
	retryable bool
	backoff   func(attempt int) time.Duration
}

func classify(status int, err error) verdict {
	if err != nil {
		return classifyError(err)
	}
	switch {
	case status == 403:
		return verdict{
			kind:      FailureForbidden,
			detail:    "403 forbidden",
			retryable: true,
			backoff:   linearBackoff(2 * time.Second),
		}
	case status == 429:
		return verdict{
			kind:      FailureRateLimited,
			detail:    "429 too many requests",
			retryable: true,
			backoff:   linearBackoff(5 * time.Second),
		}
	case status >= 500 && status <= 599:
		return verdict{
			kind:      FailureServerError,
			detail:    fmt.Sprintf("server error %d", status),
			retryable: true,
			backoff:   linearBackoff(3 * time.Second),
		}
	default:
		return verdict{
			kind:      FailureOther,
			detail:    fmt.Sprintf("unexpected status %d", status),
			retryable: false,
		}
	}
}

func classifyError(err error) verdict {
	detail := err.Error()
	switch {
	case isTimeout(err):
		return verdict{
			kind:      FailureTimedOut,
			detail:    detail,
			retryable: true,
			backoff:   fixedBackoff(2 * time.Second),
		}
	case isTLS(err):
		return verdict{
			kind:      FailureTLS,
			detail:    detail,
			retryable: true,
			backoff:   fixedBackoff(2 * time.Second),
		}
	case isConnection(err):
		return verdict{
			kind:      FailureConnection,
			detail:    detail,
			retryable: true,
			backoff:   fixedBackoff(3 * time.Second),
		}
	default:
		return verdict{
			kind:      FailureOther,
			detail:    detail,
			retryable: false,
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

func isTLS(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:")
}

func isConnection(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host")
}

// linearBackoff grows with the attempt index: base*(attempt+1).
func linearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt+1)
	}
}

func fixedBackoff(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration {
		return d
	}
}
