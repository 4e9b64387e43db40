// Package fetch implements the resilient HTTP retrieval layer: a single-URL
// fetcher plus a retry/backoff wrapper with a classified failure taxonomy.
package fetch

import "context"

// FailureKind classifies why a fetch gave up.
type FailureKind string

// Failure kinds reported by the resilient fetcher.
const (
	FailureForbidden   FailureKind = "forbidden"
	FailureRateLimited FailureKind = "rate_limited"
	FailureServerError FailureKind = "server_error"
	FailureTimedOut    FailureKind = "timed_out"
	FailureConnection  FailureKind = "connection_error"
	FailureTLS         FailureKind = "tls_error"
	FailureOther       FailureKind = "other"
)

// Outcome is the terminal result of a fetch attempt sequence. Exactly one of
// the success or failure halves is populated.
type Outcome struct {
	OK       bool
	Body     []byte
	FinalURL string
	Kind     FailureKind
	Detail   string
}

// Success builds an OK outcome.
func Success(body []byte, finalURL string) Outcome {
	return Outcome{OK: true, Body: body, FinalURL: finalURL}
}

// Failure builds a classified failure outcome.
func Failure(kind FailureKind, detail string) Outcome {
	return Outcome{Kind: kind, Detail: detail}
}

// Response is the raw result of one HTTP attempt. A non-2xx status is a
// Response, not an error; errors are reserved for transport-level problems.
type Response struct {
	StatusCode int
	Body       []byte
	FinalURL   string
}

// Fetcher performs a single HTTP GET attempt with the given identity.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, userAgent string) (Response, error)
}
