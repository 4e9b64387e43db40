package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollyFetcherReturnsBody(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.UserAgent()
		_, _ = w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	f := NewCollyFetcher(5*time.Second, zap.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL, "keyscout-test/1.0")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, string(resp.Body), "hi")
	require.Equal(t, "keyscout-test/1.0", gotAgent)
}

func TestCollyFetcherSurfacesStatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewCollyFetcher(5*time.Second, zap.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL, "")
	require.NoError(t, err, "HTTP error statuses are responses, not errors")
	require.Equal(t, 429, resp.StatusCode)
}

func TestCollyFetcherFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("landed"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewCollyFetcher(5*time.Second, zap.NewNop())
	resp, err := f.Fetch(context.Background(), srv.URL+"/start", "")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, srv.URL+"/final", resp.FinalURL)
	require.Equal(t, "landed", string(resp.Body))
}

func TestCollyFetcherAllowsRepeatFetches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewCollyFetcher(5*time.Second, zap.NewNop())
	for i := 0; i < 2; i++ {
		resp, err := f.Fetch(context.Background(), srv.URL, "")
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}
	require.Equal(t, 2, hits, "retries must be able to re-request the same URL")
}
