package collect

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(&FetcherConfig{
		Logger: testLogger(t),
		Rate:   rate.Inf,
	})
	require.NoError(t, err)
	return f
}

func TestFetcherGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("User-Agent"), "puppetmill")
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := testFetcher(t).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
}

func TestFetcherRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := testFetcher(t).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.Equal(t, int32(3), calls.Load())
}

func TestFetcherNotFoundIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher(t).Get(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, int32(1), calls.Load())
}

func TestFetcherSetsHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, err := NewFetcher(&FetcherConfig{
		Logger:  testLogger(t),
		Rate:    rate.Inf,
		Headers: map[string]string{"Authorization": "Bearer tok"},
	})
	require.NoError(t, err)

	_, err = f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
}

func TestFetcherConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := &FetcherConfig{}
	require.Error(t, cfg.Validate())

	cfg.Logger = testLogger(t)
	require.NoError(t, cfg.Validate())
	require.NotNil(t, cfg.HTTPClient)
	require.Equal(t, defaultFetchRate, cfg.Rate)
}
