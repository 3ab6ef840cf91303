package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer_New_NilLogger(t *testing.T) {
	t.Parallel()

	_, err := New(nil, newTestConfig(t))
	require.ErrorContains(t, err, "logger is required")
}

func TestServer_New_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(testServerLogger(t), Config{})
	require.Error(t, err)
}

func TestServer_Serve_ContextCancelStopsServer(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.ShutdownTimeout = 250 * time.Millisecond

	s, err := New(testServerLogger(t), cfg)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := s.Start(ctx, cancel, listener)

	// Server is up and answers health checks.
	url := fmt.Sprintf("http://%s%s", listener.Addr().String(), HealthzPath)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err, ok := <-errCh:
		if ok {
			require.NoError(t, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}
