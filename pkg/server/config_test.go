package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RequiresClient(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	err := cfg.Validate()
	require.ErrorContains(t, err, "model client is required")
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	require.NoError(t, cfg.Validate())
	require.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	require.Equal(t, defaultGenerateTimeout, cfg.GenerateTimeout)
	require.Equal(t, int64(defaultMaxBodySize), cfg.MaxBodySize)
	require.NotNil(t, cfg.Clock)
}

func TestConfig_Validate_KeepsOverrides(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.ShutdownTimeout = time.Second
	cfg.GenerateTimeout = 5 * time.Second
	cfg.MaxBodySize = 42
	require.NoError(t, cfg.Validate())
	require.Equal(t, time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 5*time.Second, cfg.GenerateTimeout)
	require.Equal(t, int64(42), cfg.MaxBodySize)
}
