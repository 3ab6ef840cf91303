package server

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/manifestlab/puppetmill/pkg/llm"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultGenerateTimeout = 2 * time.Minute
	defaultMaxBodySize     = 1 << 20 // 1 MiB
)

type Config struct {
	Client llm.Client

	// Optional configuration.
	Clock           clockwork.Clock
	ShutdownTimeout time.Duration
	GenerateTimeout time.Duration
	MaxBodySize     int64
}

func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.New("model client is required")
	}

	// Optional configuration.
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = defaultGenerateTimeout
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
	return nil
}
