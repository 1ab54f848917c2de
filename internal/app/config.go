package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPaths []string // hcl files or directories

	// Frames is the number of frames to run. Zero runs until cancelled.
	Frames   int
	Interval time.Duration
	SavePath string

	ListenPort int // health and telemetry; 0 is disabled
	LogFormat  string
	LogLevel   string

	// Overrides for the graph's process block. Zero keeps the file value.
	ProcessWidth  int
	ProcessHeight int
	Perf          bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.GraphPaths) == 0 {
		return nil, errors.New("GraphPaths is a required configuration field and cannot be empty")
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative, got %s", cfg.Interval)
	}
	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		return nil, fmt.Errorf("listen port %d out of range", cfg.ListenPort)
	}
	if cfg.ProcessWidth < 0 || cfg.ProcessHeight < 0 {
		return nil, fmt.Errorf("process size %dx%d must not be negative", cfg.ProcessWidth, cfg.ProcessHeight)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}
