package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/graphfile"
	"github.com/vk/nodegridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and a validated registry of node modules.
// With no modules given, the core modules are used.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := NewLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "types", reg.Types())

	if err := reg.ValidateRegistry(ctx); err != nil {
		return nil, fmt.Errorf("registry validation failed: %w", err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// loadGraph reads the configured graph files and builds an executor for
// them, with the process overrides from the config applied.
func (a *App) loadGraph(ctx context.Context, opts ...executor.Option) (*executor.Executor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graph...", "paths", a.config.GraphPaths)

	doc, err := graphfile.Load(ctx, a.config.GraphPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	if a.config.ProcessWidth > 0 {
		doc.Process.Width = a.config.ProcessWidth
	}
	if a.config.ProcessHeight > 0 {
		doc.Process.Height = a.config.ProcessHeight
	}
	if a.config.Perf {
		doc.Process.UsePerfCounter = true
	}

	exec := executor.New(a.registry, doc.NodeConfig(), opts...)
	rejected, err := graphfile.Build(ctx, doc, exec)
	if err != nil {
		exec.Close(ctx)
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	logger.Info("Graph loaded.", "nodes", len(doc.Nodes), "links", len(doc.Links)-len(rejected), "rejected_links", len(rejected))
	return exec, nil
}
