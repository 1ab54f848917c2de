package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/graphfile"
	"github.com/vk/nodegridgo/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Run loads the graph and drives frames until the configured frame count is
// reached or ctx is cancelled. Cancellation is a normal stop. When a listen
// port is set, the health and telemetry server runs alongside the frame loop.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var (
		tel  *telemetry.Server
		opts []executor.Option
	)
	if a.config.ListenPort > 0 {
		tel = telemetry.NewServer(ctx)
		opts = append(opts, executor.WithObserver(tel))
	}

	exec, err := a.loadGraph(ctx, opts...)
	if err != nil {
		return err
	}
	defer exec.Close(ctx)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stop := context.WithCancel(gctx)
	defer stop()

	if tel != nil {
		srv := &http.Server{
			Addr:    net.JoinHostPort("", strconv.Itoa(a.config.ListenPort)),
			Handler: a.newMux(tel),
		}
		g.Go(func() error {
			a.logger.Info("🩺 Server starting", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-loopCtx.Done()
			a.logger.Debug("Shutting down server...")
			tel.Close()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	g.Go(func() error {
		defer stop()
		return a.runFrames(loopCtx, exec)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if a.config.SavePath != "" {
		if err := a.save(exec); err != nil {
			return err
		}
	}
	a.logger.Info("🏁 Execution finished.", "frames", exec.Frames())
	return nil
}

// runFrames is the frame loop. It paces frames by the configured interval.
func (a *App) runFrames(ctx context.Context, exec *executor.Executor) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting frame loop.", "frames", a.config.Frames, "interval", a.config.Interval)

	var tick <-chan time.Time
	if a.config.Interval > 0 {
		ticker := time.NewTicker(a.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; a.config.Frames == 0 || n < a.config.Frames; n++ {
		report, err := exec.RunFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("frame %d: %w", n, err)
		}
		if ferr := report.Err(); ferr != nil {
			logger.Warn("Frame completed with node errors.", "frame", report.Frame, "error", ferr)
		}

		if tick == nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}
	return nil
}

func (a *App) save(exec *executor.Executor) error {
	f, err := os.Create(a.config.SavePath)
	if err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	if err := graphfile.Write(f, graphfile.FromExecutor(exec)); err != nil {
		f.Close()
		return fmt.Errorf("failed to save graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	a.logger.Info("Graph saved.", "path", a.config.SavePath)
	return nil
}
