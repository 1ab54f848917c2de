package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/nodegridgo/internal/app"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/telemetry"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// logFlags are shared by every subcommand.
type logFlags struct {
	format string
	level  string
}

func (f *logFlags) validate() error {
	f.format = strings.ToLower(f.format)
	if f.format != "text" && f.format != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	f.level = strings.ToLower(f.level)
	switch f.level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

func minArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError("%s: missing %s argument", cmd.CommandPath(), what)
		}
		return nil
	}
}

// Execute runs the command line in args. Command output goes to outW and
// logs to errW.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the nodegrid command tree.
func NewRootCommand() *cobra.Command {
	logs := &logFlags{}
	root := &cobra.Command{
		Use:   "nodegrid",
		Short: "Run node graphs of image and value transforms",
		Long: `NodeGrid - A node-graph image processing engine.

Graphs are declared in HCL files: nodes with settings, and links between
their sockets. Each frame, every node runs once in dependency order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return logs.validate()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%s", err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&logs.format, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&logs.level, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(newRunCommand(logs), newSettingsCommand(logs), newWatchCommand(logs))
	return root
}

func newRunCommand(logs *logFlags) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "run GRAPH_PATH...",
		Short: "Run a graph for a number of frames",
		Long: `Run loads a graph from .hcl files or directories and runs frames over it.

With --frames 0 it runs until interrupted.`,
		Args: minArgs(1, "GRAPH_PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.GraphPaths = args
			cfg.LogFormat, cfg.LogLevel = logs.format, logs.level
			appConfig, err := app.NewConfig(cfg)
			if err != nil {
				return usageError("%s", err.Error())
			}
			a, err := app.NewApp(cmd.ErrOrStderr(), appConfig)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Frames, "frames", 1, "Number of frames to run. 0 runs until interrupted.")
	f.DurationVar(&cfg.Interval, "interval", 0, "Minimum time between frame starts.")
	f.StringVar(&cfg.SavePath, "save", "", "Write the graph with its final settings to this .hcl file.")
	f.IntVar(&cfg.ListenPort, "listen-port", 0, "Port for the health check and telemetry server. 0 is disabled.")
	f.IntVar(&cfg.ProcessWidth, "process-width", 0, "Override the graph's process width.")
	f.IntVar(&cfg.ProcessHeight, "process-height", 0, "Override the graph's process height.")
	f.BoolVar(&cfg.Perf, "perf", false, "Enable per-node timing outputs.")
	return cmd
}

func newSettingsCommand(logs *logFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "settings GRAPH_PATH...",
		Short: "Print every node's setting record as YAML",
		Args:  minArgs(1, "GRAPH_PATH"),
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := app.NewConfig(app.Config{
				GraphPaths: args,
				LogFormat:  logs.format,
				LogLevel:   logs.level,
			})
			if err != nil {
				return usageError("%s", err.Error())
			}
			a, err := app.NewApp(cmd.ErrOrStderr(), appConfig)
			if err != nil {
				return err
			}
			return a.Settings(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newWatchCommand(logs *logFlags) *cobra.Command {
	var opts telemetry.WatchOptions
	cmd := &cobra.Command{
		Use:   "watch URL",
		Short: "Stream frame telemetry from a running graph",
		Args:  minArgs(1, "URL"),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := app.NewLogger(logs.level, logs.format, cmd.ErrOrStderr())
			ctx := ctxlog.WithLogger(cmd.Context(), logger)
			err := telemetry.Watch(ctx, args[0], opts, cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Namespace, "namespace", "/", "socket.io namespace to join.")
	f.BoolVar(&opts.InsecureSkipVerify, "insecure", false, "Skip TLS certificate verification.")
	return cmd
}
