package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/llrb/lib/xlog"
	"github.com/benz9527/llrb/observability"
)

const ctxKeyCmd = "cmd"

// app carries the ambient state shared by the subcommands.
type app struct {
	logLevel        string
	logFormat       string
	logTime         string
	logColor        bool
	logFile         string
	metrics         string
	metricsInterval time.Duration
	verify          bool

	logger  xlog.XLogger
	mp      metric.MeterProvider
	fxApp   *fx.App
	started bool
}

// loggerOptions parses the log flags.
func (a *app) loggerOptions(cmd *cobra.Command) ([]xlog.XLoggerOption, error) {
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerWriter(cmd.ErrOrStderr()),
		xlog.WithXLoggerContextFieldExtract(ctxKeyCmd),
	}
	// XLOG_LVL wins over the default level, not over an explicit one.
	if _, envSet := os.LookupEnv("XLOG_LVL"); cmd.Flags().Changed("log-level") || !envSet {
		lvl, err := xlog.ParseLogLevel(a.logLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, xlog.WithXLoggerLevel(lvl))
	}
	enc, err := xlog.ParseLogEncoder(a.logFormat)
	if err != nil {
		return nil, err
	}
	opts = append(opts, xlog.WithXLoggerEncoder(enc))
	tsEnc, err := xlog.ParseTimeEncoder(a.logTime)
	if err != nil {
		return nil, err
	}
	opts = append(opts, xlog.WithXLoggerTimeEncoder(tsEnc))
	if a.logColor {
		opts = append(opts, xlog.WithXLoggerLevelEncoder(zapcore.CapitalColorLevelEncoder))
	}
	if a.logFile != "" {
		opts = append(opts, xlog.WithXLoggerFileWriter(&xlog.FileCoreConfig{
			Filename:      a.logFile,
			FileMaxSizeMB: 64,
			FileMaxBackup: 4,
		}))
	}
	return opts, nil
}

func newMeterProvider(
	lc fx.Lifecycle,
	cmd *cobra.Command,
	typ observability.MetricsExporterType,
	interval time.Duration,
) (metric.MeterProvider, error) {
	mp, shutdown, err := observability.NewMeterProvider(typ, cmd.ErrOrStderr(), interval)
	if err != nil {
		return nil, err
	}
	if mp == nil {
		return noop.NewMeterProvider(), nil
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return observability.InitAppStats(ctx, mp, cmd.Name())
		},
		OnStop: shutdown,
	})
	return mp, nil
}

// fitMaxProcs fits GOMAXPROCS to the container quota while the app runs.
func fitMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) {
	var undo func()
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var err error
			undo, err = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
				logger.Logf(zapcore.DebugLevel, format, args...)
			}))
			if err != nil {
				logger.Warn("unable to set GOMAXPROCS", zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			if undo != nil {
				undo()
			}
			return nil
		},
	})
}

func (a *app) setup(cmd *cobra.Command) error {
	opts, err := a.loggerOptions(cmd)
	if err != nil {
		return err
	}
	typ, err := observability.ParseMetricsExporter(a.metrics)
	if err != nil {
		return err
	}
	cmd.SetContext(context.WithValue(cmd.Context(), xlog.ContextKey(ctxKeyCmd), cmd.Name()))

	a.fxApp = fx.New(
		fx.Supply(cmd, typ, a.metricsInterval),
		fx.Provide(
			func() xlog.XLogger { return xlog.NewXLogger(opts...) },
			newMeterProvider,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(fitMaxProcs),
		fx.Populate(&a.logger, &a.mp),
	)
	if err = a.fxApp.Err(); err != nil {
		return err
	}
	if err = a.fxApp.Start(cmd.Context()); err != nil {
		return err
	}
	a.started = true
	return nil
}

// run executes fn and tears the ambient state down whatever fn returns.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	err := fn(cmd.Context())
	if err != nil && a.logger != nil {
		a.logger.Error(err, "command failed")
	}
	return multierr.Append(err, a.teardown(cmd))
}

func (a *app) teardown(cmd *cobra.Command) error {
	var err error
	if a.started {
		// A failed start has been rolled back by fx already.
		err = a.fxApp.Stop(cmd.Context())
		a.started = false
	}
	if a.logger != nil {
		// Syncing a terminal may fail, only the file errors matter.
		_ = a.logger.Close()
	}
	return err
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "llrb",
		Short: "Left-leaning red-black tree demos",
		Long: `llrb drives an intrusive left-leaning red-black tree with an ordered
neighbour list: an integer set and map, and a duplicate line detector.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(cmd); err != nil {
				return multierr.Append(err, a.teardown(cmd))
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error (XLOG_LVL when unset)")
	flags.StringVar(&a.logFormat, "log-format", "json", "log format: json or text")
	flags.StringVar(&a.logTime, "log-time", "iso8601", "log timestamp format: iso8601, rfc3339 or millis")
	flags.BoolVar(&a.logColor, "log-color", false, "colour the log levels")
	flags.StringVar(&a.logFile, "log-file", "", "also log into this file, rotated by size")
	flags.StringVar(&a.metrics, "metrics", "none", "metrics exporter: none, console or prometheus, written to stderr")
	flags.DurationVar(&a.metricsInterval, "metrics-interval", 10*time.Second, "console metrics export interval")
	flags.BoolVar(&a.verify, "verify", false, "validate the tree invariants before reporting")

	rootCmd.AddCommand(sortedCmd(a))
	rootCmd.AddCommand(dedupCmd(a))
	return rootCmd
}
