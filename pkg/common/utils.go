package common

import (
	"context"
	"os"

	"github.com/AetherQuanta/aethernet-cli/pkg/common/iface"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/logger"
	"github.com/AetherQuanta/aethernet-cli/pkg/common/progress"
	"github.com/urfave/cli/v2"
)

// loggerContextKey is used to store the logger in the context
type loggerContextKey struct{}

// progressTrackerContextKey is used to store the progress tracker in the context
type progressTrackerContextKey struct{}

// GetLoggerFromCLIContext picks a logger for the --verbose flag of cCtx.
func GetLoggerFromCLIContext(cCtx *cli.Context) (iface.Logger, iface.ProgressTracker) {
	return GetLogger(cCtx.Bool("verbose"))
}

// GetLogger returns a line logger and bar tracker on a terminal, zap and a log tracker otherwise.
func GetLogger(verbose bool) (iface.Logger, iface.ProgressTracker) {
	if progress.IsTTY() {
		return logger.NewLogger(verbose), progress.NewTTYProgressTracker(10, os.Stdout)
	}
	log := logger.NewZapLogger(verbose)
	return log, progress.NewLogProgressTracker(10, log)
}

// WithLogger stores the logger in the context
func WithLogger(ctx context.Context, logger iface.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// WithProgressTracker stores the progress tracker in the context
func WithProgressTracker(ctx context.Context, tracker iface.ProgressTracker) context.Context {
	return context.WithValue(ctx, progressTrackerContextKey{}, tracker)
}

// LoggerFromContext returns the context logger, or a non-verbose one.
func LoggerFromContext(ctx context.Context) iface.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(iface.Logger); ok {
		return l
	}
	l, _ := GetLogger(false)
	return l
}

// ProgressTrackerFromContext returns the context tracker, or a non-verbose one.
func ProgressTrackerFromContext(ctx context.Context) iface.ProgressTracker {
	if t, ok := ctx.Value(progressTrackerContextKey{}).(iface.ProgressTracker); ok {
		return t
	}
	_, t := GetLogger(false)
	return t
}
