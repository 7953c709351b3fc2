package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger writes structured entries to stdout; zap's own failures go to stderr.
func NewZapLogger(verbose bool) *ZapLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{log: logger.Sugar()}
}

// NewZapLoggerWithCore wraps an existing core, mostly for observing output in tests.
func NewZapLoggerWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{log: zap.New(core).Sugar()}
}

func (l *ZapLogger) Title(msg string, args ...any) {
	formatted := fmt.Sprintf("\n"+msg+"\n", args...)
	for _, line := range strings.Split(formatted, "\n") {
		l.log.Infof("%s", line)
	}
}

func (l *ZapLogger) Info(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Infof(msg, args...)
	}
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Warnf(msg, args...)
	}
}

func (l *ZapLogger) Error(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Errorf(msg, args...)
	}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	if msg = strings.Trim(msg, "\n"); msg != "" {
		l.log.Debugf(msg, args...)
	}
}

// Sync flushes buffered entries. Errors from syncing stdout are ignored.
func (l *ZapLogger) Sync() {
	_ = l.log.Sync()
}
