package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// BasicLogger prints plain timestamped lines, one per line of the formatted message.
type BasicLogger struct {
	verbose bool
	out     *log.Logger
}

func NewLogger(verbose bool) *BasicLogger {
	return NewLoggerWithWriter(os.Stdout, verbose)
}

func NewLoggerWithWriter(w io.Writer, verbose bool) *BasicLogger {
	return &BasicLogger{
		verbose: verbose,
		out:     log.New(w, "", log.LstdFlags),
	}
}

func (l *BasicLogger) Title(msg string, args ...any) {
	formatted := fmt.Sprintf("\n"+msg+"\n", args...)
	for _, line := range strings.Split(formatted, "\n") {
		l.out.Printf("%s", line)
	}
}

func (l *BasicLogger) Info(msg string, args ...any) {
	l.emit("", msg, args...)
}

func (l *BasicLogger) Warn(msg string, args ...any) {
	l.emit("Warning: ", msg, args...)
}

func (l *BasicLogger) Error(msg string, args ...any) {
	l.emit("Error: ", msg, args...)
}

func (l *BasicLogger) Debug(msg string, args ...any) {
	if !l.verbose {
		return
	}
	l.emit("Debug: ", msg, args...)
}

func (l *BasicLogger) emit(prefix, msg string, args ...any) {
	formatted := fmt.Sprintf(msg, args...)
	for _, line := range strings.Split(strings.TrimSuffix(formatted, "\n"), "\n") {
		l.out.Printf("%s%s", prefix, line)
	}
}
