package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide fallback for code without a context logger.
var defaultLogger atomic.Pointer[log.Logger]

// New returns a stderr logger at level.
func New(level string) *log.Logger {
	return NewWriter(os.Stderr, level)
}

// NewWriter returns a logger writing to w at level, without timestamps or callers.
func NewWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewInteractive returns the stdout logger used for command results.
func NewInteractive() *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix: "htmlbundle",
		Level:  log.InfoLevel,
	})
}

// ParseLevel maps "debug", "info", "warn" (or "warning") and "error" to a level,
// ignoring case. Anything else is info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default returns the process-wide logger, creating an info-level one on first use.
func Default() *log.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, New("info"))
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultLogger.Store(logger)
}
