package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/htmlbundle/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"DEBUG", log.DebugLevel},
		{"Info", log.InfoLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.level, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, logging.ParseLevel(testCase.level))
			assert.Equal(t, testCase.want, logging.New(testCase.level).GetLevel())
		})
	}
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")

	logger.Info("bundled", logging.FieldBundle, "js/app.js")
	logger.Warn("source looks like css", logging.FieldBundle, "js/app.js")

	assert.NotContains(t, buf.String(), "bundled")
	assert.Contains(t, buf.String(), "source looks like css")
	assert.Contains(t, buf.String(), "bundle=js/app.js")
}

func TestDefault(t *testing.T) {
	t.Parallel()

	logger := logging.Default()
	if logger == nil {
		t.Fatal("Default returned nil logger")
	}
}

func TestSetDefault(t *testing.T) {
	// Not parallel because it modifies global state.

	original := logging.Default()
	defer logging.SetDefault(original)

	newLogger := logging.New("error")
	logging.SetDefault(newLogger)

	if logging.Default() != newLogger {
		t.Error("SetDefault did not change the default logger")
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	if logger == nil {
		t.Fatal("NewInteractive returned nil logger")
	}

	// Interactive loggers should default to info level
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %v", logger.GetLevel())
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled explicitly
	assert.Same(t, logging.Default(), logging.FromContext(nil))
}

func TestWithDocument_TagsEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.New(&buf)

	ctx := logging.WithLogger(context.Background(), logger)
	ctx = logging.WithDocument(ctx, "pages/index.html")

	logging.FromContext(ctx).Info("bundled")

	assert.Contains(t, buf.String(), "bundled")
	assert.Contains(t, buf.String(), "document=pages/index.html")
}
