// Package reporter renders build results for humans and machines.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// Reporter formats and writes build results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of problems reported (failed documents plus
	// warnings) and any write error.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	if opts.Writer == nil {
		opts.Writer = defaults.Writer
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = defaults.ErrorWriter
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatSummary:
		return NewSummaryReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// problems counts failed documents, run-level errors and warnings.
func problems(result *runner.Result) int {
	if result == nil {
		return 0
	}
	return result.Stats.DocumentsErrored + len(result.Errors) + result.Stats.Warnings
}

// interesting reports whether a document deserves a section in verbose-less output.
func interesting(file *runner.FileOutcome) bool {
	return file.Error != nil || file.Skipped || len(file.Warnings) > 0 || len(file.Bundles()) > 0
}
