package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// SummaryReporter prints only the aggregate statistics block.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("No documents found."))
		return 0, nil
	}

	for i := range result.Files {
		file := &result.Files[i]
		if file.Error != nil {
			fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file))
			fmt.Fprint(r.bw, r.styles.FormatError(file.Error))
		}
	}
	for _, runErr := range result.Errors {
		fmt.Fprint(r.bw, r.styles.FormatError(runErr))
	}

	fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))

	return problems(result), nil
}
