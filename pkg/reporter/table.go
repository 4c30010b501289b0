package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/term"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// TableReporter formats results as a table with one row per output.
type TableReporter struct {
	opts      Options
	styles    *pretty.Styles
	formatter *pretty.TableFormatter
	bw        *bufio.Writer
}

// NewTableReporter creates a new table reporter.
func NewTableReporter(opts Options) *TableReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	styles := pretty.NewStyles(colorEnabled)

	return &TableReporter{
		opts:      opts,
		styles:    styles,
		formatter: pretty.NewTableFormatter(styles, getTerminalWidth(opts.Writer)),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TableReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No documents found."))
		}
		return problems(result), nil
	}

	fmt.Fprint(r.bw, r.formatter.FormatTable(result))

	for i := range result.Files {
		file := &result.Files[i]
		for _, warning := range file.Warnings {
			fmt.Fprint(r.bw, r.styles.FormatWarning(file.RelPath+": "+warning))
		}
		if file.Error != nil {
			fmt.Fprint(r.bw, r.styles.FormatError(fmt.Errorf("%s: %w", file.RelPath, file.Error)))
		}
	}
	for _, runErr := range result.Errors {
		fmt.Fprint(r.bw, r.styles.FormatError(runErr))
	}

	if r.opts.ShowSummary {
		fmt.Fprintln(r.bw)
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return problems(result), nil
}

// getTerminalWidth returns the width of the terminal behind writer, or 0
// when writer is not a terminal.
func getTerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return 0
}
