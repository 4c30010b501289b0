package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No documents found."))
		}
		for _, runErr := range errorsOf(result) {
			fmt.Fprint(r.bw, r.styles.FormatError(runErr))
		}
		return problems(result), nil
	}

	if r.opts.DryRun {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("Dry run: nothing was written."))
	}

	for i := range result.Files {
		file := &result.Files[i]
		if !r.opts.Verbose && !interesting(file) {
			continue
		}
		r.reportFile(file)
	}

	for _, runErr := range result.Errors {
		fmt.Fprint(r.bw, r.styles.FormatError(runErr))
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return problems(result), nil
}

func (r *TextReporter) reportFile(file *runner.FileOutcome) {
	fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file))

	if file.Error != nil {
		fmt.Fprint(r.bw, r.styles.FormatError(file.Error))
		fmt.Fprintln(r.bw)
		return
	}

	for idx := range file.Artifacts {
		artifact := &file.Artifacts[idx]
		if artifact.Kind != bundle.KindBundle {
			continue
		}
		var write *runner.Write
		if idx < len(file.Writes) {
			write = &file.Writes[idx]
		}
		if r.opts.ShowSources {
			fmt.Fprint(r.bw, r.styles.FormatBundle(artifact, write))
			continue
		}
		stripped := *artifact
		stripped.Sources = nil
		fmt.Fprint(r.bw, r.styles.FormatBundle(&stripped, write))
	}

	for _, warning := range file.Warnings {
		fmt.Fprint(r.bw, r.styles.FormatWarning(warning))
	}

	fmt.Fprintln(r.bw)
}

func errorsOf(result *runner.Result) []error {
	if result == nil {
		return nil
	}
	return result.Errors
}
