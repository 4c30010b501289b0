package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akedrou/textdiff"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// DiffReporter shows how each document would be rewritten as a unified diff,
// followed by the bundles it produces.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var filesWithDiffs int
	var totalAdditions, totalDeletions int

	for i := range result.Files {
		file := &result.Files[i]
		if file.Error != nil {
			fmt.Fprintf(r.out, "%s: %s\n",
				r.styles.FilePath.Render(file.RelPath),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}

		doc := file.Document()
		if doc == nil {
			continue
		}

		unified := textdiff.Unified("a/"+file.RelPath, "b/"+doc.Path, string(file.Original), string(doc.Content))
		if unified == "" {
			continue
		}

		filesWithDiffs++
		additions, deletions := r.writeDiff(file.RelPath, doc.Path, unified)
		totalAdditions += additions
		totalDeletions += deletions
		r.writeBundles(file)
		fmt.Fprintln(r.out)
	}

	for _, runErr := range result.Errors {
		fmt.Fprint(r.out, r.styles.FormatError(runErr))
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(filesWithDiffs, totalAdditions, totalDeletions)
	}

	return problems(result), nil
}

// writeDiff outputs a single document's diff and returns its line counts.
func (r *DiffReporter) writeDiff(from, to, unified string) (int, int) {
	header := fmt.Sprintf("diff --git a/%s b/%s", from, to)
	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(header))

	var additions, deletions int
	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
		r.writeDiffLine(line)
	}

	return additions, deletions
}

// writeDiffLine formats a single diff line with color.
func (r *DiffReporter) writeDiffLine(line string) {
	var styled string

	switch {
	case strings.HasPrefix(line, "@@"):
		styled = r.styles.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+"):
		styled = r.styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		styled = r.styles.DiffRemove.Render(line)
	default:
		styled = r.styles.DiffContext.Render(line)
	}

	fmt.Fprintln(r.out, styled)
}

func (r *DiffReporter) writeBundles(file *runner.FileOutcome) {
	for _, artifact := range file.Bundles() {
		fmt.Fprintf(r.out, "%s %s %s\n",
			r.styles.Arrow.Render("=>"),
			r.styles.Bundle.Render(artifact.Path),
			r.styles.Dim.Render(fmt.Sprintf("(%d %s, %s)",
				len(artifact.Sources), pluralize(len(artifact.Sources), "source", "sources"),
				pretty.FormatBytes(int64(len(artifact.Content))))),
		)
	}
}

// writeSummary writes a summary line at the end.
func (r *DiffReporter) writeSummary(files, additions, deletions int) {
	parts := []string{fmt.Sprintf("%d %s changed", files, pluralize(files, "document", "documents"))}

	if additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(
			fmt.Sprintf("%d %s(+)", additions, pluralize(additions, "insertion", "insertions"))))
	}
	if deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(
			fmt.Sprintf("%d %s(-)", deletions, pluralize(deletions, "deletion", "deletions"))))
	}

	fmt.Fprintln(r.out, strings.Join(parts, ", "))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
