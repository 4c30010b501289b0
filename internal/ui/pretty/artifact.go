package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// FormatFileHeader formats the heading line for one document.
func (s *Styles) FormatFileHeader(outcome *runner.FileOutcome) string {
	status := ""
	switch {
	case outcome.Error != nil:
		status = s.Error.Render("failed")
	case outcome.Skipped:
		status = s.Warning.Render("skipped (changed on disk)")
	default:
		status = s.Dim.Render(fmt.Sprintf("%d %s", len(outcome.Bundles()), plural(len(outcome.Bundles()), "bundle", "bundles")))
	}
	return s.FilePath.Render(displayPath(outcome)) + " " + status
}

// FormatBundle formats one bundle and its sources.
func (s *Styles) FormatBundle(artifact *bundle.Artifact, write *runner.Write) string {
	var builder strings.Builder

	line := "  " + s.Bundle.Render(artifact.Path) + " " + s.Size.Render("("+FormatBytes(int64(len(artifact.Content)))+")")
	if write != nil {
		switch {
		case write.Deduplicated:
			line += " " + s.Dim.Render("shared")
		case !write.Changed:
			line += " " + s.Dim.Render("unchanged")
		}
	}
	builder.WriteString(line + "\n")

	for _, src := range artifact.Sources {
		builder.WriteString("    " + s.Arrow.Render("<-") + " " + s.Source.Render(string(src.Path)) + "\n")
	}

	return builder.String()
}

// FormatWarning formats a warning line.
func (s *Styles) FormatWarning(msg string) string {
	return "  " + s.Warning.Render("warning") + " " + msg + "\n"
}

// FormatError formats a document failure line.
func (s *Styles) FormatError(err error) string {
	return "  " + s.Error.Render("error") + " " + err.Error() + "\n"
}

func displayPath(outcome *runner.FileOutcome) string {
	if outcome.RelPath != "" {
		return outcome.RelPath
	}
	return outcome.Path
}
