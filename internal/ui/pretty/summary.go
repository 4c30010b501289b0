package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/htmlbundle/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordDocument        = "document"
	wordDocuments       = "documents"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "Built 3 documents, 4 bundles, 2 files written (12.3 KiB), 1 warning".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.DocumentsDiscovered == 0 {
		return s.Dim.Render("No documents found") + "\n"
	}

	var parts []string

	built := fmt.Sprintf("Built %d %s", stats.DocumentsProcessed,
		plural(stats.DocumentsProcessed, wordDocument, wordDocuments))
	if stats.DocumentsErrored > 0 {
		parts = append(parts, s.Failure.Render(built))
	} else {
		parts = append(parts, s.Success.Render(built))
	}

	parts = append(parts, fmt.Sprintf("%d %s", stats.BundlesBuilt, plural(stats.BundlesBuilt, "bundle", "bundles")))

	if stats.FilesWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d %s written (%s)", stats.FilesWritten,
			plural(stats.FilesWritten, "file", "files"), FormatBytes(stats.BytesWritten)))
	} else {
		parts = append(parts, s.Dim.Render("nothing changed"))
	}

	if stats.DocumentsSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.DocumentsSkipped)))
	}

	if stats.Warnings > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d %s", stats.Warnings, plural(stats.Warnings, "warning", "warnings"))))
	}

	if stats.DocumentsErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.DocumentsErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Documents found:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.DocumentsDiscovered)) + "\n")
	builder.WriteString("  Documents built:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.DocumentsProcessed)) + "\n")

	if stats.DocumentsRewritten > 0 {
		builder.WriteString("  Documents rewritten: " +
			s.SummaryValue.Render(strconv.Itoa(stats.DocumentsRewritten)) + "\n")
	}
	if stats.DocumentsSkipped > 0 {
		builder.WriteString("  Documents skipped:   " +
			s.Warning.Render(strconv.Itoa(stats.DocumentsSkipped)) + "\n")
	}
	if stats.DocumentsErrored > 0 {
		builder.WriteString("  Documents failed:    " +
			s.Error.Render(strconv.Itoa(stats.DocumentsErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Bundles built:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.BundlesBuilt)) + "\n")
	if stats.BundlesDeduplicated > 0 {
		builder.WriteString("    Shared:            " +
			s.Dim.Render(strconv.Itoa(stats.BundlesDeduplicated)) + "\n")
	}
	builder.WriteString("  Files written:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesWritten)) +
		s.Dim.Render(" ("+FormatBytes(stats.BytesWritten)+")") + "\n")

	if stats.Warnings > 0 {
		builder.WriteString("  Warnings:            " +
			s.Warning.Render(strconv.Itoa(stats.Warnings)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.DocumentsErrored > 0:
		builder.WriteString(s.Failure.Render("Build failed"))
	case stats.Warnings > 0:
		builder.WriteString(s.Warning.Render("Build completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Build succeeded"))
	}
	builder.WriteString("\n")

	return builder.String()
}
