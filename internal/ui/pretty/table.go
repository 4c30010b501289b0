package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/htmlbundle/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 6 // DOCUMENT, OUTPUT, TYPE, SOURCES, SIZE, STATUS
	minDocWidth      = 16
	minOutputWidth   = 16
	typeWidth        = 6
	sourcesWidth     = 7
	sizeWidth        = 10
	minStatusWidth   = 9
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// Row statuses.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusShared    = "shared"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusWarning   = "warning"
)

// TableRow represents a single row in the build table.
type TableRow struct {
	Document string
	Output   string
	Type     string
	Sources  int
	Size     int64
	Status   string
}

// TableFormatter formats build results as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	groups := CollectRows(result)
	widths := t.calculateColumnWidths(groups)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for i, group := range groups {
		if i > 0 {
			builder.WriteString(t.formatSeparator(widths, lightSeparator))
			builder.WriteString("\n")
		}
		for _, row := range group {
			builder.WriteString(t.formatRow(row, widths))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

// CollectRows builds table rows grouped by document.
// Documents without bundles get a single row describing the document itself.
func CollectRows(result *runner.Result) [][]TableRow {
	groups := make([][]TableRow, 0, len(result.Files))

	for i := range result.Files {
		file := &result.Files[i]
		doc := displayPath(file)

		if file.Error != nil {
			groups = append(groups, []TableRow{{Document: doc, Output: "-", Status: StatusFailed}})
			continue
		}

		var rows []TableRow
		for idx, artifact := range file.Artifacts {
			row := TableRow{
				Document: doc,
				Output:   artifact.Path,
				Type:     artifact.Type,
				Sources:  len(artifact.Sources),
				Size:     int64(len(artifact.Content)),
				Status:   StatusWritten,
			}
			if artifact.Type == "" {
				row.Type = "html"
			}
			if idx < len(file.Writes) {
				write := file.Writes[idx]
				switch {
				case write.Deduplicated:
					row.Status = StatusShared
				case !write.Changed:
					row.Status = StatusUnchanged
				}
			}
			if file.Skipped {
				row.Status = StatusSkipped
			}
			rows = append(rows, row)
		}

		if len(file.Warnings) > 0 && len(rows) > 0 {
			rows[0].Status = StatusWarning
		}

		groups = append(groups, rows)
	}

	return groups
}

type columnWidths struct {
	doc    int
	output int
	status int
}

// calculateColumnWidths determines column widths based on content.
func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		doc:    minDocWidth,
		output: minOutputWidth,
		status: minStatusWidth,
	}

	for _, group := range groups {
		for _, row := range group {
			widths.doc = max(widths.doc, len(row.Document))
			widths.output = max(widths.output, len(row.Output))
			widths.status = max(widths.status, len(row.Status))
		}
	}

	// Constrain to terminal width, shrinking the document column first.
	if total := t.calculateTotalWidth(widths); total > t.termWidth {
		excess := total - t.termWidth
		widths.doc = max(minDocWidth, widths.doc-excess)

		if total = t.calculateTotalWidth(widths); total > t.termWidth {
			excess = total - t.termWidth
			widths.output = max(minOutputWidth, widths.output-excess)
		}
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.doc + widths.output + typeWidth + sourcesWidth + sizeWidth + widths.status +
		(tablePadding * tableColumnCount)
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %*s  %*s  %-*s ",
		widths.doc, "DOCUMENT",
		widths.output, "OUTPUT",
		typeWidth, "TYPE",
		sourcesWidth, "SOURCES",
		sizeWidth, "SIZE",
		widths.status, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.calculateTotalWidth(widths)))
}

// formatRow formats a single table row with status-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	sources := "-"
	size := "-"
	if row.Status != StatusFailed {
		sources = strconv.Itoa(row.Sources)
		size = FormatBytes(row.Size)
	}

	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %*s  %*s  %-*s ",
		widths.doc, truncateFilePath(row.Document, widths.doc),
		widths.output, truncateFilePath(row.Output, widths.output),
		typeWidth, truncateString(row.Type, typeWidth),
		sourcesWidth, sources,
		sizeWidth, size,
		widths.status, row.Status,
	)

	return t.rowStyle(row.Status).Render(content)
}

// rowStyle returns the style for a row status.
func (t *TableFormatter) rowStyle(status string) lipgloss.Style {
	switch status {
	case StatusFailed:
		return t.styles.TableErrorRow
	case StatusWarning, StatusSkipped:
		return t.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
