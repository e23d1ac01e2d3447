// Package formatter renders query results for terminal output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/db"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatCSV   OutputFormat = "csv"
)

// Formatter handles query result output formatting
type Formatter struct{}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatResult renders a query result in the requested format. Non-SELECT
// results render as an acknowledgement line.
func (f *Formatter) FormatResult(result *db.QueryResult, format OutputFormat) string {
	if result == nil {
		return ""
	}

	if !result.IsSelect {
		if result.RowsAffected == 1 {
			return "1 row affected"
		}

		return fmt.Sprintf("%d rows affected", result.RowsAffected)
	}

	switch format {
	case FormatCSV:
		return f.formatCSV(result)
	default:
		return f.formatTable(result)
	}
}

// formatTable renders an aligned text table with a header rule.
func (f *Formatter) formatTable(result *db.QueryResult) string {
	if len(result.Columns) == 0 {
		return "(no columns)"
	}

	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = len(col)
	}

	for _, row := range result.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}

			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		}

		sb.WriteString("\n")
	}

	writeRow(result.Columns)

	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}

		sb.WriteString(strings.Repeat("-", w))
	}

	sb.WriteString("\n")

	for _, row := range result.Rows {
		writeRow(row)
	}

	switch len(result.Rows) {
	case 1:
		sb.WriteString("(1 row)\n")
	default:
		fmt.Fprintf(&sb, "(%d rows)\n", len(result.Rows))
	}

	return sb.String()
}

// formatCSV renders rows as comma-separated values with quoted cells where
// needed.
func (f *Formatter) formatCSV(result *db.QueryResult) string {
	var sb strings.Builder

	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString(",")
			}

			if strings.ContainsAny(cell, ",\"\n") {
				cell = "\"" + strings.ReplaceAll(cell, "\"", "\"\"") + "\""
			}

			sb.WriteString(cell)
		}

		sb.WriteString("\n")
	}

	writeLine(result.Columns)

	for _, row := range result.Rows {
		writeLine(row)
	}

	return sb.String()
}
