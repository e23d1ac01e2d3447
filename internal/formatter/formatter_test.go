package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlpilot/sqlpilot/internal/db"
)

func sampleResult() *db.QueryResult {
	return &db.QueryResult{
		IsSelect: true,
		Columns:  []string{"id", "name", "department"},
		Rows: [][]string{
			{"1", "Sarah", "Marketing"},
			{"2", "Miguel", "R&D"},
		},
		RowsAffected: 2,
	}
}

func TestFormatTable(t *testing.T) {
	out := NewFormatter().FormatResult(sampleResult(), FormatTable)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 5) // header, rule, two rows, row count
	assert.Contains(t, lines[0], "name")
	assert.Contains(t, lines[2], "Sarah")
	assert.Equal(t, "(2 rows)", lines[4])
}

func TestFormatCSVQuotesSpecialCells(t *testing.T) {
	result := sampleResult()
	result.Rows[0][1] = `Sarah "Sam", Jr.`

	out := NewFormatter().FormatResult(result, FormatCSV)

	assert.Contains(t, out, `"Sarah ""Sam"", Jr."`)
	assert.True(t, strings.HasPrefix(out, "id,name,department\n"))
}

func TestFormatAcknowledgement(t *testing.T) {
	f := NewFormatter()

	assert.Equal(t, "1 row affected", f.FormatResult(&db.QueryResult{RowsAffected: 1}, FormatTable))
	assert.Equal(t, "3 rows affected", f.FormatResult(&db.QueryResult{RowsAffected: 3}, FormatTable))
	assert.Equal(t, "", f.FormatResult(nil, FormatTable))
}
