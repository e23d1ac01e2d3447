package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/sqlparse"
)

// summarize produces the closing sentence for an executed statement. The LLM
// is asked first; any failure falls back to the deterministic template so the
// user always gets an answer.
func (a *Agent) summarize(ctx context.Context, op sqlparse.Operation, table string, result *db.QueryResult) string {
	template := templateSummary(op, table, result)

	if a.llm == nil {
		return template
	}

	outcome := fmt.Sprintf("Operation: %s on table %s. %s", op, table, template)

	text, err := a.llm.Summarize(ctx, outcome)
	if err != nil || strings.TrimSpace(text) == "" {
		return template
	}

	return strings.TrimSpace(text)
}

// templateSummary renders a deterministic outcome sentence.
func templateSummary(op sqlparse.Operation, table string, result *db.QueryResult) string {
	if table == "" {
		table = "the database"
	}

	switch op {
	case sqlparse.OpSelect:
		n := 0
		if result != nil {
			n = len(result.Rows)
		}

		switch n {
		case 0:
			return fmt.Sprintf("No matching rows found in %s.", table)
		case 1:
			return fmt.Sprintf("Found 1 matching row in %s.", table)
		default:
			return fmt.Sprintf("Found %d matching rows in %s.", n, table)
		}
	case sqlparse.OpInsert:
		return fmt.Sprintf("Added a new record to %s.", table)
	case sqlparse.OpUpdate:
		return fmt.Sprintf("Updated %s in %s.", rowCount(result), table)
	case sqlparse.OpDelete:
		return fmt.Sprintf("Deleted %s from %s.", rowCount(result), table)
	default:
		return "Done."
	}
}

func rowCount(result *db.QueryResult) string {
	if result == nil {
		return "rows"
	}

	if result.RowsAffected == 1 {
		return "1 row"
	}

	return fmt.Sprintf("%d rows", result.RowsAffected)
}
