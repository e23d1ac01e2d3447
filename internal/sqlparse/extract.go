package sqlparse

import (
	"regexp"
	"strings"
)

// Operation is the classified statement type for a generated query.
type Operation string

const (
	OpSelect  Operation = "select"
	OpInsert  Operation = "insert"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpUnknown Operation = "unknown"
)

// IsMutation reports whether the operation writes rows through the
// interactive completion path.
func (o Operation) IsMutation() bool {
	return o == OpInsert || o == OpUpdate
}

var (
	insertHeadRe = regexp.MustCompile(`(?is)INSERT\s+INTO\s+(\w+)\s*\(([^)]+)\)\s*VALUES\s*\(`)
	updateRe     = regexp.MustCompile(`(?is)UPDATE\s+(\w+)\s+SET\s+(.+?)(?:\s+WHERE\s+(.+?))?\s*;?\s*$`)
	tableRefRe   = regexp.MustCompile(`(?i)(?:FROM|INTO|UPDATE)\s+(\w+)`)
	whereRe      = regexp.MustCompile(`(?is)\bWHERE\s+(.+?)\s*;?\s*$`)
)

// Statement is the structured decomposition of a generated INSERT or UPDATE.
// Columns preserves the order in which the statement listed them.
type Statement struct {
	Table     string
	Operation Operation
	Columns   []string
	Values    map[string]interface{}
	Where     string
}

// DetectOperation classifies a SQL statement by its leading keyword.
func DetectOperation(sql string) Operation {
	switch {
	case hasPrefixFold(sql, "SELECT"):
		return OpSelect
	case hasPrefixFold(sql, "INSERT"):
		return OpInsert
	case hasPrefixFold(sql, "UPDATE"):
		return OpUpdate
	case hasPrefixFold(sql, "DELETE"):
		return OpDelete
	default:
		return OpUnknown
	}
}

// ExtractTable pulls the first table reference out of a statement, or ""
// when none is found.
func ExtractTable(sql string) string {
	if m := tableRefRe.FindStringSubmatch(sql); m != nil {
		return strings.ToLower(m[1])
	}

	return ""
}

// WhereClause returns the predicate text of a statement, or "" when it has
// none.
func WhereClause(sql string) string {
	if m := whereRe.FindStringSubmatch(sql); m != nil {
		return strings.TrimSpace(m[1])
	}

	return ""
}

// Extract decomposes a generated INSERT or UPDATE statement into a
// Statement. Returning ok=false is a normal outcome: SELECT and DELETE
// statements have no column-value map and bypass structured extraction.
func Extract(sql string) (*Statement, bool) {
	sql = strings.TrimSpace(sql)

	if stmt, ok := extractInsert(sql); ok {
		return stmt, true
	}

	if stmt, ok := extractUpdate(sql); ok {
		return stmt, true
	}

	return nil, false
}

// extractInsert handles INSERT INTO <table> (<cols>) VALUES (<vals>).
func extractInsert(sql string) (*Statement, bool) {
	loc := insertHeadRe.FindStringSubmatchIndex(sql)
	if loc == nil {
		return nil, false
	}

	table := strings.ToLower(sql[loc[2]:loc[3]])
	columnList := sql[loc[4]:loc[5]]

	// The value list may contain nested parentheses; scan to the matching
	// close paren instead of trusting a regex.
	valueList, ok := scanBalanced(sql[loc[1]:])
	if !ok {
		return nil, false
	}

	columns := SplitTop(columnList)
	values := SplitTop(valueList)

	if len(columns) == 0 || len(columns) != len(values) {
		return nil, false
	}

	stmt := &Statement{
		Table:     table,
		Operation: OpInsert,
		Values:    make(map[string]interface{}, len(columns)),
	}

	for i, col := range columns {
		name := strings.ToLower(strings.Trim(col, "`'\" "))
		// The auto-increment primary key never travels in partial values.
		if name == "id" {
			continue
		}

		stmt.Columns = append(stmt.Columns, name)
		stmt.Values[name] = ParseLiteral(values[i])
	}

	return stmt, true
}

// extractUpdate handles UPDATE <table> SET <assignments> [WHERE ...].
func extractUpdate(sql string) (*Statement, bool) {
	m := updateRe.FindStringSubmatch(sql)
	if m == nil {
		return nil, false
	}

	stmt := &Statement{
		Table:     strings.ToLower(m[1]),
		Operation: OpUpdate,
		Values:    make(map[string]interface{}),
		Where:     strings.TrimSpace(m[3]),
	}

	for _, assignment := range SplitTop(m[2]) {
		key, value, found := strings.Cut(assignment, "=")
		if !found {
			return nil, false
		}

		name := strings.ToLower(strings.Trim(key, "`'\" "))
		if name == "id" {
			continue
		}

		stmt.Columns = append(stmt.Columns, name)
		stmt.Values[name] = ParseLiteral(strings.TrimSpace(value))
	}

	if len(stmt.Columns) == 0 {
		return nil, false
	}

	return stmt, true
}

// scanBalanced consumes s up to the parenthesis matching an already-open
// group, respecting quoted strings, and returns the enclosed text.
func scanBalanced(s string) (string, bool) {
	depth := 1

	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == quote {
				if i+1 < len(s) && s[i+1] == quote {
					i++
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}

	return "", false
}

func hasPrefixFold(s, prefix string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
