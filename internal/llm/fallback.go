package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// RuleBased provides basic SQL generation when LLM providers are unavailable.
// It reads the schema context text produced by the registry, picks the table
// the request mentions, and emits a skeleton statement. Inserts use NULL for
// every column so the conversation loop can collect the real values.
type RuleBased struct{}

// NewRuleBased creates a new rule-based service
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// Configure is a no-op for the rule-based service
func (r *RuleBased) Configure(config Config) error {
	return nil
}

var (
	columnLineRe = regexp.MustCompile(`(?m)^ {2}- (\w+) \(\w+\)([^\n]*)$`)
	namedValueRe = regexp.MustCompile(`(?i)(?:named|called)\s+'?([\w .-]+?)'?(?:\s*$|[,.])`)
)

// contextTable is one table parsed back out of schema context text.
type contextTable struct {
	name    string
	columns []string // non-primary-key columns, declaration order
	hasName bool
}

// GenerateSQL provides keyword-driven SQL generation without an LLM
func (r *RuleBased) GenerateSQL(_ context.Context, request, schemaContext string) (string, error) {
	tables := parseSchemaContext(schemaContext)
	if len(tables) == 0 {
		return "", fmt.Errorf("no tables in schema context")
	}

	table := pickTable(request, tables)
	requestLower := strings.ToLower(request)

	switch {
	case containsAny(requestLower, "add", "insert", "create", "new", "hire", "register"):
		return buildSkeletonInsert(table), nil
	case containsAny(requestLower, "delete", "remove", "fire", "drop"):
		return buildDelete(request, table), nil
	default:
		// Updates need a SET clause no keyword scan can produce, so anything
		// that is not clearly an insert or delete degrades to a listing.
		return fmt.Sprintf("SELECT * FROM %s;", table.name), nil
	}
}

// Summarize is unsupported without an LLM; callers fall back to templates.
func (r *RuleBased) Summarize(_ context.Context, _ string) (string, error) {
	return "", fmt.Errorf("summaries require a configured LLM provider")
}

// parseSchemaContext reads table and column names back out of the prompt
// schema text.
func parseSchemaContext(schemaContext string) []contextTable {
	var tables []contextTable

	for _, block := range strings.Split(schemaContext, "Table: ") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.SplitN(block, "\n", 2)
		name := strings.TrimSpace(lines[0])

		t := contextTable{name: name}

		if len(lines) > 1 {
			for _, m := range columnLineRe.FindAllStringSubmatch(lines[1], -1) {
				if strings.Contains(m[2], "primary key") {
					continue
				}

				t.columns = append(t.columns, m[1])

				if m[1] == "name" {
					t.hasName = true
				}
			}
		}

		tables = append(tables, t)
	}

	return tables
}

// pickTable chooses the table the request most plausibly refers to, falling
// back to the first declared table.
func pickTable(request string, tables []contextTable) contextTable {
	requestLower := strings.ToLower(request)

	for _, t := range tables {
		if strings.Contains(requestLower, t.name) {
			return t
		}

		// Naive singular/plural tolerance.
		if strings.Contains(requestLower, t.name+"s") || strings.Contains(requestLower+"s", t.name) {
			return t
		}
	}

	return tables[0]
}

// buildSkeletonInsert emits an INSERT with NULL for every column. Required
// values are collected one at a time afterwards.
func buildSkeletonInsert(t contextTable) string {
	if len(t.columns) == 0 {
		return fmt.Sprintf("SELECT * FROM %s;", t.name)
	}

	nulls := make([]string, len(t.columns))
	for i := range nulls {
		nulls[i] = "NULL"
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s);",
		t.name,
		strings.Join(t.columns, ", "),
		strings.Join(nulls, ", "),
	)
}

// buildDelete emits a DELETE, deriving a name predicate when the request
// contains one. A DELETE with no predicate is left as-is and rejected later
// by the mutation safety check.
func buildDelete(request string, t contextTable) string {
	if t.hasName {
		if m := namedValueRe.FindStringSubmatch(request); m != nil {
			value := strings.ReplaceAll(strings.TrimSpace(m[1]), "'", "''")
			return fmt.Sprintf("DELETE FROM %s WHERE name = '%s';", t.name, value)
		}
	}

	return fmt.Sprintf("DELETE FROM %s;", t.name)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if regexp.MustCompile(`\b` + w + `\b`).MatchString(s) {
			return true
		}
	}

	return false
}
