package sqlparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// Finalize assembles the final escaped SQL statement for a validated record.
// Column order follows the table schema declaration order, never map
// iteration order. UPDATE and DELETE without a WHERE clause fail with an
// unsafe-mutation error; SELECT defaults its predicate to 1=1.
func Finalize(
	values map[string]interface{},
	table *schema.TableSchema,
	op Operation,
	where string,
) (string, error) {
	where = strings.TrimSpace(where)

	switch op {
	case OpInsert:
		return finalizeInsert(values, table)
	case OpUpdate:
		if where == "" {
			return "", errors.NewUnsafeMutation(string(op), table.Name)
		}

		return finalizeUpdate(values, table, where)
	case OpDelete:
		if where == "" {
			return "", errors.NewUnsafeMutation(string(op), table.Name)
		}

		return fmt.Sprintf("DELETE FROM %s WHERE %s;", table.Name, where), nil
	case OpSelect:
		if where == "" {
			where = "1=1"
		}

		return fmt.Sprintf("SELECT * FROM %s WHERE %s;", table.Name, where), nil
	default:
		return "", errors.Newf(errors.ErrTypeParse, "unsupported operation: %s", op)
	}
}

func finalizeInsert(values map[string]interface{}, table *schema.TableSchema) (string, error) {
	var (
		columns  []string
		literals []string
	)

	for _, name := range table.InsertableFields() {
		value, present := values[name]
		if !present {
			continue
		}

		columns = append(columns, name)
		literals = append(literals, QuoteLiteral(value))
	}

	if len(columns) == 0 {
		return "", errors.Newf(errors.ErrTypeParse, "no values to insert into %s", table.Name)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s);",
		table.Name,
		strings.Join(columns, ", "),
		strings.Join(literals, ", "),
	), nil
}

func finalizeUpdate(
	values map[string]interface{},
	table *schema.TableSchema,
	where string,
) (string, error) {
	var assignments []string

	for _, name := range table.InsertableFields() {
		value, present := values[name]
		if !present {
			continue
		}

		assignments = append(assignments, fmt.Sprintf("%s = %s", name, QuoteLiteral(value)))
	}

	if len(assignments) == 0 {
		return "", errors.Newf(errors.ErrTypeParse, "no values to update on %s", table.Name)
	}

	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s;",
		table.Name,
		strings.Join(assignments, ", "),
		where,
	), nil
}

// QuoteLiteral renders a typed value as a SQL literal: nil becomes NULL,
// strings are single-quoted with internal quotes doubled, booleans become
// TRUE/FALSE, and numbers are stringified as-is.
func QuoteLiteral(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}

		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
