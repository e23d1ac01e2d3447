package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

func employeeSchema(t *testing.T) *schema.TableSchema {
	t.Helper()

	reg, err := schema.NewRegistry([]*schema.TableSchema{{
		Name: "employee",
		Fields: []schema.FieldSchema{
			{Name: "id", Type: schema.FieldNumber, PrimaryKey: true},
			{Name: "name", Type: schema.FieldString, Required: true},
			{Name: "department", Type: schema.FieldString, Required: true},
			{Name: "salary", Type: schema.FieldNumber, Required: true},
			{Name: "hire_date", Type: schema.FieldDate},
		},
	}})
	require.NoError(t, err)

	ts, err := reg.Get("employee")
	require.NoError(t, err)

	return ts
}

func TestFinalizeInsert(t *testing.T) {
	ts := employeeSchema(t)

	sql, err := Finalize(map[string]interface{}{
		"salary":     int64(65000),
		"name":       "Sarah",
		"department": "Marketing",
	}, ts, OpInsert, "")
	require.NoError(t, err)

	// Column order follows schema declaration order, not map order.
	assert.Equal(
		t,
		"INSERT INTO employee (name, department, salary) VALUES ('Sarah', 'Marketing', 65000);",
		sql,
	)
}

func TestFinalizeInsertEscapesQuotes(t *testing.T) {
	ts := employeeSchema(t)

	sql, err := Finalize(map[string]interface{}{
		"name":       "O'Brien",
		"department": "R&D",
		"salary":     int64(1),
	}, ts, OpInsert, "")
	require.NoError(t, err)

	assert.Contains(t, sql, "'O''Brien'")
}

func TestFinalizeInsertNull(t *testing.T) {
	ts := employeeSchema(t)

	sql, err := Finalize(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     int64(65000),
		"hire_date":  nil,
	}, ts, OpInsert, "")
	require.NoError(t, err)

	assert.Contains(t, sql, "NULL")
}

func TestFinalizeUpdateRequiresWhere(t *testing.T) {
	ts := employeeSchema(t)
	values := map[string]interface{}{"salary": int64(70000)}

	_, err := Finalize(values, ts, OpUpdate, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnsafeMutation))

	_, err = Finalize(values, ts, OpUpdate, "   ")
	require.Error(t, err, "whitespace-only predicate is still unsafe")

	sql, err := Finalize(values, ts, OpUpdate, "name = 'Sarah'")
	require.NoError(t, err)
	assert.Equal(t, "UPDATE employee SET salary = 70000 WHERE name = 'Sarah';", sql)
}

func TestFinalizeDeleteRequiresWhere(t *testing.T) {
	ts := employeeSchema(t)

	_, err := Finalize(nil, ts, OpDelete, "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnsafeMutation))

	sql, err := Finalize(nil, ts, OpDelete, "id = 3")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM employee WHERE id = 3;", sql)
}

func TestFinalizeSelectDefaultPredicate(t *testing.T) {
	ts := employeeSchema(t)

	sql, err := Finalize(nil, ts, OpSelect, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employee WHERE 1=1;", sql)

	sql, err = Finalize(nil, ts, OpSelect, "salary > 50000")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employee WHERE salary > 50000;", sql)
}

func TestFinalizeInsertEmpty(t *testing.T) {
	ts := employeeSchema(t)

	_, err := Finalize(map[string]interface{}{}, ts, OpInsert, "")
	require.Error(t, err)
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "NULL", QuoteLiteral(nil))
	assert.Equal(t, "'x'", QuoteLiteral("x"))
	assert.Equal(t, "'it''s'", QuoteLiteral("it's"))
	assert.Equal(t, "65000", QuoteLiteral(int64(65000)))
	assert.Equal(t, "65000.5", QuoteLiteral(65000.5))
	assert.Equal(t, "TRUE", QuoteLiteral(true))
	assert.Equal(t, "FALSE", QuoteLiteral(false))
}

func TestExtractFinalizeRoundTrip(t *testing.T) {
	ts := employeeSchema(t)

	original := "INSERT INTO employee (name, department, salary) VALUES ('Sarah', 'Marketing', 65000);"

	stmt, ok := Extract(original)
	require.True(t, ok)

	rebuilt, err := Finalize(stmt.Values, ts, stmt.Operation, "")
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt)
}
