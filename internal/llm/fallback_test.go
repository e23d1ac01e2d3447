package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaContext = `Table: employee
Columns:
  - id (number) [primary key, auto-increment]
  - name (string) [required]
  - department (string) [required]
  - salary (number) [required]
  - hire_date (date)

Table: project
Columns:
  - id (number) [primary key, auto-increment]
  - title (string) [required]
  - budget (number)
`

func TestRuleBasedInsertSkeleton(t *testing.T) {
	svc := NewRuleBased()

	sql, err := svc.GenerateSQL(context.Background(), "add a new employee", testSchemaContext)
	require.NoError(t, err)

	assert.Equal(
		t,
		"INSERT INTO employee (name, department, salary, hire_date) VALUES (NULL, NULL, NULL, NULL);",
		sql,
	)
}

func TestRuleBasedSelect(t *testing.T) {
	svc := NewRuleBased()

	tests := []struct {
		request string
		want    string
	}{
		{"show all employees", "SELECT * FROM employee;"},
		{"list the projects", "SELECT * FROM project;"},
		{"what do we have", "SELECT * FROM employee;"}, // no table named: first declared wins
	}

	for _, tt := range tests {
		sql, err := svc.GenerateSQL(context.Background(), tt.request, testSchemaContext)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sql, tt.request)
	}
}

func TestRuleBasedDeleteWithNamePredicate(t *testing.T) {
	svc := NewRuleBased()

	sql, err := svc.GenerateSQL(context.Background(), "remove the employee named Sarah", testSchemaContext)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM employee WHERE name = 'Sarah';", sql)
}

func TestRuleBasedDeleteWithoutPredicate(t *testing.T) {
	svc := NewRuleBased()

	// No identifying information: the unsafe statement is produced as-is and
	// rejected downstream by the mutation safety check.
	sql, err := svc.GenerateSQL(context.Background(), "delete every employee", testSchemaContext)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM employee;", sql)
}

func TestRuleBasedUpdateDegradesToSelect(t *testing.T) {
	svc := NewRuleBased()

	sql, err := svc.GenerateSQL(context.Background(), "change the salary for marketing", testSchemaContext)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM employee;", sql)
}

func TestRuleBasedEmptySchema(t *testing.T) {
	svc := NewRuleBased()

	_, err := svc.GenerateSQL(context.Background(), "show everything", "")
	require.Error(t, err)
}

func TestRuleBasedSummarizeUnsupported(t *testing.T) {
	svc := NewRuleBased()

	_, err := svc.Summarize(context.Background(), "inserted 1 row")
	require.Error(t, err)
}
