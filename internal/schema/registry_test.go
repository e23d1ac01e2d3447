package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot/sqlpilot/internal/errors"
)

func employeeTable() *TableSchema {
	return &TableSchema{
		Name:    "employee",
		Aliases: []string{"emp", "staff", "workers"},
		Fields: []FieldSchema{
			{Name: "id", Type: FieldNumber, PrimaryKey: true},
			{Name: "name", Type: FieldString, Required: true, MaxLength: 100},
			{Name: "department", Type: FieldString, Required: true, MaxLength: 50},
			{Name: "salary", Type: FieldNumber, Required: true},
			{Name: "hire_date", Type: FieldDate},
		},
	}
}

func projectTable() *TableSchema {
	return &TableSchema{
		Name: "project",
		Fields: []FieldSchema{
			{Name: "id", Type: FieldNumber, PrimaryKey: true},
			{Name: "name", Type: FieldString, Required: true},
			{Name: "budget", Type: FieldNumber},
		},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := NewRegistry([]*TableSchema{employeeTable(), projectTable()})
	require.NoError(t, err)

	return reg
}

func TestGetUnknownTable(t *testing.T) {
	reg := testRegistry(t)

	_, err := reg.Get("invoices")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnknownTable))
}

func TestRequiredFieldsOrderIsStable(t *testing.T) {
	reg := testRegistry(t)

	// The declaration order defines the ask-order; it must be deterministic
	// across repeated calls.
	first, err := reg.RequiredFields("employee")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "department", "salary"}, first)

	for i := 0; i < 10; i++ {
		again, err := reg.RequiredFields("employee")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRequiredFieldsExcludesPrimaryKey(t *testing.T) {
	reg := testRegistry(t)

	fields, err := reg.RequiredFields("project")
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")
}

func TestNormalize(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		in   string
		want string
	}{
		{"employee", "employee"},
		{"employees", "employee"},
		{"EMP", "employee"},
		{"staff", "employee"},
		{"projects", "project"},
		{"proj", "project"},   // substring fallback
		{"  Project ", "project"},
		{"invoices", "invoices"}, // unresolvable passes through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, reg.Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeSQL(t *testing.T) {
	reg := testRegistry(t)

	sql := "INSERT INTO employees (name) VALUES ('Sarah')"
	assert.Equal(t, "INSERT INTO employee (name) VALUES ('Sarah')", reg.NormalizeSQL(sql))

	// Word boundaries: column names containing an alias substring survive.
	sql = "SELECT staffing FROM projects"
	assert.Equal(t, "SELECT staffing FROM project", reg.NormalizeSQL(sql))
}

func TestDescribe(t *testing.T) {
	reg := testRegistry(t)

	out := reg.Describe()
	assert.Contains(t, out, "Table: employee")
	assert.Contains(t, out, "name (string) [required]")
	assert.Contains(t, out, "id (number) [primary key, auto-increment]")
	assert.Contains(t, out, "Table: project")
}

func TestDuplicateTableRejected(t *testing.T) {
	_, err := NewRegistry([]*TableSchema{employeeTable(), employeeTable()})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestFieldDescribe(t *testing.T) {
	f := FieldSchema{Name: "hire_date", Type: FieldDate}
	assert.Equal(t, "Date for hire_date in YYYY-MM-DD format", f.Describe())

	f = FieldSchema{Name: "salary", Type: FieldNumber, Description: "Annual salary amount"}
	assert.Equal(t, "Annual salary amount", f.Describe())
}

func TestFromColumns(t *testing.T) {
	reg, err := FromColumns([]Column{
		{Table: "employee", Name: "id", DataType: "INTEGER", PrimaryKey: true},
		{Table: "employee", Name: "name", DataType: "TEXT", Nullable: false},
		{Table: "employee", Name: "salary", DataType: "REAL", Nullable: true},
		{Table: "employee", Name: "hire_date", DataType: "DATE", Nullable: true},
		{Table: "employee", Name: "active", DataType: "BOOLEAN", Nullable: true},
	})
	require.NoError(t, err)

	ts, err := reg.Get("employee")
	require.NoError(t, err)

	name, ok := ts.Field("name")
	require.True(t, ok)
	assert.True(t, name.Required)
	assert.Equal(t, FieldString, name.Type)

	salary, _ := ts.Field("salary")
	assert.False(t, salary.Required)
	assert.Equal(t, FieldNumber, salary.Type)

	hireDate, _ := ts.Field("hire_date")
	assert.Equal(t, FieldDate, hireDate.Type)

	active, _ := ts.Field("active")
	assert.Equal(t, FieldBoolean, active.Type)

	assert.Equal(t, "id", ts.PrimaryKey())
	assert.Equal(t, []string{"name"}, ts.RequiredFields())
}

func TestInferFieldType(t *testing.T) {
	tests := map[string]FieldType{
		"INTEGER":      FieldNumber,
		"int(11)":      FieldNumber,
		"DECIMAL(8,2)": FieldNumber,
		"VARCHAR(50)":  FieldString,
		"TEXT":         FieldString,
		"DATE":         FieldDate,
		"TIMESTAMP":    FieldDate,
		"BOOLEAN":      FieldBoolean,
		"tinyint":      FieldNumber,
	}

	for in, want := range tests {
		assert.Equal(t, want, inferFieldType(in), "input %q", in)
	}
}
