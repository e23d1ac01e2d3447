package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot/sqlpilot/internal/errors"
)

const demoYAML = `
tables:
  - name: employee
    aliases: [emp, staff]
    fields:
      - name: id
        type: number
        primary_key: true
      - name: name
        type: string
        required: true
        max_length: 100
        description: Full name of the employee
      - name: department
        type: string
        required: true
      - name: salary
        type: number
        required: true
      - name: hire_date
        type: date
  - name: project
    fields:
      - name: id
        type: number
        primary_key: true
      - name: name
        required: true
`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(demoYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"employee", "project"}, reg.Tables())

	required, err := reg.RequiredFields("employee")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "department", "salary"}, required)

	ts, err := reg.Get("project")
	require.NoError(t, err)

	// Omitted type defaults to string.
	name, ok := ts.Field("name")
	require.True(t, ok)
	assert.Equal(t, FieldString, name.Type)
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte(`
tables:
  - name: employee
    fields:
      - name: salary
        type: decimal
`))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "decimal")
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("tables: []"))
	require.Error(t, err)

	_, err = Parse([]byte("not yaml: ["))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoYAML), 0600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, reg.Tables(), 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}
