package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

func employeeSchema(t *testing.T) *schema.TableSchema {
	t.Helper()

	reg, err := schema.NewRegistry([]*schema.TableSchema{{
		Name: "employee",
		Fields: []schema.FieldSchema{
			{Name: "id", Type: schema.FieldNumber, PrimaryKey: true},
			{Name: "name", Type: schema.FieldString, Required: true, MaxLength: 100},
			{Name: "department", Type: schema.FieldString, Required: true, MaxLength: 50},
			{Name: "salary", Type: schema.FieldNumber, Required: true},
			{Name: "hire_date", Type: schema.FieldDate},
			{Name: "active", Type: schema.FieldBoolean},
		},
	}})
	require.NoError(t, err)

	ts, err := reg.Get("employee")
	require.NoError(t, err)

	return ts
}

func TestValidateComplete(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     int64(65000),
	}, ts)

	assert.True(t, result.Complete())
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Sarah", result.Record["name"])
	assert.Equal(t, int64(65000), result.Record["salary"])
}

func TestValidateMissingFieldsInDeclarationOrder(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{"name": "Sarah"}, ts)

	assert.Equal(t, []string{"department", "salary"}, result.Missing)
	assert.Empty(t, result.Errors)
	assert.Nil(t, result.Record)
}

func TestValidateNilCountsAsMissing(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": nil,
		"salary":     "NULL",
	}, ts)

	assert.Equal(t, []string{"department", "salary"}, result.Missing)
	assert.Empty(t, result.Errors)
}

func TestValidateBlankStringCountsAsMissing(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "   ",
		"salary":     int64(1),
	}, ts)

	assert.Equal(t, []string{"department"}, result.Missing)
}

func TestValidateBadValueIsErrorNotMissing(t *testing.T) {
	ts := employeeSchema(t)

	// A required field with an invalid present value must surface as an
	// error, never loop back into the ask-for-field queue.
	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     "lots",
	}, ts)

	assert.Empty(t, result.Missing)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "salary", result.Errors[0].Field)
}

func TestValidateMalformedDate(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     int64(65000),
		"hire_date":  "not-a-date",
	}, ts)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "hire_date", result.Errors[0].Field)
	assert.NotContains(t, result.Missing, "hire_date")
	assert.Nil(t, result.Record)
}

func TestValidateCoercesUserReplies(t *testing.T) {
	ts := employeeSchema(t)

	// Interactive replies arrive as raw strings and must coerce.
	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     "65000",
		"hire_date":  "2024-01-15",
		"active":     "true",
	}, ts)

	assert.True(t, result.Complete())
	assert.Equal(t, int64(65000), result.Record["salary"])
	assert.Equal(t, "2024-01-15", result.Record["hire_date"])
	assert.Equal(t, true, result.Record["active"])
}

func TestValidateMaxLength(t *testing.T) {
	ts := employeeSchema(t)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}

	result := Validate(map[string]interface{}{
		"name":       string(long),
		"department": "Marketing",
		"salary":     int64(1),
	}, ts)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "name", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "maximum length")
}

func TestValidateUnknownColumn(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     int64(1),
		"nickname":   "S",
	}, ts)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "nickname", result.Errors[0].Field)
}

func TestValidateIdempotent(t *testing.T) {
	ts := employeeSchema(t)
	values := map[string]interface{}{
		"name":      "Sarah",
		"salary":    "bad",
		"hire_date": "also-bad",
	}

	first := Validate(values, ts)
	second := Validate(values, ts)

	assert.Equal(t, first.Missing, second.Missing)
	assert.Equal(t, first.Errors, second.Errors)
}

func TestValidatePartialIgnoresAbsentRequired(t *testing.T) {
	ts := employeeSchema(t)

	// Update semantics: columns not in the SET clause are not missing.
	result := ValidatePartial(map[string]interface{}{"salary": "70000"}, ts)

	assert.True(t, result.Complete())
	assert.Empty(t, result.Missing)
	assert.Equal(t, int64(70000), result.Record["salary"])
}

func TestValidatePartialKeepsExplicitNull(t *testing.T) {
	ts := employeeSchema(t)

	result := ValidatePartial(map[string]interface{}{"hire_date": nil}, ts)

	require.True(t, result.Complete())
	v, present := result.Record["hire_date"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestValidatePartialBadValueStillErrors(t *testing.T) {
	ts := employeeSchema(t)

	result := ValidatePartial(map[string]interface{}{"salary": "lots"}, ts)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "salary", result.Errors[0].Field)
	assert.Nil(t, result.Record)
}

func TestValidateOptionalAbsentIsFine(t *testing.T) {
	ts := employeeSchema(t)

	result := Validate(map[string]interface{}{
		"name":       "Sarah",
		"department": "Marketing",
		"salary":     int64(65000),
	}, ts)

	assert.True(t, result.Complete())
	assert.NotContains(t, result.Record, "hire_date")
}
