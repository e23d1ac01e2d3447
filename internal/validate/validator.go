package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// FieldError describes a value that is present but invalid. Unlike a missing
// field, it is terminal for the request: re-asking the same question would
// loop forever.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Result is the outcome of validating a column-value map against a table
// schema. Missing lists required fields with no usable value, in schema
// declaration order. Record is non-nil only when Missing and Errors are both
// empty, and then holds the fully typed field set.
type Result struct {
	Missing []string               `json:"missing_fields,omitempty"`
	Errors  []FieldError           `json:"errors,omitempty"`
	Record  map[string]interface{} `json:"record,omitempty"`
}

// Complete reports whether the record validated with nothing left to ask.
func (r Result) Complete() bool {
	return len(r.Missing) == 0 && len(r.Errors) == 0
}

// ErrorStrings renders the field errors for user-facing surfaces.
func (r Result) ErrorStrings() []string {
	if len(r.Errors) == 0 {
		return nil
	}

	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.String()
	}

	return out
}

// Validate checks a column-value map against a table schema. A field counts
// as missing precisely when it is required and has no usable value (absent,
// nil, or blank); a present value that fails type or format coercion is a
// field error instead. Validate is a pure function: running it twice on the
// same map yields the same result.
func Validate(values map[string]interface{}, table *schema.TableSchema) Result {
	var result Result

	record := make(map[string]interface{})

	for _, field := range table.Fields {
		if field.PrimaryKey {
			continue
		}

		value, present := values[field.Name]
		if !present || isAbsent(value) {
			if field.Required {
				result.Missing = append(result.Missing, field.Name)
			}

			continue
		}

		typed, err := coerce(value, field)
		if err != nil {
			result.Errors = append(result.Errors, FieldError{
				Field:   field.Name,
				Message: err.Error(),
			})

			continue
		}

		record[field.Name] = typed
	}

	// Values naming columns the schema does not declare are terminal errors.
	for name := range values {
		if _, ok := table.Field(name); !ok {
			result.Errors = append(result.Errors, FieldError{
				Field:   name,
				Message: fmt.Sprintf("unknown column on table %s", table.Name),
			})
		}
	}

	if result.Complete() {
		result.Record = record
	}

	return result
}

// ValidatePartial checks only the values actually present in the map, for
// UPDATE statements where an absent column means "not being changed" rather
// than "missing". Explicit nulls are kept so SET x = NULL survives. Required
// flags play no role here; only type and format coercion can fail.
func ValidatePartial(values map[string]interface{}, table *schema.TableSchema) Result {
	var result Result

	record := make(map[string]interface{})

	for _, field := range table.Fields {
		if field.PrimaryKey {
			continue
		}

		value, present := values[field.Name]
		if !present {
			continue
		}

		if isAbsent(value) {
			record[field.Name] = nil
			continue
		}

		typed, err := coerce(value, field)
		if err != nil {
			result.Errors = append(result.Errors, FieldError{
				Field:   field.Name,
				Message: err.Error(),
			})

			continue
		}

		record[field.Name] = typed
	}

	for name := range values {
		if _, ok := table.Field(name); !ok {
			result.Errors = append(result.Errors, FieldError{
				Field:   name,
				Message: fmt.Sprintf("unknown column on table %s", table.Name),
			})
		}
	}

	if result.Complete() {
		result.Record = record
	}

	return result
}

// isAbsent reports whether a present map entry still counts as "no value":
// nil, a blank string, or the literal NULL sentinel.
func isAbsent(value interface{}) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		trimmed := strings.TrimSpace(s)
		return trimmed == "" || strings.EqualFold(trimmed, "NULL")
	}

	return false
}

// coerce converts a raw value (typed literal or user-supplied string) into
// the field's declared type.
func coerce(value interface{}, field schema.FieldSchema) (interface{}, error) {
	switch field.Type {
	case schema.FieldString:
		return coerceString(value, field)
	case schema.FieldNumber:
		return coerceNumber(value)
	case schema.FieldDate:
		return coerceDate(value, field)
	case schema.FieldBoolean:
		return coerceBool(value)
	default:
		return nil, fmt.Errorf("unsupported field type %q", field.Type)
	}
}

func coerceString(value interface{}, field schema.FieldSchema) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}

	s = strings.TrimSpace(s)

	if field.MaxLength > 0 && len(s) > field.MaxLength {
		return nil, fmt.Errorf("exceeds maximum length of %d characters", field.MaxLength)
	}

	return s, nil
}

func coerceNumber(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return v, nil
	case string:
		s := strings.TrimSpace(v)

		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}

		return nil, fmt.Errorf("%q is not a number", v)
	default:
		return nil, fmt.Errorf("%v is not a number", value)
	}
}

func coerceDate(value interface{}, field schema.FieldSchema) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%v is not a date", value)
	}

	s = strings.TrimSpace(s)
	layout := field.DateFormat()

	if _, err := time.Parse(layout, s); err != nil {
		return nil, fmt.Errorf("%q does not match the %s date format", s, layout)
	}

	return s, nil
}

func coerceBool(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(v)))
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", v)
		}

		return b, nil
	default:
		return nil, fmt.Errorf("%v is not a boolean", value)
	}
}
