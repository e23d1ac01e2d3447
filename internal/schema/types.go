package schema

import (
	"fmt"
	"strings"
)

// FieldType is the logical type of a column as seen by the validator.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

// DefaultDateFormat is the layout used for date fields without an explicit format.
const DefaultDateFormat = "2006-01-02"

// FieldSchema describes a single column. Immutable after load.
type FieldSchema struct {
	Name        string    `yaml:"name"        json:"name"`
	Type        FieldType `yaml:"type"        json:"type"`
	Required    bool      `yaml:"required"    json:"required"`
	Format      string    `yaml:"format"      json:"format,omitempty"`
	MaxLength   int       `yaml:"max_length"  json:"max_length,omitempty"`
	Description string    `yaml:"description" json:"description,omitempty"`
	PrimaryKey  bool      `yaml:"primary_key" json:"primary_key,omitempty"`
}

// DateFormat returns the Go time layout for a date field.
func (f FieldSchema) DateFormat() string {
	if f.Format != "" {
		return f.Format
	}

	return DefaultDateFormat
}

// Describe returns the human-readable prompt text for this field, used when
// asking the user for a missing value.
func (f FieldSchema) Describe() string {
	if f.Description != "" {
		return f.Description
	}

	switch f.Type {
	case FieldNumber:
		return fmt.Sprintf("Numeric value for %s", f.Name)
	case FieldDate:
		return fmt.Sprintf("Date for %s in %s format", f.Name, datePromptHint(f.DateFormat()))
	case FieldBoolean:
		return fmt.Sprintf("true or false for %s", f.Name)
	default:
		return fmt.Sprintf("Value for %s", f.Name)
	}
}

// datePromptHint renders a Go time layout as the user-facing placeholder
// (e.g. 2006-01-02 -> YYYY-MM-DD).
func datePromptHint(layout string) string {
	replacer := strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD")
	return replacer.Replace(layout)
}

// TableSchema is an ordered set of fields for one logical entity.
// Field order is the declaration order and defines the order in which
// missing fields are asked for.
type TableSchema struct {
	Name    string        `yaml:"name"    json:"name"`
	Aliases []string      `yaml:"aliases" json:"aliases,omitempty"`
	Fields  []FieldSchema `yaml:"fields"  json:"fields"`

	index map[string]int
}

// buildIndex populates the name lookup. Called once by the Registry.
func (t *TableSchema) buildIndex() {
	t.index = make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		t.index[strings.ToLower(f.Name)] = i
	}
}

// Field looks up a field schema by name, case-insensitively.
func (t *TableSchema) Field(name string) (FieldSchema, bool) {
	if t.index == nil {
		t.buildIndex()
	}

	i, ok := t.index[strings.ToLower(name)]
	if !ok {
		return FieldSchema{}, false
	}

	return t.Fields[i], true
}

// RequiredFields returns the required, non-primary-key field names in
// declaration order. The ordering is stable across calls.
func (t *TableSchema) RequiredFields() []string {
	var required []string

	for _, f := range t.Fields {
		if f.Required && !f.PrimaryKey {
			required = append(required, f.Name)
		}
	}

	return required
}

// InsertableFields returns all non-primary-key field names in declaration order.
func (t *TableSchema) InsertableFields() []string {
	var fields []string

	for _, f := range t.Fields {
		if !f.PrimaryKey {
			fields = append(fields, f.Name)
		}
	}

	return fields
}

// PrimaryKey returns the primary-key field name, or "" if none is declared.
func (t *TableSchema) PrimaryKey() string {
	for _, f := range t.Fields {
		if f.PrimaryKey {
			return f.Name
		}
	}

	return ""
}
