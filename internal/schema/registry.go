package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/errors"
)

// Registry is the authoritative source of table definitions. Loaded once at
// startup from a YAML file or database introspection; read-only thereafter.
type Registry struct {
	tables  map[string]*TableSchema
	order   []string
	aliases map[string]string
}

// NewRegistry builds a registry from table schemas. Declaration order of the
// slice is preserved for Tables().
func NewRegistry(tables []*TableSchema) (*Registry, error) {
	r := &Registry{
		tables:  make(map[string]*TableSchema, len(tables)),
		aliases: make(map[string]string),
	}

	for _, t := range tables {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" {
			return nil, errors.New(errors.ErrTypeConfig, "table schema with empty name")
		}

		if _, exists := r.tables[name]; exists {
			return nil, errors.Newf(errors.ErrTypeConfig, "duplicate table schema: %s", name)
		}

		t.Name = name
		t.buildIndex()
		r.tables[name] = t
		r.order = append(r.order, name)

		for _, alias := range t.Aliases {
			r.aliases[strings.ToLower(alias)] = name
		}
		// The naive plural is always accepted.
		if !strings.HasSuffix(name, "s") {
			r.aliases[name+"s"] = name
		}
	}

	return r, nil
}

// Get returns the schema for a table, resolving aliases first.
func (r *Registry) Get(table string) (*TableSchema, error) {
	name := r.Normalize(table)

	t, ok := r.tables[name]
	if !ok {
		return nil, errors.NewUnknownTable(table, r.Tables())
	}

	return t, nil
}

// RequiredFields returns the required field names for a table in declaration
// order. The ordering contract is load-bearing: it defines the order in which
// missing fields are asked for.
func (r *Registry) RequiredFields(table string) ([]string, error) {
	t, err := r.Get(table)
	if err != nil {
		return nil, err
	}

	return t.RequiredFields(), nil
}

// Tables returns the registered table names in declaration order.
func (r *Registry) Tables() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)

	return out
}

// Normalize maps aliases, plurals, and close variants onto a registered
// table name. Unresolvable names are returned lowercased and trimmed so the
// subsequent Get produces a useful UnknownTableError.
func (r *Registry) Normalize(table string) string {
	name := strings.ToLower(strings.TrimSpace(table))
	if name == "" {
		return name
	}

	if _, ok := r.tables[name]; ok {
		return name
	}

	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}

	// Last resort: substring match against registered names.
	for _, candidate := range r.order {
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			return candidate
		}
	}

	return name
}

// NormalizeSQL rewrites aliased or pluralized table references inside a
// generated statement to their canonical names.
func (r *Registry) NormalizeSQL(sql string) string {
	result := sql

	for alias, canonical := range r.aliases {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
		result = re.ReplaceAllString(result, canonical)
	}

	return result
}

// Describe renders the registry as schema context text for LLM prompts.
func (r *Registry) Describe() string {
	var sb strings.Builder

	for _, name := range r.order {
		t := r.tables[name]

		sb.WriteString(fmt.Sprintf("Table: %s\n", t.Name))
		sb.WriteString("Columns:\n")

		for _, f := range t.Fields {
			sb.WriteString(fmt.Sprintf("  - %s (%s)", f.Name, f.Type))

			if f.Required && !f.PrimaryKey {
				sb.WriteString(" [required]")
			}

			if f.PrimaryKey {
				sb.WriteString(" [primary key, auto-increment]")
			}

			if f.Description != "" {
				sb.WriteString(" - " + f.Description)
			}

			sb.WriteString("\n")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// Column is one row of database introspection output, produced by the
// per-driver introspectors in internal/db.
type Column struct {
	Table      string
	Name       string
	DataType   string
	Nullable   bool
	PrimaryKey bool
}

// FromColumns assembles a registry from introspected column metadata,
// preserving the order in which tables and columns were reported.
func FromColumns(columns []Column) (*Registry, error) {
	var (
		order  []string
		byName = make(map[string]*TableSchema)
	)

	for _, col := range columns {
		table := strings.ToLower(col.Table)

		t, ok := byName[table]
		if !ok {
			t = &TableSchema{Name: table}
			byName[table] = t
			order = append(order, table)
		}

		field := FieldSchema{
			Name:       strings.ToLower(col.Name),
			Type:       inferFieldType(col.DataType),
			Required:   !col.Nullable && !col.PrimaryKey,
			PrimaryKey: col.PrimaryKey,
		}
		t.Fields = append(t.Fields, field)
	}

	tables := make([]*TableSchema, 0, len(order))
	for _, name := range order {
		tables = append(tables, byName[name])
	}

	return NewRegistry(tables)
}

// inferFieldType maps a driver-reported column type onto a logical FieldType.
func inferFieldType(dataType string) FieldType {
	dt := strings.ToUpper(dataType)

	switch {
	case strings.Contains(dt, "BOOL"):
		return FieldBoolean
	case strings.Contains(dt, "INT"),
		strings.Contains(dt, "REAL"),
		strings.Contains(dt, "FLOAT"),
		strings.Contains(dt, "DOUBLE"),
		strings.Contains(dt, "DECIMAL"),
		strings.Contains(dt, "NUMERIC"),
		strings.Contains(dt, "MONEY"):
		return FieldNumber
	case strings.Contains(dt, "DATE"), strings.Contains(dt, "TIMESTAMP"):
		return FieldDate
	default:
		return FieldString
	}
}
