package schema

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sqlpilot/sqlpilot/internal/errors"
)

// fileSchema is the on-disk YAML layout.
type fileSchema struct {
	Tables []*TableSchema `yaml:"tables"`
}

// LoadFile loads a registry from a YAML schema definition file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTypeConfig, "failed to read schema file %s", path)
	}

	return Parse(data)
}

// Parse builds a registry from YAML schema bytes.
func Parse(data []byte) (*Registry, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to parse schema YAML")
	}

	if len(file.Tables) == 0 {
		return nil, errors.New(errors.ErrTypeConfig, "schema file defines no tables")
	}

	for _, t := range file.Tables {
		for i, f := range t.Fields {
			if f.Name == "" {
				return nil, errors.Newf(
					errors.ErrTypeConfig,
					"table %s: field %d has no name", t.Name, i,
				)
			}

			if f.Type == "" {
				t.Fields[i].Type = FieldString
			}

			switch t.Fields[i].Type {
			case FieldString, FieldNumber, FieldDate, FieldBoolean:
			default:
				return nil, errors.Newf(
					errors.ErrTypeConfig,
					"table %s: field %s has unknown type %q", t.Name, f.Name, f.Type,
				)
			}
		}
	}

	return NewRegistry(file.Tables)
}
