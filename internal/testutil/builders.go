package testutil

import (
	"testing"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// DemoRegistry builds the employee/project registry used across tests.
// Field declaration order matters: it is the order missing fields are asked
// for.
func DemoRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	reg, err := schema.NewRegistry([]*schema.TableSchema{
		{
			Name:    "employee",
			Aliases: []string{"emp", "staff"},
			Fields: []schema.FieldSchema{
				{Name: "id", Type: schema.FieldNumber, PrimaryKey: true},
				{Name: "name", Type: schema.FieldString, Required: true, MaxLength: 100},
				{Name: "department", Type: schema.FieldString, Required: true, MaxLength: 50},
				{Name: "salary", Type: schema.FieldNumber, Required: true},
				{Name: "hire_date", Type: schema.FieldDate},
			},
		},
		{
			Name: "project",
			Fields: []schema.FieldSchema{
				{Name: "id", Type: schema.FieldNumber, PrimaryKey: true},
				{Name: "title", Type: schema.FieldString, Required: true},
				{Name: "budget", Type: schema.FieldNumber},
				{Name: "deadline", Type: schema.FieldDate},
			},
		},
	})
	if err != nil {
		t.Fatalf("building demo registry: %v", err)
	}

	return reg
}
