package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// postgresIntrospector reads column metadata from information_schema in the
// public schema. Primary keys come from a join against table_constraints and
// key_column_usage.
type postgresIntrospector struct{}

func (postgresIntrospector) Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.table_name, c.column_name, c.data_type, c.is_nullable,
		       EXISTS (
		           SELECT 1
		           FROM information_schema.table_constraints tc
		           JOIN information_schema.key_column_usage kcu
		             ON tc.constraint_name = kcu.constraint_name
		            AND tc.table_schema = kcu.table_schema
		           WHERE tc.constraint_type = 'PRIMARY KEY'
		             AND tc.table_schema = c.table_schema
		             AND tc.table_name = c.table_name
		             AND kcu.column_name = c.column_name
		       ) AS is_primary
		FROM information_schema.columns c
		WHERE c.table_schema = 'public'
		ORDER BY c.table_name, c.ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var (
			table, name, dataType, nullable string
			primary                         bool
		)

		if err := rows.Scan(&table, &name, &dataType, &nullable, &primary); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		columns = append(columns, schema.Column{
			Table:      table,
			Name:       name,
			DataType:   dataType,
			Nullable:   nullable == "YES",
			PrimaryKey: primary,
		})
	}

	return columns, rows.Err()
}

func init() {
	RegisterIntrospector("postgres", postgresIntrospector{})
}
