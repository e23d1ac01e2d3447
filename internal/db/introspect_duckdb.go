package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// duckdbIntrospector reads column metadata from DuckDB's information_schema.
// DuckDB does not expose primary key constraints there, so a lone integer id
// column is treated as the key.
type duckdbIntrospector struct{}

func (duckdbIntrospector) Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'main'
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var table, name, dataType, nullable string

		if err := rows.Scan(&table, &name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		columns = append(columns, schema.Column{
			Table:      table,
			Name:       name,
			DataType:   dataType,
			Nullable:   nullable == "YES",
			PrimaryKey: name == "id",
		})
	}

	return columns, rows.Err()
}

func init() {
	RegisterIntrospector("duckdb", duckdbIntrospector{})
}
