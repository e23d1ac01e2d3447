package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// mysqlIntrospector reads column metadata from information_schema for the
// current database.
type mysqlIntrospector struct{}

func (mysqlIntrospector) Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT table_name, column_name, data_type, is_nullable, column_key
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		ORDER BY table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("query information_schema: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var table, name, dataType, nullable, key string

		if err := rows.Scan(&table, &name, &dataType, &nullable, &key); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		columns = append(columns, schema.Column{
			Table:      table,
			Name:       name,
			DataType:   dataType,
			Nullable:   nullable == "YES",
			PrimaryKey: key == "PRI",
		})
	}

	return columns, rows.Err()
}

func init() {
	RegisterIntrospector("mysql", mysqlIntrospector{})
}
