package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// sqliteIntrospector reads table metadata via sqlite_master and PRAGMA
// table_info.
type sqliteIntrospector struct{}

func (sqliteIntrospector) Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}

		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var columns []schema.Column

	for _, table := range tables {
		// PRAGMA does not support placeholders; table names come from
		// sqlite_master, not user input.
		cr, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
		if err != nil {
			return nil, fmt.Errorf("query columns for %s: %w", table, err)
		}

		for cr.Next() {
			var (
				cid         int
				name, ctype string
				notnull, pk int
				dflt        sql.NullString
			)

			if err := cr.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
				cr.Close()
				return nil, fmt.Errorf("scan column for %s: %w", table, err)
			}

			columns = append(columns, schema.Column{
				Table:      table,
				Name:       name,
				DataType:   ctype,
				Nullable:   notnull == 0,
				PrimaryKey: pk != 0,
			})
		}

		cr.Close()

		if err := cr.Err(); err != nil {
			return nil, err
		}
	}

	return columns, nil
}

func init() {
	RegisterIntrospector("sqlite", sqliteIntrospector{})
}
