package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// mssqlIntrospector reads column metadata from INFORMATION_SCHEMA on SQL
// Server, joining KEY_COLUMN_USAGE for primary key detection.
type mssqlIntrospector struct{}

func (mssqlIntrospector) Columns(ctx context.Context, db *sql.DB) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT c.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE,
		       CASE WHEN kcu.COLUMN_NAME IS NULL THEN 0 ELSE 1 END AS IS_PRIMARY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
		    SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
		    FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		    JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		      ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
		    WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) kcu ON kcu.TABLE_NAME = c.TABLE_NAME AND kcu.COLUMN_NAME = c.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = 'dbo'
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`)
	if err != nil {
		return nil, fmt.Errorf("query INFORMATION_SCHEMA: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column

	for rows.Next() {
		var (
			table, name, dataType, nullable string
			primary                         int
		)

		if err := rows.Scan(&table, &name, &dataType, &nullable, &primary); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}

		columns = append(columns, schema.Column{
			Table:      table,
			Name:       name,
			DataType:   dataType,
			Nullable:   nullable == "YES",
			PrimaryKey: primary == 1,
		})
	}

	return columns, rows.Err()
}

func init() {
	RegisterIntrospector("sqlserver", mssqlIntrospector{})
}
