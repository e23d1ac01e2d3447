package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/sqlparse"
)

// QueryResult carries the outcome of one executed statement. SELECT fills
// Columns and Rows; mutations fill RowsAffected.
type QueryResult struct {
	Columns      []string   `json:"columns,omitempty"`
	Rows         [][]string `json:"rows,omitempty"`
	RowsAffected int64      `json:"rows_affected"`
	IsSelect     bool       `json:"is_select"`
}

// Executor runs finalized SQL statements against a live connection with a
// per-statement timeout.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
}

// NewExecutor wraps a connection. A zero timeout disables the deadline.
func NewExecutor(db *sql.DB, timeout time.Duration) *Executor {
	return &Executor{db: db, timeout: timeout}
}

// Run executes one statement. SELECT statements are scanned into string rows
// so the result can be rendered without knowing column types up front.
func (e *Executor) Run(ctx context.Context, statement string) (*QueryResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if sqlparse.DetectOperation(statement) == sqlparse.OpSelect {
		return e.runQuery(ctx, statement)
	}

	return e.runExec(ctx, statement)
}

func (e *Executor) runQuery(ctx context.Context, statement string) (*QueryResult, error) {
	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, wrapExecErr(err, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapExecErr(err, "failed to read result columns")
	}

	result := &QueryResult{Columns: cols, IsSelect: true}

	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		targets := make([]interface{}, len(cols))

		for i := range cells {
			targets[i] = &cells[i]
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, wrapExecErr(err, "failed to scan result row")
		}

		row := make([]string, len(cols))

		for i, cell := range cells {
			if cell.Valid {
				row[i] = cell.String
			} else {
				row[i] = "NULL"
			}
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapExecErr(err, "result iteration failed")
	}

	result.RowsAffected = int64(len(result.Rows))

	return result, nil
}

func (e *Executor) runExec(ctx context.Context, statement string) (*QueryResult, error) {
	res, err := e.db.ExecContext(ctx, statement)
	if err != nil {
		return nil, wrapExecErr(err, "statement failed")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows. Not fatal.
		affected = 0
	}

	return &QueryResult{RowsAffected: affected}, nil
}

// CountWhere counts rows matching column = value. Used for the pre-insert
// duplicate check. The identifier arguments come from the validated schema,
// never from user text; only the value needs quoting.
func (e *Executor) CountWhere(ctx context.Context, table, column string, value interface{}) (int64, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	statement := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE %s = %s",
		table, column, sqlparse.QuoteLiteral(value),
	)

	var count int64
	if err := e.db.QueryRowContext(ctx, statement).Scan(&count); err != nil {
		return 0, wrapExecErr(err, "duplicate check failed")
	}

	return count, nil
}

func wrapExecErr(err error, msg string) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return errors.Wrap(err, errors.ErrTypeTimeout, msg)
	}

	return errors.Wrap(err, errors.ErrTypeExecution, msg)
}
