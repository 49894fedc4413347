package target

import (
	"context"
	"database/sql"

	"github.com/lance6716/plan-diff/pkg/util"
	"github.com/pingcap/errors"
)

// MySQLExecutor runs EXPLAIN on MySQL protocol databases like MySQL and TiDB.
// The multi-column result is formatted like the output of `mysql --batch`.
type MySQLExecutor struct {
	db *sql.DB
}

func newMySQLExecutor(dsn string) (*MySQLExecutor, error) {
	db, err := util.ConnectMySQL(dsn)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewMySQLExecutor(db), nil
}

// NewMySQLExecutor creates a MySQLExecutor on an opened database.
func NewMySQLExecutor(db *sql.DB) *MySQLExecutor {
	return &MySQLExecutor{db: db}
}

// Explain implements Executor.
func (e *MySQLExecutor) Explain(ctx context.Context, query string) (string, error) {
	stmt := explainStmt(query)
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return "", errors.Annotatef(err, "failed to execute: %s", stmt)
	}
	defer rows.Close()

	columns, fields, err := util.ReadAllStrRows(rows)
	if err != nil {
		return "", errors.Annotatef(err, "failed to read rows of: %s", stmt)
	}
	return util.FormatBatchTable(columns, fields), nil
}

// Version implements Executor.
func (e *MySQLExecutor) Version(ctx context.Context) (string, error) {
	query := "SELECT VERSION() AS version"
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return "", errors.Annotatef(err, "failed to execute query: %s", query)
	}
	defer rows.Close()

	fields, allFound, err := util.ReadStrRowsByColumnName(rows, []string{"version"})
	if err != nil {
		return "", errors.Trace(err)
	}
	if !allFound || len(fields) == 0 {
		return "", errors.Errorf("no version found by query: %s", query)
	}
	return fields[0][0], nil
}

// Ping implements Executor.
func (e *MySQLExecutor) Ping(ctx context.Context) error {
	return errors.Trace(e.db.PingContext(ctx))
}

// Close implements Executor.
func (e *MySQLExecutor) Close() error {
	return e.db.Close()
}
