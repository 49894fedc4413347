package target

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pingcap/errors"
)

// PGExecutor runs EXPLAIN on PostgreSQL protocol databases like PostgreSQL and
// CockroachDB, where each result row is one line of the plan.
type PGExecutor struct {
	pool *pgxpool.Pool
}

func newPGExecutor(ctx context.Context, dsn string) (*PGExecutor, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Annotate(err, "parse PostgreSQL connection string")
	}
	return &PGExecutor{pool: pool}, nil
}

// Explain implements Executor.
func (e *PGExecutor) Explain(ctx context.Context, query string) (string, error) {
	stmt := explainStmt(query)
	rows, err := e.pool.Query(ctx, stmt)
	if err != nil {
		return "", errors.Annotatef(err, "failed to execute: %s", stmt)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err = rows.Scan(&line); err != nil {
			return "", errors.Annotatef(err, "failed to scan EXPLAIN output of: %s", stmt)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return "", errors.Annotatef(err, "failed to read EXPLAIN output of: %s", stmt)
	}
	return strings.Join(lines, "\n"), nil
}

// Version implements Executor.
func (e *PGExecutor) Version(ctx context.Context) (string, error) {
	var version string
	err := e.pool.QueryRow(ctx, "SELECT version()").Scan(&version)
	return version, errors.Trace(err)
}

// Ping implements Executor.
func (e *PGExecutor) Ping(ctx context.Context) error {
	return errors.Trace(e.pool.Ping(ctx))
}

// Close implements Executor.
func (e *PGExecutor) Close() error {
	e.pool.Close()
	return nil
}
