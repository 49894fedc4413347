package target

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"

	"github.com/lance6716/plan-diff/pkg/util"
	// register the "sqlserver" driver
	_ "github.com/microsoft/go-mssqldb"
	"github.com/pingcap/errors"
	"go.uber.org/zap"
)

// MSSQLExecutor gets estimated plans from SQL Server with SHOWPLAN_TEXT, which
// is a session setting so every EXPLAIN pins one connection.
type MSSQLExecutor struct {
	db *sql.DB
}

func newMSSQLExecutor(dsn string) (*MSSQLExecutor, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "open SQL Server connection")
	}
	return NewMSSQLExecutor(db), nil
}

// NewMSSQLExecutor creates a MSSQLExecutor on an opened database.
func NewMSSQLExecutor(db *sql.DB) *MSSQLExecutor {
	return &MSSQLExecutor{db: db}
}

// Explain implements Executor.
func (e *MSSQLExecutor) Explain(ctx context.Context, query string) (string, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return "", errors.Annotate(err, "failed to get connection")
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, "SET SHOWPLAN_TEXT ON"); err != nil {
		return "", errors.Annotate(err, "failed to enable SHOWPLAN_TEXT")
	}
	defer func() {
		// the connection goes back to the pool, so the setting must be reverted
		if _, err2 := conn.ExecContext(context.Background(), "SET SHOWPLAN_TEXT OFF"); err2 != nil {
			util.Logger.Warn("failed to disable SHOWPLAN_TEXT", zap.Error(err2))
			// discard the connection
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
	}()

	stmt := strings.TrimRight(strings.TrimSpace(query), "; \t\n")
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return "", errors.Annotatef(err, "failed to get SHOWPLAN_TEXT of: %s", stmt)
	}
	defer rows.Close()

	// the first result set is the statement text, the following ones are
	// plan rows
	var lines []string
	for resultSet := 0; ; resultSet++ {
		_, fields, err2 := util.ReadAllStrRows(rows)
		if err2 != nil {
			return "", errors.Annotatef(err2, "failed to read SHOWPLAN_TEXT of: %s", stmt)
		}
		if resultSet > 0 {
			for _, row := range fields {
				if len(row) > 0 {
					lines = append(lines, strings.TrimRight(row[0], " \r\n"))
				}
			}
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err = rows.Err(); err != nil {
		return "", errors.Annotatef(err, "failed to read SHOWPLAN_TEXT of: %s", stmt)
	}
	return strings.Join(lines, "\n"), nil
}

// Version implements Executor.
func (e *MSSQLExecutor) Version(ctx context.Context) (string, error) {
	var version string
	err := e.db.QueryRowContext(ctx, "SELECT @@VERSION").Scan(&version)
	return version, errors.Trace(err)
}

// Ping implements Executor.
func (e *MSSQLExecutor) Ping(ctx context.Context) error {
	return errors.Trace(e.db.PingContext(ctx))
}

// Close implements Executor.
func (e *MSSQLExecutor) Close() error {
	return e.db.Close()
}
