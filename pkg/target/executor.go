package target

import (
	"context"
	"strings"

	"github.com/pingcap/errors"
)

// Executor runs statements against one database endpoint. Implementations
// must be safe for concurrent use.
type Executor interface {
	// Explain returns the textual plan of query. query should not carry the
	// EXPLAIN keyword.
	Explain(ctx context.Context, query string) (string, error)
	// Version returns the raw result of the engine's version query.
	Version(ctx context.Context) (string, error)
	// Ping checks the endpoint can be reached and the login is accepted.
	Ping(ctx context.Context) error
	Close() error
}

// Options is the configuration shared by executors.
type Options struct {
	// ClientCommand, when not empty, forces the use of a command-line client
	// like "bendsql" for every scheme.
	ClientCommand string
	// ClientDSNEnv is the environment variable used to pass the DSN to the
	// command-line client.
	ClientDSNEnv string
}

// Open creates an Executor for dsn by its scheme:
//   - mysql://, tidb:// or a go-sql-driver DSN: MySQL protocol
//   - postgres://, postgresql://: PostgreSQL protocol
//   - sqlserver://: SQL Server
//   - databend://: the bendsql command-line client
func Open(ctx context.Context, dsn string, opts Options) (Executor, error) {
	if dsn == "" {
		return nil, errors.New("empty DSN")
	}
	if opts.ClientCommand != "" {
		return newCLIExecutor(opts.ClientCommand, opts.ClientDSNEnv, dsn), nil
	}

	switch scheme := Scheme(dsn); scheme {
	case "", "mysql", "tidb":
		return newMySQLExecutor(dsn)
	case "postgres", "postgresql":
		return newPGExecutor(ctx, dsn)
	case "sqlserver":
		return newMSSQLExecutor(dsn)
	case "databend", "databend+http", "databend+https":
		return newCLIExecutor(defaultClientCommand, opts.ClientDSNEnv, dsn), nil
	default:
		return nil, errors.Errorf("unsupported scheme %q", scheme)
	}
}

func explainStmt(query string) string {
	return "EXPLAIN " + strings.TrimRight(strings.TrimSpace(query), "; \t\n")
}
