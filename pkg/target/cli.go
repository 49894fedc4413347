package target

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pingcap/errors"
)

const (
	defaultClientCommand = "bendsql"
	defaultClientDSNEnv  = "BENDSQL_DSN"
	// the child gets this long to exit after the context is done before its
	// pipes are closed
	clientWaitDelay = 2 * time.Second
)

// CLIExecutor runs statements through a command-line client like bendsql. The
// DSN is passed by an environment variable of the child process so it never
// shows in the process list.
type CLIExecutor struct {
	command string
	dsnEnv  string
	dsn     string
}

func newCLIExecutor(command, dsnEnv, dsn string) *CLIExecutor {
	if dsnEnv == "" {
		dsnEnv = defaultClientDSNEnv
	}
	return &CLIExecutor{command: command, dsnEnv: dsnEnv, dsn: dsn}
}

func (e *CLIExecutor) run(ctx context.Context, stmt string) (string, error) {
	cmd := exec.CommandContext(ctx, e.command, "--query="+stmt)
	cmd.Env = append(os.Environ(), e.dsnEnv+"="+e.dsn)
	cmd.WaitDelay = clientWaitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", errors.Trace(ctxErr)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			return "", errors.Annotatef(err, "%s failed", e.command)
		}
		return "", errors.New(msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Explain implements Executor.
func (e *CLIExecutor) Explain(ctx context.Context, query string) (string, error) {
	return e.run(ctx, explainStmt(query))
}

// Version implements Executor. The client may print the result in a table, the
// first line that is neither a border nor the header is the version.
func (e *CLIExecutor) Version(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "SELECT version()")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "+") ||
			strings.HasPrefix(line, "|") ||
			strings.Contains(strings.ToLower(line), "version()") {
			continue
		}
		return line, nil
	}
	return "", errors.Errorf("no version found in output of %s: %q", e.command, out)
}

// Ping implements Executor.
func (e *CLIExecutor) Ping(ctx context.Context) error {
	_, err := e.run(ctx, "SELECT 1")
	return err
}

// Close implements Executor.
func (*CLIExecutor) Close() error {
	return nil
}
