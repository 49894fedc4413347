// Package target describes the database endpoints plans are fetched from, and
// implements the EXPLAIN execution for each supported engine.
package target

import (
	"context"
	"sync/atomic"

	"github.com/pingcap/errors"
)

// Labels of the targets.
const (
	LabelOld       = "old"
	LabelNew       = "new"
	LabelReference = "reference"
)

// ConnectionTarget is a database endpoint. The DSN is opaque to everything
// except the Executor that is opened from it.
type ConnectionTarget struct {
	Label string
	DSN   string
	Exec  Executor

	version atomic.Pointer[Version]
}

// New creates a ConnectionTarget with an opened Executor.
func New(label, dsn string, exec Executor) *ConnectionTarget {
	return &ConnectionTarget{Label: label, DSN: dsn, Exec: exec}
}

// Connect opens the Executor for dsn and creates a ConnectionTarget. It doesn't
// check the connectivity, see Executor.Ping.
func Connect(ctx context.Context, label, dsn string, opts Options) (*ConnectionTarget, error) {
	exec, err := Open(ctx, dsn, opts)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s target %s", label, MaskDSN(dsn))
	}
	return New(label, dsn, exec), nil
}

// Version returns the detected engine version, or nil if it's not detected yet.
func (t *ConnectionTarget) Version() *Version {
	return t.version.Load()
}

// SetVersion stores the detected engine version. Only the first call takes
// effect, it returns false for later calls.
func (t *ConnectionTarget) SetVersion(v Version) bool {
	return t.version.CompareAndSwap(nil, &v)
}

// MaskedDSN returns the DSN with credentials hidden, safe to print.
func (t *ConnectionTarget) MaskedDSN() string {
	return MaskDSN(t.DSN)
}

// Info returns the display information parsed from the DSN.
func (t *ConnectionTarget) Info() DSNInfo {
	return ParseDSNInfo(t.DSN)
}

// Close closes the Executor.
func (t *ConnectionTarget) Close() error {
	if t.Exec == nil {
		return nil
	}
	return t.Exec.Close()
}
