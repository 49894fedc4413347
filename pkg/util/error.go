package util

import (
	"context"
	"database/sql/driver"
	goerrors "errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/errno"
)

// Error kinds of plan-diff. Use Equal to check if an error, possibly wrapped by
// errors.Trace or errors.Annotate, has the kind.
var (
	ErrParse = errors.Normalize(
		"failed to parse query set %s: %s",
		errors.RFCCodeText("plan-diff:ParseError"),
	)
	ErrConnection = errors.Normalize(
		"cannot connect to %s target: %s",
		errors.RFCCodeText("plan-diff:ConnectionError"),
	)
	ErrTimeout = errors.Normalize(
		"timeout",
		errors.RFCCodeText("plan-diff:TimeoutError"),
	)
	ErrValidation = errors.Normalize(
		"invalid input: %s",
		errors.RFCCodeText("plan-diff:ValidationError"),
	)
	ErrVersionParse = errors.Normalize(
		"cannot parse version string %q",
		errors.RFCCodeText("plan-diff:VersionParseError"),
	)
)

// ErrorKind returns the RFC code of the error kind carried by err, or an empty
// string if err is not created from one of the kinds above.
func ErrorKind(err error) string {
	var e *errors.Error
	if !goerrors.As(err, &e) {
		if e2, ok := errors.Cause(err).(*errors.Error); ok {
			e = e2
		} else {
			return ""
		}
	}
	return string(e.RFCCode())
}

// IsConnectionError checks if the error means the database can't be reached or
// refuses the login, as opposed to an error of a single statement. For errors
// we don't have confidence, we assume it is a statement error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if ErrConnection.Equal(err) {
		return true
	}
	if goerrors.Is(err, driver.ErrBadConn) || goerrors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) {
		return true
	}
	var merr *mysql.MySQLError
	if goerrors.As(err, &merr) {
		switch merr.Number {
		case errno.ErrAccessDenied, errno.ErrDBaccessDenied, errno.ErrBadDB,
			errno.ErrConCount, errno.ErrTooManyUserConnections:
			return true
		}
	}
	return false
}

// Codes of failures that are not created from the kinds above.
const (
	codeInterrupted = "plan-diff:Interrupted"
	codeUnknown     = "plan-diff:UnknownError"
)

// Diagnostic formats err as the one-line message printed when a run fails,
// like "Error [plan-diff:ParseError]: ...".
func Diagnostic(err error) string {
	code := ErrorKind(err)
	msg := err.Error()
	cause := errors.Cause(err)
	switch e := cause.(type) {
	case *errors.Error:
		msg = e.GetMsg()
	default:
		if cause == context.Canceled {
			code = codeInterrupted
		}
	}
	if code == "" {
		code = codeUnknown
	}
	msg = strings.Join(strings.Fields(msg), " ")
	return fmt.Sprintf("Error [%s]: %s", code, msg)
}
