// Package core provides the dialect-aware SQL command layer: identifier
// quoting, parameter binding, statement splitting, batch-insert and upsert
// SQL generation, and native-error classification.
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNoRows is returned when a query that expects rows returns no results.
var ErrNoRows = errors.New("no rows in result set")

// ErrorKind classifies a structured Error into one of a fixed set of
// semantically meaningful failure kinds.
type ErrorKind string

// Error kinds, in rough order of where the fault lies.
const (
	// KindInvalidArgument indicates malformed caller-supplied input
	// (mismatched row arity, unbound placeholders, positional-only subqueries).
	KindInvalidArgument ErrorKind = "invalid argument"
	// KindConfiguration indicates missing or invalid dialect/connection setup.
	KindConfiguration ErrorKind = "configuration"
	// KindIntegrity indicates a native constraint violation
	// (unique, foreign key, not null, check).
	KindIntegrity ErrorKind = "integrity"
	// KindExecution indicates any other native execution failure,
	// including syntax errors in generated SQL.
	KindExecution ErrorKind = "execution"
	// KindNotSupported indicates an operation the target dialect cannot express.
	KindNotSupported ErrorKind = "not supported"
)

// Error is a structured command failure. It carries the native error code
// when one is known and the fully interpolated SQL of the failing statement
// for diagnostics.
type Error struct {
	Kind    ErrorKind
	Code    string // native error code, empty when not applicable
	Message string
	RawSQL  string // interpolated SQL, parameters substituted as literals
	cause   error
}

// Error returns the native message followed by the SQL being executed.
func (e *Error) Error() string {
	if e.RawSQL == "" {
		return e.Message
	}
	return e.Message + "\nThe SQL being executed was: " + e.RawSQL
}

// Unwrap returns the underlying native error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidArgf(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

func configf(format string, args ...any) *Error {
	return newError(KindConfiguration, format, args...)
}

func notSupportedf(format string, args ...any) *Error {
	return newError(KindNotSupported, format, args...)
}

// hasKind reports whether err is (or wraps) a structured Error of the given kind.
func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool { return hasKind(err, KindInvalidArgument) }

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return hasKind(err, KindConfiguration) }

// IsIntegrity reports whether err is a constraint-violation error.
func IsIntegrity(err error) bool { return hasKind(err, KindIntegrity) }

// IsExecution reports whether err is a native execution error.
func IsExecution(err error) bool { return hasKind(err, KindExecution) }

// IsNotSupported reports whether err is a not-supported error.
func IsNotSupported(err error) bool { return hasKind(err, KindNotSupported) }

// mysqlIntegrityCodes are the MySQL server error numbers raised for
// unique, foreign-key and not-null constraint violations.
var mysqlIntegrityCodes = map[uint16]bool{
	1022: true, // ER_DUP_KEY
	1048: true, // ER_BAD_NULL_ERROR
	1062: true, // ER_DUP_ENTRY
	1169: true, // ER_DUP_UNIQUE
	1216: true, // ER_NO_REFERENCED_ROW
	1217: true, // ER_ROW_IS_REFERENCED
	1451: true, // ER_ROW_IS_REFERENCED_2
	1452: true, // ER_NO_REFERENCED_ROW_2
	1557: true, // ER_FOREIGN_DUPLICATE_KEY
	1586: true, // ER_DUP_ENTRY_WITH_KEY_NAME
	1761: true, // ER_FOREIGN_DUPLICATE_KEY_WITH_CHILD_INFO
	1762: true, // ER_FOREIGN_DUPLICATE_KEY_WITHOUT_CHILD_INFO
}

// constraintFragments are message substrings used as a fallback for drivers
// whose errors carry no typed code (e.g. pure Go SQLite builds).
var constraintFragments = []string{
	"unique constraint",
	"foreign key constraint",
	"not null constraint",
	"check constraint",
	"constraint failed",
	"duplicate entry",
	"violates unique",
	"violates foreign key",
	"violates not-null",
}

// classify translates a native execution failure into a structured Error,
// attaching the interpolated SQL of the failing statement. Errors that are
// already structured only gain the SQL context.
func classify(err error, rawSQL string) error {
	if err == nil {
		return nil
	}

	var structured *Error
	if errors.As(err, &structured) {
		if structured.RawSQL == "" && rawSQL != "" {
			return &Error{
				Kind:    structured.Kind,
				Code:    structured.Code,
				Message: structured.Message,
				RawSQL:  rawSQL,
				cause:   structured.cause,
			}
		}
		return structured
	}

	kind := KindExecution
	code := ""

	var myErr *mysql.MySQLError
	var pqErr *pq.Error
	var liteErr sqlite3.Error

	switch {
	case errors.As(err, &myErr):
		code = strconv.Itoa(int(myErr.Number))
		if mysqlIntegrityCodes[myErr.Number] {
			kind = KindIntegrity
		}
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
		if pqErr.Code.Class() == "23" { // integrity_constraint_violation
			kind = KindIntegrity
		}
	case errors.As(err, &liteErr):
		code = strconv.Itoa(int(liteErr.ExtendedCode))
		if liteErr.Code == sqlite3.ErrConstraint {
			kind = KindIntegrity
		}
	default:
		msg := strings.ToLower(err.Error())
		for _, fragment := range constraintFragments {
			if strings.Contains(msg, fragment) {
				kind = KindIntegrity
				break
			}
		}
	}

	return &Error{
		Kind:    kind,
		Code:    code,
		Message: err.Error(),
		RawSQL:  rawSQL,
		cause:   err,
	}
}
