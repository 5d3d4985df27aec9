package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Common errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDecode           = errors.New("row decode failed")
	ErrUnknownFilter    = errors.New("unknown filter")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCheckConstraint  = errors.New("check constraint violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op         string        // Operation that failed
	Table      string        // Table involved
	Err        error         // Underlying error
	Query      string        // SQL statement (if applicable)
	Args       []interface{} // Statement arguments (if applicable)
	Constraint string        // Constraint name (if applicable)
	Column     string        // Column name (if applicable)
	Retryable  bool          // Whether the operation can be retried
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("orm: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for Error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}

	if t.Op != "" && e.Op == t.Op {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// InvariantError is the panic value raised when a key lookup matches more
// than one row. It is never returned as an error.
type InvariantError struct {
	Table string
	Query string
	Args  []interface{}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("orm: load: table=%s: key lookup matched more than one row", e.Table)
}

// decodeError wraps a row decode failure
func decodeError(table string, err error) error {
	return &Error{
		Op:    "decode",
		Table: table,
		Err:   fmt.Errorf("%w: %w", ErrDecode, err),
	}
}

// ParseError converts driver errors to ORM errors. It understands lib/pq and
// modernc sqlite error values and falls back to message matching.
func ParseError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var ormErr *Error
	if errors.As(err, &ormErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return parsePostgreSQLError(pqErr, op, table)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return parseSQLiteError(liteErr, op, table)
	}

	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") {
		return &Error{
			Op:        op,
			Table:     table,
			Err:       ErrConnectionFailed,
			Retryable: true,
		}
	}

	return &Error{
		Op:        op,
		Table:     table,
		Err:       err,
		Retryable: false,
	}
}

func parsePostgreSQLError(err *pq.Error, op, table string) error {
	switch err.Code.Name() {
	case "unique_violation":
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: err.Constraint}
	case "foreign_key_violation":
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: err.Constraint}
	case "not_null_violation":
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: err.Column}
	case "check_violation":
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: err.Constraint}
	case "query_canceled":
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	if err.Code.Class() == "08" {
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func parseSQLiteError(err *sqlite.Error, op, table string) error {
	msg := err.Error()

	switch err.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Column: extractSQLiteColumn(msg)}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return &Error{Op: op, Table: table, Err: ErrForeignKey}
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return &Error{Op: op, Table: table, Err: ErrNotNull, Column: extractSQLiteColumn(msg)}
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return &Error{Op: op, Table: table, Err: ErrCheckConstraint}
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return &Error{Op: op, Table: table, Err: err, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

// extractSQLiteColumn pulls "col" out of messages like
// "UNIQUE constraint failed: items.col"
func extractSQLiteColumn(msg string) string {
	idx := strings.Index(msg, "constraint failed: ")
	if idx == -1 {
		return ""
	}
	ref := msg[idx+len("constraint failed: "):]
	if end := strings.IndexAny(ref, ", ("); end != -1 {
		ref = ref[:end]
	}
	if dot := strings.LastIndex(ref, "."); dot != -1 {
		ref = ref[dot+1:]
	}
	return strings.TrimSpace(ref)
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Retryable
	}
	return false
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrCheckConstraint) ||
		errors.Is(err, ErrNotNull)
}

// IsDecodeError checks if an error came from decoding a stored row
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}
