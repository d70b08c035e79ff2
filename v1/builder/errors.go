package builder

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every backend. Typed errors below match them with
// errors.Is, and each backend's TranslateError maps driver failures onto the
// normalized ones.
var (
	// ErrUnsupportedEngine is returned when a configuration names an engine no builder exists for.
	ErrUnsupportedEngine = errors.New("unsupported database engine")

	// ErrUnsupportedOperation is returned when a builder cannot express a chain call.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrDuplicateKey is returned when an insert or update violates a unique constraint
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKey is returned when an operation violates a foreign key constraint
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidData is returned when the data being written doesn't meet validation rules
	ErrInvalidData = errors.New("invalid data")

	// ErrConnection is returned when the database cannot be reached
	ErrConnection = errors.New("database connection failure")

	// ErrNotConnected is returned when a builder is run without a database client behind it.
	ErrNotConnected = errors.New("builder has no database client")
)

// UnsupportedEngineError reports an engine type outside the recognized set.
type UnsupportedEngineError struct {
	Engine string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("unsupported database engine: %q", e.Engine)
}

func (e *UnsupportedEngineError) Is(target error) bool {
	return target == ErrUnsupportedEngine
}

// UnsupportedOperationError reports a chain call the selected backend has no primitive for,
// such as a join on a document store.
type UnsupportedOperationError struct {
	Operation string
	Engine    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s operation is not supported for %s", e.Operation, e.Engine)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// SQLExecutionError wraps a failure reported by the relational client while
// preparing or executing a statement. The driver error is kept unmodified.
type SQLExecutionError struct {
	Op    string
	Query string
	Err   error
}

func (e *SQLExecutionError) Error() string {
	return fmt.Sprintf("sql %s failed for %q: %v", e.Op, e.Query, e.Err)
}

func (e *SQLExecutionError) Unwrap() error {
	return e.Err
}

// DocumentExecutionError wraps a failure reported by the document client.
type DocumentExecutionError struct {
	Op         string
	Collection string
	Err        error
}

func (e *DocumentExecutionError) Error() string {
	return fmt.Sprintf("document %s on collection %q failed: %v", e.Op, e.Collection, e.Err)
}

func (e *DocumentExecutionError) Unwrap() error {
	return e.Err
}
