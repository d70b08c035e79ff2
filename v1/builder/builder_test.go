package builder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors(t *testing.T) {
	t.Run("unsupported engine", func(t *testing.T) {
		err := fmt.Errorf("open: %w", &UnsupportedEngineError{Engine: "foo"})
		assert.ErrorIs(t, err, ErrUnsupportedEngine)
		assert.NotErrorIs(t, err, ErrUnsupportedOperation)
		assert.EqualError(t, err, `open: unsupported database engine: "foo"`)
	})

	t.Run("unsupported operation", func(t *testing.T) {
		err := &UnsupportedOperationError{Operation: "join", Engine: "mongodb"}
		assert.ErrorIs(t, err, ErrUnsupportedOperation)
		assert.EqualError(t, err, "join operation is not supported for mongodb")
	})

	t.Run("sql execution keeps the driver error", func(t *testing.T) {
		driverErr := errors.New("syntax error")
		err := &SQLExecutionError{Op: "prepare", Query: "SELEC 1", Err: driverErr}
		assert.ErrorIs(t, err, driverErr)
		assert.Contains(t, err.Error(), `"SELEC 1"`)

		var target *SQLExecutionError
		require.ErrorAs(t, fmt.Errorf("get: %w", err), &target)
		assert.Equal(t, "prepare", target.Op)
	})

	t.Run("document execution keeps the driver error", func(t *testing.T) {
		err := &DocumentExecutionError{Op: "insert", Collection: "users", Err: ErrDuplicateKey}
		assert.ErrorIs(t, err, ErrDuplicateKey)
		assert.EqualError(t, err, `document insert on collection "users" failed: duplicate key violation`)
	})

	t.Run("not connected", func(t *testing.T) {
		err := &SQLExecutionError{Op: "prepare", Query: "SELECT 1", Err: ErrNotConnected}
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.NotErrorIs(t, err, ErrConnection)
	})
}

func TestExecutionMode_String(t *testing.T) {
	assert.Equal(t, "deferred", Deferred.String())
	assert.Equal(t, "immediate", Immediate.String())
	assert.Equal(t, "unknown", ExecutionMode(42).String())
}

func TestIndexColumns(t *testing.T) {
	assert.Equal(t, IndexColumn{Column: "id", Direction: Ascending}, Asc("id"))
	assert.Equal(t, IndexColumn{Column: "created_at", Direction: Descending}, Desc("created_at"))
	assert.Equal(t, []IndexColumn{{Column: "a"}, {Column: "b"}}, Columns("a", "b"))
	assert.Empty(t, Columns())
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"email", "id", "name"}, SortedKeys(map[string]any{"name": 1, "id": 2, "email": 3}))
	assert.Empty(t, SortedKeys(nil))
}
