package relational

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

func TestTranslateError(t *testing.T) {
	wrap := func(err error) error {
		return &builder.SQLExecutionError{Op: "execute", Query: "INSERT ...", Err: err}
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"gorm duplicate", wrap(gorm.ErrDuplicatedKey), builder.ErrDuplicateKey},
		{"gorm foreign key", wrap(gorm.ErrForeignKeyViolated), builder.ErrForeignKey},
		{"gorm invalid data", gorm.ErrInvalidData, builder.ErrInvalidData},
		{"bad connection", fmt.Errorf("ping: %w", driver.ErrBadConn), builder.ErrConnection},
		{"pg unique", wrap(&pgconn.PgError{Code: "23505"}), builder.ErrDuplicateKey},
		{"pg foreign key", wrap(&pgconn.PgError{Code: "23503"}), builder.ErrForeignKey},
		{"pg not null", wrap(&pgconn.PgError{Code: "23502"}), builder.ErrInvalidData},
		{"pg connection", wrap(&pgconn.PgError{Code: "08006"}), builder.ErrConnection},
		{"mysql duplicate", wrap(&mysql.MySQLError{Number: 1062}), builder.ErrDuplicateKey},
		{"mysql foreign key", wrap(&mysql.MySQLError{Number: 1452}), builder.ErrForeignKey},
		{"mysql too long", wrap(&mysql.MySQLError{Number: 1406}), builder.ErrInvalidData},
		{"sqlite primary key", wrap(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}), builder.ErrDuplicateKey},
		{"sqlite unique", wrap(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), builder.ErrDuplicateKey},
		{"sqlite foreign key", wrap(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}), builder.ErrForeignKey},
		{"sqlite not null", wrap(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}), builder.ErrInvalidData},
		{"sqlite cannot open", wrap(sqlite3.Error{Code: sqlite3.ErrCantOpen}), builder.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, TranslateError(tt.err), tt.want)
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	assert.NoError(t, TranslateError(nil))

	unknown := errors.New("boom")
	assert.Equal(t, unknown, TranslateError(unknown))

	pgErr := &pgconn.PgError{Code: "42601"}
	assert.Equal(t, error(pgErr), TranslateError(pgErr))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, IsRetryable(&pgconn.PgError{Code: "08003"}))
	assert.True(t, IsRetryable(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsRetryable(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsRetryable(fmt.Errorf("exec: %w", driver.ErrBadConn)))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsRetryable(&mysql.MySQLError{Number: 1062}))
}
