package relational

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgCheckViolation       = "23514"
	pgInvalidTextRepr      = "22P02"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgConnectionException  = "08"
)

// MySQL / MariaDB server error numbers.
const (
	myDuplicateEntry     = 1062
	myRowIsReferenced    = 1451
	myNoReferencedRow    = 1452
	myBadNull            = 1048
	myTruncatedValue     = 1366
	myDataTooLong        = 1406
	myLockDeadlock       = 1213
	myLockWaitTimeout    = 1205
	myConnectionCountErr = 1040
)

// TranslateError maps driver failures onto the normalized errors of the
// builder package. Errors it does not recognize are returned unchanged.
//
// Statement failures reach callers as the driver reported them (wrapped in
// *builder.SQLExecutionError), so the driver type stays reachable with
// errors.As; TranslateError is the opt-in classification on top.
//
// Example:
//
//	_, err := qb.Insert("users", row).Execute()
//	if errors.Is(relational.TranslateError(err), builder.ErrDuplicateKey) {
//	    // the row already exists
//	}
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return builder.ErrDuplicateKey
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return builder.ErrForeignKey
	case errors.Is(err, gorm.ErrInvalidData):
		return builder.ErrInvalidData
	case errors.Is(err, driver.ErrBadConn):
		return builder.ErrConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return builder.ErrDuplicateKey
		case pgErr.Code == pgForeignKeyViolation:
			return builder.ErrForeignKey
		case pgErr.Code == pgNotNullViolation, pgErr.Code == pgCheckViolation, pgErr.Code == pgInvalidTextRepr:
			return builder.ErrInvalidData
		case strings.HasPrefix(pgErr.Code, pgConnectionException):
			return builder.ErrConnection
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myDuplicateEntry:
			return builder.ErrDuplicateKey
		case myRowIsReferenced, myNoReferencedRow:
			return builder.ErrForeignKey
		case myBadNull, myTruncatedValue, myDataTooLong:
			return builder.ErrInvalidData
		case myConnectionCountErr:
			return builder.ErrConnection
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return builder.ErrDuplicateKey
		case sqlite3.ErrConstraintForeignKey:
			return builder.ErrForeignKey
		case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return builder.ErrInvalidData
		}
		if liteErr.Code == sqlite3.ErrCantOpen {
			return builder.ErrConnection
		}
	}

	return err
}

// IsRetryable reports whether running the same statement again may succeed:
// serialization failures, deadlocks, lock timeouts and lost connections.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure ||
			pgErr.Code == pgDeadlockDetected ||
			strings.HasPrefix(pgErr.Code, pgConnectionException)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myLockDeadlock || myErr.Number == myLockWaitTimeout
	}

	return false
}
