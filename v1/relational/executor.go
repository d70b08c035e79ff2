package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// Executor is the relational execution client a QueryBuilder delegates to.
// Statements use "?" placeholders; implementations rebind them to the
// dialect's own syntax.
//
//go:generate mockgen -source=executor.go -destination=mock_executor.go -package=relational
type Executor interface {
	// Prepare readies query for execution.
	Prepare(ctx context.Context, query string) (Statement, error)

	// Dialect names the SQL dialect ("mysql", "postgres", "sqlite", "sqlserver", "oracle").
	Dialect() string

	// Close releases the underlying connection pool.
	Close() error
}

// Statement is a prepared statement bound to one query text.
type Statement interface {
	// Exec runs the statement and returns the number of affected rows.
	Exec(ctx context.Context, bindings []any) (int64, error)

	// Query runs the statement and fetches every row.
	Query(ctx context.Context, bindings []any) ([]builder.Row, error)

	Close() error
}

// GormExecutor runs statements through gorm. gorm rebinds "?" with the
// dialector's BindVarTo ($1 for postgres, @p1 for sqlserver) and the session
// caches prepared statements.
type GormExecutor struct {
	db *gorm.DB
}

// NewGormExecutor wraps db in a prepared-statement session.
func NewGormExecutor(db *gorm.DB) *GormExecutor {
	return &GormExecutor{db: db.Session(&gorm.Session{PrepareStmt: true})}
}

// Prepare returns a statement bound to query. gorm prepares lazily, so syntax
// errors surface from Exec or Query.
func (e *GormExecutor) Prepare(_ context.Context, query string) (Statement, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty statement")
	}
	return &gormStatement{db: e.db, query: query}, nil
}

func (e *GormExecutor) Dialect() string {
	return e.db.Dialector.Name()
}

// DB returns the underlying GORM DB client
// This is for cases where direct access to GORM is needed
func (e *GormExecutor) DB() *gorm.DB {
	return e.db
}

func (e *GormExecutor) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormStatement struct {
	db    *gorm.DB
	query string
}

func (s *gormStatement) Exec(ctx context.Context, bindings []any) (int64, error) {
	tx := s.db.WithContext(ctx).Exec(s.query, bindings...)
	return tx.RowsAffected, tx.Error
}

func (s *gormStatement) Query(ctx context.Context, bindings []any) ([]builder.Row, error) {
	var records []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(s.query, bindings...).Scan(&records).Error; err != nil {
		return nil, err
	}

	rows := make([]builder.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, normalizeRow(record))
	}
	return rows, nil
}

func (s *gormStatement) Close() error {
	return nil
}

// SQLExecutor runs statements on a database/sql pool for drivers without a
// gorm dialector. Placeholders are rebound with bindVar before preparing.
type SQLExecutor struct {
	db      *sql.DB
	dialect string
	bindVar func(position int) string
}

// NewSQLExecutor wraps db. bindVar renders the placeholder of the 1-based
// position; nil keeps "?".
func NewSQLExecutor(db *sql.DB, dialect string, bindVar func(position int) string) *SQLExecutor {
	return &SQLExecutor{db: db, dialect: dialect, bindVar: bindVar}
}

// OracleBindVar renders go-ora positional placeholders (:1, :2, ...).
func OracleBindVar(position int) string {
	return fmt.Sprintf(":%d", position)
}

func (e *SQLExecutor) Prepare(ctx context.Context, query string) (Statement, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty statement")
	}
	if e.bindVar != nil {
		query = Rebind(query, e.bindVar)
	}
	stmt, err := e.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &sqlStatement{stmt: stmt}, nil
}

func (e *SQLExecutor) Dialect() string {
	return e.dialect
}

func (e *SQLExecutor) Close() error {
	return e.db.Close()
}

type sqlStatement struct {
	stmt *sql.Stmt
}

func (s *sqlStatement) Exec(ctx context.Context, bindings []any) (int64, error) {
	res, err := s.stmt.ExecContext(ctx, bindings...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows; the statement itself succeeded.
		return 0, nil
	}
	return affected, nil
}

func (s *sqlStatement) Query(ctx context.Context, bindings []any) ([]builder.Row, error) {
	rows, err := s.stmt.QueryContext(ctx, bindings...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]builder.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			record[column] = values[i]
		}
		result = append(result, normalizeRow(record))
	}
	return result, rows.Err()
}

func (s *sqlStatement) Close() error {
	return s.stmt.Close()
}

// Rebind replaces each "?" placeholder outside quoted text with bindVar(n).
func Rebind(query string, bindVar func(position int) string) string {
	var (
		out      strings.Builder
		position int
		quote    rune
	)
	out.Grow(len(query) + 8)

	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			out.WriteRune(r)
		case r == '\'' || r == '"' || r == '`':
			quote = r
			out.WriteRune(r)
		case r == '?':
			position++
			out.WriteString(bindVar(position))
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// normalizeRow turns driver byte slices into strings so rows compare and
// serialize the same way across drivers.
func normalizeRow(record map[string]interface{}) builder.Row {
	row := make(builder.Row, len(record))
	for column, value := range record {
		switch v := value.(type) {
		case []byte:
			row[column] = string(v)
		case sql.RawBytes:
			row[column] = string(v)
		default:
			row[column] = v
		}
	}
	return row
}
