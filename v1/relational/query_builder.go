package relational

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
)

type statementKind int

const (
	kindNone statementKind = iota
	kindSelect
	kindInsert
	kindUpdate
	kindDelete
	kindCreateIndex
)

// acceptsClauses reports whether WHERE, ORDER BY and LIMIT are appended when
// the statement is finalized.
func (k statementKind) acceptsClauses() bool {
	return k != kindInsert && k != kindCreateIndex
}

func (k statementKind) String() string {
	switch k {
	case kindSelect:
		return "select"
	case kindInsert:
		return "insert"
	case kindUpdate:
		return "update"
	case kindDelete:
		return "delete"
	case kindCreateIndex:
		return "create_index"
	default:
		return "none"
	}
}

// Descriptor is the accumulated state of a relational builder.
type Descriptor struct {
	// Statement is the text rendered by Select, From, Join and the write methods.
	Statement string

	// Where holds " WHERE ..." with its AND / OR continuations, or is empty.
	Where string

	// OrderBy holds " ORDER BY ..." or is empty.
	OrderBy string

	// Limit holds every " LIMIT n" appended so far.
	Limit string

	// StatementBindings are the values of the placeholders in Statement.
	StatementBindings []any

	// WhereBindings are the values of the placeholders in Where.
	WhereBindings []any
}

// QueryBuilder renders a parameterized SQL statement from chained calls and
// delegates it to an Executor. It is not safe for concurrent use.
//
// Writes are deferred: Insert, Update, Delete and CreateIndex only render text,
// and nothing reaches the database until Execute.
//
// Chain semantics:
//   - From and Join append to the statement; calling them twice renders two clauses.
//   - Limit appends; Limit(5).Limit(2) renders " LIMIT 5 LIMIT 2".
//   - Where and OrderBy replace any earlier clause of the same kind.
//   - AndWhere and OrWhere extend the WHERE clause, or start it when none exists.
//
// The first error of a chain (for example Insert with no data) is kept and
// returned by Execute and Get.
type QueryBuilder struct {
	ctx    context.Context
	engine connection.Engine
	exec   Executor
	opts   options

	kind statementKind
	desc Descriptor
	err  error
}

// NewQueryBuilder returns a builder delegating to exec.
func NewQueryBuilder(ctx context.Context, engine connection.Engine, exec Executor, opts ...Option) *QueryBuilder {
	return newQueryBuilder(ctx, engine, exec, newOptions(opts))
}

func newQueryBuilder(ctx context.Context, engine connection.Engine, exec Executor, opts options) *QueryBuilder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &QueryBuilder{ctx: ctx, engine: engine, exec: exec, opts: opts}
}

// Select starts a SELECT statement. No columns (or "*") selects every column.
func (qb *QueryBuilder) Select(columns ...string) builder.QueryBuilder {
	list := "*"
	if len(columns) > 0 {
		list = strings.Join(columns, ", ")
	}
	qb.kind = kindSelect
	qb.desc.Statement = "SELECT " + list
	qb.desc.StatementBindings = nil
	return qb
}

// From appends a FROM clause.
func (qb *QueryBuilder) From(table string) builder.QueryBuilder {
	qb.desc.Statement += " FROM " + table
	return qb
}

// Where replaces the WHERE clause with a single condition.
func (qb *QueryBuilder) Where(column, operator string, value any) builder.QueryBuilder {
	qb.desc.Where = fmt.Sprintf(" WHERE %s %s ?", column, operator)
	qb.desc.WhereBindings = []any{value}
	return qb
}

// AndWhere adds a condition joined with AND.
func (qb *QueryBuilder) AndWhere(column, operator string, value any) builder.QueryBuilder {
	return qb.appendCondition("AND", column, operator, value)
}

// OrWhere adds a condition joined with OR.
func (qb *QueryBuilder) OrWhere(column, operator string, value any) builder.QueryBuilder {
	return qb.appendCondition("OR", column, operator, value)
}

func (qb *QueryBuilder) appendCondition(connective, column, operator string, value any) builder.QueryBuilder {
	if qb.desc.Where == "" {
		return qb.Where(column, operator, value)
	}
	qb.desc.Where += fmt.Sprintf(" %s %s %s ?", connective, column, operator)
	qb.desc.WhereBindings = append(qb.desc.WhereBindings, value)
	return qb
}

// OrderBy replaces the ORDER BY clause. direction is passed through as given.
func (qb *QueryBuilder) OrderBy(column, direction string) builder.QueryBuilder {
	qb.desc.OrderBy = strings.TrimRight(fmt.Sprintf(" ORDER BY %s %s", column, direction), " ")
	return qb
}

// Limit appends a LIMIT clause.
func (qb *QueryBuilder) Limit(n int) builder.QueryBuilder {
	if n < 0 {
		return qb.fail(fmt.Errorf("%w: negative limit %d", builder.ErrInvalidData, n))
	}
	qb.desc.Limit += fmt.Sprintf(" LIMIT %d", n)
	return qb
}

// Join appends an inner JOIN clause.
func (qb *QueryBuilder) Join(table, column1, operator, column2 string) builder.QueryBuilder {
	qb.desc.Statement += fmt.Sprintf(" JOIN %s ON %s %s %s", table, column1, operator, column2)
	return qb
}

// Insert renders an INSERT of one row. Columns are rendered in sorted order.
func (qb *QueryBuilder) Insert(table string, data map[string]any) builder.QueryBuilder {
	if len(data) == 0 {
		return qb.fail(fmt.Errorf("%w: insert into %s without data", builder.ErrInvalidData, table))
	}

	columns := builder.SortedKeys(data)
	placeholders := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = "?"
		values[i] = data[column]
	}

	qb.kind = kindInsert
	qb.desc.Statement = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	qb.desc.StatementBindings = values
	return qb
}

// Update renders an UPDATE of the given columns. Rows are narrowed with the
// WHERE clause, which may be set before or after this call.
func (qb *QueryBuilder) Update(table string, data map[string]any) builder.QueryBuilder {
	if len(data) == 0 {
		return qb.fail(fmt.Errorf("%w: update of %s without data", builder.ErrInvalidData, table))
	}

	columns := builder.SortedKeys(data)
	assignments := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, column := range columns {
		assignments[i] = column + " = ?"
		values[i] = data[column]
	}

	qb.kind = kindUpdate
	qb.desc.Statement = fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	qb.desc.StatementBindings = values
	return qb
}

// Delete renders a DELETE. Without a WHERE clause every row is deleted.
func (qb *QueryBuilder) Delete(table string) builder.QueryBuilder {
	qb.kind = kindDelete
	qb.desc.Statement = "DELETE FROM " + table
	qb.desc.StatementBindings = nil
	return qb
}

// CreateIndex renders CREATE [UNIQUE] INDEX. The index is named
// idx_<columns joined by "_"> unless opts.Name is set.
func (qb *QueryBuilder) CreateIndex(table string, columns []builder.IndexColumn, opts builder.IndexOptions) builder.QueryBuilder {
	if len(columns) == 0 {
		return qb.fail(fmt.Errorf("%w: index on %s without columns", builder.ErrInvalidData, table))
	}

	keys := make([]string, len(columns))
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Column
		keys[i] = strings.TrimRight(col.Column+" "+strings.ToUpper(col.Direction), " ")
	}

	name := opts.Name
	if name == "" {
		name = "idx_" + strings.Join(names, "_")
	}
	verb := "CREATE INDEX"
	if opts.Unique {
		verb = "CREATE UNIQUE INDEX"
	}

	qb.kind = kindCreateIndex
	qb.desc.Statement = fmt.Sprintf("%s %s ON %s (%s)", verb, name, table, strings.Join(keys, ", "))
	qb.desc.StatementBindings = nil
	return qb
}

// SQL returns the statement Execute and Get would run. It does not change the builder.
func (qb *QueryBuilder) SQL() string {
	if !qb.kind.acceptsClauses() {
		return qb.desc.Statement
	}
	return qb.desc.Statement + qb.desc.Where + qb.desc.OrderBy + qb.desc.Limit
}

// Bindings returns the values for the placeholders of SQL, in order.
func (qb *QueryBuilder) Bindings() []any {
	bindings := make([]any, 0, len(qb.desc.StatementBindings)+len(qb.desc.WhereBindings))
	bindings = append(bindings, qb.desc.StatementBindings...)
	if qb.kind.acceptsClauses() {
		bindings = append(bindings, qb.desc.WhereBindings...)
	}
	return bindings
}

// Descriptor returns a copy of the accumulated state.
func (qb *QueryBuilder) Descriptor() Descriptor {
	d := qb.desc
	d.StatementBindings = append([]any(nil), qb.desc.StatementBindings...)
	d.WhereBindings = append([]any(nil), qb.desc.WhereBindings...)
	return d
}

// Execute runs the statement and reports success. Rows are not fetched.
func (qb *QueryBuilder) Execute() (bool, error) {
	err := qb.run("execute", func(ctx context.Context, stmt Statement, query string, bindings []any) error {
		affected, err := stmt.Exec(ctx, bindings)
		if err != nil {
			return &builder.SQLExecutionError{Op: "execute", Query: query, Err: err}
		}
		qb.opts.logger.Debug("Statement executed", nil, map[string]interface{}{
			"engine":        string(qb.engine),
			"rows_affected": affected,
		})
		return nil
	})
	return err == nil, err
}

// Get runs the statement and returns every row. No rows yields an empty, non-nil slice.
func (qb *QueryBuilder) Get() ([]builder.Row, error) {
	var rows []builder.Row
	err := qb.run("get", func(ctx context.Context, stmt Statement, query string, bindings []any) error {
		fetched, err := stmt.Query(ctx, bindings)
		if err != nil {
			return &builder.SQLExecutionError{Op: "query", Query: query, Err: err}
		}
		rows = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []builder.Row{}
	}
	return rows, nil
}

// run finalizes the statement, prepares it and hands it to fn inside a span,
// recording metrics and logging the outcome.
func (qb *QueryBuilder) run(operation string, fn func(ctx context.Context, stmt Statement, query string, bindings []any) error) (err error) {
	if qb.err != nil {
		return qb.err
	}

	query := qb.SQL()
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: no statement to %s", builder.ErrInvalidData, operation)
	}
	bindings := qb.Bindings()

	start := time.Now()
	ctx, span := qb.opts.tracer.StartSpan(qb.ctx, fmt.Sprintf("querybridge.%s.%s", qb.engine, operation))
	defer span.End()
	qb.opts.tracer.SetAttributes(span, map[string]interface{}{
		"db.system":        string(qb.engine),
		"db.statement":     query,
		"db.operation":     qb.kind.String(),
		"db.binding_count": len(bindings),
	})

	fields := map[string]interface{}{
		"engine":    string(qb.engine),
		"operation": operation,
		"sql":       query,
	}
	qb.opts.logger.Debug("Running statement", nil, fields)

	defer func() {
		qb.opts.metrics.ObserveQuery(string(qb.engine), operation, start, err)
		if err != nil {
			qb.opts.tracer.RecordErrorOnSpan(span, err)
			qb.opts.logger.Error("Statement failed", err, fields)
		}
	}()

	if qb.exec == nil {
		return &builder.SQLExecutionError{Op: "prepare", Query: query, Err: builder.ErrNotConnected}
	}

	stmt, err := qb.exec.Prepare(ctx, query)
	if err != nil {
		return &builder.SQLExecutionError{Op: "prepare", Query: query, Err: err}
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			qb.opts.logger.Warn("Failed to close statement", closeErr, fields)
		}
	}()

	return fn(ctx, stmt, query, bindings)
}

// Reset clears the accumulated state and any recorded error.
func (qb *QueryBuilder) Reset() builder.QueryBuilder {
	qb.kind = kindNone
	qb.desc = Descriptor{}
	qb.err = nil
	return qb
}

// Err returns the first error recorded along the chain.
func (qb *QueryBuilder) Err() error {
	return qb.err
}

// Mode reports Deferred.
func (qb *QueryBuilder) Mode() builder.ExecutionMode {
	return builder.Deferred
}

func (qb *QueryBuilder) fail(err error) builder.QueryBuilder {
	if qb.err == nil {
		qb.err = err
	}
	return qb
}
