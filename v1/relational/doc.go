// Package relational implements the query builder for SQL databases.
//
// A QueryBuilder renders chained calls into one parameterized statement with
// "?" placeholders and an ordered list of bindings. Nothing is sent to the
// database until Execute or Get; both finalize the statement by appending the
// WHERE, ORDER BY and LIMIT clauses in that fixed order and delegate it to an
// Executor.
//
// Two executors are provided. GormExecutor covers MySQL, MariaDB, PostgreSQL,
// SQLite and SQL Server through their gorm dialectors, which rebind the
// placeholders for the dialect. SQLExecutor covers drivers that only exist for
// database/sql (Oracle via go-ora) and rebinds the placeholders itself.
//
// Basic Usage:
//
//	client, err := relational.Open(cfg, relational.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown(ctx)
//
//	rows, err := client.Query(ctx).
//	    Select("id", "name").
//	    From("users").
//	    Where("id", ">", 1).
//	    OrderBy("name", "ASC").
//	    Get()
//
// Writes:
//
//	ok, err := client.Query(ctx).
//	    Update("users", map[string]any{"name": "Jane"}).
//	    Where("id", "=", 3).
//	    Execute()
//
// Driver failures are wrapped in *builder.SQLExecutionError with the driver
// error unmodified. TranslateError maps them onto builder.ErrDuplicateKey,
// builder.ErrForeignKey, builder.ErrInvalidData and builder.ErrConnection, and
// IsRetryable reports deadlocks, serialization failures and lost connections.
//
// A QueryBuilder is not safe for concurrent use. The Client is.
package relational
