package relational

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/sijms/go-ora/v2"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/logger"
	"github.com/Aleph-Alpha/querybridge/v1/metrics"
	"github.com/Aleph-Alpha/querybridge/v1/tracer"
)

// Logger defines the interface for logging operations in the relational package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=relational -exclude_interfaces=Tracer
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer opens one span per statement. *tracer.Tracer implements it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

type options struct {
	logger  Logger
	metrics metrics.Recorder
	tracer  Tracer
}

// Option configures a Client or a QueryBuilder.
type Option func(*options)

// WithLogger sets the logger statements are reported to.
func WithLogger(l Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the recorder finalized statements are counted with.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithTracer sets the tracer statements open spans with.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:  logger.NewNop(),
		metrics: metrics.Nop{},
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Client owns the connection pool of one relational database and hands out
// query builders bound to it.
type Client struct {
	engine connection.Engine
	exec   Executor
	opts   options
}

// NewClient wraps an existing executor. Use Open to dial from a configuration.
func NewClient(engine connection.Engine, exec Executor, opts ...Option) *Client {
	return &Client{
		engine: engine,
		exec:   exec,
		opts:   newOptions(opts),
	}
}

// Open connects to the database described by cfg.
//
// MySQL, MariaDB, PostgreSQL, SQLite and SQL Server are opened through their
// gorm dialectors. Oracle has no gorm dialector and is opened on database/sql
// with the go-ora driver.
//
// Pool settings left at zero fall back to 50 open connections, 25 idle
// connections and a one minute lifetime. SQLite defaults to a single open
// connection so that in-memory databases are shared by every statement.
//
// Example:
//
//	cfg, _ := connection.NewConfig("mysql", "127.0.0.1", "test", "root")
//	client, err := relational.Open(cfg, relational.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown(ctx)
func Open(cfg connection.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Engine.IsRelational() {
		return nil, &builder.UnsupportedEngineError{Engine: string(cfg.Engine)}
	}

	o := newOptions(opts)

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	var exec Executor
	if cfg.Engine == connection.Oracle {
		exec, err = openOracle(dsn, cfg.ConnectionDetails)
	} else {
		exec, err = openGorm(cfg.Engine, dsn, cfg.ConnectionDetails, o.logger)
	}
	if err != nil {
		o.logger.Error("Failed to connect to database", err, cfg.LogFields())
		return nil, err
	}

	o.logger.Info("Successfully connected to database", nil, cfg.LogFields())
	return &Client{engine: cfg.Engine, exec: exec, opts: o}, nil
}

func dialectorFor(engine connection.Engine, dsn string) (gorm.Dialector, error) {
	switch engine {
	case connection.MySQL, connection.MariaDB:
		return mysql.Open(dsn), nil
	case connection.Postgres:
		return postgres.Open(dsn), nil
	case connection.SQLite:
		return sqlite.Open(dsn), nil
	case connection.SQLServer:
		return sqlserver.Open(dsn), nil
	default:
		return nil, &builder.UnsupportedEngineError{Engine: string(engine)}
	}
}

func openGorm(engine connection.Engine, dsn string, details connection.ConnectionDetails, l Logger) (*GormExecutor, error) {
	dialector, err := dialectorFor(engine, dsn)
	if err != nil {
		return nil, err
	}

	// Driver errors are kept as returned; TranslateError classifies them on demand.
	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(l),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", engine, err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s database instance: %w", engine, err)
	}
	if engine == connection.SQLite && details.MaxOpenConns == 0 {
		details.MaxOpenConns = 1
	}
	applyPool(databaseInstance, details)

	return NewGormExecutor(database), nil
}

func openOracle(dsn string, details connection.ConnectionDetails) (*SQLExecutor, error) {
	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to oracle database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to oracle database: %w", err)
	}

	applyPool(db, details)
	return NewSQLExecutor(db, "oracle", OracleBindVar), nil
}

// applyPool sets the pool parameters, applying package defaults to zero fields.
func applyPool(db *sql.DB, details connection.ConnectionDetails) {
	maxOpen := details.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 50
	}
	maxIdle := details.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 25
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	maxLifetime := details.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = 1 * time.Minute
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
}

// Query returns a fresh builder bound to ctx.
func (c *Client) Query(ctx context.Context) builder.QueryBuilder {
	return c.Builder(ctx)
}

// Builder is Query returning the concrete type, which also exposes the
// rendered SQL and bindings.
func (c *Client) Builder(ctx context.Context) *QueryBuilder {
	return newQueryBuilder(ctx, c.engine, c.exec, c.opts)
}

// Engine reports the engine this client was opened for.
func (c *Client) Engine() connection.Engine {
	return c.engine
}

// Mode reports when writes reach the database.
func (c *Client) Mode() builder.ExecutionMode {
	return builder.Deferred
}

// Executor returns the execution client statements are delegated to.
func (c *Client) Executor() Executor {
	return c.exec
}

// GracefulShutdown closes the connection pool.
func (c *Client) GracefulShutdown(_ context.Context) error {
	if err := c.exec.Close(); err != nil {
		c.opts.logger.Error("Failed to close database connection", err, map[string]interface{}{
			"engine": string(c.engine),
		})
		return err
	}
	c.opts.logger.Info("Database connection closed", nil, map[string]interface{}{
		"engine": string(c.engine),
	})
	return nil
}
