package document

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/logger"
	"github.com/Aleph-Alpha/querybridge/v1/metrics"
	"github.com/Aleph-Alpha/querybridge/v1/tracer"
)

// Logger defines the interface for logging operations in the document package.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=document -exclude_interfaces=Tracer
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer opens one span per document operation. *tracer.Tracer implements it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

type settings struct {
	logger  Logger
	metrics metrics.Recorder
	tracer  Tracer
}

// Option configures a Database or a QueryBuilder.
type Option func(*settings)

// WithLogger sets the logger operations are reported to.
func WithLogger(l Logger) Option {
	return func(o *settings) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the recorder operations are counted with.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *settings) {
		if r != nil {
			o.metrics = r
		}
	}
}

// WithTracer sets the tracer operations open spans with.
func WithTracer(t Tracer) Option {
	return func(o *settings) {
		if t != nil {
			o.tracer = t
		}
	}
}

func newSettings(opts []Option) settings {
	o := settings{
		logger:  logger.NewNop(),
		metrics: metrics.Nop{},
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const connectTimeout = 10 * time.Second

// Database owns the connection to one document database and hands out query
// builders targeting its configured collection.
type Database struct {
	client     Client
	dbName     string
	collection string
	opts       settings
}

// NewDatabase wraps an existing client. Use Connect to dial from a configuration.
func NewDatabase(client Client, dbName, collection string, opts ...Option) *Database {
	return &Database{
		client:     client,
		dbName:     dbName,
		collection: collection,
		opts:       newSettings(opts),
	}
}

// Connect dials the MongoDB server of cfg and verifies it with a ping.
//
// Credentials are sent only when cfg.User is set and authenticate against
// cfg.DbName. Builders start on cfg.Collection.
//
// Example:
//
//	cfg, _ := connection.NewConfig("mongodb", "127.0.0.1", "test", "root",
//	    connection.WithCollection("users"))
//	db, err := document.Connect(ctx, cfg, document.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer db.GracefulShutdown(ctx)
func Connect(ctx context.Context, cfg connection.Config, opts ...Option) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Engine.IsDocument() {
		return nil, &builder.UnsupportedEngineError{Engine: string(cfg.Engine)}
	}

	o := newSettings(opts)

	uri, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	clientOpts := options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout)
	if cfg.User != "" {
		clientOpts.SetAuth(options.Credential{
			Username:   cfg.User,
			Password:   cfg.Password,
			AuthSource: cfg.DbName,
		})
	}
	if maxPool := cfg.ConnectionDetails.MaxOpenConns; maxPool > 0 {
		clientOpts.SetMaxPoolSize(uint64(maxPool))
	}
	if minPool := cfg.ConnectionDetails.MaxIdleConns; minPool > 0 {
		clientOpts.SetMinPoolSize(uint64(minPool))
	}
	if idle := cfg.ConnectionDetails.ConnMaxLifetime; idle > 0 {
		clientOpts.SetMaxConnIdleTime(idle)
	}

	driver, err := mongo.Connect(clientOpts)
	if err != nil {
		o.logger.Error("Failed to connect to MongoDB", err, cfg.LogFields())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	client := NewMongoClient(driver)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		o.logger.Error("Failed to ping MongoDB", err, cfg.LogFields())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	o.logger.Info("Successfully connected to MongoDB", nil, cfg.LogFields())
	return &Database{
		client:     client,
		dbName:     cfg.DbName,
		collection: cfg.Collection,
		opts:       o,
	}, nil
}

// Query returns a fresh builder bound to ctx.
func (d *Database) Query(ctx context.Context) builder.QueryBuilder {
	return d.Builder(ctx)
}

// Builder is Query returning the concrete type, which also exposes the
// accumulated filter and find options.
func (d *Database) Builder(ctx context.Context) *QueryBuilder {
	return newQueryBuilder(ctx, d.client, d.dbName, d.collection, d.opts)
}

// Engine reports connection.MongoDB.
func (d *Database) Engine() connection.Engine {
	return connection.MongoDB
}

// Mode reports when writes reach the database.
func (d *Database) Mode() builder.ExecutionMode {
	return builder.Immediate
}

// Client returns the document execution client.
func (d *Database) Client() Client {
	return d.client
}

// GracefulShutdown disconnects from the server.
func (d *Database) GracefulShutdown(ctx context.Context) error {
	if err := d.client.Disconnect(ctx); err != nil {
		d.opts.logger.Error("Failed to disconnect from MongoDB", err, nil)
		return err
	}
	d.opts.logger.Info("MongoDB connection closed", nil, nil)
	return nil
}
