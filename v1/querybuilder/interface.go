package querybuilder

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/document"
	"github.com/Aleph-Alpha/querybridge/v1/relational"
)

// Client owns the connection of one database and hands out query builders.
// Applications can depend on it for engine-agnostic code:
//
//	type UserRepository struct {
//	    db querybuilder.Client
//	}
//
//	func (r *UserRepository) Active(ctx context.Context) ([]builder.Row, error) {
//	    return r.db.Query(ctx).Select("id", "name").From("users").Where("active", "=", true).Get()
//	}
//
// The Client interface is implemented by:
//   - relational.Client (*Client)
//   - document.Database (*Database)
type Client interface {
	// Query returns a fresh builder bound to ctx. Use one builder per chain.
	Query(ctx context.Context) builder.QueryBuilder

	// Engine reports the engine the client was opened for.
	Engine() connection.Engine

	// Mode reports whether writes are Deferred (relational) or Immediate (document).
	Mode() builder.ExecutionMode

	// GracefulShutdown releases the connection.
	GracefulShutdown(ctx context.Context) error
}

// Logger is satisfied by *logger.Logger and is handed to every backend.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Tracer is satisfied by *tracer.Tracer.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

var (
	_ Client = (*relational.Client)(nil)
	_ Client = (*document.Database)(nil)
)
