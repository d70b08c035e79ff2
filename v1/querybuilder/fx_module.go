package querybuilder

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/logger"
	"github.com/Aleph-Alpha/querybridge/v1/metrics"
	"github.com/Aleph-Alpha/querybridge/v1/tracer"
)

// FXModule provides querybuilder.Client via dependency injection.
// The implementation (relational or document) is selected from connection.Config.Engine.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    querybuilder.FXModule,
//	    fx.Supply(logger.Config{Level: logger.Info, ServiceName: "orders"}),
//	    fx.Provide(func() (connection.Config, error) {
//	        return connection.NewConfig("pgsql", "localhost", "orders", "app")
//	    }),
//	    fx.Invoke(func(db querybuilder.Client) {
//	        rows, err := db.Query(context.Background()).From("orders").Get()
//	        ...
//	    }),
//	)
//
// The logger, metrics recorder and tracer are optional; whichever is in the
// container is handed to the client.
var FXModule = fx.Module("querybuilder",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterClientLifecycle),
)

// ClientParams groups the dependencies needed to create a client.
type ClientParams struct {
	fx.In

	Config  connection.Config
	Logger  *logger.Logger   `optional:"true"`
	Metrics metrics.Recorder `optional:"true"`
	Tracer  *tracer.Tracer   `optional:"true"`
	Options []Option         `group:"querybuilder_options"`
}

// ClientLifecycleParams groups the dependencies needed for client lifecycle management.
type ClientLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    Client
	Logger    *logger.Logger `optional:"true"`
}

// NewClientWithDI opens the client of params.Config using the dependencies
// found in the container. Extra options can be contributed through the
// "querybuilder_options" value group.
func NewClientWithDI(params ClientParams) (Client, error) {
	opts := make([]Option, 0, len(params.Options)+3)
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Metrics != nil {
		opts = append(opts, WithMetrics(params.Metrics))
	}
	if params.Tracer != nil {
		opts = append(opts, WithTracer(params.Tracer))
	}
	opts = append(opts, params.Options...)

	return NewClient(context.Background(), params.Config, opts...)
}

// RegisterClientLifecycle registers the client with the fx lifecycle system.
// The connection is released when the application stops.
func RegisterClientLifecycle(params ClientLifecycleParams) {
	var log Logger = logger.NewNop()
	if params.Logger != nil {
		log = params.Logger
	}

	fields := map[string]interface{}{
		"engine": params.Client.Engine().String(),
		"mode":   params.Client.Mode().String(),
	}

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Query builder client initialized", nil, fields)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down query builder client", nil, fields)
			return params.Client.GracefulShutdown(ctx)
		},
	})
}
