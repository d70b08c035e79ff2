package querybuilder

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/document"
	"github.com/Aleph-Alpha/querybridge/v1/logger"
	"github.com/Aleph-Alpha/querybridge/v1/metrics"
	"github.com/Aleph-Alpha/querybridge/v1/relational"
	"github.com/Aleph-Alpha/querybridge/v1/tracer"
)

// Settings are the cross-cutting dependencies handed to an Opener.
type Settings struct {
	Logger  Logger
	Metrics metrics.Recorder
	Tracer  Tracer
}

// Opener connects to the database of cfg and returns its client.
type Opener func(ctx context.Context, cfg connection.Config, s Settings) (Client, error)

// Option configures NewClient and Create.
type Option func(*factory)

type factory struct {
	settings Settings
	openers  map[connection.Engine]Opener
}

// WithLogger sets the logger of the client and its builders.
func WithLogger(l Logger) Option {
	return func(f *factory) {
		if l != nil {
			f.settings.Logger = l
		}
	}
}

// WithMetrics sets the recorder queries are counted with.
func WithMetrics(r metrics.Recorder) Option {
	return func(f *factory) {
		if r != nil {
			f.settings.Metrics = r
		}
	}
}

// WithTracer sets the tracer queries open spans with.
func WithTracer(t Tracer) Option {
	return func(f *factory) {
		if t != nil {
			f.settings.Tracer = t
		}
	}
}

// WithOpener registers (or replaces) the opener of engine. It is the single
// extension point for new backends and for test doubles. engine does not have
// to be one of connection.Engines; configs for other engines are checked with
// connection.Config.ValidateTarget before the opener runs.
func WithOpener(engine connection.Engine, open Opener) Option {
	return func(f *factory) {
		f.openers[engine] = open
	}
}

// defaultOpeners is the engine dispatch table.
func defaultOpeners() map[connection.Engine]Opener {
	openers := make(map[connection.Engine]Opener, len(connection.Engines))
	for _, engine := range connection.Engines {
		switch {
		case engine.IsRelational():
			openers[engine] = openRelational
		case engine.IsDocument():
			openers[engine] = openDocument
		}
	}
	return openers
}

func openRelational(_ context.Context, cfg connection.Config, s Settings) (Client, error) {
	client, err := relational.Open(cfg,
		relational.WithLogger(s.Logger),
		relational.WithMetrics(s.Metrics),
		relational.WithTracer(s.Tracer),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func openDocument(ctx context.Context, cfg connection.Config, s Settings) (Client, error) {
	db, err := document.Connect(ctx, cfg,
		document.WithLogger(s.Logger),
		document.WithMetrics(s.Metrics),
		document.WithTracer(s.Tracer),
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newFactory(opts []Option) *factory {
	f := &factory{
		settings: Settings{
			Logger:  logger.NewNop(),
			Metrics: metrics.Nop{},
			Tracer:  tracer.NewNoop(),
		},
		openers: defaultOpeners(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewClient validates cfg and opens the client of its engine: a relational
// client for mysql, mariadb, pgsql, sqlite, sqlsrv and oracle, a document
// client for mongodb. Engines registered through WithOpener use their opener.
// Any other engine fails with *builder.UnsupportedEngineError.
//
// Example:
//
//	cfg, err := connection.NewConfig("mysql", "127.0.0.1", "test", "root")
//	if err != nil {
//	    return err
//	}
//	client, err := querybuilder.NewClient(ctx, cfg, querybuilder.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown(ctx)
func NewClient(ctx context.Context, cfg connection.Config, opts ...Option) (Client, error) {
	f := newFactory(opts)
	open, ok := f.openers[cfg.Engine]
	if !ok || open == nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return nil, &builder.UnsupportedEngineError{Engine: string(cfg.Engine)}
	}

	validate := cfg.Validate
	if !cfg.Engine.Valid() {
		validate = cfg.ValidateTarget
	}
	if err := validate(); err != nil {
		return nil, err
	}

	client, err := open(ctx, cfg, f.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s client: %w", cfg.Engine, err)
	}
	return client, nil
}

// Create opens the client of cfg and returns a builder bound to ctx along with
// the client, which owns the connection and must be shut down by the caller.
//
// Example:
//
//	qb, client, err := querybuilder.Create(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown(ctx)
//
//	rows, err := qb.Select("id", "name").From("users").Where("id", ">", 1).Get()
func Create(ctx context.Context, cfg connection.Config, opts ...Option) (builder.QueryBuilder, Client, error) {
	client, err := NewClient(ctx, cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return client.Query(ctx), client, nil
}
