// Package querybuilder is the entry point for building queries against any
// supported engine.
//
// It picks the backend from connection.Config.Engine: mysql, mariadb, pgsql,
// sqlite, sqlsrv and oracle are served by package relational, mongodb by
// package document. Both return a builder.QueryBuilder, so application code
// can be written once against the shared chain.
//
// # Philosophy
//
// The querybuilder package follows Go's "accept interfaces, return structs" principle:
//   - Applications depend on the querybuilder.Client interface
//   - Backends (relational, document) return concrete types
//   - Concrete types implement the interface
//
// # Basic Usage
//
//	cfg, err := connection.NewConfig("mysql", "127.0.0.1", "test", "root",
//	    connection.WithPassword("secret"))
//	if err != nil {
//	    return err
//	}
//
//	qb, client, err := querybuilder.Create(ctx, cfg, querybuilder.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.GracefulShutdown(ctx)
//
//	rows, err := qb.Select("id", "name").
//	    From("users").
//	    Where("id", ">", 1).
//	    AndWhere("name", "LIKE", "%John%").
//	    OrderBy("name", "ASC").
//	    Limit(10).
//	    Get()
//
// # Execution modes
//
// The relational builder defers writes until Execute. The document builder
// performs Insert, Update, Delete and CreateIndex as soon as they are called
// and Execute only reports the first error of the chain. Client.Mode tells
// the two apart.
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    querybuilder.FXModule,
//	    fx.Supply(logger.Config{Level: logger.Info}),
//	    fx.Provide(func() (connection.Config, error) {
//	        return connection.Load(afero.NewOsFs(), "querybuilder.yaml")
//	    }),
//	)
//
// # Extending
//
// WithOpener registers a constructor for an engine, replacing the built-in one.
// It is how tests inject fakes without a live database.
package querybuilder
