// Package connection describes which database a query builder talks to.
//
// A Config names the engine (mysql, mariadb, pgsql, sqlite, sqlsrv, oracle or
// mongodb), the server address, the database and the credentials. It is a plain
// value: build it with NewConfig, a struct literal followed by Validate, or Load
// it from YAML and QB_* environment variables.
//
//	cfg, err := connection.NewConfig("pgsql", "localhost:5432", "app", "app",
//	    connection.WithPassword(os.Getenv("DB_PASSWORD")),
//	    connection.WithOption("sslmode", "require"),
//	)
//
// DSN renders the connection string of the engine's driver. The relational
// client opens the database with it and the document client derives its URI
// from it.
package connection
