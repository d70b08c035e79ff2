package connection

import (
	"strings"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// Engine identifies the database engine a Config targets.
type Engine string

const (
	MySQL     Engine = "mysql"
	MariaDB   Engine = "mariadb"
	Postgres  Engine = "pgsql"
	SQLite    Engine = "sqlite"
	SQLServer Engine = "sqlsrv"
	Oracle    Engine = "oracle"
	MongoDB   Engine = "mongodb"
)

// Engines lists every recognized engine, relational ones first.
var Engines = []Engine{MySQL, MariaDB, Postgres, SQLite, SQLServer, Oracle, MongoDB}

var engineAliases = map[string]Engine{
	"postgres":   Postgres,
	"postgresql": Postgres,
	"mssql":      SQLServer,
	"sqlserver":  SQLServer,
	"mongo":      MongoDB,
}

// ParseEngine resolves a configured engine name, accepting a few common aliases.
// Unknown names yield an *builder.UnsupportedEngineError.
func ParseEngine(name string) (Engine, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := engineAliases[normalized]; ok {
		return alias, nil
	}
	e := Engine(normalized)
	if !e.Valid() {
		return "", &builder.UnsupportedEngineError{Engine: name}
	}
	return e, nil
}

// Valid reports whether e is one of the recognized engines.
func (e Engine) Valid() bool {
	return e.IsRelational() || e.IsDocument()
}

// IsRelational reports whether e is served by the SQL builder.
func (e Engine) IsRelational() bool {
	switch e {
	case MySQL, MariaDB, Postgres, SQLite, SQLServer, Oracle:
		return true
	}
	return false
}

// IsDocument reports whether e is served by the document builder.
func (e Engine) IsDocument() bool {
	return e == MongoDB
}

func (e Engine) String() string {
	return string(e)
}
