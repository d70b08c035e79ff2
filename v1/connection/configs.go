package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// Config describes the database a builder targets.
// It is a value type: copies handed to clients and builders never change.
type Config struct {
	// Engine selects the builder implementation and the driver.
	Engine Engine `yaml:"engine" mapstructure:"engine" envconfig:"QB_ENGINE"`

	// Host is the server address. It may carry a port ("127.0.0.1:3306").
	// Ignored for sqlite.
	Host string `yaml:"host" mapstructure:"host" envconfig:"QB_HOST"`

	// Port is optional when Host already carries one.
	Port string `yaml:"port" mapstructure:"port" envconfig:"QB_PORT"`

	// DbName is the database name, or the database file path for sqlite.
	DbName string `yaml:"db_name" mapstructure:"db_name" envconfig:"QB_DB_NAME"`

	User     string `yaml:"user" mapstructure:"user" envconfig:"QB_USER"`
	Password string `yaml:"password" mapstructure:"password" envconfig:"QB_PASSWORD"`

	// Collection is the initial collection of document stores.
	Collection string `yaml:"collection" mapstructure:"collection" envconfig:"QB_COLLECTION"`

	// Options are appended to the driver connection string as key/value parameters
	// (for example sslmode for postgres or tls for mysql).
	Options map[string]string `yaml:"options" mapstructure:"options"`

	ConnectionDetails ConnectionDetails `yaml:"connection_details" mapstructure:"connection_details"`
}

// ConnectionDetails tunes the driver-side connection pool.
// Zero values fall back to the package defaults.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// Option customizes a Config built by NewConfig.
type Option func(*Config)

// WithPassword sets the password.
func WithPassword(password string) Option {
	return func(c *Config) { c.Password = password }
}

// WithPort sets an explicit port.
func WithPort(port string) Option {
	return func(c *Config) { c.Port = port }
}

// WithCollection sets the initial collection for document stores.
func WithCollection(collection string) Option {
	return func(c *Config) { c.Collection = collection }
}

// WithOption adds a driver connection parameter.
func WithOption(key, value string) Option {
	return func(c *Config) {
		if c.Options == nil {
			c.Options = map[string]string{}
		}
		c.Options[key] = value
	}
}

// WithConnectionDetails sets the pool parameters.
func WithConnectionDetails(details ConnectionDetails) Option {
	return func(c *Config) { c.ConnectionDetails = details }
}

// NewConfig builds and validates a Config.
//
// Example:
//
//	cfg, err := connection.NewConfig("mysql", "127.0.0.1", "test", "root")
//	mongoCfg, err := connection.NewConfig("mongodb", "127.0.0.1", "test", "root",
//	    connection.WithCollection("users"))
func NewConfig(engine, host, dbName, user string, opts ...Option) (Config, error) {
	e, err := ParseEngine(engine)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Engine: e,
		Host:   host,
		DbName: dbName,
		User:   user,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants every client relies on. The engine must be
// one of Engines.
func (c Config) Validate() error {
	if c.Engine != "" && !c.Engine.Valid() {
		return &builder.UnsupportedEngineError{Engine: string(c.Engine)}
	}
	return c.ValidateTarget()
}

// ValidateTarget checks that cfg names an engine and a database to reach,
// without requiring the engine to be a built-in one. Custom openers are
// validated with it.
func (c Config) ValidateTarget() error {
	if c.Engine == "" {
		return errors.New("engine is required")
	}
	if c.DbName == "" {
		return errors.New("database name is required")
	}
	if c.Host == "" && c.Engine != SQLite {
		return fmt.Errorf("host is required for engine %s", c.Engine)
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "****"
	}
	return c
}

// LogFields renders the identifying fields of the config for structured logs.
func (c Config) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"engine":     c.Engine.String(),
		"host":       c.Host,
		"database":   c.DbName,
		"collection": c.Collection,
	}
}
