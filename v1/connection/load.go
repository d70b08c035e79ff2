package connection

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable Load reads (QB_ENGINE, QB_HOST, ...).
const EnvPrefix = "QB"

var envKeys = []string{"engine", "host", "port", "db_name", "user", "password", "collection"}

// Load reads a Config from a YAML file and the environment.
//
// Sources, lowest priority first:
//   - the YAML file at path (skipped when path is empty)
//   - a .env file next to the working directory, which never overrides variables already set
//   - QB_* environment variables
//
// The engine name is normalized through ParseEngine and the result is validated.
//
// Example config file:
//
//	engine: mysql
//	host: 127.0.0.1
//	db_name: test
//	user: root
//	connection_details:
//	  max_open_conns: 10
//	  conn_max_lifetime: 30s
func Load(fs afero.Fs, path string) (Config, error) {
	if err := loadDotEnv(fs, ".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode connection config: %w", err)
	}

	engine, err := ParseEngine(string(cfg.Engine))
	if err != nil {
		return Config{}, err
	}
	cfg.Engine = engine

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadDotEnv exports the variables of a dotenv file that are not set yet.
// A missing file is not an error.
func loadDotEnv(fs afero.Fs, name string) error {
	data, err := afero.ReadFile(fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for key, value := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}
