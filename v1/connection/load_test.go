package connection

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

const sampleConfig = `
engine: postgres
host: db.internal
port: "5432"
db_name: app
user: app
options:
  sslmode: require
connection_details:
  max_open_conns: 10
  conn_max_lifetime: 30s
`

func TestLoad_FromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/qb/config.yaml", []byte(sampleConfig), 0o644))

	cfg, err := Load(fs, "/etc/qb/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, Postgres, cfg.Engine, "aliases are normalized")
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "app", cfg.DbName)
	assert.Equal(t, "require", cfg.Options["sslmode"])
	assert.Equal(t, 10, cfg.ConnectionDetails.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.ConnectionDetails.ConnMaxLifetime)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config.yaml", []byte(sampleConfig), 0o644))

	t.Setenv("QB_HOST", "replica.internal")
	t.Setenv("QB_PASSWORD", "from-env")

	cfg, err := Load(fs, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "replica.internal", cfg.Host)
	assert.Equal(t, "from-env", cfg.Password)
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	t.Setenv("QB_ENGINE", "mongodb")
	t.Setenv("QB_HOST", "127.0.0.1")
	t.Setenv("QB_DB_NAME", "test")
	t.Setenv("QB_COLLECTION", "users")

	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, MongoDB, cfg.Engine)
	assert.Equal(t, "users", cfg.Collection)
}

func TestLoad_DotEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("QB_ENGINE=sqlite\nQB_DB_NAME=/tmp/dotenv.db\n"), 0o644))

	// t.Setenv registers the restore; the dotenv loader skips keys already present,
	// so unset them after the registration.
	t.Setenv("QB_ENGINE", "")
	t.Setenv("QB_DB_NAME", "")
	require.NoError(t, os.Unsetenv("QB_ENGINE"))
	require.NoError(t, os.Unsetenv("QB_DB_NAME"))

	cfg, err := Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, SQLite, cfg.Engine)
	assert.Equal(t, "/tmp/dotenv.db", cfg.DbName)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(afero.NewMemMapFs(), "nope.yaml")
		assert.Error(t, err)
	})

	t.Run("unsupported engine", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "c.yaml", []byte("engine: foo\nhost: h\ndb_name: d\n"), 0o644))

		_, err := Load(fs, "c.yaml")
		assert.ErrorIs(t, err, builder.ErrUnsupportedEngine)
	})
}
