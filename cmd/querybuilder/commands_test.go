package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
	"github.com/Aleph-Alpha/querybridge/v1/relational"
)

func TestBuildSelect(t *testing.T) {
	qb := relational.NewQueryBuilder(context.Background(), connection.MySQL, nil)

	_, err := buildSelect(qb, &selectFlags{
		table:   "users",
		columns: []string{"id", "name"},
		joins:   []string{"orders users.id = orders.user_id"},
		where:   []string{"id > 1", "name LIKE %John%"},
		orWhere: []string{"admin = true"},
		orderBy: "name",
		desc:    true,
		limit:   2,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name FROM users JOIN orders ON users.id = orders.user_id WHERE id > ? AND name LIKE ? OR admin = ? ORDER BY name DESC LIMIT 2",
		qb.SQL())
	assert.Equal(t, []any{int64(1), "%John%", true}, qb.Bindings())
}

func TestBuildSelect_Errors(t *testing.T) {
	qb := relational.NewQueryBuilder(context.Background(), connection.MySQL, nil)
	_, err := buildSelect(qb, &selectFlags{where: []string{"broken"}})
	assert.Error(t, err)

	qb = relational.NewQueryBuilder(context.Background(), connection.MySQL, nil)
	_, err = buildSelect(qb, &selectFlags{joins: []string{"orders"}})
	assert.Error(t, err)
}

func TestExampleQuery(t *testing.T) {
	qb := relational.NewQueryBuilder(context.Background(), connection.MySQL, nil)
	exampleQuery(qb, connection.MySQL)

	assert.Equal(t, "SELECT id, name FROM users WHERE id > ? AND name LIKE ? ORDER BY name ASC LIMIT 2", qb.SQL())
	assert.Equal(t, []any{1, "%John%"}, qb.Bindings())
}

func TestSelectCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	cfg, err := connection.NewConfig("sqlite", "", dbPath, "")
	require.NoError(t, err)
	client, err := relational.Open(cfg)
	require.NoError(t, err)

	db := client.Executor().(*relational.GormExecutor).DB()
	require.NoError(t, db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)").Error)
	for i, name := range []string{"Alice", "John", "Johnny"} {
		ok, err := client.Query(context.Background()).Insert("users", map[string]any{"id": i + 1, "name": name}).Execute()
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.NoError(t, client.GracefulShutdown(context.Background()))

	configPath := filepath.Join(dir, "querybuilder.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf("engine: sqlite\ndb_name: %s\n", dbPath)), 0o600))

	run := func(args ...string) []builder.Row {
		t.Helper()
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"-c", configPath, "-o", "json"}, args...))
		require.NoError(t, cmd.Execute())

		var rows []builder.Row
		require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
		return rows
	}

	rows := run("example")
	require.Len(t, rows, 2)
	assert.Equal(t, "John", rows[0]["name"])
	assert.Equal(t, "Johnny", rows[1]["name"])

	rows = run("select", "-t", "users", "--columns", "name", "-w", "id >= 2", "--order-by", "id", "--desc", "-l", "1")
	require.Len(t, rows, 1)
	assert.Equal(t, builder.Row{"name": "Johnny"}, rows[0])
}

func TestRootCommand_BadConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml"), "example"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
