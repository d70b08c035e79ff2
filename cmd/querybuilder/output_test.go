package main

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

func TestTableData(t *testing.T) {
	data := tableData([]builder.Row{
		{"name": "Alice", "id": 1},
		{"id": 2, "email": "john@example.com", "name": nil},
	})

	assert.Equal(t, pterm.TableData{
		{"email", "id", "name"},
		{"", "1", "Alice"},
		{"john@example.com", "2", ""},
	}, data)
}

func TestPrintRows(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out bytes.Buffer
	require.NoError(t, printRows(&out, outputTable, []builder.Row{{"id": 1, "name": "Alice"}}))
	assert.Contains(t, out.String(), "Alice")
	assert.Contains(t, out.String(), "name")

	out.Reset()
	require.NoError(t, printRows(&out, outputJSON, []builder.Row{{"id": 1}}))
	assert.JSONEq(t, `[{"id": 1}]`, out.String())

	assert.Error(t, printRows(&out, "xml", nil))
}
