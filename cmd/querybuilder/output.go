package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/pterm/pterm"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func printRows(w io.Writer, format string, rows []builder.Row) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case outputTable, "":
		if len(rows) == 0 {
			pterm.Info.WithWriter(w).Println("No rows")
			return nil
		}
		return pterm.DefaultTable.
			WithHasHeader().
			WithWriter(w).
			WithData(tableData(rows)).
			Render()
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, outputTable, outputJSON)
	}
}

// tableData renders rows with the union of their columns as header, sorted.
// Missing fields are left empty.
func tableData(rows []builder.Row) pterm.TableData {
	columns := map[string]struct{}{}
	for _, row := range rows {
		for key := range row {
			columns[key] = struct{}{}
		}
	}
	header := slices.Sorted(maps.Keys(columns))

	data := pterm.TableData{header}
	for _, row := range rows {
		line := make([]string, len(header))
		for i, column := range header {
			if v, ok := row[column]; ok && v != nil {
				line[i] = fmt.Sprint(v)
			}
		}
		data = append(data, line)
	}
	return data
}
