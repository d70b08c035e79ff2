package builder

import (
	"maps"
	"slices"
)

// Row is a single result record keyed by column (or document field) name.
type Row map[string]any

// ExecutionMode tells callers when a builder's writes reach the database.
type ExecutionMode int

const (
	// Deferred writes are rendered into a statement and run by Execute.
	Deferred ExecutionMode = iota

	// Immediate writes are sent to the database as soon as the chain method is called.
	// Execute is then only a checkpoint for errors recorded along the chain.
	Immediate
)

func (m ExecutionMode) String() string {
	switch m {
	case Deferred:
		return "deferred"
	case Immediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Sort directions understood by OrderBy and IndexColumn.
// The relational builder passes any other value through unvalidated.
const (
	Ascending  = "ASC"
	Descending = "DESC"
)

// IndexColumn is one key of an index definition.
// An empty Direction means the engine default (ascending).
type IndexColumn struct {
	Column    string
	Direction string
}

// Asc returns an ascending index key on column.
func Asc(column string) IndexColumn {
	return IndexColumn{Column: column, Direction: Ascending}
}

// Desc returns a descending index key on column.
func Desc(column string) IndexColumn {
	return IndexColumn{Column: column, Direction: Descending}
}

// Columns builds ascending-by-default index keys from plain column names.
func Columns(names ...string) []IndexColumn {
	cols := make([]IndexColumn, 0, len(names))
	for _, name := range names {
		cols = append(cols, IndexColumn{Column: name})
	}
	return cols
}

// IndexOptions carries the optional settings of CreateIndex.
type IndexOptions struct {
	// Name overrides the generated index name (idx_<columns>).
	Name string

	// Unique creates a unique index.
	Unique bool
}

// SortedKeys returns the keys of data in ascending order.
// Builders use it so that rendered column lists and their bindings are stable.
func SortedKeys(data map[string]any) []string {
	return slices.Sorted(maps.Keys(data))
}
