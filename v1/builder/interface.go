package builder

// QueryBuilder is the fluent capability set shared by the relational and the
// document builders. Every chainable method returns the same builder instance.
//
// Terminal operations (Execute, Get) finalize the accumulated descriptor and
// run it through the delegated database client. A builder is bound to the
// context it was created with and is meant for a single chain; call Reset (or
// ask the client for a fresh builder) before composing an unrelated query.
//
// Example:
//
//	rows, err := client.Query(ctx).
//	    Select("id", "name").
//	    From("users").
//	    Where("id", ">", 1).
//	    AndWhere("name", "LIKE", "%John%").
//	    OrderBy("name", "ASC").
//	    Limit(2).
//	    Get()
//
// # Backend-Specific Behavior
//
// The two implementations intentionally differ in a few places:
//
//   - Mode: relational writes take effect at Execute (Deferred), document
//     writes take effect when Insert/Update/Delete/CreateIndex is called (Immediate).
//   - Limit: additive on the relational builder (" LIMIT 5 LIMIT 2"), last call
//     wins on the document builder.
//   - From and Join: additive on the relational builder. Join is unsupported on
//     the document builder.
type QueryBuilder interface {
	// Query modifiers
	Select(columns ...string) QueryBuilder
	From(table string) QueryBuilder
	Where(column, operator string, value any) QueryBuilder
	AndWhere(column, operator string, value any) QueryBuilder
	OrWhere(column, operator string, value any) QueryBuilder
	OrderBy(column, direction string) QueryBuilder
	Limit(n int) QueryBuilder
	Join(table, column1, operator, column2 string) QueryBuilder

	// Write and DDL statements
	Insert(table string, data map[string]any) QueryBuilder
	Update(table string, data map[string]any) QueryBuilder
	Delete(table string) QueryBuilder
	CreateIndex(table string, columns []IndexColumn, opts IndexOptions) QueryBuilder

	// Terminal operations
	Execute() (bool, error)
	Get() ([]Row, error)

	// Utility methods
	Reset() QueryBuilder
	Err() error
	Mode() ExecutionMode
}
