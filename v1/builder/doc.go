// Package builder defines the backend-neutral query builder contract.
//
// The QueryBuilder interface is implemented by:
//   - relational.QueryBuilder (*QueryBuilder), rendering parameterized SQL
//   - document.QueryBuilder (*QueryBuilder), rendering MongoDB filter/options documents
//
// Applications obtain a builder from querybuilder.Client and depend only on
// this package's interface:
//
//	type UserRepository struct {
//	    db querybuilder.Client
//	}
//
//	func (r *UserRepository) Adults(ctx context.Context) ([]builder.Row, error) {
//	    return r.db.Query(ctx).
//	        Select("id", "name").
//	        From("users").
//	        Where("age", ">=", 18).
//	        Get()
//	}
//
// # Errors
//
// Chain methods cannot return errors. The first failure along a chain is kept
// (the same way gorm keeps db.Error) and reported by Err, Execute and Get:
//
//	ok, err := db.Query(ctx).Join("orders", "users.id", "=", "orders.user_id").Execute()
//	if errors.Is(err, builder.ErrUnsupportedOperation) {
//	    // document stores have no join primitive
//	}
//
// Driver failures are wrapped in SQLExecutionError or DocumentExecutionError
// and can be unwrapped to the original driver error. Nothing is retried.
//
// # Execution Modes
//
// Mode reports when writes reach the database. Relational builders are
// Deferred: Insert/Update/Delete/CreateIndex only render a statement and
// Execute runs it. Document builders are Immediate: the write is sent when the
// chain method is called and Execute only reports recorded errors.
package builder
