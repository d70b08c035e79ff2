// Package document implements the query builder for MongoDB.
//
// A QueryBuilder turns chained calls into a filter document and find options
// for one collection. Operators are MongoDB's own:
//
//	rows, err := db.Query(ctx).
//	    Select("id", "name").
//	    From("users").
//	    Where("id", "$gt", 1).
//	    AndWhere("name", "$regex", "John").
//	    OrderBy("name", "ASC").
//	    Limit(1).
//	    Get()
//
// The filter of that chain is
//
//	{"id": {"$gt": 1}, "$and": [{"name": {"$regex": "John"}}]}
//
// Unlike the relational builder, writes are sent as soon as Insert, Update,
// Delete or CreateIndex is called. Update and Delete use the filter built so
// far, so conditions must precede them in the chain. Execute only reports the
// first error recorded along the chain. Join has no document counterpart and
// always fails with builder.ErrUnsupportedOperation.
//
// Driver failures are wrapped in *builder.DocumentExecutionError.
// TranslateError maps duplicate keys and network failures onto the builder
// sentinels.
package document
