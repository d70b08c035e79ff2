package document

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
)

// Descriptor is the accumulated state of a document builder.
type Descriptor struct {
	Collection string
	Filter     bson.M
	Options    FindOptions
}

// QueryBuilder translates chained calls into a filter document and find
// options for one collection. It is not safe for concurrent use.
//
// Writes are immediate: Insert, Update, Delete and CreateIndex reach the
// database when they are called, and Execute only reports the first error
// recorded along the chain. After an error no further writes are sent.
//
// Chain semantics:
//   - Where sets filter[column] and replaces an earlier condition on the same column.
//   - AndWhere and OrWhere append to the $and and $or lists and never replace.
//   - OrderBy and Limit replace any earlier value.
//   - Join is not supported and records an UnsupportedOperationError.
type QueryBuilder struct {
	ctx    context.Context
	client Client
	dbName string
	opts   settings

	collection string
	filter     bson.M
	find       FindOptions
	err        error
}

// NewQueryBuilder returns a builder on collection of database dbName.
func NewQueryBuilder(ctx context.Context, client Client, dbName, collection string, opts ...Option) *QueryBuilder {
	return newQueryBuilder(ctx, client, dbName, collection, newSettings(opts))
}

func newQueryBuilder(ctx context.Context, client Client, dbName, collection string, opts settings) *QueryBuilder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &QueryBuilder{
		ctx:        ctx,
		client:     client,
		dbName:     dbName,
		opts:       opts,
		collection: collection,
		filter:     bson.M{},
	}
}

// Select projects the listed fields. No columns (or "*") returns whole
// documents and sends no projection.
func (qb *QueryBuilder) Select(columns ...string) builder.QueryBuilder {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		qb.find.Projection = nil
		return qb
	}

	projection := make(bson.M, len(columns))
	for _, column := range columns {
		projection[column] = 1
	}
	qb.find.Projection = projection
	return qb
}

// From switches the collection. The filter and options are kept.
func (qb *QueryBuilder) From(table string) builder.QueryBuilder {
	qb.collection = table
	return qb
}

// Where sets the condition on column, e.g. Where("id", "$gt", 1).
func (qb *QueryBuilder) Where(column, operator string, value any) builder.QueryBuilder {
	qb.filter[column] = bson.M{operator: value}
	return qb
}

// AndWhere appends a condition to the $and list.
func (qb *QueryBuilder) AndWhere(column, operator string, value any) builder.QueryBuilder {
	return qb.appendCondition("$and", column, operator, value)
}

// OrWhere appends a condition to the $or list.
func (qb *QueryBuilder) OrWhere(column, operator string, value any) builder.QueryBuilder {
	return qb.appendCondition("$or", column, operator, value)
}

func (qb *QueryBuilder) appendCondition(combinator, column, operator string, value any) builder.QueryBuilder {
	list, _ := qb.filter[combinator].(bson.A)
	qb.filter[combinator] = append(list, bson.M{column: bson.M{operator: value}})
	return qb
}

// OrderBy sorts on a single field: 1 for exactly "ASC" or an empty direction,
// -1 for anything else. Directions are case sensitive, so "asc" sorts descending.
func (qb *QueryBuilder) OrderBy(column, direction string) builder.QueryBuilder {
	qb.find.Sort = bson.D{{Key: column, Value: sortOrder(direction)}}
	return qb
}

// Limit caps the number of documents returned. The last call wins.
func (qb *QueryBuilder) Limit(n int) builder.QueryBuilder {
	if n < 0 {
		return qb.fail(fmt.Errorf("%w: negative limit %d", builder.ErrInvalidData, n))
	}
	limit := int64(n)
	qb.find.Limit = &limit
	return qb
}

// Join records an UnsupportedOperationError.
func (qb *QueryBuilder) Join(_, _, _, _ string) builder.QueryBuilder {
	return qb.fail(&builder.UnsupportedOperationError{Operation: "join", Engine: string(connection.MongoDB)})
}

// Insert writes data as one document into table (or the current collection
// when table is empty).
func (qb *QueryBuilder) Insert(table string, data map[string]any) builder.QueryBuilder {
	if len(data) == 0 {
		return qb.fail(fmt.Errorf("%w: insert into %s without data", builder.ErrInvalidData, table))
	}
	name := qb.target(table)
	qb.write("insert", name, func(ctx context.Context, coll Collection) (int64, error) {
		return 1, coll.InsertOne(ctx, bson.M(data))
	})
	return qb
}

// Update sets the fields of data on every document matching the current filter.
func (qb *QueryBuilder) Update(table string, data map[string]any) builder.QueryBuilder {
	if len(data) == 0 {
		return qb.fail(fmt.Errorf("%w: update of %s without data", builder.ErrInvalidData, table))
	}
	name := qb.target(table)
	filter := qb.Filter()
	qb.write("update", name, func(ctx context.Context, coll Collection) (int64, error) {
		return coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M(data)})
	})
	return qb
}

// Delete removes every document matching the current filter.
func (qb *QueryBuilder) Delete(table string) builder.QueryBuilder {
	name := qb.target(table)
	filter := qb.Filter()
	qb.write("delete", name, func(ctx context.Context, coll Collection) (int64, error) {
		return coll.DeleteMany(ctx, filter)
	})
	return qb
}

// CreateIndex creates an index with keys in the given order. Each key gets 1
// for exactly "ASC" or an empty direction and -1 for anything else.
func (qb *QueryBuilder) CreateIndex(table string, columns []builder.IndexColumn, opts builder.IndexOptions) builder.QueryBuilder {
	if len(columns) == 0 {
		return qb.fail(fmt.Errorf("%w: index on %s without columns", builder.ErrInvalidData, table))
	}

	keys := make(bson.D, 0, len(columns))
	for _, col := range columns {
		keys = append(keys, bson.E{Key: col.Column, Value: sortOrder(col.Direction)})
	}

	name := qb.target(table)
	qb.write("create_index", name, func(ctx context.Context, coll Collection) (int64, error) {
		created, err := coll.CreateIndex(ctx, keys, opts)
		if err == nil {
			qb.opts.logger.Debug("Index created", nil, map[string]interface{}{
				"collection": name,
				"index":      created,
			})
		}
		return 0, err
	})
	return qb
}

// Execute reports the first error recorded along the chain. Writes have
// already been applied when their methods were called.
func (qb *QueryBuilder) Execute() (bool, error) {
	if qb.err != nil {
		return false, qb.err
	}
	return true, nil
}

// Get finds the documents matching the filter. No match yields an empty, non-nil slice.
func (qb *QueryBuilder) Get() ([]builder.Row, error) {
	if qb.err != nil {
		return nil, qb.err
	}

	var rows []builder.Row
	err := qb.run("find", qb.collection, func(ctx context.Context, coll Collection) (int64, error) {
		found, err := coll.Find(ctx, qb.Filter(), qb.Options())
		rows = found
		return int64(len(found)), err
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []builder.Row{}
	}
	return rows, nil
}

// Filter returns a copy of the accumulated filter.
func (qb *QueryBuilder) Filter() bson.M {
	filter := make(bson.M, len(qb.filter))
	for key, value := range qb.filter {
		if list, ok := value.(bson.A); ok {
			value = append(bson.A(nil), list...)
		}
		filter[key] = value
	}
	return filter
}

// Options returns a copy of the accumulated find options.
func (qb *QueryBuilder) Options() FindOptions {
	opts := FindOptions{}
	if qb.find.Projection != nil {
		opts.Projection = make(bson.M, len(qb.find.Projection))
		for k, v := range qb.find.Projection {
			opts.Projection[k] = v
		}
	}
	if qb.find.Sort != nil {
		opts.Sort = append(bson.D(nil), qb.find.Sort...)
	}
	if qb.find.Limit != nil {
		limit := *qb.find.Limit
		opts.Limit = &limit
	}
	return opts
}

// Descriptor returns a copy of the accumulated state.
func (qb *QueryBuilder) Descriptor() Descriptor {
	return Descriptor{Collection: qb.collection, Filter: qb.Filter(), Options: qb.Options()}
}

// Reset clears the filter, the options and any recorded error. The collection is kept.
func (qb *QueryBuilder) Reset() builder.QueryBuilder {
	qb.filter = bson.M{}
	qb.find = FindOptions{}
	qb.err = nil
	return qb
}

// Err returns the first error recorded along the chain.
func (qb *QueryBuilder) Err() error {
	return qb.err
}

// Mode reports Immediate.
func (qb *QueryBuilder) Mode() builder.ExecutionMode {
	return builder.Immediate
}

func (qb *QueryBuilder) target(table string) string {
	if table == "" {
		return qb.collection
	}
	return table
}

// write runs an immediate operation and keeps its failure as the chain error.
// Once the chain has failed no further writes are sent.
func (qb *QueryBuilder) write(operation, collection string, fn func(ctx context.Context, coll Collection) (int64, error)) {
	if qb.err != nil {
		return
	}
	if err := qb.run(operation, collection, fn); err != nil {
		qb.fail(err)
	}
}

// run executes fn on collection inside a span, recording metrics and logging the outcome.
func (qb *QueryBuilder) run(operation, collection string, fn func(ctx context.Context, coll Collection) (int64, error)) (err error) {
	if collection == "" {
		return fmt.Errorf("%w: no collection selected for %s", builder.ErrInvalidData, operation)
	}
	if qb.client == nil {
		return &builder.DocumentExecutionError{Op: operation, Collection: collection, Err: builder.ErrNotConnected}
	}

	engine := string(connection.MongoDB)
	start := time.Now()
	ctx, span := qb.opts.tracer.StartSpan(qb.ctx, fmt.Sprintf("querybridge.%s.%s", engine, operation))
	defer span.End()
	qb.opts.tracer.SetAttributes(span, map[string]interface{}{
		"db.system":     engine,
		"db.name":       qb.dbName,
		"db.collection": collection,
		"db.operation":  operation,
	})

	fields := map[string]interface{}{
		"engine":     engine,
		"operation":  operation,
		"collection": collection,
	}

	defer func() {
		qb.opts.metrics.ObserveQuery(engine, operation, start, err)
		if err != nil {
			qb.opts.tracer.RecordErrorOnSpan(span, err)
			qb.opts.logger.Error("Document operation failed", err, fields)
		}
	}()

	affected, opErr := fn(ctx, qb.client.Collection(qb.dbName, collection))
	if opErr != nil {
		return &builder.DocumentExecutionError{Op: operation, Collection: collection, Err: opErr}
	}

	fields["documents"] = affected
	qb.opts.logger.Debug("Document operation completed", nil, fields)
	return nil
}

func (qb *QueryBuilder) fail(err error) builder.QueryBuilder {
	if qb.err == nil {
		qb.err = err
	}
	return qb
}

// sortOrder maps a direction to a mongo sort value. Empty counts as "ASC".
func sortOrder(direction string) int {
	if direction == "" || direction == builder.Ascending {
		return 1
	}
	return -1
}
