package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/tracer"
)

var _ builder.QueryBuilder = (*QueryBuilder)(nil)

func newTestBuilder(t *testing.T, opts ...Option) (*QueryBuilder, *MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	return NewQueryBuilder(context.Background(), client, "test", "users", opts...), client
}

func TestSelect(t *testing.T) {
	t.Run("no columns sets no projection", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.Select()
		assert.Nil(t, qb.Options().Projection)
	})

	t.Run("star sets no projection", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.Select("id").Select("*")
		assert.Nil(t, qb.Options().Projection)
	})

	t.Run("columns are included", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.Select("id", "name")
		assert.Equal(t, bson.M{"id": 1, "name": 1}, qb.Options().Projection)
	})
}

func TestFrom(t *testing.T) {
	qb, _ := newTestBuilder(t)
	qb.Where("id", "$gt", 1).Limit(3).From("orders")

	d := qb.Descriptor()
	assert.Equal(t, "orders", d.Collection)
	assert.Equal(t, bson.M{"id": bson.M{"$gt": 1}}, d.Filter, "filter survives a collection switch")
	require.NotNil(t, d.Options.Limit)
	assert.Equal(t, int64(3), *d.Options.Limit)
}

func TestWhere(t *testing.T) {
	t.Run("overwrites the same column", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.Where("age", "$gt", 18).Where("age", "$lt", 65).Where("name", "$eq", "John")

		assert.Equal(t, bson.M{
			"age":  bson.M{"$lt": 65},
			"name": bson.M{"$eq": "John"},
		}, qb.Filter())
	})

	t.Run("and where appends in call order", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.AndWhere("a", "$eq", 1).AndWhere("b", "$eq", 2)

		and, ok := qb.Filter()["$and"].(bson.A)
		require.True(t, ok)
		require.Len(t, and, 2)
		assert.Equal(t, bson.M{"a": bson.M{"$eq": 1}}, and[0])
		assert.Equal(t, bson.M{"b": bson.M{"$eq": 2}}, and[1])
	})

	t.Run("where after and where keeps the list", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.AndWhere("a", "$eq", 1).AndWhere("b", "$eq", 2).Where("c", "$eq", 3)

		filter := qb.Filter()
		assert.Len(t, filter["$and"], 2)
		assert.Equal(t, bson.M{"$eq": 3}, filter["c"])
	})

	t.Run("or where", func(t *testing.T) {
		qb, _ := newTestBuilder(t)
		qb.OrWhere("status", "$eq", "new").OrWhere("status", "$eq", "open")

		assert.Equal(t, bson.A{
			bson.M{"status": bson.M{"$eq": "new"}},
			bson.M{"status": bson.M{"$eq": "open"}},
		}, qb.Filter()["$or"])
	})
}

func TestFilterIsACopy(t *testing.T) {
	qb, _ := newTestBuilder(t)
	qb.AndWhere("a", "$eq", 1)

	filter := qb.Filter()
	filter["$and"] = append(filter["$and"].(bson.A), bson.M{"x": 1})
	filter["injected"] = true

	assert.Len(t, qb.Filter()["$and"], 1)
	assert.NotContains(t, qb.Filter(), "injected")
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		direction string
		want      int
	}{
		{"ASC", 1},
		{"", 1},
		{"DESC", -1},
		{"asc", -1},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			qb, _ := newTestBuilder(t)
			qb.OrderBy("id", "DESC").OrderBy("name", tt.direction)
			assert.Equal(t, bson.D{{Key: "name", Value: tt.want}}, qb.Options().Sort)
		})
	}
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, 1, sortOrder(builder.Ascending))
	assert.Equal(t, 1, sortOrder(""))
	assert.Equal(t, -1, sortOrder(builder.Descending))
	assert.Equal(t, -1, sortOrder("asc"))
	assert.Equal(t, -1, sortOrder("sideways"))
}

func TestLimit_Overwrites(t *testing.T) {
	qb, _ := newTestBuilder(t)
	qb.Limit(5).Limit(2)

	require.NotNil(t, qb.Options().Limit)
	assert.Equal(t, int64(2), *qb.Options().Limit)
}

func TestJoin_Unsupported(t *testing.T) {
	for _, args := range [][4]string{
		{"orders", "users.id", "=", "orders.user_id"},
		{"", "", "", ""},
	} {
		qb, _ := newTestBuilder(t)
		qb.Join(args[0], args[1], args[2], args[3])

		var opErr *builder.UnsupportedOperationError
		require.ErrorAs(t, qb.Err(), &opErr)
		assert.Equal(t, "join", opErr.Operation)
		assert.ErrorIs(t, qb.Err(), builder.ErrUnsupportedOperation)

		ok, err := qb.Execute()
		assert.False(t, ok)
		assert.ErrorIs(t, err, builder.ErrUnsupportedOperation)
	}
}

func TestInsert_IsImmediate(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().InsertOne(gomock.Any(), bson.M{"name": "John", "age": 30}).Return(nil)

	qb := NewQueryBuilder(context.Background(), client, "test", "users")
	qb.Insert("users", map[string]any{"name": "John", "age": 30})

	// The mock expectation above is already satisfied here, before Execute.
	ok, err := qb.Execute()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInsert_EmptyTableUsesCurrentCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	client.EXPECT().Collection("test", "accounts").Return(coll)
	coll.EXPECT().InsertOne(gomock.Any(), gomock.Any()).Return(nil)

	NewQueryBuilder(context.Background(), client, "test", "users").
		From("accounts").
		Insert("", map[string]any{"a": 1})
}

func TestUpdate_UsesCurrentFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().
		UpdateMany(gomock.Any(), bson.M{"id": bson.M{"$eq": 3}}, bson.M{"$set": bson.M{"x": 5}}).
		Return(int64(1), nil)

	qb := NewQueryBuilder(context.Background(), client, "test", "users")
	qb.Where("id", "$eq", 3).Update("users", map[string]any{"x": 5})
	assert.NoError(t, qb.Err())
}

func TestDelete_UsesCurrentFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().
		DeleteMany(gomock.Any(), bson.M{"$or": bson.A{bson.M{"id": bson.M{"$eq": 1}}, bson.M{"id": bson.M{"$eq": 2}}}}).
		Return(int64(2), nil)

	qb := NewQueryBuilder(context.Background(), client, "test", "users")
	qb.OrWhere("id", "$eq", 1).OrWhere("id", "$eq", 2).Delete("users")
	assert.NoError(t, qb.Err())
}

func TestCreateIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	opts := builder.IndexOptions{Name: "by_name", Unique: true}
	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().
		CreateIndex(gomock.Any(), bson.D{{Key: "last", Value: 1}, {Key: "created", Value: -1}, {Key: "first", Value: 1}}, opts).
		Return("by_name", nil)

	qb := NewQueryBuilder(context.Background(), client, "test", "users")
	qb.CreateIndex("users", []builder.IndexColumn{builder.Asc("last"), builder.Desc("created"), {Column: "first"}}, opts)
	assert.NoError(t, qb.Err())
}

func TestWriteFailureIsSticky(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	driverErr := errors.New("E11000 duplicate key error")
	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().InsertOne(gomock.Any(), gomock.Any()).Return(driverErr)

	qb := NewQueryBuilder(context.Background(), client, "test", "users")
	qb.Insert("users", map[string]any{"_id": 1}).
		Delete("users") // not sent after the failure

	ok, err := qb.Execute()
	assert.False(t, ok)

	var docErr *builder.DocumentExecutionError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "insert", docErr.Op)
	assert.Equal(t, "users", docErr.Collection)
	assert.ErrorIs(t, err, driverErr)

	_, err = qb.Get()
	assert.ErrorIs(t, err, driverErr)
}

func TestWrites_WithoutData(t *testing.T) {
	qb, _ := newTestBuilder(t)
	qb.Insert("users", nil)
	assert.ErrorIs(t, qb.Err(), builder.ErrInvalidData)

	qb.Reset()
	qb.Update("users", map[string]any{})
	assert.ErrorIs(t, qb.Err(), builder.ErrInvalidData)

	qb.Reset()
	qb.CreateIndex("users", nil, builder.IndexOptions{})
	assert.ErrorIs(t, qb.Err(), builder.ErrInvalidData)
}

func TestGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	limit := int64(1)
	want := []builder.Row{{"id": int32(2), "name": "John"}}
	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().Find(gomock.Any(),
		bson.M{"id": bson.M{"$gt": 1}, "$and": bson.A{bson.M{"name": bson.M{"$regex": "John"}}}},
		FindOptions{
			Projection: bson.M{"id": 1, "name": 1},
			Sort:       bson.D{{Key: "name", Value: 1}},
			Limit:      &limit,
		},
	).Return(want, nil)

	rows, err := NewQueryBuilder(context.Background(), client, "test", "").
		Select("id", "name").
		From("users").
		Where("id", "$gt", 1).
		AndWhere("name", "$regex", "John").
		OrderBy("name", "ASC").
		Limit(1).
		Get()
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestGet_NoMatchIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)
	client.EXPECT().Collection(gomock.Any(), gomock.Any()).Return(coll)
	coll.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	rows, err := NewQueryBuilder(context.Background(), client, "test", "users").Get()
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGet_NoCollection(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)

	_, err := NewQueryBuilder(context.Background(), client, "test", "").Get()
	assert.ErrorIs(t, err, builder.ErrInvalidData)
}

func TestRun_WithoutClient(t *testing.T) {
	_, err := NewQueryBuilder(context.Background(), nil, "test", "users").Get()

	var docErr *builder.DocumentExecutionError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "find", docErr.Op)
	assert.Equal(t, "users", docErr.Collection)
	assert.ErrorIs(t, err, builder.ErrNotConnected)
}

func TestReset(t *testing.T) {
	qb, _ := newTestBuilder(t)
	qb.Select("id").Where("id", "$eq", 1).OrderBy("id", "ASC").Limit(1).Join("a", "b", "=", "c")
	require.Error(t, qb.Err())

	qb.Reset()
	assert.NoError(t, qb.Err())
	assert.Equal(t, Descriptor{Collection: "users", Filter: bson.M{}}, qb.Descriptor())
}

func TestMode(t *testing.T) {
	qb, _ := newTestBuilder(t)
	assert.Equal(t, builder.Immediate, qb.Mode())
}

type fakeRecorder struct {
	operations []string
	errs       []error
}

func (f *fakeRecorder) ObserveQuery(_, operation string, _ time.Time, err error) {
	f.operations = append(f.operations, operation)
	f.errs = append(f.errs, err)
}

func TestObservability(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)
	log := NewMockLogger(ctrl)

	driverErr := errors.New("server selection timeout")
	client.EXPECT().Collection("test", "users").Return(coll).Times(2)
	coll.EXPECT().DeleteMany(gomock.Any(), gomock.Any()).Return(int64(0), nil)
	coll.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, driverErr)
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Error("Document operation failed", gomock.Any(), gomock.Any()).Times(1)

	recorder := &fakeRecorder{}
	spans := tracetest.NewSpanRecorder()
	tr := tracer.NewFromProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)))

	qb := NewQueryBuilder(context.Background(), client, "test", "users",
		WithLogger(log), WithMetrics(recorder), WithTracer(tr))
	qb.Delete("users")
	_, err := qb.Get()
	require.Error(t, err)

	assert.Equal(t, []string{"delete", "find"}, recorder.operations)
	assert.NoError(t, recorder.errs[0])
	assert.ErrorIs(t, recorder.errs[1], driverErr)

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "querybridge.mongodb.delete", ended[0].Name())
	assert.Equal(t, "querybridge.mongodb.find", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}
