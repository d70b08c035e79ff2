package document

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// Client is the document execution client a QueryBuilder delegates to.
//
//go:generate mockgen -source=mongo.go -destination=mock_mongo.go -package=document
type Client interface {
	// Collection returns a handle on collection name of database db.
	Collection(db, name string) Collection

	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Collection is a handle on one collection.
type Collection interface {
	Name() string

	// Find returns every document matching filter, shaped by opts.
	Find(ctx context.Context, filter bson.M, opts FindOptions) ([]builder.Row, error)

	InsertOne(ctx context.Context, doc bson.M) error

	// UpdateMany applies update to every matching document and returns the matched count.
	UpdateMany(ctx context.Context, filter, update bson.M) (int64, error)

	// DeleteMany removes every matching document and returns the deleted count.
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)

	// CreateIndex creates an index on keys and returns its name.
	CreateIndex(ctx context.Context, keys bson.D, opts builder.IndexOptions) (string, error)
}

// FindOptions are the options of a find. Nil or empty fields are not sent.
type FindOptions struct {
	Projection bson.M
	Sort       bson.D
	Limit      *int64
}

// MongoClient adapts *mongo.Client to Client.
type MongoClient struct {
	client *mongo.Client
}

// NewMongoClient wraps an already connected driver client.
func NewMongoClient(client *mongo.Client) *MongoClient {
	return &MongoClient{client: client}
}

func (c *MongoClient) Collection(db, name string) Collection {
	return &mongoCollection{coll: c.client.Database(db).Collection(name)}
}

func (c *MongoClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *MongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Driver returns the underlying driver client for operations the builder does not cover.
func (c *MongoClient) Driver() *mongo.Client {
	return c.client
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]builder.Row, error) {
	findOpts := options.Find()
	if len(opts.Projection) > 0 {
		findOpts.SetProjection(opts.Projection)
	}
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Limit != nil {
		findOpts.SetLimit(*opts.Limit)
	}

	cursor, err := c.coll.Find(ctx, filterOrEmpty(filter), findOpts)
	if err != nil {
		return nil, err
	}

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]builder.Row, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, builder.Row(doc))
	}
	return rows, nil
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc bson.M) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return err
}

func (c *mongoCollection) UpdateMany(ctx context.Context, filter, update bson.M) (int64, error) {
	res, err := c.coll.UpdateMany(ctx, filterOrEmpty(filter), update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filterOrEmpty(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *mongoCollection) CreateIndex(ctx context.Context, keys bson.D, opts builder.IndexOptions) (string, error) {
	indexOpts := options.Index()
	if opts.Name != "" {
		indexOpts.SetName(opts.Name)
	}
	if opts.Unique {
		indexOpts.SetUnique(true)
	}
	return c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: indexOpts})
}

// filterOrEmpty turns a nil filter into an empty document; the driver rejects nil.
func filterOrEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
