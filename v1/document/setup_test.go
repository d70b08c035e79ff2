package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
	"github.com/Aleph-Alpha/querybridge/v1/connection"
)

func TestDatabase(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	coll := NewMockCollection(ctrl)

	db := NewDatabase(client, "test", "users")
	assert.Equal(t, connection.MongoDB, db.Engine())
	assert.Equal(t, builder.Immediate, db.Mode())
	assert.Equal(t, Client(client), db.Client())

	client.EXPECT().Collection("test", "users").Return(coll)
	coll.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err := db.Query(context.Background()).Get()
	require.NoError(t, err)

	assert.Equal(t, "users", db.Builder(context.Background()).Descriptor().Collection)
}

func TestDatabase_GracefulShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	log := NewMockLogger(ctrl)

	closeErr := errors.New("already closed")
	client.EXPECT().Disconnect(gomock.Any()).Return(closeErr)
	log.EXPECT().Error("Failed to disconnect from MongoDB", closeErr, gomock.Any())

	db := NewDatabase(client, "test", "users", WithLogger(log))
	assert.ErrorIs(t, db.GracefulShutdown(context.Background()), closeErr)
}

func TestConnect_RejectsRelationalEngine(t *testing.T) {
	cfg, err := connection.NewConfig("sqlite", "", ":memory:", "")
	require.NoError(t, err)

	_, err = Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, builder.ErrUnsupportedEngine)
}
