package document

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

func TestTranslateError(t *testing.T) {
	duplicate := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
	wrapped := &builder.DocumentExecutionError{Op: "insert", Collection: "users", Err: duplicate}

	assert.ErrorIs(t, TranslateError(wrapped), builder.ErrDuplicateKey)
	assert.ErrorIs(t, TranslateError(mongo.ErrClientDisconnected), builder.ErrConnection)
	assert.ErrorIs(t, TranslateError(mongo.CommandError{Labels: []string{"NetworkError"}}), builder.ErrConnection)
	assert.ErrorIs(t, TranslateError(mongo.ErrNilDocument), builder.ErrInvalidData)

	assert.NoError(t, TranslateError(nil))
	unknown := errors.New("boom")
	assert.Equal(t, unknown, TranslateError(unknown))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(mongo.CommandError{Labels: []string{"NetworkError"}}))
	assert.True(t, IsRetryable(context.DeadlineExceeded))

	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("boom")))
}
