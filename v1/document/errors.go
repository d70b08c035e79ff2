package document

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Aleph-Alpha/querybridge/v1/builder"
)

// TranslateError maps MongoDB driver failures onto the normalized errors of
// the builder package. Errors it does not recognize are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case mongo.IsDuplicateKeyError(err):
		return builder.ErrDuplicateKey
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err):
		return builder.ErrConnection
	case errors.Is(err, mongo.ErrNilDocument), errors.Is(err, mongo.ErrEmptySlice):
		return builder.ErrInvalidData
	}
	return err
}

// IsRetryable reports whether the operation may succeed when sent again:
// network errors and server-side timeouts.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
