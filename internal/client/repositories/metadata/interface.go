// Package metadata is the client's durable key/value store. It backs the
// persisted session token.
package metadata

import (
	"context"
)

// Repository stores opaque values under string keys.
// Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
