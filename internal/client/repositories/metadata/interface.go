// Package metadata is the local key/value store backing session state and
// small client preferences.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get reports common.ErrorNotFound
// for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
