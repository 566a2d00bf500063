// Package metadata is a small key/value store (sync_metadata collection) for
// the sync layer's own bookkeeping: auth token, last sync time, per-kind
// pull cursors.
package metadata

import "context"

// Repository describes key/value operations over sync_metadata.
// Missing keys read as nil, not as an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
