// Package content persists downloaded binary assets (guided-session audio,
// imagery) in the cached_content collection for offline playback.
package content

import (
	"context"

	"github.com/stillmind/stillmind/internal/client/models"
)

// Repository describes storage operations for cached binary assets.
// Assets are write-once, read-many and are never part of the record sync.
type Repository interface {
	// Put stores an asset under its storage key, replacing any previous copy.
	Put(ctx context.Context, c *models.CachedContent) error

	// Get returns an asset and bumps its access counter, or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.CachedContent, error)

	// Exists reports whether an asset is cached, without touching the blob.
	Exists(ctx context.Context, id string) (bool, error)

	// TotalSize returns the sum of cached asset sizes in bytes.
	TotalSize(ctx context.Context) (int64, error)

	// DeleteOlderThan evicts assets downloaded before the cutoff
	// (unix milliseconds). Returns the number evicted.
	DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error)

	// Delete removes one asset by key.
	Delete(ctx context.Context, id string) error
}
