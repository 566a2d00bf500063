// Package analytics keeps a local log of completed sync passes
// (offline_analytics collection) so the app can show background sync health
// without calling the backend.
package analytics

import (
	"context"
	"time"
)

// PassRecord is one logged sync pass outcome.
type PassRecord struct {
	Id        int64
	StartedAt time.Time
	Synced    int
	Conflicts int
	Errors    int
	Pulled    int
}

// Repository describes storage operations for sync pass logs.
type Repository interface {
	// Append logs one completed pass.
	Append(ctx context.Context, rec *PassRecord) error

	// Recent returns the newest passes, most recent first.
	Recent(ctx context.Context, limit int) ([]PassRecord, error)

	// DeleteOlderThan drops logs started before the cutoff (unix millis).
	DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error)
}
