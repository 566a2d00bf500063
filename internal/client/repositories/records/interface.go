// Package records persists sync-tracked records in the client's local
// SQLite mirror (the offline_data collection).
package records

import (
	"context"

	"github.com/stillmind/stillmind/internal/client/models"
)

// SortKey selects the ordering column for List.
type SortKey string

const (
	SortByLastModified SortKey = "last_modified_local"
	SortById           SortKey = "id"
)

// ListFilter narrows and orders a List call. Zero value means
// "every state, sorted by last local modification, ascending, no cap".
type ListFilter struct {
	// SyncState, when set, keeps only records in that state.
	SyncState models.SyncState
	// SortBy defaults to SortByLastModified.
	SortBy SortKey
	// Desc reverses the sort order.
	Desc bool
	// Limit caps the result when > 0.
	Limit int
}

// Repository describes storage operations for Record objects. The sync layer
// is the sole writer; feature code reads through the service on top.
type Repository interface {
	// Upsert inserts a record or replaces all mutable fields of an existing
	// one by id. The id stays stable for the record's lifetime.
	Upsert(ctx context.Context, r *models.Record) error

	// GetByID returns a record or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Record, error)

	// List returns the owner's records of one kind, filtered and ordered.
	// The result is materialized; acceptable at cache scale.
	List(ctx context.Context, ownerId string, kind models.Kind, filter ListFilter) ([]models.Record, error)

	// ListByStates returns the owner's records in any of the given states,
	// oldest local modification first. Used by the sync pass scans.
	ListByStates(ctx context.Context, ownerId string, states ...models.SyncState) ([]*models.Record, error)

	// CountByState counts records in a state across all owners.
	CountByState(ctx context.Context, state models.SyncState) (int, error)

	// DeleteOlderThan removes records whose last local modification is
	// before cutoff (unix milliseconds). Returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error)

	// DeleteByOwner removes every record of one owner (account deletion).
	DeleteByOwner(ctx context.Context, ownerId string) error
}
