// Package models defines client-side data models for the stillmind offline
// mirror: sync-tracked records, cached content and sync status types.
package models

import (
	"time"

	"github.com/stillmind/stillmind/internal/common"
)

// SyncState tracks where a record stands in the reconciliation cycle.
type SyncState string

const (
	// SyncStatePending marks a local write not yet pushed to the backend.
	SyncStatePending SyncState = "pending"
	// SyncStateSynced marks a record identical to the last known remote copy.
	SyncStateSynced SyncState = "synced"
	// SyncStateConflict marks a record whose local and remote versions diverged.
	SyncStateConflict SyncState = "conflict"
	// SyncStateError marks a record whose last push failed; retried on the
	// next sync pass.
	SyncStateError SyncState = "error"
)

// Record is one cached, sync-tracked unit of domain data in the local mirror.
//
// Invariants maintained by the sync layer:
//   - SyncState == synced implies HasLocalChanges == false and RemoteVersion set.
//   - SyncState == conflict implies a local write and a divergent remote
//     version were both observed since the last reconciliation.
//   - Id is stable for the record's lifetime; updates mutate in place.
type Record struct {
	// Id is unique per record within a kind.
	Id string

	// Kind tags the domain collection this record mirrors.
	Kind Kind

	// OwnerId partitions records per user for multi-tenant isolation.
	OwnerId string

	// Payload is the JSON-encoded domain envelope; opaque to the sync layer.
	Payload []byte

	// LastModifiedLocal is the time of the last local write, UTC.
	LastModifiedLocal time.Time

	// RemoteVersion is the backend-assigned version from the last successful
	// fetch or push; zero means never synced.
	RemoteVersion int64

	// HasLocalChanges is true while the local payload differs from the last
	// synced remote payload.
	HasLocalChanges bool

	// SyncState is the record's position in the reconciliation state machine.
	SyncState SyncState

	// LastError holds the message of the last failed push, if any.
	LastError string
}

// Validate checks the fields the sync layer relies on.
func (r *Record) Validate() error {
	if r.Id == "" {
		return common.ErrEmptyID
	}
	if r.OwnerId == "" {
		return common.ErrEmptyOwner
	}
	if !r.Kind.Valid() {
		return common.ErrUnknownKind
	}
	return nil
}
