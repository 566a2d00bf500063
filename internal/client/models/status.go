package models

import "time"

// SyncStatus is a point-in-time snapshot of the sync layer's health. It is
// derived from the record store plus live connectivity state; only
// LastSyncTime is persisted.
type SyncStatus struct {
	IsOnline        bool
	LastSyncTime    time.Time
	PendingCount    int
	SyncInProgress  bool
	AutoSyncEnabled bool
}

// RecordError identifies one record that failed during a sync pass.
type RecordError struct {
	Id      string
	Kind    Kind
	Message string
}

// SyncResult summarizes one reconciliation pass. Success is true only when
// no record remained conflicted or errored.
type SyncResult struct {
	Synced    int
	Conflicts int
	Errors    int
	Pulled    int
	ErrorList []RecordError
	Success   bool
}
