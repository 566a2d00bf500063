package models

import "time"

// CachedContent is a binary asset (audio, imagery) downloaded once and kept
// for offline playback. Write-once, read-many; never part of the record sync
// pass. Evicted by age or explicit cleanup.
type CachedContent struct {
	// Id is the storage key of the asset.
	Id string

	// Data is the raw blob.
	Data []byte

	// Size is len(Data) at download time, kept for quota accounting without
	// loading the blob.
	Size int64

	// DownloadedAt is when the asset was fetched, UTC.
	DownloadedAt time.Time

	// AccessCount increments on every local read.
	AccessCount int64
}
