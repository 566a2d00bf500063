// Package models defines server-side persistence models.
package models

import "time"

// User is one registered account. CurrentVersion is the per-user monotonic
// sync counter; every record upsert increments it and stamps the record.
type User struct {
	ID             string
	Email          string
	PasswordHash   []byte
	CurrentVersion int64
	CreatedAt      time.Time
}
