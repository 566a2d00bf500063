// Package common defines shared constants and sentinel errors used across
// the client and server layers of stillmind. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")
	ErrAlreadyExists   = errors.New("already exists")

	// Sync-layer errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrOffline        = errors.New("backend unreachable")

	// Validation errors.
	ErrEmptyID      = errors.New("record id must not be empty")
	ErrEmptyOwner   = errors.New("owner id must not be empty")
	ErrUnknownKind  = errors.New("unknown record kind")
	ErrInvalidLogin = errors.New("invalid email/password")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
