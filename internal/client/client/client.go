// Package client implements the transport to the stillmind backend and the
// initialization of the local mirror database.
package client

import (
	"context"

	"github.com/stillmind/stillmind/internal/api"
)

// Client is the backend transport used by the client services. Every call
// honors context cancellation; implementations map transport failures to the
// sentinel errors in this package.
type Client interface {
	Close() error

	// Register creates an account.
	Register(ctx context.Context, email, password string) error

	// Login authenticates and returns the bearer token plus the owner id.
	// The implementation keeps the token for subsequent calls.
	Login(ctx context.Context, email, password string) (token string, ownerId string, err error)

	// SetToken installs a previously persisted bearer token.
	SetToken(token string)

	// Ping probes backend reachability.
	Ping(ctx context.Context) error

	// PushRecord upserts one record and returns the server-assigned version.
	PushRecord(ctx context.Context, rec api.Record) (int64, error)

	// PullRecords returns the owner's records of one kind with version >
	// sinceVersion, plus the latest version for cursor advancement.
	PullRecords(ctx context.Context, kind string, sinceVersion int64) ([]api.Record, int64, error)

	// DeleteRecord removes one record on the backend.
	DeleteRecord(ctx context.Context, kind, id string) error

	// GetContentURL returns a presigned download URL for an asset key.
	GetContentURL(ctx context.Context, key string) (string, error)
}
