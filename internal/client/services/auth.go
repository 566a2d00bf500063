package services

import (
	"context"
	"fmt"

	"github.com/stillmind/stillmind/internal/client/client"
	"github.com/stillmind/stillmind/internal/client/repositories/metadata"
	"github.com/stillmind/stillmind/internal/logging"
)

// AuthService handles account registration and session management for the
// client. The bearer token and owner id are cached in sync_metadata so a
// restart resumes the session without a network round trip.
type AuthService interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (ownerId string, err error)
	RestoreSession(ctx context.Context) (ownerId string, err error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client   client.Client
	metadata metadata.Repository
	logger   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given transport and
// metadata store.
func NewAuthService(c client.Client, meta metadata.Repository, logger logging.Logger) AuthService {
	return &authService{client: c, metadata: meta, logger: logger}
}

func (a *authService) Register(ctx context.Context, email, password string) error {
	if err := a.client.Register(ctx, email, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Login authenticates against the backend and caches the session locally.
func (a *authService) Login(ctx context.Context, email, password string) (string, error) {
	token, ownerId, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if err := a.metadata.Set(ctx, metadata.KeyAccessToken, []byte(token)); err != nil {
		return "", fmt.Errorf("failed to cache session: %w", err)
	}
	if err := a.metadata.Set(ctx, metadata.KeyOwnerId, []byte(ownerId)); err != nil {
		return "", fmt.Errorf("failed to cache session: %w", err)
	}
	return ownerId, nil
}

// RestoreSession installs a previously cached token into the transport and
// returns the cached owner id. Returns client.ErrLocalDataNotAvailable when
// no session was cached.
func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	token, err := a.metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}
	ownerId, err := a.metadata.Get(ctx, metadata.KeyOwnerId)
	if err != nil {
		return "", err
	}
	if len(token) == 0 || len(ownerId) == 0 {
		return "", client.ErrLocalDataNotAvailable
	}

	a.client.SetToken(string(token))
	return string(ownerId), nil
}

// Logout drops the cached session. Mirror data stays in place so the user
// can log back in without a full re-download.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.metadata.Delete(ctx, metadata.KeyAccessToken); err != nil {
		return err
	}
	return a.metadata.Delete(ctx, metadata.KeyOwnerId)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
