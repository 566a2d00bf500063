// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing JWTs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/server/auth"
	"github.com/stillmind/stillmind/internal/server/config"
	"github.com/stillmind/stillmind/internal/server/models"
	"github.com/stillmind/stillmind/internal/server/repositories/repomanager"
)

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint an access token
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, common.ErrInvalidLogin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	user := &models.User{Email: email, PasswordHash: hash}
	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Login verifies the password against the stored bcrypt hash and, on success,
// returns an access token plus the user id.
func (s *UserService) Login(ctx context.Context, email, password string) (string, string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", "", common.ErrUnauthorized
		}
		return "", "", common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return "", "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", "", common.ErrInternal
	}
	return token, user.ID, nil
}
