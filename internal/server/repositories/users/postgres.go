// Package users provides the PostgreSQL-backed account repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/dbx"
	"github.com/stillmind/stillmind/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash)
         VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, password_hash, current_version FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CurrentVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// IncrementCurrentVersion bumps the user's sync counter and returns the new
// value. Runs inside the same transaction as the record upsert so versions
// never go backwards or repeat.
func (r *PostgresRepository) IncrementCurrentVersion(ctx context.Context, userID string) (int64, error) {
	query :=
		`UPDATE users set current_version = current_version + 1
		 WHERE id = $1
		 RETURNING current_version
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&version)

	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return version, nil
}

func (r *PostgresRepository) GetCurrentVersion(ctx context.Context, userID string) (int64, error) {
	query :=
		`SELECT current_version FROM users
		 WHERE id = $1
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&version)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return version, nil
}
