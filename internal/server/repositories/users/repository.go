package users

import (
	"context"

	"github.com/stillmind/stillmind/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	IncrementCurrentVersion(ctx context.Context, userID string) (int64, error)
	GetCurrentVersion(ctx context.Context, userID string) (int64, error)
}
