package records

import (
	"context"

	"github.com/stillmind/stillmind/internal/server/models"
)

type Repository interface {
	CreateOrUpdate(ctx context.Context, record *models.Record) error
	SelectUpdated(ctx context.Context, userID, kind string, minVersion int64) ([]*models.Record, error)
	Delete(ctx context.Context, userID, kind, id string) error
}
