package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/stillmind/stillmind/internal/dbx"
	"github.com/stillmind/stillmind/internal/server/models"
	"github.com/stillmind/stillmind/internal/server/repositories/repomanager"
)

// RecordService implements the server side of the sync protocol: versioned
// upserts and cursor-based pulls, scoped to the authenticated user.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRecordService constructs a RecordService over the given connection and
// repository manager.
func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{db: db, repomanager: m}
}

// Upsert stores a record and returns the newly assigned version. The version
// counter increment and the write happen in one transaction, so assigned
// versions are strictly monotonic per user.
func (s *RecordService) Upsert(ctx context.Context, userID, id, kind string, payload json.RawMessage) (int64, error) {
	var version int64

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		version, err = s.repomanager.Users(tx).IncrementCurrentVersion(ctx, userID)
		if err != nil {
			return fmt.Errorf("version increment failed: %w", err)
		}

		return s.repomanager.Records(tx).CreateOrUpdate(ctx, &models.Record{
			ID:      id,
			UserID:  userID,
			Kind:    kind,
			Payload: payload,
			Version: version,
		})
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// SelectUpdated returns the user's records of one kind with version >
// minVersion plus the user's latest assigned version, which the client uses
// as its next pull cursor.
func (s *RecordService) SelectUpdated(ctx context.Context, userID, kind string, minVersion int64) ([]*models.Record, int64, error) {
	recs, err := s.repomanager.Records(s.db).SelectUpdated(ctx, userID, kind, minVersion)
	if err != nil {
		return nil, 0, err
	}

	latest, err := s.repomanager.Users(s.db).GetCurrentVersion(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return recs, latest, nil
}

// Delete removes one record for the user.
func (s *RecordService) Delete(ctx context.Context, userID, kind, id string) error {
	return s.repomanager.Records(s.db).Delete(ctx, userID, kind, id)
}
