package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/stillmind/stillmind/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, rec *PassRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO offline_analytics (started_at, synced, conflicts, errors, pulled) VALUES (?, ?, ?, ?, ?)`,
		rec.StartedAt.UnixMilli(), rec.Synced, rec.Conflicts, rec.Errors, rec.Pulled)
	if err != nil {
		return fmt.Errorf("failed to append sync pass log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]PassRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, synced, conflicts, errors, pulled FROM offline_analytics
		 ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync pass logs: %w", err)
	}
	defer rows.Close()

	var result []PassRecord
	for rows.Next() {
		var rec PassRecord
		var started int64
		if err := rows.Scan(&rec.Id, &started, &rec.Synced, &rec.Conflicts, &rec.Errors, &rec.Pulled); err != nil {
			return nil, err
		}
		rec.StartedAt = time.UnixMilli(started).UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM offline_analytics WHERE started_at < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("failed to trim sync pass logs: %w", err)
	}
	return res.RowsAffected()
}
