// Package records provides PostgreSQL-backed repositories for server-side
// record persistence and sync queries.
package records

import (
	"context"
	"fmt"

	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/dbx"
	"github.com/stillmind/stillmind/internal/server/models"
)

// PostgresRepository implements record storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrUpdate upserts a record by ID for a specific user. If a conflicting
// row exists for another user, no row is updated and ErrVersionConflict is
// returned, so record ids cannot be hijacked across accounts.
func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO records (id, user_id, kind, payload, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id)
		DO UPDATE SET
			kind = EXCLUDED.kind,
			payload = EXCLUDED.payload,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
			WHERE records.user_id = EXCLUDED.user_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Kind, record.Payload, record.Version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectUpdated returns all records of one kind for userID with
// version > minVersion, ordered by version so clients can apply them in
// commit order.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID, kind string, minVersion int64) ([]*models.Record, error) {
	query := ` SELECT id, kind, payload, version, updated_at from records
		WHERE user_id=$1 and kind=$2 and version>$3
		ORDER BY version
		`
	rows, err := r.db.QueryContext(ctx, query, userID, kind, minVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		var item models.Record
		item.UserID = userID
		if err := rows.Scan(
			&item.ID, &item.Kind, &item.Payload, &item.Version, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes one record, scoped to the owning user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, kind, id string) error {
	query := `DELETE FROM records WHERE user_id=$1 and kind=$2 and id=$3`
	res, err := r.db.ExecContext(ctx, query, userID, kind, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
