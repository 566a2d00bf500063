package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/dbx"
)

// SQLiteRepository implements Repository over a dbx.DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = `id, kind, owner_id, payload, last_modified_local, remote_version, has_local_changes, sync_state, last_error`

func scanRecord(scan func(dest ...any) error) (*models.Record, error) {
	var r models.Record
	var modified int64
	if err := scan(&r.Id, &r.Kind, &r.OwnerId, &r.Payload, &modified,
		&r.RemoteVersion, &r.HasLocalChanges, &r.SyncState, &r.LastError); err != nil {
		return nil, err
	}
	r.LastModifiedLocal = time.UnixMilli(modified).UTC()
	return &r, nil
}

// Upsert inserts or replaces a record by id. All mutable fields are taken
// from r; the caller (the sync service) owns the state transitions.
func (repo *SQLiteRepository) Upsert(ctx context.Context, r *models.Record) error {
	query := `INSERT INTO offline_data
			(id, kind, owner_id, payload, last_modified_local, remote_version, has_local_changes, sync_state, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			owner_id = excluded.owner_id,
			payload = excluded.payload,
			last_modified_local = excluded.last_modified_local,
			remote_version = excluded.remote_version,
			has_local_changes = excluded.has_local_changes,
			sync_state = excluded.sync_state,
			last_error = excluded.last_error
	`
	_, err := repo.db.ExecContext(ctx, query,
		r.Id, r.Kind, r.OwnerId, r.Payload, r.LastModifiedLocal.UnixMilli(),
		r.RemoteVersion, r.HasLocalChanges, r.SyncState, r.LastError)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// GetByID returns a record or common.ErrNotFound.
func (repo *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM offline_data WHERE id = ?`
	row := repo.db.QueryRowContext(ctx, query, id)

	r, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return r, nil
}

// List returns the owner's records of one kind with the given filter applied
// in SQL, so the secondary indexes do the work.
func (repo *SQLiteRepository) List(ctx context.Context, ownerId string, kind models.Kind, filter ListFilter) ([]models.Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM offline_data WHERE owner_id = ? AND kind = ?`)
	args := []any{ownerId, kind}

	if filter.SyncState != "" {
		sb.WriteString(` AND sync_state = ?`)
		args = append(args, filter.SyncState)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = SortByLastModified
	}
	switch sortBy {
	case SortByLastModified, SortById:
	default:
		return nil, fmt.Errorf("unsupported sort key: %q", sortBy)
	}
	sb.WriteString(` ORDER BY ` + string(sortBy))
	if filter.Desc {
		sb.WriteString(` DESC`)
	}

	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := repo.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByStates returns the owner's records in any of the given states,
// oldest modification first, so retries happen in write order.
func (repo *SQLiteRepository) ListByStates(ctx context.Context, ownerId string, states ...models.SyncState) ([]*models.Record, error) {
	if len(states) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(states)), ",")
	query := `SELECT ` + recordColumns + ` FROM offline_data
		WHERE owner_id = ? AND sync_state IN (` + placeholders + `)
		ORDER BY last_modified_local`

	args := make([]any, 0, len(states)+1)
	args = append(args, ownerId)
	for _, s := range states {
		args = append(args, s)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records by state: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByState counts records in one state across all owners.
func (repo *SQLiteRepository) CountByState(ctx context.Context, state models.SyncState) (int, error) {
	var n int
	err := repo.db.QueryRowContext(ctx,
		`SELECT count(*) FROM offline_data WHERE sync_state = ?`, state).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes records last modified before the cutoff.
func (repo *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM offline_data WHERE last_modified_local < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale records: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByOwner removes all records of one owner.
func (repo *SQLiteRepository) DeleteByOwner(ctx context.Context, ownerId string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM offline_data WHERE owner_id = ?`, ownerId)
	if err != nil {
		return fmt.Errorf("failed to delete owner records: %w", err)
	}
	return nil
}
