package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/common"
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

// Put stores or replaces an asset by its storage key.
func (r *SQLiteRepository) Put(ctx context.Context, c *models.CachedContent) error {
	query := `INSERT INTO cached_content (id, data, size, downloaded_at, access_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			downloaded_at = excluded.downloaded_at,
			access_count = excluded.access_count
	`
	_, err := r.db.ExecContext(ctx, query,
		c.Id, c.Data, c.Size, c.DownloadedAt.UnixMilli(), c.AccessCount)
	if err != nil {
		return fmt.Errorf("failed to store cached content: %w", err)
	}
	return nil
}

// Get returns an asset and increments its access counter.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.CachedContent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, data, size, downloaded_at, access_count FROM cached_content WHERE id = ?`, id)

	var c models.CachedContent
	var downloaded int64
	if err := row.Scan(&c.Id, &c.Data, &c.Size, &downloaded, &c.AccessCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	c.DownloadedAt = time.UnixMilli(downloaded).UTC()

	if _, err := r.db.ExecContext(ctx,
		`UPDATE cached_content SET access_count = access_count + 1 WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to bump access count: %w", err)
	}
	c.AccessCount++
	return &c, nil
}

// Exists checks for a cached asset without reading the blob.
func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM cached_content WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check cached content: %w", err)
	}
	return true, nil
}

// TotalSize sums cached asset sizes.
func (r *SQLiteRepository) TotalSize(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT sum(size) FROM cached_content`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum cached content size: %w", err)
	}
	return total.Int64, nil
}

// DeleteOlderThan evicts assets downloaded before the cutoff.
func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cached_content WHERE downloaded_at < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("failed to evict cached content: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes one asset by key.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cached_content WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cached content: %w", err)
	}
	return nil
}
