package content

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/common"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cached_content (
  id TEXT PRIMARY KEY,
  data BLOB NOT NULL,
  size INTEGER NOT NULL,
  downloaded_at INTEGER NOT NULL,
  access_count INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestPutGet_BumpsAccessCount(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.CachedContent{
		Id:           "audio/rainfall",
		Data:         []byte("blob"),
		Size:         4,
		DownloadedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Put(ctx, c))

	got, err := repo.Get(ctx, "audio/rainfall")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), got.Data)
	assert.EqualValues(t, 1, got.AccessCount)

	got, err = repo.Get(ctx, "audio/rainfall")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.AccessCount)
}

func TestGet_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExistsAndTotalSize(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	total, err := repo.TotalSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	now := time.Now().UTC()
	require.NoError(t, repo.Put(ctx, &models.CachedContent{Id: "a", Data: []byte("xx"), Size: 2, DownloadedAt: now}))
	require.NoError(t, repo.Put(ctx, &models.CachedContent{Id: "b", Data: []byte("xxx"), Size: 3, DownloadedAt: now}))

	ok, err = repo.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	total, err = repo.TotalSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
}

func TestDeleteOlderThan(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-72 * time.Hour)
	fresh := time.Now().UTC()
	require.NoError(t, repo.Put(ctx, &models.CachedContent{Id: "old", Data: []byte("x"), Size: 1, DownloadedAt: old}))
	require.NoError(t, repo.Put(ctx, &models.CachedContent{Id: "fresh", Data: []byte("x"), Size: 1, DownloadedAt: fresh}))

	n, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour).UnixMilli())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err := repo.Exists(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
}
