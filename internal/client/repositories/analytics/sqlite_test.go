package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE offline_analytics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at INTEGER NOT NULL,
  synced INTEGER NOT NULL,
  conflicts INTEGER NOT NULL,
  errors INTEGER NOT NULL,
  pulled INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestAppendAndRecent(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &PassRecord{StartedAt: base, Synced: 1}))
	require.NoError(t, repo.Append(ctx, &PassRecord{StartedAt: base.Add(time.Minute), Synced: 2, Errors: 1}))
	require.NoError(t, repo.Append(ctx, &PassRecord{StartedAt: base.Add(2 * time.Minute), Synced: 3}))

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Synced)
	assert.Equal(t, 2, got[1].Synced)
	assert.Equal(t, 1, got[1].Errors)
}

func TestDeleteOlderThan(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Append(ctx, &PassRecord{StartedAt: old, Synced: 1}))
	require.NoError(t, repo.Append(ctx, &PassRecord{StartedAt: time.Now().UTC(), Synced: 2}))

	n, err := repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour).UnixMilli())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Synced)
}
