package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDatabase_CreatesSchema(t *testing.T) {
	db, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"offline_data", "cached_content", "sync_metadata", "offline_analytics"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDatabase_Idempotent(t *testing.T) {
	dsn := "file:initdb?mode=memory&cache=shared"
	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// second run over the same schema is a no-op
	require.NoError(t, RunMigrations(context.Background(), db))
}
