package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillmind/stillmind/internal/client/repositories/content"
	"github.com/stillmind/stillmind/internal/common"
)

func newContentService(t *testing.T, backend *fakeBackend, download downloadFunc) *ContentService {
	t.Helper()
	db := setupSyncDB(t)
	return NewContentService(backend, content.NewSQLiteRepository(db), discardLogger(), download)
}

func TestContent_EnsureCachedDownloadsOnce(t *testing.T) {
	var downloads int
	svc := newContentService(t, newFakeBackend(), func(url string) ([]byte, error) {
		downloads++
		return []byte("audio-bytes"), nil
	})
	ctx := context.Background()

	require.NoError(t, svc.EnsureCached(ctx, "sessions/calm-10min.mp3"))
	require.NoError(t, svc.EnsureCached(ctx, "sessions/calm-10min.mp3"))
	assert.Equal(t, 1, downloads)

	got, err := svc.Open(ctx, "sessions/calm-10min.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), got.Data)
	assert.EqualValues(t, len("audio-bytes"), got.Size)
}

func TestContent_DownloadFailureIsNotCached(t *testing.T) {
	svc := newContentService(t, newFakeBackend(), func(url string) ([]byte, error) {
		return nil, errors.New("connection reset")
	})
	ctx := context.Background()

	err := svc.EnsureCached(ctx, "sessions/sleep.mp3")
	require.Error(t, err)

	_, err = svc.Open(ctx, "sessions/sleep.mp3")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestContent_OpenBumpsAccessCount(t *testing.T) {
	svc := newContentService(t, newFakeBackend(), func(url string) ([]byte, error) {
		return []byte("x"), nil
	})
	ctx := context.Background()

	require.NoError(t, svc.EnsureCached(ctx, "k"))

	first, err := svc.Open(ctx, "k")
	require.NoError(t, err)
	second, err := svc.Open(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, second.AccessCount, first.AccessCount)
}

func TestContent_CacheSize(t *testing.T) {
	svc := newContentService(t, newFakeBackend(), func(url string) ([]byte, error) {
		return []byte("12345"), nil
	})
	ctx := context.Background()

	size, err := svc.CacheSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, svc.EnsureCached(ctx, "a"))
	require.NoError(t, svc.EnsureCached(ctx, "b"))

	size, err = svc.CacheSize(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)
}
