package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stillmind/stillmind/internal/client/client"
	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/client/repositories/content"
	"github.com/stillmind/stillmind/internal/logging"
)

// downloadFunc fetches a presigned URL; swapped in tests.
type downloadFunc func(url string) ([]byte, error)

// ContentService caches guided-session assets for offline playback. Assets
// are fetched once via a backend-issued presigned URL and then served from
// the cached_content store.
type ContentService struct {
	client   client.Client
	content  content.Repository
	logger   logging.Logger
	download downloadFunc
	now      func() time.Time
}

// NewContentService constructs a ContentService using the given transport
// and cache repository. download performs the actual blob fetch
// (netx.DownloadFromPresignedURL in production).
func NewContentService(c client.Client, repo content.Repository, logger logging.Logger, download downloadFunc) *ContentService {
	return &ContentService{
		client:   c,
		content:  repo,
		logger:   logger,
		download: download,
		now:      time.Now,
	}
}

// EnsureCached downloads the asset unless it is already present. Safe to
// call on every playback attempt.
func (s *ContentService) EnsureCached(ctx context.Context, key string) error {
	ok, err := s.content.Exists(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	url, err := s.client.GetContentURL(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get download url: %w", err)
	}

	data, err := s.download(url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	return s.content.Put(ctx, &models.CachedContent{
		Id:           key,
		Data:         data,
		Size:         int64(len(data)),
		DownloadedAt: s.now().UTC(),
	})
}

// Open returns a cached asset for playback, bumping its access counter.
// Purely local; returns common.ErrNotFound when the asset was never cached.
func (s *ContentService) Open(ctx context.Context, key string) (*models.CachedContent, error) {
	return s.content.Get(ctx, key)
}

// CacheSize reports the total bytes held in the content cache.
func (s *ContentService) CacheSize(ctx context.Context) (int64, error) {
	return s.content.TotalSize(ctx)
}
