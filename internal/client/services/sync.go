// Package services contains the client application services: the offline
// sync store, session auth and the content cache.
//
// The sync store keeps a local mirror of the user's backend collections so
// the app stays fully usable offline, and reconciles divergence
// opportunistically. Conflict handling is optimistic versioning with
// last-write-wins force-push: a counter-based version marker cannot detect
// every conflict shape (two devices editing the same record offline), and a
// resolved conflict silently discards the concurrent remote edit. Stronger
// merge semantics (vector clocks, CRDTs) are intentionally out of scope.
//
// Local deletes are cache eviction only: there is no tombstone propagation,
// so a local delete never reaches the backend and a remote delete is never
// pulled down.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stillmind/stillmind/internal/api"
	"github.com/stillmind/stillmind/internal/client/client"
	"github.com/stillmind/stillmind/internal/client/models"
	"github.com/stillmind/stillmind/internal/client/repositories/analytics"
	"github.com/stillmind/stillmind/internal/client/repositories/content"
	"github.com/stillmind/stillmind/internal/client/repositories/metadata"
	"github.com/stillmind/stillmind/internal/client/repositories/records"
	"github.com/stillmind/stillmind/internal/common"
	"github.com/stillmind/stillmind/internal/logging"
)

// DefaultSyncDelay is the debounce window for write-triggered background
// syncs: repeated writes within the window coalesce into one pass.
const DefaultSyncDelay = 5 * time.Second

// PutOptions control how a write enters the local mirror.
type PutOptions struct {
	// SkipSyncQueue stores the write without flagging it for push. Used by
	// remote downloads; local feature writes leave it false.
	SkipSyncQueue bool

	// OverwriteLocal bypasses conflict detection, letting a caller replace
	// the local copy unconditionally.
	OverwriteLocal bool

	// RemoteVersion, when non-zero, stamps the backend version this payload
	// corresponds to. A stamp that disagrees with the record's last known
	// version marks the record conflicted instead of overwriting blindly.
	RemoteVersion int64
}

// SyncService owns the local mirror and the reconciliation loop. All
// syncState transitions happen here; no other component writes to the
// record collections directly.
type SyncService struct {
	client    client.Client
	records   records.Repository
	metadata  metadata.Repository
	content   content.Repository
	analytics analytics.Repository
	logger    logging.Logger

	debouncer *Debouncer
	now       func() time.Time

	mu         sync.Mutex
	syncing    bool
	online     bool
	autoSync   bool
	ownerId    string
	statusSubs []func(models.SyncStatus)
	connSubs   []func(bool)
}

// NewSyncService wires a sync service over the given backend client and
// repositories.
func NewSyncService(c client.Client, recs records.Repository, meta metadata.Repository,
	cont content.Repository, anal analytics.Repository, logger logging.Logger) *SyncService {
	return &SyncService{
		client:    c,
		records:   recs,
		metadata:  meta,
		content:   cont,
		analytics: anal,
		logger:    logger,
		debouncer: NewDebouncer(DefaultSyncDelay),
		now:       time.Now,
		autoSync:  true,
	}
}

// SetSyncDelay adjusts the debounce window for write-triggered syncs. The
// debouncer itself is kept so a timer armed under the old delay can still
// be cancelled.
func (s *SyncService) SetSyncDelay(d time.Duration) {
	s.debouncer.SetDelay(d)
}

// SetOwner pins the owner whose records automatic background syncs cover.
func (s *SyncService) SetOwner(ownerId string) {
	s.mu.Lock()
	s.ownerId = ownerId
	s.mu.Unlock()
}

// Put stores or updates a record in the local mirror. It never touches the
// network; eligible writes schedule a debounced background sync instead.
func (s *SyncService) Put(ctx context.Context, id string, kind models.Kind, payload []byte, ownerId string, opts PutOptions) error {
	rec := &models.Record{Id: id, Kind: kind, OwnerId: ownerId}
	if err := rec.Validate(); err != nil {
		return err
	}

	existing, err := s.records.GetByID(ctx, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("local read failed: %w", err)
	}

	if existing != nil {
		if existing.Kind != kind || existing.OwnerId != ownerId {
			return fmt.Errorf("%w: id %q is taken by %s/%s", common.ErrAlreadyExists, id, existing.OwnerId, existing.Kind)
		}

		// remote download onto a locally changed record: leave it for the
		// push/resolve steps of the next sync pass
		if opts.SkipSyncQueue && !opts.OverwriteLocal && existing.SyncState != models.SyncStateSynced {
			return nil
		}

		// optimistic version check: a local write stamped with a version
		// that disagrees with the last known remote version means local and
		// remote diverged. Remote downloads never conflict: onto a clean
		// synced record they are simply the newer copy.
		if !opts.OverwriteLocal && !opts.SkipSyncQueue &&
			opts.RemoteVersion != 0 && existing.RemoteVersion != 0 &&
			opts.RemoteVersion != existing.RemoteVersion {
			existing.Payload = payload
			existing.LastModifiedLocal = s.now().UTC()
			existing.HasLocalChanges = true
			existing.SyncState = models.SyncStateConflict
			if err := s.records.Upsert(ctx, existing); err != nil {
				return fmt.Errorf("local write failed: %w", err)
			}
			s.notifyStatus(ctx)
			return nil
		}
	}

	rec.Payload = payload
	rec.LastModifiedLocal = s.now().UTC()
	rec.RemoteVersion = opts.RemoteVersion
	if existing != nil && opts.RemoteVersion == 0 {
		rec.RemoteVersion = existing.RemoteVersion
	}

	if opts.SkipSyncQueue {
		rec.HasLocalChanges = false
		rec.SyncState = models.SyncStateSynced
	} else {
		rec.HasLocalChanges = true
		rec.SyncState = models.SyncStatePending
	}

	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("local write failed: %w", err)
	}
	s.notifyStatus(ctx)

	if !opts.SkipSyncQueue {
		s.scheduleAutoSync(ownerId)
	}
	return nil
}

// scheduleAutoSync arms the debounced background sync for an eligible write.
func (s *SyncService) scheduleAutoSync(ownerId string) {
	s.mu.Lock()
	eligible := s.autoSync && s.online
	s.mu.Unlock()
	if !eligible {
		return
	}

	s.debouncer.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Sync(ctx, ownerId); err != nil {
			s.logger.Warn(ctx, "background sync failed", "error", err)
		}
	})
}

// Get returns a record from the local mirror. A non-empty kind or ownerId
// acts as a filter: a record stored under a different kind or owner reads as
// a miss, guarding against cross-tenant id collisions.
func (s *SyncService) Get(ctx context.Context, id string, kind models.Kind, ownerId string) (*models.Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if kind != "" && rec.Kind != kind {
		return nil, common.ErrNotFound
	}
	if ownerId != "" && rec.OwnerId != ownerId {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

// List returns the owner's records of one kind, filtered and ordered per
// the repository filter. Purely local.
func (s *SyncService) List(ctx context.Context, ownerId string, kind models.Kind, filter records.ListFilter) ([]models.Record, error) {
	return s.records.List(ctx, ownerId, kind, filter)
}

// Sync runs one reconciliation pass for the owner: push pending (and
// errored) records, force-push conflicted ones, then pull remote changes.
// Only one pass may run at a time; a second caller fails fast with
// common.ErrSyncInProgress. An unreachable backend aborts the pass early
// instead of timing out once per record.
func (s *SyncService) Sync(ctx context.Context, ownerId string) (*models.SyncResult, error) {
	if ownerId == "" {
		return nil, common.ErrEmptyOwner
	}

	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil, common.ErrSyncInProgress
	}
	s.syncing = true
	s.mu.Unlock()
	s.notifyStatus(ctx)

	started := s.now().UTC()
	result := &models.SyncResult{}

	defer func() {
		s.finishPass(ctx, started, result)
	}()

	// connectivity precheck keeps an offline pass from timing out per record
	if err := s.client.Ping(ctx); err != nil {
		s.setOnline(ctx, false)
		return result, fmt.Errorf("%w: %v", common.ErrOffline, err)
	}
	s.setOnline(ctx, true)

	// step 1: push pending writes; errored records retry here too
	pending, err := s.records.ListByStates(ctx, ownerId, models.SyncStatePending, models.SyncStateError)
	if err != nil {
		return result, fmt.Errorf("pending scan failed: %w", err)
	}
	for _, rec := range pending {
		err := s.pushRecord(ctx, rec)
		if err == nil {
			result.Synced++
			continue
		}
		if errors.Is(err, common.ErrVersionConflict) {
			// now marked conflicted; the resolution step below handles it
			continue
		}
		result.Errors++
		result.ErrorList = append(result.ErrorList, models.RecordError{Id: rec.Id, Kind: rec.Kind, Message: err.Error()})
		if errors.Is(err, client.ErrUnavailable) {
			return result, fmt.Errorf("%w: push aborted", common.ErrOffline)
		}
	}

	// step 2: resolve conflicts by force-pushing the local payload (LWW)
	conflicted, err := s.records.ListByStates(ctx, ownerId, models.SyncStateConflict)
	if err != nil {
		return result, fmt.Errorf("conflict scan failed: %w", err)
	}
	for _, rec := range conflicted {
		if err := s.forcePushConflict(ctx, rec); err != nil {
			result.Conflicts++
			result.ErrorList = append(result.ErrorList, models.RecordError{Id: rec.Id, Kind: rec.Kind, Message: err.Error()})
			if errors.Is(err, client.ErrUnavailable) {
				return result, fmt.Errorf("%w: conflict resolution aborted", common.ErrOffline)
			}
			continue
		}
		result.Synced++
	}

	// step 3: pull remote changes per kind, behind the per-kind cursor
	for _, kind := range models.Kinds() {
		if err := s.pullKind(ctx, ownerId, kind, result); err != nil {
			result.Errors++
			result.ErrorList = append(result.ErrorList, models.RecordError{Kind: kind, Message: err.Error()})
			if errors.Is(err, client.ErrUnavailable) {
				return result, fmt.Errorf("%w: pull aborted", common.ErrOffline)
			}
		}
	}

	result.Success = result.Conflicts == 0 && result.Errors == 0
	return result, nil
}

// pushRecord uploads one record and records the outcome on the record
// itself. A push failure never propagates to the caller's pass. A backend
// version conflict marks the record conflicted rather than errored, routing
// it through last-write-wins resolution instead of identical retries.
func (s *SyncService) pushRecord(ctx context.Context, rec *models.Record) error {
	version, err := s.client.PushRecord(ctx, api.Record{
		Id:      rec.Id,
		Kind:    string(rec.Kind),
		Payload: json.RawMessage(rec.Payload),
		Version: rec.RemoteVersion,
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			rec.SyncState = models.SyncStateConflict
		} else {
			rec.SyncState = models.SyncStateError
		}
		rec.LastError = err.Error()
		if uerr := s.records.Upsert(ctx, rec); uerr != nil {
			s.logger.Error(ctx, "failed to record push error", "id", rec.Id, "error", uerr)
		}
		return err
	}

	rec.SyncState = models.SyncStateSynced
	rec.HasLocalChanges = false
	rec.RemoteVersion = version
	rec.LastError = ""
	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to mark record synced: %w", err)
	}
	return nil
}

// forcePushConflict resolves a conflicted record last-write-wins: the local
// payload is pushed unconditionally and the remote value is discarded. On
// failure the record stays conflicted for the next pass.
func (s *SyncService) forcePushConflict(ctx context.Context, rec *models.Record) error {
	version, err := s.client.PushRecord(ctx, api.Record{
		Id:      rec.Id,
		Kind:    string(rec.Kind),
		Payload: json.RawMessage(rec.Payload),
	})
	if err != nil {
		rec.LastError = err.Error()
		if uerr := s.records.Upsert(ctx, rec); uerr != nil {
			s.logger.Error(ctx, "failed to record conflict error", "id", rec.Id, "error", uerr)
		}
		return err
	}

	rec.SyncState = models.SyncStateSynced
	rec.HasLocalChanges = false
	rec.RemoteVersion = version
	rec.LastError = ""
	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to mark conflict resolved: %w", err)
	}
	return nil
}

// pullKind merges remote changes of one kind into the mirror. Records the
// local side already owns (pending, conflicted, errored) are left alone.
func (s *SyncService) pullKind(ctx context.Context, ownerId string, kind models.Kind, result *models.SyncResult) error {
	cursorKey := metadata.PullCursorKey(ownerId, string(kind))
	cursor, err := s.loadCursor(ctx, cursorKey)
	if err != nil {
		return err
	}

	recs, latest, err := s.client.PullRecords(ctx, string(kind), cursor)
	if err != nil {
		return err
	}

	for _, remote := range recs {
		existing, err := s.records.GetByID(ctx, remote.Id)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("local read failed: %w", err)
		}
		if existing != nil && existing.RemoteVersion == remote.Version {
			continue // already have this version, typically our own push
		}

		if err := s.Put(ctx, remote.Id, kind, remote.Payload, ownerId, PutOptions{
			SkipSyncQueue: true,
			RemoteVersion: remote.Version,
		}); err != nil {
			return err
		}
		result.Pulled++
	}

	if latest > cursor {
		if err := s.metadata.Set(ctx, cursorKey, []byte(strconv.FormatInt(latest, 10))); err != nil {
			return fmt.Errorf("failed to advance pull cursor: %w", err)
		}
	}
	return nil
}

func (s *SyncService) loadCursor(ctx context.Context, key string) (int64, error) {
	raw, err := s.metadata.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt pull cursor %q: %w", key, err)
	}
	return cursor, nil
}

// finishPass clears the in-progress flag, stamps last_sync_time and logs the
// pass so a new one can start regardless of how this one ended.
func (s *SyncService) finishPass(ctx context.Context, started time.Time, result *models.SyncResult) {
	if err := s.metadata.Set(ctx, metadata.KeyLastSyncTime,
		[]byte(strconv.FormatInt(s.now().UTC().UnixMilli(), 10))); err != nil {
		s.logger.Warn(ctx, "failed to store last sync time", "error", err)
	}

	if err := s.analytics.Append(ctx, &analytics.PassRecord{
		StartedAt: started,
		Synced:    result.Synced,
		Conflicts: result.Conflicts,
		Errors:    result.Errors,
		Pulled:    result.Pulled,
	}); err != nil {
		s.logger.Warn(ctx, "failed to log sync pass", "error", err)
	}

	s.mu.Lock()
	s.syncing = false
	s.mu.Unlock()
	s.notifyStatus(ctx)
}

// Cleanup deletes records, cached content and pass logs older than the
// threshold. Housekeeping only; not part of the sync protocol.
func (s *SyncService) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := s.now().UTC().Add(-maxAge).UnixMilli()

	nRecs, err := s.records.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	nContent, err := s.content.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	nLogs, err := s.analytics.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "cleanup finished", "records", nRecs, "content", nContent, "logs", nLogs)
	s.notifyStatus(ctx)
	return nil
}

// Status snapshots the sync layer's health from the record store plus live
// connectivity state.
func (s *SyncService) Status(ctx context.Context) (models.SyncStatus, error) {
	pendingCount, err := s.records.CountByState(ctx, models.SyncStatePending)
	if err != nil {
		return models.SyncStatus{}, err
	}

	var lastSync time.Time
	if raw, err := s.metadata.Get(ctx, metadata.KeyLastSyncTime); err == nil && len(raw) > 0 {
		if millis, perr := strconv.ParseInt(string(raw), 10, 64); perr == nil {
			lastSync = time.UnixMilli(millis).UTC()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SyncStatus{
		IsOnline:        s.online,
		LastSyncTime:    lastSync,
		PendingCount:    pendingCount,
		SyncInProgress:  s.syncing,
		AutoSyncEnabled: s.autoSync,
	}, nil
}

// SubscribeStatus registers a callback fired synchronously after every
// sync-status change. No buffering, no replay for late subscribers.
func (s *SyncService) SubscribeStatus(fn func(models.SyncStatus)) {
	s.mu.Lock()
	s.statusSubs = append(s.statusSubs, fn)
	s.mu.Unlock()
}

// SubscribeConnectivity registers a callback fired on every online/offline
// transition.
func (s *SyncService) SubscribeConnectivity(fn func(online bool)) {
	s.mu.Lock()
	s.connSubs = append(s.connSubs, fn)
	s.mu.Unlock()
}

// SetAutoSyncEnabled toggles write-triggered and reconnect-triggered syncs.
// It never cancels a pass already in flight.
func (s *SyncService) SetAutoSyncEnabled(enabled bool) {
	s.mu.Lock()
	s.autoSync = enabled
	s.mu.Unlock()
	if !enabled {
		s.debouncer.Cancel()
	}
}

// setOnline records a connectivity transition and notifies subscribers.
// The offline-to-online edge triggers an automatic sync when enabled.
func (s *SyncService) setOnline(ctx context.Context, online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	subs := append([]func(bool){}, s.connSubs...)
	autoSync := s.autoSync
	syncing := s.syncing
	owner := s.ownerId
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(online)
	}
	s.notifyStatus(ctx)

	if online && autoSync && !syncing && owner != "" {
		s.debouncer.Schedule(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := s.Sync(ctx, owner); err != nil {
				s.logger.Warn(ctx, "reconnect sync failed", "error", err)
			}
		})
	}
}

// StartOnlineWatcher probes backend reachability on the given interval until
// ctx is done, feeding transitions into setOnline.
func (s *SyncService) StartOnlineWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := s.client.Ping(probeCtx)
			cancel()
			s.setOnline(ctx, err == nil)
		case <-ctx.Done():
			return
		}
	}
}

func (s *SyncService) notifyStatus(ctx context.Context) {
	status, err := s.Status(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to compute sync status", "error", err)
		return
	}
	s.mu.Lock()
	subs := append([]func(models.SyncStatus){}, s.statusSubs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(status)
	}
}
