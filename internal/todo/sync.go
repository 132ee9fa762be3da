package todo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
)

// ErrRemoteDisabled is returned by the sync operations when the Store has
// no remote.
var ErrRemoteDisabled = errors.New("remote sync is not configured")

// SyncAll uploads local changes, then pulls, so a stale pull cannot clobber
// edits that have not been uploaded yet.
func (s *Store) SyncAll(ctx context.Context) error {
	if err := s.SyncUp(ctx); err != nil {
		return err
	}
	return s.HydrateFromServer(ctx)
}

// HydrateFromServer merges the remote snapshots into the local collection.
// A remote row replaces the local row with the same id only when its
// UpdatedAt is strictly newer. Local-only rows are kept and rows pending
// remote deletion are not brought back. A replaced row whose reminder handle
// differs from the incoming one has its local reminder cancelled.
func (s *Store) HydrateFromServer(ctx context.Context) error {
	if s.remote == nil {
		return ErrRemoteDisabled
	}

	rows, err := s.remote.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pulling snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		merged   []model.Snapshot
		orphaned []string
	)
	for _, row := range rows {
		if _, deleted := s.trash[row.ID]; deleted {
			continue
		}
		cur, ok := s.snapshots[row.ID]
		if ok && !row.UpdatedAt.After(cur.UpdatedAt) {
			continue
		}
		if ok && cur.NotificationID != "" && cur.NotificationID != row.NotificationID {
			orphaned = append(orphaned, cur.NotificationID)
		}
		merged = append(merged, row)
	}
	if len(merged) == 0 {
		return nil
	}

	if err := s.repo.PutSnapshots(ctx, merged); err != nil {
		return fmt.Errorf("saving pulled snapshots: %w", err)
	}
	for _, row := range merged {
		s.snapshots[row.ID] = row
	}
	for _, handle := range orphaned {
		s.cancel(ctx, handle)
	}
	s.log.Debug("merged remote snapshots", zap.Int("count", len(merged)))
	return nil
}

// SyncUp sends pending deletes, then uploads every queued snapshot that
// still exists locally. Ids queued again while the upload was in flight
// stay queued. On error nothing is dequeued.
func (s *Store) SyncUp(ctx context.Context) error {
	if s.remote == nil {
		return ErrRemoteDisabled
	}

	s.mu.Lock()
	trash := pendingOf(s.trash, store.PendingDelete)
	s.mu.Unlock()

	if len(trash) > 0 {
		ids := make([]string, len(trash))
		for i, c := range trash {
			ids[i] = c.ID
		}
		if err := s.remote.Delete(ctx, ids); err != nil {
			return fmt.Errorf("deleting remote snapshots: %w", err)
		}
		s.dequeue(ctx, s.trash, trash)
	}

	s.mu.Lock()
	queued := pendingOf(s.outbox, store.PendingUpsert)
	var payload []model.Snapshot
	for _, c := range queued {
		if snap, ok := s.snapshots[c.ID]; ok {
			payload = append(payload, snap)
		}
	}
	s.mu.Unlock()

	if len(queued) == 0 {
		return nil
	}
	if len(payload) > 0 {
		sortSnapshots(payload)
		if err := s.remote.Upsert(ctx, payload); err != nil {
			return fmt.Errorf("uploading snapshots: %w", err)
		}
	}
	s.dequeue(ctx, s.outbox, queued)

	s.log.Debug("synced snapshots up", zap.Int("deleted", len(trash)), zap.Int("uploaded", len(payload)))
	return nil
}

// pendingOf lists queue as changes of kind, ordered by id. Callers hold s.mu.
func pendingOf(queue map[string]int64, kind store.PendingKind) []store.PendingChange {
	out := make([]store.PendingChange, 0, len(queue))
	for id, seq := range queue {
		out = append(out, store.PendingChange{Seq: seq, ID: id, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// dequeue drops the changes that reached the remote from queue and from the
// repository, keeping ids queued again in the meantime. A failed local clear
// only costs a repeat upload.
func (s *Store) dequeue(ctx context.Context, queue map[string]int64, done []store.PendingChange) {
	s.mu.Lock()
	for _, c := range done {
		if seq, ok := queue[c.ID]; ok && seq == c.Seq {
			delete(queue, c.ID)
		}
	}
	s.mu.Unlock()

	if err := s.repo.ClearPending(ctx, done); err != nil {
		s.log.Warn("clearing sync queue failed", zap.Int("count", len(done)), zap.Error(err))
	}
}
