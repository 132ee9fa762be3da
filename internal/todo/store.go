// Package todo owns the collection of dated todo snapshots: local
// mutations, rollover of unfinished work to new days, and reconciliation
// with a remote copy through an outbox of pending uploads and a trash of
// pending deletes.
package todo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
)

// Repository is the local persistence the Store writes through to. Local
// mutations are queued for sync in the same write that stores them, so
// pending uploads and deletes outlive the process.
type Repository interface {
	LoadSnapshots(ctx context.Context) ([]model.Snapshot, error)
	PutSnapshots(ctx context.Context, snapshots []model.Snapshot) error
	QueueSnapshots(ctx context.Context, snapshots []model.Snapshot) (map[string]int64, error)
	QueueDelete(ctx context.Context, id string) (int64, error)
	LoadPending(ctx context.Context) ([]store.PendingChange, error)
	ClearPending(ctx context.Context, done []store.PendingChange) error
}

// Notifier schedules and cancels device reminders. Schedule may return an
// empty handle when no reminder could be produced.
type Notifier interface {
	Schedule(ctx context.Context, fireAt time.Time, payload model.ReminderPayload) (string, error)
	Cancel(ctx context.Context, handle string) error
}

// Remote is the server-side copy of the snapshot collection.
type Remote interface {
	Pull(ctx context.Context) ([]model.Snapshot, error)
	Upsert(ctx context.Context, snapshots []model.Snapshot) error
	Delete(ctx context.Context, ids []string) error
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the reminder scheduler. Without one, NotifyAt is stored
// but nothing is scheduled.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithRemote enables the sync operations.
func WithRemote(r Remote) Option {
	return func(s *Store) { s.remote = r }
}

// WithLogger sets the logger used for swallowed notifier failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides snapshot id generation.
func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store is safe for concurrent use. Mutations are serialized; remote calls
// during sync run without holding the lock.
type Store struct {
	repo     Repository
	notifier Notifier
	remote   Remote
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	mu        gosync.Mutex
	snapshots map[string]model.Snapshot
	// outbox and trash map a queued id to the repository sequence of its
	// latest queueing.
	outbox map[string]int64
	trash  map[string]int64
}

// New loads the persisted snapshots from repo and returns a ready Store.
func New(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:      repo,
		log:       zap.NewNop(),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		snapshots: make(map[string]model.Snapshot),
		outbox:    make(map[string]int64),
		trash:     make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := repo.LoadSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	for _, snap := range loaded {
		s.snapshots[snap.ID] = snap
	}

	pending, err := repo.LoadPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sync queue: %w", err)
	}
	for _, c := range pending {
		switch c.Kind {
		case store.PendingDelete:
			s.trash[c.ID] = c.Seq
		default:
			s.outbox[c.ID] = c.Seq
		}
	}
	return s, nil
}

// Create adds a new task on date, or today when date is empty.
func (s *Store) Create(ctx context.Context, date, title string) (model.Snapshot, error) {
	now := s.stamp()
	if date == "" {
		date = daykey.Today(now)
	}
	if !daykey.Valid(date) {
		return model.Snapshot{}, fmt.Errorf("invalid date %q", date)
	}

	id := s.newID()
	snap := model.Snapshot{
		ID:        id,
		OriginID:  id,
		Title:     strings.TrimSpace(title),
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Rename sets the trimmed title. Rejecting empty titles is left to callers.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil
	}
	snap.Title = strings.TrimSpace(title)
	snap.UpdatedAt = s.stamp()
	return s.commit(ctx, snap)
}

// SetProgress rounds p to the nearest integer within [0, 100]. Reaching 100
// marks the snapshot done and cancels its reminder.
func (s *Store) SetProgress(ctx context.Context, id string, p float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil
	}

	now := s.stamp()
	snap.Progress = clampProgress(p)
	snap.Done = snap.Progress == model.MaxProgress
	snap.UpdatedAt = now
	snap.CompletedAt = nil
	if snap.Done {
		snap.CompletedAt = &now
		if snap.NotificationID != "" {
			s.cancel(ctx, snap.NotificationID)
			snap.NotificationID = ""
		}
	}
	return s.commit(ctx, snap)
}

func clampProgress(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	return int(math.Max(0, math.Min(model.MaxProgress, math.Round(p))))
}

// SetDetail applies a partial update of note, due time and reminder time.
// Changing NotifyAt cancels the current reminder before any new one is
// scheduled; done snapshots are never rescheduled.
func (s *Store) SetDetail(ctx context.Context, id string, d Detail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil
	}

	if !d.NotifyAt.IsUnchanged() {
		if snap.NotificationID != "" {
			s.cancel(ctx, snap.NotificationID)
			snap.NotificationID = ""
		}
		if fireAt, set := d.NotifyAt.Value(); set && !snap.Done {
			snap.NotificationID = s.schedule(ctx, fireAt, model.ReminderPayload{
				TodoID: snap.ID,
				Title:  snap.Title,
			})
		}
	}

	snap.Note = applyNote(snap.Note, d.Note)
	snap.DueAt = applyTime(snap.DueAt, d.DueAt)
	snap.NotifyAt = applyTime(snap.NotifyAt, d.NotifyAt)
	snap.UpdatedAt = s.stamp()
	return s.commit(ctx, snap)
}

// Remove deletes a snapshot locally and queues its remote delete in place
// of any pending upload.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil
	}
	seq, err := s.repo.QueueDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	if snap.NotificationID != "" {
		s.cancel(ctx, snap.NotificationID)
	}
	delete(s.snapshots, id)
	delete(s.outbox, id)
	s.trash[id] = seq
	return nil
}

// RolloverTo clones every unfinished lineage forward to date and returns
// the clones. Repeated calls for the same date create nothing new.
func (s *Store) RolloverTo(ctx context.Context, date string) ([]model.Snapshot, error) {
	if !daykey.Valid(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make([]model.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		existing = append(existing, snap)
	}
	sortSnapshots(existing)

	clones := Rollover(existing, date, s.stamp(), s.newID)
	if len(clones) == 0 {
		return nil, nil
	}
	if err := s.commit(ctx, clones...); err != nil {
		return nil, err
	}
	return clones, nil
}

// IsReadOnly reports whether snap belongs to a day before today.
func (s *Store) IsReadOnly(snap model.Snapshot) bool {
	return snap.Date < daykey.Today(s.now())
}

// Today returns the current day key.
func (s *Store) Today() string {
	return daykey.Today(s.now())
}

// Snapshots returns every snapshot ordered by date, then creation time.
func (s *Store) Snapshots() []model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sortSnapshots(out)
	return out
}

// ForDate returns the snapshots of date ordered by creation time.
func (s *Store) ForDate(date string) []model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Snapshot
	for _, snap := range s.snapshots {
		if snap.Date == date {
			out = append(out, snap)
		}
	}
	sortSnapshots(out)
	return out
}

// Get returns the snapshot with id.
func (s *Store) Get(id string) (model.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snapshots[id]
	return snap, ok
}

// Pending returns the ids queued for upload and for remote deletion, each
// sorted.
func (s *Store) Pending() (outbox, trash []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.outbox {
		outbox = append(outbox, id)
	}
	for id := range s.trash {
		trash = append(trash, id)
	}
	sort.Strings(outbox)
	sort.Strings(trash)
	return outbox, trash
}

// commit writes snaps through to the repository together with their
// upload queue entries, then applies them in memory. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, snaps ...model.Snapshot) error {
	seqs, err := s.repo.QueueSnapshots(ctx, snaps)
	if err != nil {
		return fmt.Errorf("saving snapshots: %w", err)
	}
	for _, snap := range snaps {
		s.snapshots[snap.ID] = snap
		s.outbox[snap.ID] = seqs[snap.ID]
	}
	return nil
}

// stamp is the current time at the millisecond precision both the local
// and the remote copy store, so equal edits compare equal after a reload.
func (s *Store) stamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

func (s *Store) schedule(ctx context.Context, fireAt time.Time, payload model.ReminderPayload) string {
	if s.notifier == nil {
		return ""
	}
	handle, err := s.notifier.Schedule(ctx, fireAt, payload)
	if err != nil {
		s.log.Warn("scheduling reminder failed",
			zap.String("todo_id", payload.TodoID), zap.Time("fire_at", fireAt), zap.Error(err))
		return ""
	}
	return handle
}

func (s *Store) cancel(ctx context.Context, handle string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Cancel(ctx, handle); err != nil {
		s.log.Debug("cancelling reminder failed", zap.String("handle", handle), zap.Error(err))
	}
}

func sortSnapshots(snaps []model.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Date != snaps[j].Date {
			return snaps[i].Date < snaps[j].Date
		}
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
		}
		return snaps[i].ID < snaps[j].ID
	})
}
