// Package notify schedules todo reminders in the local database and
// delivers them when they come due.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
)

// DefaultMinLead is how far in the future a reminder fires at the earliest.
const DefaultMinLead = 3 * time.Second

// Repository persists reminders.
type Repository interface {
	CreateReminder(ctx context.Context, r model.Reminder) error
	EnsureReminder(ctx context.Context, r model.Reminder) (bool, error)
	DeleteReminder(ctx context.Context, id string) error
	GetDueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error)
	MarkReminderDelivered(ctx context.Context, id string) error
}

// Scheduler turns reminder requests into persisted reminders. The reminder
// id is the handle callers keep.
type Scheduler struct {
	repo    Repository
	enabled func() bool
	minLead time.Duration
	now     func() time.Time
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithEnabled gates scheduling. While it reports false, Schedule produces
// no reminder and no handle.
func WithEnabled(enabled func() bool) SchedulerOption {
	return func(s *Scheduler) { s.enabled = enabled }
}

// WithMinLead sets the minimum distance from now of a fire time.
func WithMinLead(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.minLead = d }
}

// WithSchedulerClock overrides time.Now.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler creates a Scheduler that is enabled by default.
func NewScheduler(repo Repository, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		repo:    repo,
		enabled: func() bool { return true },
		minLead: DefaultMinLead,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule persists a reminder for fireAt and returns its handle. Fire
// times sooner than the minimum lead are pushed out to it. When scheduling
// is disabled it returns "" and no error.
func (s *Scheduler) Schedule(ctx context.Context, fireAt time.Time, payload model.ReminderPayload) (string, error) {
	if !s.enabled() {
		return "", nil
	}

	now := s.now()
	if earliest := now.Add(s.minLead); fireAt.Before(earliest) {
		fireAt = earliest
	}

	r := model.Reminder{
		ID:              uuid.New().String(),
		ReminderPayload: payload,
		FireAt:          fireAt,
		CreatedAt:       now,
	}
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return "", fmt.Errorf("scheduling reminder for %s: %w", payload.TodoID, err)
	}
	return r.ID, nil
}

// Cancel removes the reminder behind handle. Unknown handles are ignored.
func (s *Scheduler) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := s.repo.DeleteReminder(ctx, handle); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("cancelling reminder %s: %w", handle, err)
	}
	return nil
}
