package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/daybook/internal/model"
)

// ErrNotFound is wrapped by lookups and deletes that match no row.
var ErrNotFound = errors.New("not found")

// Store defines the local persistence interface for todo snapshots, their
// sync queue, reminders, habits, diary entries, and time logs.
type Store interface {
	// === Todo snapshots ===

	LoadSnapshots(ctx context.Context) ([]model.Snapshot, error)
	PutSnapshots(ctx context.Context, snapshots []model.Snapshot) error
	QueueSnapshots(ctx context.Context, snapshots []model.Snapshot) (map[string]int64, error)
	QueueDelete(ctx context.Context, id string) (int64, error)

	// === Sync queue ===

	LoadPending(ctx context.Context) ([]PendingChange, error)
	ClearPending(ctx context.Context, done []PendingChange) error

	// === Reminders ===

	CreateReminder(ctx context.Context, r model.Reminder) error
	EnsureReminder(ctx context.Context, r model.Reminder) (bool, error)
	DeleteReminder(ctx context.Context, id string) error
	GetDueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error)
	MarkReminderDelivered(ctx context.Context, id string) error

	// === Habits ===

	CreateHabit(ctx context.Context, name string) (model.Habit, error)
	RenameHabit(ctx context.Context, id, name string) error
	DeleteHabit(ctx context.Context, id string) error
	GetHabits(ctx context.Context) ([]model.Habit, error)
	ToggleHabitCheck(ctx context.Context, habitID, date string) (bool, error)
	GetHabitChecks(ctx context.Context, start, end string) ([]model.HabitCheck, error)
	ClearHabitChecks(ctx context.Context, start, end string) (int64, error)

	// === Diary ===

	SetDiary(ctx context.Context, date, text string) (model.DiaryEntry, error)
	GetDiary(ctx context.Context, date string) (*model.DiaryEntry, error)
	DeleteDiary(ctx context.Context, date string) error

	// === Time logs ===

	CreateTimeLog(ctx context.Context, date, start string) (model.TimeLog, error)
	SetTimeLogStart(ctx context.Context, id, start string) error
	SetTimeLogEnd(ctx context.Context, id, end string) error
	SetTimeLogMemo(ctx context.Context, id, memo string) error
	DeleteTimeLog(ctx context.Context, id string) error
	GetTimeLogs(ctx context.Context, date string) ([]model.TimeLog, error)
}
