package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/daybook/internal/model"
)

// CreateReminder inserts a new reminder. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateReminder(ctx context.Context, r model.Reminder) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, todo_id, title, fire_at, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.TodoID, r.Title, toMillis(r.FireAt),
		boolToInt(r.Delivered), toMillis(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("creating reminder: %w", err)
	}
	return nil
}

// EnsureReminder inserts r unless a reminder with its ID already exists and
// reports whether it was inserted.
func (s *SQLiteStore) EnsureReminder(ctx context.Context, r model.Reminder) (bool, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO reminders (id, todo_id, title, fire_at, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.TodoID, r.Title, toMillis(r.FireAt),
		boolToInt(r.Delivered), toMillis(r.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("ensuring reminder %s: %w", r.ID, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteReminder removes a reminder by ID.
func (s *SQLiteStore) DeleteReminder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetDueReminders retrieves undelivered reminders whose fire time is at or
// before now, oldest first.
func (s *SQLiteStore) GetDueReminders(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT id, todo_id, title, fire_at, delivered, created_at FROM reminders WHERE delivered = 0 AND fire_at <= ? ORDER BY fire_at",
		now.UnixMilli())
}

// GetPendingReminders retrieves every undelivered reminder, soonest first.
func (s *SQLiteStore) GetPendingReminders(ctx context.Context) ([]model.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT id, todo_id, title, fire_at, delivered, created_at FROM reminders WHERE delivered = 0 ORDER BY fire_at")
}

// MarkReminderDelivered flags a reminder as delivered.
func (s *SQLiteStore) MarkReminderDelivered(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET delivered = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking reminder %s as delivered: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) queryReminders(ctx context.Context, query string, args ...interface{}) ([]model.Reminder, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var (
			r         model.Reminder
			fireAt    int64
			delivered int
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.TodoID, &r.Title, &fireAt, &delivered, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning reminder row: %w", err)
		}
		r.FireAt = fromMillis(fireAt)
		r.Delivered = delivered != 0
		r.CreatedAt = fromMillis(createdAt)
		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}
