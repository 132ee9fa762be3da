package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/daybook/internal/model"
)

// CreateHabit inserts a new habit. An empty name falls back to
// model.DefaultHabitName; the colour cycles through model.HabitPalette.
func (s *SQLiteStore) CreateHabit(ctx context.Context, name string) (model.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultHabitName
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM habits"); err != nil {
		return model.Habit{}, fmt.Errorf("counting habits: %w", err)
	}

	habit := model.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     model.HabitPalette[count%len(model.HabitPalette)],
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO habits (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		habit.ID, habit.Name, habit.Color, toMillis(habit.CreatedAt),
	)
	if err != nil {
		return model.Habit{}, fmt.Errorf("creating habit: %w", err)
	}
	return habit, nil
}

// RenameHabit updates a habit's name. An empty name keeps the current one.
func (s *SQLiteStore) RenameHabit(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	result, err := s.db.ExecContext(ctx,
		"UPDATE habits SET name = ? WHERE id = ?", name, id,
	)
	if err != nil {
		return fmt.Errorf("renaming habit %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteHabit removes a habit together with all of its checks.
func (s *SQLiteStore) DeleteHabit(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_checks WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("deleting checks for habit %s: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting habit %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// GetHabits retrieves all habits in creation order.
func (s *SQLiteStore) GetHabits(ctx context.Context) ([]model.Habit, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, name, color, created_at FROM habits ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		var (
			h         model.Habit
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &h.Name, &h.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning habit row: %w", err)
		}
		h.CreatedAt = fromMillis(createdAt)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// ToggleHabitCheck flips the check for habitID on date and returns the new
// state.
func (s *SQLiteStore) ToggleHabitCheck(ctx context.Context, habitID, date string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM habit_checks WHERE habit_id = ? AND date = ?", habitID, date)
	if err != nil {
		return false, fmt.Errorf("unchecking habit %s: %w", habitID, err)
	}
	checked := false
	if rows, _ := result.RowsAffected(); rows == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO habit_checks (habit_id, date) VALUES (?, ?)", habitID, date)
		if err != nil {
			return false, fmt.Errorf("checking habit %s: %w", habitID, err)
		}
		checked = true
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return checked, nil
}

// GetHabitChecks returns all checks whose date lies in [start, end].
func (s *SQLiteStore) GetHabitChecks(ctx context.Context, start, end string) ([]model.HabitCheck, error) {
	var checks []model.HabitCheck
	err := s.db.SelectContext(ctx, &checks,
		"SELECT habit_id, date FROM habit_checks WHERE date >= ? AND date <= ? ORDER BY date, habit_id",
		start, end)
	if err != nil {
		return nil, fmt.Errorf("querying habit checks: %w", err)
	}
	return checks, nil
}

// ClearHabitChecks removes all checks whose date lies in [start, end] and
// returns how many were removed.
func (s *SQLiteStore) ClearHabitChecks(ctx context.Context, start, end string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM habit_checks WHERE date >= ? AND date <= ?", start, end)
	if err != nil {
		return 0, fmt.Errorf("clearing habit checks: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
