package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nhle/daybook/internal/model"
)

// SetDiary stores the trimmed text as the diary entry for date, replacing
// any existing entry.
func (s *SQLiteStore) SetDiary(ctx context.Context, date, text string) (model.DiaryEntry, error) {
	entry := model.DiaryEntry{
		Date:      date,
		Text:      strings.TrimSpace(text),
		UpdatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO diaries (date, text, updated_at) VALUES (?, ?, ?)",
		entry.Date, entry.Text, toMillis(entry.UpdatedAt),
	)
	if err != nil {
		return model.DiaryEntry{}, fmt.Errorf("saving diary %s: %w", date, err)
	}
	return entry, nil
}

// GetDiary returns the entry for date, or nil when none exists.
func (s *SQLiteStore) GetDiary(ctx context.Context, date string) (*model.DiaryEntry, error) {
	var (
		entry     model.DiaryEntry
		updatedAt int64
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT date, text, updated_at FROM diaries WHERE date = ?", date,
	).Scan(&entry.Date, &entry.Text, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting diary %s: %w", date, err)
	}
	entry.UpdatedAt = fromMillis(updatedAt)
	return &entry, nil
}

// DeleteDiary removes the entry for date.
func (s *SQLiteStore) DeleteDiary(ctx context.Context, date string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM diaries WHERE date = ?", date)
	if err != nil {
		return fmt.Errorf("deleting diary %s: %w", date, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("diary %s: %w", date, ErrNotFound)
	}
	return nil
}
