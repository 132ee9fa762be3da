package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
)

// ClockLayout is the "HH:MM" form used by time logs.
const ClockLayout = "15:04"

// NearestHalfHour rounds t, in the reference offset, to the closest half
// hour: minutes under 15 go to :00, under 45 to :30, otherwise to the next
// hour.
func NearestHalfHour(t time.Time) string {
	t = t.In(daykey.Zone())
	hour, minute := t.Hour(), t.Minute()
	switch {
	case minute < 15:
		minute = 0
	case minute < 45:
		minute = 30
	default:
		minute = 0
		hour = (hour + 1) % 24
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func validateClock(field, value string) error {
	if _, err := time.Parse(ClockLayout, value); err != nil {
		return fmt.Errorf("%s %q must be HH:MM", field, value)
	}
	return nil
}

// CreateTimeLog inserts an open time log for date starting at start. An
// empty start uses the current time rounded to the nearest half hour.
func (s *SQLiteStore) CreateTimeLog(ctx context.Context, date, start string) (model.TimeLog, error) {
	if !daykey.Valid(date) {
		return model.TimeLog{}, fmt.Errorf("invalid date %q", date)
	}
	if start == "" {
		start = NearestHalfHour(s.now())
	}
	if err := validateClock("start", start); err != nil {
		return model.TimeLog{}, err
	}

	log := model.TimeLog{
		ID:        uuid.New().String(),
		Date:      date,
		Start:     start,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_logs (id, date, start_time, end_time, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID, log.Date, log.Start, log.End, log.Memo, toMillis(log.CreatedAt),
	)
	if err != nil {
		return model.TimeLog{}, fmt.Errorf("creating time log: %w", err)
	}
	return log, nil
}

// SetTimeLogStart updates the start of a time log.
func (s *SQLiteStore) SetTimeLogStart(ctx context.Context, id, start string) error {
	if err := validateClock("start", start); err != nil {
		return err
	}
	return s.updateTimeLog(ctx, id, "start_time", start)
}

// SetTimeLogEnd updates the end of a time log; an empty end reopens it.
func (s *SQLiteStore) SetTimeLogEnd(ctx context.Context, id, end string) error {
	if end != "" {
		if err := validateClock("end", end); err != nil {
			return err
		}
	}
	return s.updateTimeLog(ctx, id, "end_time", end)
}

// SetTimeLogMemo updates the memo of a time log.
func (s *SQLiteStore) SetTimeLogMemo(ctx context.Context, id, memo string) error {
	return s.updateTimeLog(ctx, id, "memo", memo)
}

// updateTimeLog sets one column; column is always a constant from this file.
func (s *SQLiteStore) updateTimeLog(ctx context.Context, id, column, value string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE time_logs SET "+column+" = ? WHERE id = ?", value, id)
	if err != nil {
		return fmt.Errorf("updating time log %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("time log %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTimeLog removes a time log by ID.
func (s *SQLiteStore) DeleteTimeLog(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM time_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting time log %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("time log %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetTimeLogs returns the time logs of date ordered by start.
func (s *SQLiteStore) GetTimeLogs(ctx context.Context, date string) ([]model.TimeLog, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, date, start_time, end_time, memo, created_at
		FROM time_logs WHERE date = ? ORDER BY start_time, created_at`, date)
	if err != nil {
		return nil, fmt.Errorf("querying time logs: %w", err)
	}
	defer rows.Close()

	var logs []model.TimeLog
	for rows.Next() {
		var (
			l         model.TimeLog
			createdAt int64
		)
		if err := rows.Scan(&l.ID, &l.Date, &l.Start, &l.End, &l.Memo, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning time log row: %w", err)
		}
		l.CreatedAt = fromMillis(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
