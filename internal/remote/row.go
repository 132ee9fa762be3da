package remote

import (
	"database/sql"
	"time"

	"github.com/nhle/daybook/internal/model"
)

// row is the remote table shape. Timestamps are epoch milliseconds except
// updated_at, which the table keeps as timestamptz.
type row struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	OriginID       string         `db:"origin_id"`
	Title          string         `db:"title"`
	Done           bool           `db:"done"`
	CreatedAt      int64          `db:"created_at"`
	UpdatedAt      sql.NullTime   `db:"updated_at"`
	Progress       int            `db:"progress"`
	Date           string         `db:"date"`
	Note           sql.NullString `db:"note"`
	DueAt          sql.NullInt64  `db:"due_at"`
	NotifyAt       sql.NullInt64  `db:"notify_at"`
	NotificationID sql.NullString `db:"notification_id"`
	CompletedAt    sql.NullInt64  `db:"completed_at"`
}

func toRow(s model.Snapshot, userID string) row {
	r := row{
		ID:             s.ID,
		UserID:         userID,
		OriginID:       s.OriginID,
		Title:          s.Title,
		Done:           s.Done,
		CreatedAt:      s.CreatedAt.UnixMilli(),
		Progress:       s.Progress,
		Date:           s.Date,
		Note:           sql.NullString{String: s.Note, Valid: s.Note != ""},
		DueAt:          millis(s.DueAt),
		NotifyAt:       millis(s.NotifyAt),
		NotificationID: sql.NullString{String: s.NotificationID, Valid: s.NotificationID != ""},
		CompletedAt:    millis(s.CompletedAt),
	}
	if !s.UpdatedAt.IsZero() {
		r.UpdatedAt = sql.NullTime{Time: s.UpdatedAt.UTC(), Valid: true}
	}
	return r
}

func fromRow(r row) model.Snapshot {
	s := model.Snapshot{
		ID:             r.ID,
		OriginID:       r.OriginID,
		Title:          r.Title,
		Date:           r.Date,
		Progress:       r.Progress,
		Done:           r.Done,
		Note:           r.Note.String,
		DueAt:          fromMillis(r.DueAt),
		NotifyAt:       fromMillis(r.NotifyAt),
		NotificationID: r.NotificationID.String,
		CreatedAt:      time.UnixMilli(r.CreatedAt).UTC(),
		CompletedAt:    fromMillis(r.CompletedAt),
	}
	if r.UpdatedAt.Valid {
		s.UpdatedAt = r.UpdatedAt.Time.UTC()
	}
	return s
}

func millis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.UnixMilli(n.Int64).UTC()
	return &t
}
