package model

import "time"

// MaxProgress is the progress value at which a snapshot counts as done.
const MaxProgress = 100

// Snapshot is one dated instance of a todo. Snapshots that descend from the
// same originally created task share OriginID; at most one exists per
// (OriginID, Date).
type Snapshot struct {
	ID       string `json:"id" db:"id"`
	OriginID string `json:"origin_id" db:"origin_id"`
	Title    string `json:"title" db:"title"`

	// Date is the day key ("YYYY-MM-DD") this snapshot represents.
	Date string `json:"date" db:"date"`

	Progress int  `json:"progress" db:"progress"`
	Done     bool `json:"done" db:"done"`

	// Note is empty when absent.
	Note     string     `json:"note,omitempty" db:"note"`
	DueAt    *time.Time `json:"due_at,omitempty" db:"due_at"`
	NotifyAt *time.Time `json:"notify_at,omitempty" db:"notify_at"`

	// NotificationID is the handle of the reminder scheduled for NotifyAt,
	// empty when nothing is scheduled.
	NotificationID string `json:"notification_id,omitempty" db:"notification_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// UpdatedAt is zero when unknown; it then loses every last-writer-wins
	// comparison.
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// IsComplete reports whether the snapshot reached full progress.
func (s Snapshot) IsComplete() bool {
	return s.Progress >= MaxProgress
}
