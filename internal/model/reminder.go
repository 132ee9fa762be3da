package model

import "time"

// ReminderPayload identifies what a reminder is about.
type ReminderPayload struct {
	TodoID string `json:"todo_id"`
	Title  string `json:"title"`
}

// Reminder is a locally scheduled notification. Its ID is the handle stored
// on the snapshot as NotificationID.
type Reminder struct {
	ID string `json:"id" db:"id"`
	ReminderPayload

	FireAt    time.Time `json:"fire_at" db:"fire_at"`
	Delivered bool      `json:"delivered" db:"delivered"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
