package model

import "time"

// DiaryEntry is the free-text journal for one day.
type DiaryEntry struct {
	Date      string    `json:"date" db:"date"`
	Text      string    `json:"text" db:"text"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
