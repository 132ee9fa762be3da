package model

import "time"

// TimeLog records a block of time spent on a day. Start and End are "HH:MM";
// End is empty while the block is open.
type TimeLog struct {
	ID        string    `json:"id" db:"id"`
	Date      string    `json:"date" db:"date"`
	Start     string    `json:"start" db:"start_time"`
	End       string    `json:"end,omitempty" db:"end_time"`
	Memo      string    `json:"memo" db:"memo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
