package model

import "time"

// Habit is a recurring activity checked off per day.
type Habit struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HabitCheck marks a habit as done on a given day.
type HabitCheck struct {
	HabitID string `json:"habit_id" db:"habit_id"`
	Date    string `json:"date" db:"date"`
}

// HabitPalette is cycled through as habits are added.
var HabitPalette = []string{
	"#A3E635", "#60A5FA", "#F472B6", "#F59E0B",
	"#34D399", "#C084FC", "#F87171", "#22D3EE",
}

// DefaultHabitName is used when a habit is added without a name.
const DefaultHabitName = "New habit"
