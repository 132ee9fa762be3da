package todo

import (
	"strings"
	"time"
)

type changeKind int

const (
	changeNone changeKind = iota
	changeClear
	changeSet
)

// Change is a tri-state field update: the zero value leaves the field
// unchanged, Clear removes it and SetTo replaces it.
type Change[T any] struct {
	kind  changeKind
	value T
}

// Unchanged returns a Change that leaves the field as it is.
func Unchanged[T any]() Change[T] { return Change[T]{} }

// Clear returns a Change that removes the field.
func Clear[T any]() Change[T] { return Change[T]{kind: changeClear} }

// SetTo returns a Change that replaces the field with v.
func SetTo[T any](v T) Change[T] { return Change[T]{kind: changeSet, value: v} }

// IsUnchanged reports whether the field is left alone.
func (c Change[T]) IsUnchanged() bool { return c.kind == changeNone }

// IsClear reports whether the field is removed.
func (c Change[T]) IsClear() bool { return c.kind == changeClear }

// Value returns the new value and whether the Change sets one.
func (c Change[T]) Value() (T, bool) { return c.value, c.kind == changeSet }

// Detail is a partial update of a snapshot's per-day details.
type Detail struct {
	Note     Change[string]
	DueAt    Change[time.Time]
	NotifyAt Change[time.Time]
}

func applyNote(cur string, c Change[string]) string {
	switch c.kind {
	case changeClear:
		return ""
	case changeSet:
		return strings.TrimSpace(c.value)
	default:
		return cur
	}
}

func applyTime(cur *time.Time, c Change[time.Time]) *time.Time {
	switch c.kind {
	case changeClear:
		return nil
	case changeSet:
		v := c.value
		return &v
	default:
		return cur
	}
}
