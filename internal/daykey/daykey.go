// Package daykey maps instants to calendar-day keys ("YYYY-MM-DD") using a
// single fixed UTC offset, so that every "which day is it" decision in the
// application agrees regardless of the machine's local timezone.
package daykey

import (
	"fmt"
	"time"
)

// ReferenceOffset is the fixed UTC offset that defines a calendar day.
const ReferenceOffset = 9 * time.Hour

// Layout is the textual form of a day key.
const Layout = "2006-01-02"

var referenceZone = time.FixedZone("UTC+9", int(ReferenceOffset/time.Second))

// Zone returns the fixed reference location.
func Zone() *time.Location {
	return referenceZone
}

// Of returns the day key of t in the reference offset.
func Of(t time.Time) string {
	return t.In(referenceZone).Format(Layout)
}

// Today returns the day key of now.
func Today(now time.Time) string {
	return Of(now)
}

// Parse returns midnight of key in the reference offset.
func Parse(key string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, key, referenceZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day key %q: %w", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed day key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// AddDays returns the key n days after key (n may be negative).
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// MondayOf returns the key of the Monday starting the week that contains key.
func MondayOf(key string) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(Layout), nil
}

// Week returns the seven keys, Monday first, of the week containing key.
func Week(key string) ([]string, error) {
	monday, err := MondayOf(key)
	if err != nil {
		return nil, err
	}
	start, _ := Parse(monday)
	days := make([]string, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(Layout)
	}
	return days, nil
}
