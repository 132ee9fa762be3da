package daykey

import (
	"fmt"
	"strings"
	"time"
)

// MomentLayout is the textual form of an instant in the reference offset.
const MomentLayout = "2006-01-02 15:04"

// ParseMoment reads "YYYY-MM-DD HH:MM" or "HH:MM" in the reference offset.
// A bare clock time refers to the day of now.
func ParseMoment(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(MomentLayout, s, referenceZone); err == nil {
		return t, nil
	}
	clock, err := time.ParseInLocation("15:04", s, referenceZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not YYYY-MM-DD HH:MM or HH:MM", s)
	}
	day, _ := Parse(Of(now))
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

// FormatMoment renders t as "YYYY-MM-DD HH:MM" in the reference offset.
func FormatMoment(t time.Time) string {
	return t.In(referenceZone).Format(MomentLayout)
}
