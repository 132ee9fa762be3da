package daykey

import (
	"testing"
	"time"
)

func TestOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "utc afternoon is next reference day",
			in:   time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC),
			want: "2025-01-02",
		},
		{
			name: "one second before reference midnight",
			in:   time.Date(2025, 1, 1, 14, 59, 59, 0, time.UTC),
			want: "2025-01-01",
		},
		{
			name: "new york evening",
			in:   time.Date(2025, 3, 9, 20, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
			want: "2025-03-10",
		},
		{
			name: "year boundary",
			in:   time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC),
			want: "2025-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Of(tt.in); got != tt.want {
				t.Fatalf("Of(%v)=%q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTodayIgnoresLocalZone(t *testing.T) {
	t.Parallel()

	instant := time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)
	a := Today(instant.In(time.FixedZone("A", -10*3600)))
	b := Today(instant.In(time.FixedZone("B", 13*3600)))
	if a != b || a != "2025-07-01" {
		t.Fatalf("Today differs by zone: %q vs %q, want 2025-07-01", a, b)
	}
}

func TestAddDays(t *testing.T) {
	t.Parallel()

	got, err := AddDays("2025-02-28", 1)
	if err != nil {
		t.Fatalf("AddDays: %v", err)
	}
	if got != "2025-03-01" {
		t.Fatalf("AddDays=%q, want 2025-03-01", got)
	}

	got, err = AddDays("2025-01-01", -1)
	if err != nil {
		t.Fatalf("AddDays: %v", err)
	}
	if got != "2024-12-31" {
		t.Fatalf("AddDays=%q, want 2024-12-31", got)
	}

	if _, err := AddDays("2025-13-01", 1); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestWeek(t *testing.T) {
	t.Parallel()

	// 2025-01-01 is a Wednesday.
	days, err := Week("2025-01-01")
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("len(days)=%d, want 7", len(days))
	}
	if days[0] != "2024-12-30" || days[6] != "2025-01-05" {
		t.Fatalf("Week=%v, want 2024-12-30..2025-01-05", days)
	}

	monday, _ := MondayOf("2025-01-05")
	if monday != "2024-12-30" {
		t.Fatalf("MondayOf(sunday)=%q, want 2024-12-30", monday)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	if !Valid("2025-01-02") {
		t.Fatal("Valid(2025-01-02)=false")
	}
	for _, bad := range []string{"", "2025-1-2", "2025/01/02", "yesterday"} {
		if Valid(bad) {
			t.Fatalf("Valid(%q)=true, want false", bad)
		}
	}
}
