package daykey

import (
	"testing"
	"time"
)

func TestParseMoment(t *testing.T) {
	t.Parallel()

	// 2025-01-01 20:00Z is 2025-01-02 05:00 at the reference offset.
	now := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-01-03 09:30", want: time.Date(2025, 1, 3, 0, 30, 0, 0, time.UTC)},
		{in: " 18:00 ", want: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)},
		{in: "00:15", want: time.Date(2025, 1, 1, 15, 15, 0, 0, time.UTC)},
		{in: "2025-01-03", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMoment(tt.in, now)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMoment(%q) err=%v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Fatalf("ParseMoment(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoment(t *testing.T) {
	t.Parallel()

	got := FormatMoment(time.Date(2025, 1, 1, 15, 5, 0, 0, time.UTC))
	if got != "2025-01-02 00:05" {
		t.Fatalf("FormatMoment=%q, want 2025-01-02 00:05", got)
	}
}
