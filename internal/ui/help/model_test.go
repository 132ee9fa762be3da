package help

import (
	"strings"
	"testing"

	"github.com/nhle/daybook/internal/keys"
)

func TestViewListsSections(t *testing.T) {
	t.Parallel()

	view := New(keys.DefaultKeyMap(), 120, 30).View()
	for _, want := range []string{"Move", "Edit", "Task", "App", "read-only"} {
		if !strings.Contains(view, want) {
			t.Fatalf("help view missing %q", want)
		}
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	if got := padRight("esc", 6); got != "esc   " {
		t.Fatalf("padRight=%q, want %q", got, "esc   ")
	}
	if got := padRight("toolong", 3); got != "toolong" {
		t.Fatalf("padRight=%q, want unchanged", got)
	}
}
