package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/daybook/internal/model"
)

type staticIdentity struct {
	id  string
	err error
}

func (s staticIdentity) UserID(context.Context) (string, error) { return s.id, s.err }

func TestOpenValidatesTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		table   string
		wantErr bool
	}{
		{"todos", false},
		{"daybook_todos", false},
		{"_t1", false},
		{"", true},
		{"1todos", true},
		{"todos; DROP TABLE users", true},
		{"public.todos", true},
	}

	for _, tt := range tests {
		p, err := Open("postgres://localhost/daybook?sslmode=disable", tt.table, nil)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Open(table=%q) err=%v, wantErr %v", tt.table, err, tt.wantErr)
		}
		if p != nil {
			_ = p.Close()
		}
	}
}

func TestOperationsRequireIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		identity IdentityProvider
		want     error
	}{
		{"no provider", nil, ErrNotAuthenticated},
		{"empty user", staticIdentity{}, ErrNotAuthenticated},
		{"provider error", staticIdentity{err: ErrNotAuthenticated}, ErrNotAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// The DSN points nowhere; identity is checked before any query.
			p, err := Open("postgres://127.0.0.1:1/none?sslmode=disable", "todos", tt.identity)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer p.Close()

			if _, err := p.Pull(ctx); !errors.Is(err, tt.want) {
				t.Fatalf("Pull err=%v, want %v", err, tt.want)
			}
			if err := p.Upsert(ctx, []model.Snapshot{{ID: "a"}}); !errors.Is(err, tt.want) {
				t.Fatalf("Upsert err=%v, want %v", err, tt.want)
			}
			if err := p.Delete(ctx, []string{"a"}); !errors.Is(err, tt.want) {
				t.Fatalf("Delete err=%v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyBatchesSkipTheDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p, err := Open("postgres://127.0.0.1:1/none?sslmode=disable", "todos", staticIdentity{id: "u1"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if err := p.Upsert(ctx, nil); err != nil {
		t.Fatalf("Upsert(nil)=%v, want nil", err)
	}
	if err := p.Delete(ctx, nil); err != nil {
		t.Fatalf("Delete(nil)=%v, want nil", err)
	}
}

func TestRowMapping(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)
	due := created.Add(24 * time.Hour)

	full := model.Snapshot{
		ID: "a", OriginID: "o", Title: "title", Date: "2025-01-01",
		Progress: 100, Done: true, Note: "note", DueAt: &due, NotifyAt: &due,
		NotificationID: "h1", CreatedAt: created, UpdatedAt: updated, CompletedAt: &updated,
	}
	bare := model.Snapshot{ID: "b", OriginID: "b", Title: "bare", Date: "2025-01-01", CreatedAt: created}

	r := toRow(full, "u1")
	if r.UserID != "u1" || r.CreatedAt != created.UnixMilli() || !r.DueAt.Valid || r.DueAt.Int64 != due.UnixMilli() {
		t.Fatalf("toRow(full)=%+v", r)
	}
	if !r.UpdatedAt.Valid || !r.UpdatedAt.Time.Equal(updated) {
		t.Fatalf("UpdatedAt=%+v, want %v", r.UpdatedAt, updated)
	}

	b := toRow(bare, "u1")
	if b.Note.Valid || b.DueAt.Valid || b.NotifyAt.Valid || b.NotificationID.Valid || b.CompletedAt.Valid || b.UpdatedAt.Valid {
		t.Fatalf("toRow(bare) has non-null optional columns: %+v", b)
	}

	back := fromRow(r)
	if back.ID != full.ID || back.Title != full.Title || back.Note != full.Note || back.NotificationID != full.NotificationID {
		t.Fatalf("fromRow=%+v, want %+v", back, full)
	}
	if !back.CreatedAt.Equal(created) || !back.UpdatedAt.Equal(updated) {
		t.Fatalf("timestamps=%v/%v, want %v/%v", back.CreatedAt, back.UpdatedAt, created, updated)
	}
	if back.DueAt == nil || !back.DueAt.Equal(due) || back.CompletedAt == nil || !back.CompletedAt.Equal(updated) {
		t.Fatalf("optional times=%v/%v", back.DueAt, back.CompletedAt)
	}

	bareBack := fromRow(b)
	if !bareBack.UpdatedAt.IsZero() || bareBack.DueAt != nil || bareBack.Note != "" {
		t.Fatalf("fromRow(bare)=%+v, want absent optionals", bareBack)
	}
}
