package todo

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/nhle/daybook/internal/store/storetest"
)

func TestCreateDefaultsToToday(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "  buy milk ")
	if snap.Date != "2025-01-02" {
		t.Fatalf("Date=%q, want 2025-01-02", snap.Date)
	}
	if snap.Title != "buy milk" {
		t.Fatalf("Title=%q, want trimmed", snap.Title)
	}
	if snap.OriginID != snap.ID || snap.Progress != 0 || snap.Done {
		t.Fatalf("snapshot=%+v, want fresh lineage at 0%%", snap)
	}
	if !snap.CreatedAt.Equal(baseTime) || !snap.UpdatedAt.Equal(baseTime) {
		t.Fatalf("timestamps=%v/%v, want %v", snap.CreatedAt, snap.UpdatedAt, baseTime)
	}

	outbox, _ := h.store.Pending()
	if !contains(outbox, snap.ID) {
		t.Fatalf("outbox=%v, want %s", outbox, snap.ID)
	}
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if _, err := h.store.Create(context.Background(), "2025/01/02", "x"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

// Scenario: a task that reaches 100 is done and its reminder is cancelled.
func TestSetProgressToFullCompletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(baseTime.Add(time.Hour))}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if got := h.mustGet(t, snap.ID).NotificationID; got != "h1" {
		t.Fatalf("NotificationID=%q, want h1", got)
	}

	h.clock.Advance(time.Minute)
	if err := h.store.SetProgress(ctx, snap.ID, 100); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	got := h.mustGet(t, snap.ID)
	if !got.Done || got.Progress != 100 {
		t.Fatalf("got done=%v progress=%d, want done at 100", got.Done, got.Progress)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(baseTime.Add(time.Minute)) {
		t.Fatalf("CompletedAt=%v, want %v", got.CompletedAt, baseTime.Add(time.Minute))
	}
	if got.NotificationID != "" {
		t.Fatalf("NotificationID=%q, want cleared", got.NotificationID)
	}
	ops := h.notifier.ops()
	if len(ops) != 2 || ops[1] != "cancel:h1" {
		t.Fatalf("notifier ops=%v, want schedule then cancel:h1", ops)
	}
}

func TestSetProgressRoundsAndClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       float64
		want     int
		wantDone bool
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 40.4, want: 40},
		{in: 40.5, want: 41},
		{in: 99.4, want: 99},
		{in: 99.5, want: 100, wantDone: true},
		{in: 150, want: 100, wantDone: true},
		{in: math.NaN(), want: 0},
		{in: math.Inf(1), want: 100, wantDone: true},
	}

	h := newHarness(t)
	ctx := context.Background()
	snap := h.mustCreate(t, "", "clamp")

	for _, tt := range tests {
		if err := h.store.SetProgress(ctx, snap.ID, tt.in); err != nil {
			t.Fatalf("SetProgress(%v): %v", tt.in, err)
		}
		got := h.mustGet(t, snap.ID)
		if got.Progress != tt.want || got.Done != tt.wantDone {
			t.Fatalf("SetProgress(%v) => progress=%d done=%v, want %d %v",
				tt.in, got.Progress, got.Done, tt.want, tt.wantDone)
		}
		if got.Done != (got.CompletedAt != nil) {
			t.Fatalf("SetProgress(%v) => CompletedAt=%v with done=%v", tt.in, got.CompletedAt, got.Done)
		}
	}
}

// Scenario: scheduling then clearing leaves no handle and cancels the first.
func TestSetDetailScheduleThenClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	fireAt := time.UnixMilli(1234567890000)
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(fireAt)}); err != nil {
		t.Fatalf("SetDetail set: %v", err)
	}
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: Clear[time.Time]()}); err != nil {
		t.Fatalf("SetDetail clear: %v", err)
	}

	got := h.mustGet(t, snap.ID)
	if got.NotificationID != "" || got.NotifyAt != nil {
		t.Fatalf("got handle=%q notifyAt=%v, want both cleared", got.NotificationID, got.NotifyAt)
	}
	ops := h.notifier.ops()
	if len(ops) != 2 || ops[0] != "schedule:h1" || ops[1] != "cancel:h1" {
		t.Fatalf("notifier ops=%v, want [schedule:h1 cancel:h1]", ops)
	}
}

func TestSetDetailReschedulesAfterCancel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	for _, d := range []time.Duration{time.Hour, 2 * time.Hour} {
		if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(baseTime.Add(d))}); err != nil {
			t.Fatalf("SetDetail: %v", err)
		}
	}

	ops := h.notifier.ops()
	want := []string{"schedule:h1", "cancel:h1", "schedule:h2"}
	if len(ops) != len(want) {
		t.Fatalf("notifier ops=%v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("notifier ops=%v, want %v", ops, want)
		}
	}
	if got := h.mustGet(t, snap.ID); got.NotificationID != "h2" {
		t.Fatalf("NotificationID=%q, want h2", got.NotificationID)
	}
}

func TestSetDetailOnDoneSnapshotDoesNotSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "done already")
	if err := h.store.SetProgress(ctx, snap.ID, 100); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	fireAt := baseTime.Add(time.Hour)
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(fireAt)}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}

	if ops := h.notifier.ops(); len(ops) != 0 {
		t.Fatalf("notifier ops=%v, want none", ops)
	}
	got := h.mustGet(t, snap.ID)
	if got.NotificationID != "" {
		t.Fatalf("NotificationID=%q, want empty", got.NotificationID)
	}
	if got.NotifyAt == nil || !got.NotifyAt.Equal(fireAt) {
		t.Fatalf("NotifyAt=%v, want %v", got.NotifyAt, fireAt)
	}
}

func TestSetDetailSchedulingFailureLeavesNoHandle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	h.notifier.failNext = true
	fireAt := baseTime.Add(time.Hour)
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(fireAt)}); err != nil {
		t.Fatalf("SetDetail returned notifier error: %v", err)
	}

	got := h.mustGet(t, snap.ID)
	if got.NotificationID != "" {
		t.Fatalf("NotificationID=%q, want empty", got.NotificationID)
	}
	if got.NotifyAt == nil || !got.NotifyAt.Equal(fireAt) {
		t.Fatalf("NotifyAt=%v, want %v", got.NotifyAt, fireAt)
	}
}

func TestSetDetailNoteAndDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	due := baseTime.Add(24 * time.Hour)

	if err := h.store.SetDetail(ctx, snap.ID, Detail{Note: SetTo("  gloves  "), DueAt: SetTo(due)}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	got := h.mustGet(t, snap.ID)
	if got.Note != "gloves" || got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("got note=%q due=%v, want gloves %v", got.Note, got.DueAt, due)
	}

	// Unchanged fields survive an unrelated update.
	if err := h.store.SetDetail(ctx, snap.ID, Detail{}); err != nil {
		t.Fatalf("SetDetail empty: %v", err)
	}
	got = h.mustGet(t, snap.ID)
	if got.Note != "gloves" || got.DueAt == nil {
		t.Fatalf("empty detail changed fields: %+v", got)
	}

	if err := h.store.SetDetail(ctx, snap.ID, Detail{Note: SetTo("   "), DueAt: Clear[time.Time]()}); err != nil {
		t.Fatalf("SetDetail clear: %v", err)
	}
	got = h.mustGet(t, snap.ID)
	if got.Note != "" || got.DueAt != nil {
		t.Fatalf("got note=%q due=%v, want both absent", got.Note, got.DueAt)
	}
}

// Scenario: removal moves a queued id from the outbox to the trash.
func TestRemoveMovesIDFromOutboxToTrash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	snap := h.mustCreate(t, "", "T1")
	if err := h.store.Rename(ctx, snap.ID, "T1 renamed"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := h.store.SetDetail(ctx, snap.ID, Detail{NotifyAt: SetTo(baseTime.Add(time.Hour))}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if err := h.store.Remove(ctx, snap.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	outbox, trash := h.store.Pending()
	if contains(outbox, snap.ID) {
		t.Fatalf("outbox=%v still holds %s", outbox, snap.ID)
	}
	if !contains(trash, snap.ID) {
		t.Fatalf("trash=%v, want %s", trash, snap.ID)
	}
	if _, ok := h.store.Get(snap.ID); ok {
		t.Fatal("removed snapshot still present")
	}
	if ops := h.notifier.ops(); ops[len(ops)-1] != "cancel:h1" {
		t.Fatalf("notifier ops=%v, want trailing cancel:h1", ops)
	}

	// Mutations on the removed id are silent no-ops.
	if err := h.store.Rename(ctx, snap.ID, "ghost"); err != nil {
		t.Fatalf("Rename after remove: %v", err)
	}
	if err := h.store.SetProgress(ctx, snap.ID, 50); err != nil {
		t.Fatalf("SetProgress after remove: %v", err)
	}
	if _, ok := h.store.Get(snap.ID); ok {
		t.Fatal("mutation resurrected removed snapshot")
	}
	if outbox, _ := h.store.Pending(); contains(outbox, snap.ID) {
		t.Fatalf("outbox=%v, want no %s", outbox, snap.ID)
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t)

	if err := h.store.Rename(ctx, "nope", "x"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := h.store.SetProgress(ctx, "nope", 10); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	if err := h.store.SetDetail(ctx, "nope", Detail{Note: SetTo("x")}); err != nil {
		t.Fatalf("SetDetail: %v", err)
	}
	if err := h.store.Remove(ctx, "nope"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	outbox, trash := h.store.Pending()
	if len(outbox) != 0 || len(trash) != 0 {
		t.Fatalf("pending=%v/%v, want empty", outbox, trash)
	}
}

func TestIsReadOnlyUsesReferenceDay(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	// 15:30Z on Jan 1 is already Jan 2 at the reference offset.
	h.clock.now = time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		date string
		want bool
	}{
		{"2024-12-31", true},
		{"2025-01-01", true},
		{"2025-01-02", false},
		{"2025-01-03", false},
	}
	for _, tt := range tests {
		snap := h.mustCreate(t, tt.date, "x")
		if got := h.store.IsReadOnly(snap); got != tt.want {
			t.Fatalf("IsReadOnly(%s)=%v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	h := newHarnessWithRepo(t, repo)

	snap := h.mustCreate(t, "", "kept")
	if err := h.store.SyncUp(ctx); err != nil {
		t.Fatalf("SyncUp: %v", err)
	}

	repo.failPut = true
	if _, err := h.store.Create(ctx, "", "lost"); err == nil {
		t.Fatal("Create succeeded with failing repository")
	}
	if err := h.store.Rename(ctx, snap.ID, "changed"); err == nil {
		t.Fatal("Rename succeeded with failing repository")
	}

	if got := h.mustGet(t, snap.ID); got.Title != "kept" {
		t.Fatalf("Title=%q, want kept", got.Title)
	}
	if n := len(h.store.Snapshots()); n != 1 {
		t.Fatalf("len(Snapshots)=%d, want 1", n)
	}
	if outbox, _ := h.store.Pending(); len(outbox) != 0 {
		t.Fatalf("outbox=%v, want empty", outbox)
	}
}

func TestNewLoadsPersistedSnapshots(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := storetest.NewTestStore(t)

	first := newHarnessWithRepo(t, repo)
	a := first.mustCreate(t, "2025-01-01", "a")
	first.clock.Advance(time.Second)
	b := first.mustCreate(t, "2025-01-01", "b")
	if err := first.store.SetProgress(ctx, a.ID, 30); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}

	reopened, err := New(ctx, repo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := reopened.ForDate("2025-01-01")
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
		t.Fatalf("ForDate=%+v, want a then b", got)
	}
	if got[0].Progress != 30 {
		t.Fatalf("Progress=%d, want 30", got[0].Progress)
	}
	outbox, trash := reopened.Pending()
	if len(outbox) != 2 || !contains(outbox, a.ID) || !contains(outbox, b.ID) || len(trash) != 0 {
		t.Fatalf("pending=%v/%v, want both ids still queued after reload", outbox, trash)
	}
}
