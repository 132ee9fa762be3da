package todo

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
	"github.com/nhle/daybook/internal/store/storetest"
)

// 2025-01-02 09:00 at the reference offset.
var baseTime = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  gosync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs(prefix string) func() string {
	var (
		mu gosync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type notifierCall struct {
	op     string
	handle string
	fireAt time.Time
}

type fakeNotifier struct {
	mu       gosync.Mutex
	calls    []notifierCall
	next     int
	failNext bool
	noHandle bool
}

func (n *fakeNotifier) Schedule(_ context.Context, fireAt time.Time, _ model.ReminderPayload) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return "", errors.New("platform error")
	}
	if n.noHandle {
		return "", nil
	}
	n.next++
	handle := fmt.Sprintf("h%d", n.next)
	n.calls = append(n.calls, notifierCall{op: "schedule", handle: handle, fireAt: fireAt})
	return handle, nil
}

func (n *fakeNotifier) Cancel(_ context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifierCall{op: "cancel", handle: handle})
	return nil
}

func (n *fakeNotifier) ops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.calls))
	for i, c := range n.calls {
		out[i] = c.op + ":" + c.handle
	}
	return out
}

type fakeRemote struct {
	mu       gosync.Mutex
	rows     map[string]model.Snapshot
	log      []string
	err      error
	onUpsert func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{rows: make(map[string]model.Snapshot)}
}

func (r *fakeRemote) Pull(context.Context) ([]model.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Snapshot, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *fakeRemote) Upsert(_ context.Context, snaps []model.Snapshot) error {
	r.mu.Lock()
	if r.err != nil {
		r.mu.Unlock()
		return r.err
	}
	for _, snap := range snaps {
		r.rows[snap.ID] = snap
		r.log = append(r.log, "upsert:"+snap.ID)
	}
	hook := r.onUpsert
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (r *fakeRemote) Delete(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, id := range ids {
		delete(r.rows, id)
		r.log = append(r.log, "delete:"+id)
	}
	return nil
}

// memRepo is an in-memory Repository that can be told to fail writes.
type memRepo struct {
	mu      gosync.Mutex
	rows    map[string]model.Snapshot
	pending map[string]store.PendingChange
	seq     int64
	failPut bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:    make(map[string]model.Snapshot),
		pending: make(map[string]store.PendingChange),
	}
}

func (m *memRepo) LoadSnapshots(context.Context) ([]model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Snapshot, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	return out, nil
}

func (m *memRepo) PutSnapshots(_ context.Context, snaps []model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("disk full")
	}
	for _, snap := range snaps {
		m.rows[snap.ID] = snap
	}
	return nil
}

func (m *memRepo) QueueSnapshots(_ context.Context, snaps []model.Snapshot) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return nil, errors.New("disk full")
	}
	seqs := make(map[string]int64, len(snaps))
	for _, snap := range snaps {
		m.rows[snap.ID] = snap
		seqs[snap.ID] = m.enqueue(snap.ID, store.PendingUpsert)
	}
	return seqs, nil
}

func (m *memRepo) QueueDelete(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return m.enqueue(id, store.PendingDelete), nil
}

func (m *memRepo) enqueue(id string, kind store.PendingKind) int64 {
	m.seq++
	m.pending[id] = store.PendingChange{Seq: m.seq, ID: id, Kind: kind}
	return m.seq
}

func (m *memRepo) LoadPending(context.Context) ([]store.PendingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.PendingChange, 0, len(m.pending))
	for _, c := range m.pending {
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) ClearPending(_ context.Context, done []store.PendingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range done {
		if cur, ok := m.pending[c.ID]; ok && cur.Seq == c.Seq {
			delete(m.pending, c.ID)
		}
	}
	return nil
}

type harness struct {
	store    *Store
	clock    *fakeClock
	notifier *fakeNotifier
	remote   *fakeRemote
}

// newHarness builds a Store over a real SQLite repository with fake
// collaborators.
func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithRepo(t, storetest.NewTestStore(t))
}

func newHarnessWithRepo(t *testing.T, repo Repository) *harness {
	t.Helper()

	h := &harness{
		clock:    &fakeClock{now: baseTime},
		notifier: &fakeNotifier{},
		remote:   newFakeRemote(),
	}
	s, err := New(context.Background(), repo,
		WithNotifier(h.notifier),
		WithRemote(h.remote),
		WithClock(h.clock.Now),
		WithIDFunc(sequentialIDs("t")),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.store = s
	return h
}

func (h *harness) mustCreate(t *testing.T, date, title string) model.Snapshot {
	t.Helper()
	snap, err := h.store.Create(context.Background(), date, title)
	if err != nil {
		t.Fatalf("Create(%q, %q): %v", date, title, err)
	}
	return snap
}

func (h *harness) mustGet(t *testing.T, id string) model.Snapshot {
	t.Helper()
	snap, ok := h.store.Get(id)
	if !ok {
		t.Fatalf("snapshot %s missing", id)
	}
	return snap
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
