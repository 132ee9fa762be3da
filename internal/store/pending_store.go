package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PendingKind says what a queued snapshot id is waiting for.
type PendingKind string

const (
	PendingUpsert PendingKind = "upsert"
	PendingDelete PendingKind = "delete"
)

// PendingChange is a snapshot id waiting to reach the remote. Seq grows with
// every queueing of the id, so a change re-queued while an upload is in
// flight keeps a newer Seq than the one being cleared.
type PendingChange struct {
	Seq  int64       `db:"seq"`
	ID   string      `db:"id"`
	Kind PendingKind `db:"kind"`
}

// enqueue records kind for id, replacing whatever was queued for it, and
// returns the new sequence.
func enqueue(ctx context.Context, tx *sqlx.Tx, id string, kind PendingKind) (int64, error) {
	result, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO pending_sync (id, kind) VALUES (?, ?)", id, kind)
	if err != nil {
		return 0, fmt.Errorf("queueing %s of %s: %w", kind, id, err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading queue sequence of %s: %w", id, err)
	}
	return seq, nil
}

// LoadPending returns every queued change in queueing order.
func (s *SQLiteStore) LoadPending(ctx context.Context) ([]PendingChange, error) {
	var changes []PendingChange
	err := s.db.SelectContext(ctx, &changes,
		"SELECT seq, id, kind FROM pending_sync ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("querying pending changes: %w", err)
	}
	return changes, nil
}

// ClearPending dequeues changes that reached the remote. An id queued again
// since carries a newer Seq and stays queued.
func (s *SQLiteStore) ClearPending(ctx context.Context, done []PendingChange) error {
	if len(done) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range done {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM pending_sync WHERE id = ? AND seq = ?", c.ID, c.Seq); err != nil {
			return fmt.Errorf("clearing pending %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}
