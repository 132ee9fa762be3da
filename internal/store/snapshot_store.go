package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/daybook/internal/model"
)

const snapshotColumns = `
	id, origin_id, title, date, progress, done,
	note, due_at, notify_at, notification_id,
	created_at, updated_at, completed_at`

// LoadSnapshots returns every persisted todo snapshot ordered by date and
// creation time.
func (s *SQLiteStore) LoadSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT"+snapshotColumns+" FROM todos ORDER BY date, created_at")
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	var snapshots []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// getSnapshot retrieves a single snapshot by ID.
func (s *SQLiteStore) getSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT"+snapshotColumns+" FROM todos WHERE id = ?", id)

	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &snap, nil
}

// PutSnapshots inserts or replaces a batch of snapshots keyed by ID without
// queueing them for upload. Rows pulled from the remote go through here.
func (s *SQLiteStore) PutSnapshots(ctx context.Context, snapshots []model.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSnapshots(ctx, tx, snapshots); err != nil {
		return err
	}
	return tx.Commit()
}

// QueueSnapshots upserts snapshots and queues each one for upload in the
// same transaction. It returns the queue sequence assigned to every id.
func (s *SQLiteStore) QueueSnapshots(ctx context.Context, snapshots []model.Snapshot) (map[string]int64, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSnapshots(ctx, tx, snapshots); err != nil {
		return nil, err
	}

	seqs := make(map[string]int64, len(snapshots))
	for _, t := range snapshots {
		seq, err := enqueue(ctx, tx, t.ID, PendingUpsert)
		if err != nil {
			return nil, err
		}
		seqs[t.ID] = seq
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing queued snapshots: %w", err)
	}
	return seqs, nil
}

// QueueDelete removes a snapshot and queues its remote delete in place of
// any pending upload. A row that is already gone locally is still queued.
func (s *SQLiteStore) QueueDelete(ctx context.Context, id string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id); err != nil {
		return 0, fmt.Errorf("deleting todo %s: %w", id, err)
	}
	seq, err := enqueue(ctx, tx, id, PendingDelete)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete of %s: %w", id, err)
	}
	return seq, nil
}

func upsertSnapshots(ctx context.Context, tx *sqlx.Tx, snapshots []model.Snapshot) error {
	const query = `
		INSERT OR REPLACE INTO todos (` + snapshotColumns + `
		) VALUES (
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range snapshots {
		_, err = stmt.ExecContext(ctx,
			t.ID, t.OriginID, t.Title, t.Date, t.Progress, boolToInt(t.Done),
			t.Note, nullMillis(t.DueAt), nullMillis(t.NotifyAt), t.NotificationID,
			toMillis(t.CreatedAt), toMillis(t.UpdatedAt), nullMillis(t.CompletedAt),
		)
		if err != nil {
			return fmt.Errorf("upserting todo %s: %w", t.ID, err)
		}
	}
	return nil
}

// scanSnapshot scans a todo row in snapshotColumns order.
func scanSnapshot(row interface{ Scan(dest ...interface{}) error }) (model.Snapshot, error) {
	var (
		snap        model.Snapshot
		done        int
		dueAt       sql.NullInt64
		notifyAt    sql.NullInt64
		completedAt sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)

	err := row.Scan(
		&snap.ID, &snap.OriginID, &snap.Title, &snap.Date, &snap.Progress, &done,
		&snap.Note, &dueAt, &notifyAt, &snap.NotificationID,
		&createdAt, &updatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return model.Snapshot{}, err
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("scanning todo row: %w", err)
	}

	snap.Done = done != 0
	snap.DueAt = timeFromNull(dueAt)
	snap.NotifyAt = timeFromNull(notifyAt)
	snap.CompletedAt = timeFromNull(completedAt)
	snap.CreatedAt = fromMillis(createdAt)
	snap.UpdatedAt = fromMillis(updatedAt)

	return snap, nil
}
