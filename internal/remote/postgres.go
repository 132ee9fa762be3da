// Package remote stores todo snapshots in a hosted Postgres table, one row
// per snapshot, scoped to the signed-in user.
package remote

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nhle/daybook/internal/model"
)

// ErrNotAuthenticated is returned when no user identity is available.
var ErrNotAuthenticated = errors.New("not authenticated")

// IdentityProvider returns the id of the signed-in user.
type IdentityProvider interface {
	UserID(ctx context.Context) (string, error)
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const rowColumns = `id, user_id, origin_id, title, done, created_at, updated_at,
	progress, date, note, due_at, notify_at, notification_id, completed_at`

// Postgres implements the todo remote against a Postgres table.
type Postgres struct {
	db       *sqlx.DB
	table    string
	identity IdentityProvider
}

// Open prepares a connection pool for dsn. No connection is made until the
// first operation.
func Open(dsn, table string, identity IdentityProvider) (*Postgres, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid remote table name %q", table)
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return &Postgres{db: db, table: table, identity: identity}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// EnsureTable creates the snapshot table when it does not exist yet.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			origin_id       TEXT NOT NULL,
			title           TEXT NOT NULL,
			done            BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      BIGINT NOT NULL,
			updated_at      TIMESTAMPTZ,
			progress        INTEGER NOT NULL DEFAULT 0,
			date            TEXT NOT NULL,
			note            TEXT,
			due_at          BIGINT,
			notify_at       BIGINT,
			notification_id TEXT,
			completed_at    BIGINT
		);
		CREATE INDEX IF NOT EXISTS %[1]s_user_id_idx ON %[1]s (user_id)`, p.table))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", p.table, err)
	}
	return nil
}

// Pull returns every snapshot of the signed-in user, most recently updated
// first.
func (p *Postgres) Pull(ctx context.Context) ([]model.Snapshot, error) {
	userID, err := p.userID(ctx)
	if err != nil {
		return nil, err
	}

	var rows []row
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE user_id = $1 ORDER BY updated_at DESC NULLS LAST",
		rowColumns, p.table)
	if err := p.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("pulling snapshots: %w", err)
	}

	snaps := make([]model.Snapshot, len(rows))
	for i, r := range rows {
		snaps[i] = fromRow(r)
	}
	return snaps, nil
}

// Upsert writes snapshots keyed by id, overwriting existing rows of the
// same user.
func (p *Postgres) Upsert(ctx context.Context, snaps []model.Snapshot) error {
	userID, err := p.userID(ctx)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s)
		VALUES (:id, :user_id, :origin_id, :title, :done, :created_at, :updated_at,
			:progress, :date, :note, :due_at, :notify_at, :notification_id, :completed_at)
		ON CONFLICT (id) DO UPDATE SET
			origin_id = EXCLUDED.origin_id,
			title = EXCLUDED.title,
			done = EXCLUDED.done,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			progress = EXCLUDED.progress,
			date = EXCLUDED.date,
			note = EXCLUDED.note,
			due_at = EXCLUDED.due_at,
			notify_at = EXCLUDED.notify_at,
			notification_id = EXCLUDED.notification_id,
			completed_at = EXCLUDED.completed_at
		WHERE %[1]s.user_id = EXCLUDED.user_id`, p.table, rowColumns)

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if _, err := stmt.ExecContext(ctx, toRow(snap, userID)); err != nil {
			return fmt.Errorf("upserting snapshot %s: %w", snap.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Delete removes the user's rows with the given ids.
func (p *Postgres) Delete(ctx context.Context, ids []string) error {
	userID, err := p.userID(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = $1 AND id = ANY($2)", p.table)
	if _, err := p.db.ExecContext(ctx, query, userID, pq.Array(ids)); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

func (p *Postgres) userID(ctx context.Context) (string, error) {
	if p.identity == nil {
		return "", ErrNotAuthenticated
	}
	id, err := p.identity.UserID(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}
