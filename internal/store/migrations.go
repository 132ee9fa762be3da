package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/daybook/internal/daykey"
)

// migration holds a single schema migration with its target version, its
// SQL, and an optional data backfill run in the same transaction.
type migration struct {
	version  int
	sql      string
	backfill func(ctx context.Context, tx *sqlx.Tx, now time.Time) error
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	done            INTEGER NOT NULL DEFAULT 0 CHECK(done IN (0, 1)),
	progress        INTEGER NOT NULL DEFAULT 0,
	note            TEXT NOT NULL DEFAULT '',
	due_at          INTEGER,
	notify_at       INTEGER,
	notification_id TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL DEFAULT 0,
	completed_at    INTEGER
);

CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE todos ADD COLUMN origin_id TEXT NOT NULL DEFAULT '';
ALTER TABLE todos ADD COLUMN date TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_todos_origin_date ON todos(origin_id, date);
CREATE INDEX IF NOT EXISTS idx_todos_date ON todos(date);

INSERT INTO schema_version (version) VALUES (2);
`,
		backfill: backfillLineage,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS reminders (
	id         TEXT PRIMARY KEY,
	todo_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	fire_at    INTEGER NOT NULL,
	delivered  INTEGER NOT NULL DEFAULT 0 CHECK(delivered IN (0, 1)),
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(delivered, fire_at);

CREATE TABLE IF NOT EXISTS habits (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS habit_checks (
	habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
	date     TEXT NOT NULL,
	PRIMARY KEY (habit_id, date)
);

CREATE INDEX IF NOT EXISTS idx_habit_checks_date ON habit_checks(date);

CREATE TABLE IF NOT EXISTS diaries (
	date       TEXT PRIMARY KEY,
	text       TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS time_logs (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT NOT NULL DEFAULT '',
	memo       TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_time_logs_date ON time_logs(date);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
	{
		version: 4,
		sql: `
CREATE TABLE IF NOT EXISTS pending_sync (
	seq  INTEGER PRIMARY KEY AUTOINCREMENT,
	id   TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL CHECK(kind IN ('upsert', 'delete'))
);

INSERT INTO schema_version (version) VALUES (4);
`,
	},
}

// backfillLineage fills origin_id and date for todos written before
// snapshots carried a lineage: origin_id becomes the row's own id and date
// the reference day of its creation time.
func backfillLineage(ctx context.Context, tx *sqlx.Tx, now time.Time) error {
	var rows []struct {
		ID        string `db:"id"`
		OriginID  string `db:"origin_id"`
		Date      string `db:"date"`
		CreatedAt int64  `db:"created_at"`
	}
	err := tx.SelectContext(ctx, &rows,
		"SELECT id, origin_id, date, created_at FROM todos WHERE origin_id = '' OR date = ''")
	if err != nil {
		return fmt.Errorf("selecting todos without lineage: %w", err)
	}

	for _, r := range rows {
		originID := r.OriginID
		if originID == "" {
			originID = r.ID
		}
		date := r.Date
		if date == "" {
			created := fromMillis(r.CreatedAt)
			if created.IsZero() {
				created = now
			}
			date = daykey.Of(created)
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE todos SET origin_id = ?, date = ? WHERE id = ?",
			originID, date, r.ID)
		if err != nil {
			return fmt.Errorf("backfilling todo %s: %w", r.ID, err)
		}
	}

	return nil
}
