package root

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/auth"
	"github.com/nhle/daybook/internal/credential"
	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/logger"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/notify"
	"github.com/nhle/daybook/internal/remote"
	"github.com/nhle/daybook/internal/store"
	"github.com/nhle/daybook/internal/todo"
)

// shortIDLen is how many id characters the CLI prints.
const shortIDLen = 8

// env is everything a command needs to work with the local data.
type env struct {
	cfg    *model.AppConfig
	log    *zap.Logger
	db     *store.SQLiteStore
	remote *remote.Postgres
	sched  *notify.Scheduler
	todos  *todo.Store
}

// openEnv opens the local database, the optional remote and the todo
// store. forTUI routes logs to a file instead of stderr.
func (c *cli) openEnv(ctx context.Context, forTUI bool) (*env, func(), error) {
	cfg := c.cfg

	newLogger := logger.New
	if forTUI {
		newLogger = logger.ForTUI
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	db, err := c.openDB()
	if err != nil {
		return nil, nil, err
	}

	e := &env{cfg: cfg, log: log, db: db}
	cleanup := func() {
		if e.remote != nil {
			_ = e.remote.Close()
		}
		_ = db.Close()
		_ = logger.Sync(log)
	}

	e.sched = notify.NewScheduler(db,
		notify.WithEnabled(func() bool { return cfg.Profile.PushEnabled }),
		notify.WithMinLead(time.Duration(cfg.Reminders.MinLeadSec)*time.Second),
	)

	opts := []todo.Option{
		todo.WithNotifier(e.sched),
		todo.WithLogger(log.Named("todo")),
	}
	if cfg.Remote.DSN != "" {
		session := auth.NewSession(credential.SessionTokens{})
		pg, err := remote.Open(cfg.Remote.DSN, cfg.Remote.Table, session)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		e.remote = pg
		opts = append(opts, todo.WithRemote(pg))
	}

	e.todos, err = todo.New(ctx, db, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return e, cleanup, nil
}

// openDB opens the local database, creating its directory on first use.
func (c *cli) openDB() (*store.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(c.cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.NewSQLiteStore(c.cfg.DatabasePath)
}

// dailyReminder plans the profile's daily reminder while push reminders
// are enabled.
func (e *env) dailyReminder() notify.DispatcherOption {
	return notify.WithDailyReminder(func() string {
		if !e.cfg.Profile.PushEnabled {
			return ""
		}
		return e.cfg.Profile.DailyReminderTime
	})
}

// dayOrToday validates date, defaulting to today.
func dayOrToday(date string) (string, error) {
	if date == "" {
		return daykey.Today(time.Now()), nil
	}
	if !daykey.Valid(date) {
		return "", fmt.Errorf("invalid date %q", date)
	}
	return date, nil
}

// resolve finds a snapshot by id or unique id prefix.
func (e *env) resolve(ref string) (model.Snapshot, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Snapshot{}, fmt.Errorf("task id is required")
	}
	if snap, ok := e.todos.Get(ref); ok {
		return snap, nil
	}

	var matches []model.Snapshot
	for _, snap := range e.todos.Snapshots() {
		if strings.HasPrefix(snap.ID, ref) {
			matches = append(matches, snap)
		}
	}
	switch len(matches) {
	case 0:
		return model.Snapshot{}, fmt.Errorf("no task with id %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Snapshot{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// editable rejects snapshots of past days.
func (e *env) editable(ref string) (model.Snapshot, error) {
	snap, err := e.resolve(ref)
	if err != nil {
		return model.Snapshot{}, err
	}
	if e.todos.IsReadOnly(snap) {
		return model.Snapshot{}, fmt.Errorf("task %s belongs to %s and is read-only", shortID(snap.ID), snap.Date)
	}
	return snap, nil
}

// resolvePrefix matches ref against ids by exact value or unique prefix.
func resolvePrefix(kind, ref string, ids []string) (string, error) {
	var match []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if ref != "" && strings.HasPrefix(id, ref) {
			match = append(match, id)
		}
	}
	switch len(match) {
	case 0:
		return "", fmt.Errorf("no %s with id %q", kind, ref)
	case 1:
		return match[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(match))
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
