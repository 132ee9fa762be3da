package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/notify"
	"github.com/nhle/daybook/internal/remote"
	appsync "github.com/nhle/daybook/internal/sync"
	"github.com/nhle/daybook/internal/theme"
	"github.com/nhle/daybook/internal/todo"
)

func newSyncCmd(c *cli) *cobra.Command {
	var watch, initRemote bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull from and push to the remote table",
		Long:  "Sync pulls remote rows, merging them by last update, then uploads queued deletes and changes. With --watch it keeps syncing on the configured interval and prints reminders as they come due.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, cleanup, err := c.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if initRemote {
				if e.remote == nil {
					return errors.New("remote.dsn is not configured")
				}
				if err := e.remote.EnsureTable(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s remote table %q ready\n", theme.Good.Render("✓"), e.cfg.Remote.Table)
			}

			if _, err := e.todos.RolloverTo(ctx, e.todos.Today()); err != nil {
				return err
			}

			if watch {
				return runWatch(ctx, e, out)
			}

			if err := e.todos.SyncAll(ctx); err != nil {
				return describeSyncError(err)
			}
			outbox, trash := e.todos.Pending()
			fmt.Fprintf(out, "%s synced (%d upload(s), %d delete(s) still queued)\n",
				theme.Good.Render("✓"), len(outbox), len(trash))
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep syncing and deliver reminders until interrupted")
	cmd.Flags().BoolVar(&initRemote, "init-remote", false, "Create the remote table if missing")
	return cmd
}

// runWatch syncs on the configured interval and prints due reminders until
// ctx is cancelled.
func runWatch(ctx context.Context, e *env, out io.Writer) error {
	interval := time.Duration(e.cfg.Sync.IntervalSec) * time.Second
	poller := appsync.New(e.todos, interval, e.log.Named("sync"))

	dispatcher := notify.NewDispatcher(e.db, func(r model.Reminder) {
		fmt.Fprintf(out, "%s %s %s\n", theme.Warn.Render("⏰"),
			time.Now().Format("15:04"), r.Title)
	}, e.log.Named("notify"), e.dailyReminder())

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(ctx)
	}()

	fmt.Fprintf(out, "watching (every %s), ctrl+c to stop\n", interval)
	poller.Run(ctx)
	<-done

	e.log.Info("watch stopped", zap.Stringer("state", poller.Status().State))
	return nil
}

func describeSyncError(err error) error {
	switch {
	case errors.Is(err, todo.ErrRemoteDisabled):
		return errors.New("remote sync is off: set remote.dsn in the config or DAYBOOK_REMOTE_DSN")
	case errors.Is(err, remote.ErrNotAuthenticated):
		return fmt.Errorf("%w (run `daybook auth token`)", err)
	default:
		return err
	}
}
