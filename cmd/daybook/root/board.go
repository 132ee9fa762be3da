package root

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/app"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/notify"
	appsync "github.com/nhle/daybook/internal/sync"
)

func newBoardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the day board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			e, cleanup, err := c.openEnv(ctx, true)
			if err != nil {
				return err
			}
			defer cleanup()

			reminders := make(chan model.Reminder, 8)
			dispatcher := notify.NewDispatcher(e.db, func(r model.Reminder) {
				select {
				case reminders <- r:
				default:
					// The board is behind; the reminder is still marked delivered.
				}
			}, e.log.Named("notify"), e.dailyReminder())
			go dispatcher.Run(ctx)

			interval := time.Duration(e.cfg.Sync.IntervalSec) * time.Second
			poller := appsync.New(e.todos, interval, e.log.Named("sync"))
			defer poller.Stop()

			m := app.New(e.todos, poller, app.Options{
				Reminders: reminders,
				Nickname:  e.cfg.Profile.Nickname,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}
