package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
	"github.com/nhle/daybook/internal/theme"
)

func newTimeLogCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "timelog",
		Aliases: []string{"tl"},
		Short:   "Log blocks of time spent on a day",
	}
	cmd.PersistentFlags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the time logs of a day",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				day, err := dayOrToday(date)
				if err != nil {
					return err
				}
				return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
					logs, err := db.GetTimeLogs(ctx, day)
					if err != nil {
						return err
					}
					printTimeLogs(cmd, day, logs)
					return nil
				})
			},
		},
		newTimeLogAddCmd(c, &date),
		newTimeLogSetCmd(c, &date, "start <id> <HH:MM>", "Change the start of a time log", 2,
			func(ctx context.Context, db *store.SQLiteStore, id string, args []string) error {
				return db.SetTimeLogStart(ctx, id, args[0])
			}),
		newTimeLogSetCmd(c, &date, "end <id> [HH:MM]", "Close a time log (no time reopens it)", 1,
			func(ctx context.Context, db *store.SQLiteStore, id string, args []string) error {
				end := ""
				if len(args) > 0 {
					end = args[0]
				}
				return db.SetTimeLogEnd(ctx, id, end)
			}),
		newTimeLogSetCmd(c, &date, "memo <id> <text>", "Set the memo of a time log", 1,
			func(ctx context.Context, db *store.SQLiteStore, id string, args []string) error {
				return db.SetTimeLogMemo(ctx, id, strings.Join(args, " "))
			}),
		newTimeLogSetCmd(c, &date, "rm <id>", "Remove a time log", 1,
			func(ctx context.Context, db *store.SQLiteStore, id string, _ []string) error {
				return db.DeleteTimeLog(ctx, id)
			}),
	)
	return cmd
}

func newTimeLogAddCmd(c *cli, date *string) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Start a time log (default: now, rounded to the half hour)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(*date)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				tl, err := db.CreateTimeLog(ctx, day, start)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s started %s at %s on %s\n",
					theme.Good.Render("✓"), theme.Key.Render(shortID(tl.ID)), tl.Start, tl.Date)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	return cmd
}

// newTimeLogSetCmd builds a subcommand that resolves a time log of the
// selected day and applies fn with the remaining arguments.
func newTimeLogSetCmd(c *cli, date *string, use, short string, minArgs int,
	fn func(ctx context.Context, db *store.SQLiteStore, id string, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(minArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(*date)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				logs, err := db.GetTimeLogs(ctx, day)
				if err != nil {
					return err
				}
				ids := make([]string, len(logs))
				for i, tl := range logs {
					ids[i] = tl.ID
				}
				id, err := resolvePrefix("time log", args[0], ids)
				if err != nil {
					return err
				}
				if err := fn(ctx, db, id, args[1:]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s updated %s\n", theme.Good.Render("✓"), theme.Key.Render(shortID(id)))
				return nil
			})
		},
	}
}

func printTimeLogs(cmd *cobra.Command, day string, logs []model.TimeLog) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.HeaderStyle.Render(day))
	if len(logs) == 0 {
		fmt.Fprintln(out, theme.DimmedStyle.Render("  no time logged"))
		return
	}
	for _, tl := range logs {
		end := tl.End
		if end == "" {
			end = "…"
		}
		fmt.Fprintf(out, "  %s %s–%-5s %s\n", theme.Key.Render(shortID(tl.ID)), tl.Start, end, tl.Memo)
	}
}
