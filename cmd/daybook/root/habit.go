package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/store"
	"github.com/nhle/daybook/internal/theme"
)

func newHabitCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Track daily habits",
	}
	cmd.AddCommand(
		newHabitAddCmd(c),
		newHabitRenameCmd(c),
		newHabitRmCmd(c),
		newHabitCheckCmd(c),
		newHabitWeekCmd(c),
		newHabitClearWeekCmd(c),
	)
	return cmd
}

func newHabitAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Add a habit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				h, err := db.CreateHabit(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added %s %s %s\n", theme.Good.Render("✓"),
					theme.Swatch(h.Color), theme.Key.Render(shortID(h.ID)), h.Name)
				return nil
			})
		},
	}
}

func newHabitRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a habit",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHabit(args[0], func(ctx context.Context, db *store.SQLiteStore, h model.Habit) error {
				return db.RenameHabit(ctx, h.ID, strings.Join(args[1:], " "))
			})
		},
	}
}

func newHabitRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a habit and its checks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withHabit(args[0], func(ctx context.Context, db *store.SQLiteStore, h model.Habit) error {
				if err := db.DeleteHabit(ctx, h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", theme.Good.Render("✓"), h.Name)
				return nil
			})
		},
	}
}

func newHabitCheckCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "check <id>",
		Short: "Toggle a habit for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			return c.withHabit(args[0], func(ctx context.Context, db *store.SQLiteStore, h model.Habit) error {
				checked, err := db.ToggleHabitCheck(ctx, h.ID, day)
				if err != nil {
					return err
				}
				state := "unchecked"
				if checked {
					state = "checked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s on %s\n", theme.Swatch(h.Color), h.Name, state, day)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	return cmd
}

func newHabitWeekCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "week",
		Aliases: []string{"list"},
		Short:   "Show habits for the week containing a day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			week, err := daykey.Week(day)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				habits, err := db.GetHabits(ctx)
				if err != nil {
					return err
				}
				checks, err := db.GetHabitChecks(ctx, week[0], week[len(week)-1])
				if err != nil {
					return err
				}
				printHabitWeek(cmd, week, habits, checks)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD), default today")
	return cmd
}

func newHabitClearWeekCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "clear-week",
		Short: "Remove every check of the week containing a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			week, err := daykey.Week(day)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				n, err := db.ClearHabitChecks(ctx, week[0], week[len(week)-1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s cleared %d check(s) from %s to %s\n",
					theme.Good.Render("✓"), n, week[0], week[len(week)-1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any day of the week (YYYY-MM-DD), default today")
	return cmd
}

func printHabitWeek(cmd *cobra.Command, week []string, habits []model.Habit, checks []model.HabitCheck) {
	out := cmd.OutOrStdout()
	checked := make(map[string]bool, len(checks))
	for _, ch := range checks {
		checked[ch.HabitID+"|"+ch.Date] = true
	}

	// Swatch, id and name take 31 columns; every day column takes 3.
	header := fmt.Sprintf("%31s", "")
	for _, day := range week {
		if t, err := daykey.Parse(day); err == nil {
			header += " " + t.Format("Mon")[:2]
		}
	}
	fmt.Fprintln(out, theme.HeaderStyle.Render(week[0]+" to "+week[len(week)-1]))
	fmt.Fprintln(out, theme.DimmedStyle.Render(header))

	for _, h := range habits {
		line := fmt.Sprintf("%s %s %-20.20s", theme.Swatch(h.Color), theme.Key.Render(shortID(h.ID)), h.Name)
		for _, day := range week {
			cell := theme.DimmedStyle.Render("·")
			if checked[h.ID+"|"+day] {
				cell = theme.Swatch(h.Color)
			}
			line += "  " + cell
		}
		fmt.Fprintln(out, line)
	}
	if len(habits) == 0 {
		fmt.Fprintln(out, theme.DimmedStyle.Render("no habits yet, add one with `daybook habit add`"))
	}
}

// withDB opens the local database for fn.
func (c *cli) withDB(fn func(ctx context.Context, db *store.SQLiteStore) error) error {
	db, err := c.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(context.Background(), db)
}

// withHabit resolves ref against the stored habits.
func (c *cli) withHabit(ref string, fn func(ctx context.Context, db *store.SQLiteStore, h model.Habit) error) error {
	return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
		habits, err := db.GetHabits(ctx)
		if err != nil {
			return err
		}
		ids := make([]string, len(habits))
		for i, h := range habits {
			ids[i] = h.ID
		}
		id, err := resolvePrefix("habit", ref, ids)
		if err != nil {
			return err
		}
		for _, h := range habits {
			if h.ID == id {
				return fn(ctx, db, h)
			}
		}
		return nil
	})
}
