package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
	"github.com/nhle/daybook/internal/todo"
)

func newAddCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := c.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			today := e.todos.Today()
			if day < today {
				return fmt.Errorf("%s is in the past and read-only", day)
			}
			if day == today {
				if _, err := e.todos.RolloverTo(ctx, today); err != nil {
					return err
				}
			}
			snap, err := e.todos.Create(ctx, day, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added %s on %s\n",
				theme.Good.Render("✓"), theme.Key.Render(shortID(snap.ID)), snap.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var date string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := c.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			today := e.todos.Today()
			if date == "" {
				date = today
			}
			if !daykey.Valid(date) {
				return fmt.Errorf("invalid date %q", date)
			}
			if _, err := e.todos.RolloverTo(ctx, today); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if all {
				var last string
				for _, snap := range e.todos.Snapshots() {
					if snap.Date != last {
						printDayHeading(out, snap.Date, today)
						last = snap.Date
					}
					printSnapshot(out, snap)
				}
				return nil
			}

			printDayHeading(out, date, today)
			snaps := e.todos.ForDate(date)
			if len(snaps) == 0 {
				fmt.Fprintln(out, theme.DimmedStyle.Render("  nothing here"))
			}
			for _, snap := range snaps {
				printSnapshot(out, snap)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	cmd.Flags().BoolVar(&all, "all", false, "List every day")
	return cmd
}

func newRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return errors.New("title is required")
			}
			return c.withTask(args[0], false, func(ctx context.Context, e *env, snap model.Snapshot) error {
				if err := e.todos.Rename(ctx, snap.ID, title); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s renamed %s\n", theme.Good.Render("✓"), theme.Key.Render(shortID(snap.ID)))
				return nil
			})
		},
	}
}

func newProgressCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id> <0-100>",
		Short: "Set the progress of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
			if err != nil {
				return fmt.Errorf("progress %q is not a number", args[1])
			}
			return c.setProgress(cmd.OutOrStdout(), args[0], p)
		},
	}
}

func newDoneCmd(c *cli) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := float64(model.MaxProgress)
			if undo {
				p = 0
			}
			return c.setProgress(cmd.OutOrStdout(), args[0], p)
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "Reset progress to 0")
	return cmd
}

func (c *cli) setProgress(out io.Writer, ref string, p float64) error {
	return c.withTask(ref, false, func(ctx context.Context, e *env, snap model.Snapshot) error {
		if err := e.todos.SetProgress(ctx, snap.ID, p); err != nil {
			return err
		}
		updated, _ := e.todos.Get(snap.ID)
		fmt.Fprintf(out, "%s %s %s\n", theme.Key.Render(shortID(snap.ID)),
			theme.ProgressBar(updated.Progress, 10), updated.Title)
		return nil
	})
}

func newDetailCmd(c *cli) *cobra.Command {
	var note, due, notify string
	var clearDue, clearNotify bool

	cmd := &cobra.Command{
		Use:   "detail <id>",
		Short: "Show or change a task's note, due time and reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			now := time.Now()

			var d todo.Detail
			if flags.Changed("note") {
				if strings.TrimSpace(note) == "" {
					d.Note = todo.Clear[string]()
				} else {
					d.Note = todo.SetTo(note)
				}
			}

			var err error
			if d.DueAt, err = momentFlag("due", due, flags.Changed("due"), clearDue, now); err != nil {
				return err
			}
			if d.NotifyAt, err = momentFlag("notify", notify, flags.Changed("notify"), clearNotify, now); err != nil {
				return err
			}

			return c.withTask(args[0], true, func(ctx context.Context, e *env, snap model.Snapshot) error {
				out := cmd.OutOrStdout()
				if d.Note.IsUnchanged() && d.DueAt.IsUnchanged() && d.NotifyAt.IsUnchanged() {
					printDetail(out, snap)
					return nil
				}
				if e.todos.IsReadOnly(snap) {
					return fmt.Errorf("task %s belongs to %s and is read-only", shortID(snap.ID), snap.Date)
				}
				if err := e.todos.SetDetail(ctx, snap.ID, d); err != nil {
					return err
				}
				updated, _ := e.todos.Get(snap.ID)
				printDetail(out, updated)
				if updated.NotifyAt != nil && updated.NotificationID == "" && !updated.Done {
					fmt.Fprintln(out, theme.Warn.Render("! reminder saved but not scheduled (enable push in settings)"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Note (empty clears)")
	cmd.Flags().StringVar(&due, "due", "", "Due time (YYYY-MM-DD HH:MM or HH:MM)")
	cmd.Flags().StringVar(&notify, "notify", "", "Reminder time (YYYY-MM-DD HH:MM or HH:MM)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due time")
	cmd.Flags().BoolVar(&clearNotify, "clear-notify", false, "Remove the reminder")
	return cmd
}

// momentFlag turns a --X / --clear-X flag pair into a change.
func momentFlag(name, value string, set, clear bool, now time.Time) (todo.Change[time.Time], error) {
	switch {
	case set && clear:
		return todo.Change[time.Time]{}, fmt.Errorf("--%s and --clear-%s are mutually exclusive", name, name)
	case clear:
		return todo.Clear[time.Time](), nil
	case set:
		t, err := daykey.ParseMoment(value, now)
		if err != nil {
			return todo.Change[time.Time]{}, fmt.Errorf("--%s: %w", name, err)
		}
		return todo.SetTo(t), nil
	default:
		return todo.Unchanged[time.Time](), nil
	}
}

func newRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTask(args[0], false, func(ctx context.Context, e *env, snap model.Snapshot) error {
				if err := e.todos.Remove(ctx, snap.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", theme.Good.Render("✓"), theme.Key.Render(shortID(snap.ID)))
				return nil
			})
		},
	}
}

func newRolloverCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Carry unfinished tasks forward to a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, cleanup, err := c.openEnv(ctx, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if date == "" {
				date = e.todos.Today()
			}
			created, err := e.todos.RolloverTo(ctx, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintf(out, "nothing to carry over to %s\n", date)
				return nil
			}
			fmt.Fprintf(out, "%s carried %d task(s) over to %s\n", theme.Good.Render("✓"), len(created), date)
			for _, snap := range created {
				printSnapshot(out, snap)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Target day (YYYY-MM-DD), default today")
	return cmd
}

// withTask opens the environment and runs fn on task ref. Unless allowPast
// is set, tasks of past days are rejected.
func (c *cli) withTask(ref string, allowPast bool, fn func(ctx context.Context, e *env, snap model.Snapshot) error) error {
	ctx := context.Background()
	e, cleanup, err := c.openEnv(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	find := e.editable
	if allowPast {
		find = e.resolve
	}
	snap, err := find(ref)
	if err != nil {
		return err
	}
	return fn(ctx, e, snap)
}

func printDayHeading(out io.Writer, date, today string) {
	label := date
	if t, err := daykey.Parse(date); err == nil {
		label = t.Format("Mon Jan 2, 2006")
	}
	switch {
	case date == today:
		label += " (today)"
	case date < today:
		label += theme.DimmedStyle.Render(" (read-only)")
	}
	fmt.Fprintln(out, theme.HeaderStyle.Render(label))
}

func printSnapshot(out io.Writer, snap model.Snapshot) {
	mark := "○"
	if snap.IsComplete() {
		mark = "✓"
	}
	line := fmt.Sprintf("  %s %s %s %s", mark, theme.Key.Render(shortID(snap.ID)),
		theme.ProgressBar(snap.Progress, 10), snap.Title)
	if snap.Note != "" {
		line += " ✎"
	}
	if snap.NotifyAt != nil {
		line += " ⏰ " + snap.NotifyAt.In(daykey.Zone()).Format("15:04")
	}
	fmt.Fprintln(out, line)
}

func printDetail(out io.Writer, snap model.Snapshot) {
	fmt.Fprintln(out, theme.LabelValue("id", snap.ID))
	fmt.Fprintln(out, theme.LabelValue("title", snap.Title))
	fmt.Fprintln(out, theme.LabelValue("date", snap.Date))
	fmt.Fprintln(out, theme.LabelValue("progress", fmt.Sprintf("%d%%", snap.Progress)))
	fmt.Fprintln(out, theme.LabelValue("note", orDash(snap.Note)))
	fmt.Fprintln(out, theme.LabelValue("due", formatMoment(snap.DueAt)))
	fmt.Fprintln(out, theme.LabelValue("remind", formatMoment(snap.NotifyAt)))
}

func formatMoment(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return daykey.FormatMoment(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
