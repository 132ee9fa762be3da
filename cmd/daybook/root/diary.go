package root

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/store"
	"github.com/nhle/daybook/internal/theme"
)

func newDiaryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "Write a daily journal entry",
	}
	cmd.AddCommand(newDiaryShowCmd(c), newDiarySetCmd(c), newDiaryRmCmd(c))
	return cmd
}

func newDiaryShowCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the entry of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				entry, err := db.GetDiary(ctx, day)
				if err != nil {
					return err
				}
				if entry == nil {
					fmt.Fprintln(cmd.OutOrStdout(), theme.DimmedStyle.Render("no entry for "+day))
					return nil
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, theme.HeaderStyle.Render(day))
				fmt.Fprintln(out, entry.Text)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	return cmd
}

func newDiarySetCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "set [text|-]",
		Short: "Replace the entry of a day (\"-\" reads stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(b)
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				entry, err := db.SetDiary(ctx, day, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s saved %d character(s) for %s\n",
					theme.Good.Render("✓"), len([]rune(entry.Text)), day)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	return cmd
}

func newDiaryRmCmd(c *cli) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete the entry of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dayOrToday(date)
			if err != nil {
				return err
			}
			return c.withDB(func(ctx context.Context, db *store.SQLiteStore) error {
				if err := db.DeleteDiary(ctx, day); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed the entry for %s\n", theme.Good.Render("✓"), day)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), default today")
	return cmd
}
