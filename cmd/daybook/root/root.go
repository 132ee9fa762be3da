// Package root wires the daybook command tree.
package root

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
)

const Version = "0.3.0"

// cli holds state shared by every command of one invocation.
type cli struct {
	cfgPath string
	cfg     *model.AppConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "daybook",
		Short:         "A day-by-day todo board",
		Long:          "daybook keeps a board of todos per day, carries unfinished work forward and syncs it to a shared Postgres table.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVar(&c.cfgPath, "config", model.DefaultConfigPath(), "Path to the config file")

	cmd.AddCommand(
		newAddCmd(c),
		newListCmd(c),
		newRenameCmd(c),
		newProgressCmd(c),
		newDoneCmd(c),
		newDetailCmd(c),
		newRmCmd(c),
		newRolloverCmd(c),
		newSyncCmd(c),
		newBoardCmd(c),
		newHabitCmd(c),
		newDiaryCmd(c),
		newTimeLogCmd(c),
		newSettingsCmd(c),
		newAuthCmd(),
	)
	return cmd
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, theme.Bad.Render("✗ "+err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads .env (when present) before the config file so its
// DAYBOOK_* variables take part in the overrides.
func (c *cli) loadConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(c.cfgPath)
	if err != nil {
		return err
	}
	theme.Apply(cfg.Profile.Theme)
	c.cfg = cfg
	return nil
}
