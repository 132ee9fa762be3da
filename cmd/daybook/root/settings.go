package root

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
)

// settingKeys lists the profile settings `settings set` accepts.
var settingKeys = []string{"nickname", "theme", "push", "daily-reminder"}

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change profile settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the profile settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				printProfile(cmd, c.cfg.Profile)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Change one setting (" + strings.Join(settingKeys, ", ") + ")",
			Args:      cobra.MinimumNArgs(1),
			ValidArgs: settingKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := applySetting(&c.cfg.Profile, args[0], strings.Join(args[1:], " ")); err != nil {
					return err
				}
				if err := model.SaveConfig(c.cfgPath, c.cfg); err != nil {
					return err
				}
				printProfile(cmd, c.cfg.Profile)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default profile settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c.cfg.ResetProfile()
				if err := model.SaveConfig(c.cfgPath, c.cfg); err != nil {
					return err
				}
				printProfile(cmd, c.cfg.Profile)
				return nil
			},
		},
	)
	return cmd
}

// applySetting validates and stores one profile value. Field constraints
// are checked again by SaveConfig.
func applySetting(p *model.ProfileConfig, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "nickname":
		p.Nickname = value
	case "theme":
		if value != "light" && value != "dark" {
			return fmt.Errorf("theme must be light or dark, got %q", value)
		}
		p.Theme = value
	case "push":
		on, err := parseSwitch(value)
		if err != nil {
			return err
		}
		p.PushEnabled = on
	case "daily-reminder":
		p.DailyReminderTime = value
	default:
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(settingKeys, ", "))
	}
	return nil
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%q is not on or off", v)
	}
	return b, nil
}

func printProfile(cmd *cobra.Command, p model.ProfileConfig) {
	out := cmd.OutOrStdout()
	push := "off"
	if p.PushEnabled {
		push = "on"
	}
	fmt.Fprintln(out, theme.LabelValue("nickname", orDash(p.Nickname)))
	fmt.Fprintln(out, theme.LabelValue("theme", p.Theme))
	fmt.Fprintln(out, theme.LabelValue("push", push))
	fmt.Fprintln(out, theme.LabelValue("daily-reminder", orDash(p.DailyReminderTime)))
}
