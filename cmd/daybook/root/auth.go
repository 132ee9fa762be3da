package root

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/daybook/internal/auth"
	"github.com/nhle/daybook/internal/credential"
	"github.com/nhle/daybook/internal/theme"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the session used for remote sync",
	}
	cmd.AddCommand(newAuthTokenCmd(), newAuthLogoutCmd(), newAuthWhoamiCmd())
	return cmd
}

func newAuthTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [jwt]",
		Short: "Store a session token (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token: %w", err)
				}
				raw = line
			}
			raw = strings.TrimSpace(raw)

			claims, err := auth.Inspect(raw, time.Now())
			if err != nil {
				return err
			}
			if err := (credential.SessionTokens{}).SetSessionToken(raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s signed in as %s\n", theme.Good.Render("✓"), describeClaims(claims))
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (credential.SessionTokens{}).ClearSessionToken(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s signed out\n", theme.Good.Render("✓"))
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := auth.NewSession(credential.SessionTokens{}).Claims(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.LabelValue("user", describeClaims(claims)))
			if !claims.Expiry.IsZero() {
				fmt.Fprintln(out, theme.LabelValue("expires", claims.Expiry.Local().Format(time.RFC1123)))
			}
			return nil
		},
	}
}

func describeClaims(c auth.Claims) string {
	if c.Email != "" {
		return fmt.Sprintf("%s (%s)", c.Email, c.Subject)
	}
	return c.Subject
}
