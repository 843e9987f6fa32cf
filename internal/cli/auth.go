package cli

import (
	"bufio"
	"fmt"
	"strings"

	"panel-cli/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := password
			if pw == "" {
				fmt.Fprint(cmd.OutOrStdout(), "password: ")
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					pw = strings.TrimSpace(sc.Text())
				}
			}
			if pw == "" {
				return writeErr(cmd, fmt.Errorf("password required"))
			}

			client := newClient(app)
			if err := client.Login(cmd.Context(), pw); err != nil {
				return writeErr(cmd, err)
			}
			if tok := client.SessionToken(); tok != "" {
				if err := config.SaveSession("", tok); err != nil {
					return writeErr(cmd, fmt.Errorf("save session: %w", err))
				}
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"authenticated": true}})
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("logged in"))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (prompts when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearSession(""); err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"authenticated": false}})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(app)
			authed, err := client.AuthStatus(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"server":        app.cfg.ServerURL,
					"authenticated": authed,
				}})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "server: %s\n", app.cfg.ServerURL)
			if authed {
				fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", color.GreenString("authenticated"))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", color.New(color.Faint).Sprint("not logged in"))
			}
			return nil
		},
	}
}
