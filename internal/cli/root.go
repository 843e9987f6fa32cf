package cli

import (
	"fmt"
	"os"
	"strings"

	"panel-cli/internal/api"
	"panel-cli/internal/config"
	"panel-cli/internal/format"
	"panel-cli/internal/panel"
	"panel-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ServerURL  string
	View       string
	PrettyJSON bool
	JSON       bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "panel",
		Short:        "Service dashboard CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the interactive panel
  panel

  # Scriptable commands
  panel cards list
  panel login && panel cards add --name Grafana --icon grafana --url http://grafana:3000

  # Run the server the clients talk to
  PANEL_ADMIN_PASSWORD=changeme panel serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		if app.ServerURL != "" {
			cfg.ServerURL = strings.TrimRight(strings.TrimSpace(app.ServerURL), "/")
		}
		if app.View != "" {
			cfg.View = app.View
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("PANEL_URL", ""), "Panel server base URL (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.View, "view", "", "Startup view mode (grid|list)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of human-readable output")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newCardsCmd(app))
	cmd.AddCommand(newIconsCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newServeCmd())

	return cmd
}

func runTUI(app *App) error {
	client := newClient(app)
	mode := panel.ViewGrid
	if app.cfg.View == "list" {
		mode = panel.ViewList
	}
	return tui.Run(client, mode)
}

// newClient builds the API client, seeding it with any session token a
// previous `panel login` saved.
func newClient(app *App) *api.Client {
	c := api.NewClient(app.cfg.ServerURL)
	if tok := config.LoadSession(""); tok != "" {
		c.SetSessionToken(tok)
	}
	return c
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
