package cli

import (
	"fmt"
	"os"
	"strings"

	"panel-cli/internal/docs"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show the built-in documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				if app.JSON {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": topics}})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "topics:")
				for _, t := range topics {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", t.Name, t.Title)
				}
				return nil
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `panel docs` to list topics)", topic))
			}

			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}

			out, err := renderMarkdown(body)
			if err != nil {
				// Unrenderable is not unreadable; fall back to the source.
				_, werr := fmt.Fprint(cmd.OutOrStdout(), body)
				return werr
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown without rendering")
	return cmd
}

// renderMarkdown renders a docs topic for the terminal. The style is fixed
// rather than auto-detected: WithAutoStyle can block on terminal queries
// in some setups.
func renderMarkdown(md string) (string, error) {
	style := "dark"
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		style = "notty"
	} else if !termenv.HasDarkBackground() {
		style = "light"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
