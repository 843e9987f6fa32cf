package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newIconsCmd(app *App) *cobra.Command {
	var (
		category string
		search   string
	)

	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Browse the icon catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(app)
			catalog, err := client.Icons(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			// Filter client-side: the catalog is one fetch per session
			// anyway, and the filters compose.
			if search != "" {
				q := strings.ToLower(search)
				filtered := make(map[string][]iconHit)
				for cat, entries := range catalog {
					for _, e := range entries {
						if strings.Contains(strings.ToLower(e.Name), q) ||
							strings.Contains(strings.ToLower(e.Description), q) {
							filtered[cat] = append(filtered[cat], iconHit{e.Name, e.Description})
						}
					}
				}
				return printIcons(cmd, app, filtered, category)
			}

			all := make(map[string][]iconHit)
			for cat, entries := range catalog {
				for _, e := range entries {
					all[cat] = append(all[cat], iconHit{e.Name, e.Description})
				}
			}
			return printIcons(cmd, app, all, category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only this category")
	cmd.Flags().StringVar(&search, "search", "", "Substring filter on icon name and description")
	return cmd
}

type iconHit struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func printIcons(cmd *cobra.Command, app *App, catalog map[string][]iconHit, category string) error {
	if category != "" && !strings.EqualFold(category, "all") {
		only := map[string][]iconHit{}
		if entries, ok := catalog[category]; ok {
			only[category] = entries
		}
		catalog = only
	}

	if app.JSON {
		return writeOut(cmd, app, map[string]any{"data": map[string]any{"categories": catalog}})
	}

	cats := make([]string, 0, len(catalog))
	for c := range catalog {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	if len(cats) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no icons match")
		return nil
	}

	head := color.New(color.Bold, color.Underline)
	meta := color.New(color.Faint)
	for _, c := range cats {
		fmt.Fprintln(cmd.OutOrStdout(), head.Sprint(c))
		for _, e := range catalog[c] {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %s\n", e.Name, meta.Sprint(e.Description))
		}
	}
	return nil
}
