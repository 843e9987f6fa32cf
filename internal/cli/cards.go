package cli

import (
	"fmt"

	"panel-cli/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage the cards on the panel",
	}
	cmd.AddCommand(newCardsListCmd(app))
	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsEditCmd(app))
	cmd.AddCommand(newCardsDeleteCmd(app))
	cmd.AddCommand(newCardsReorderCmd(app))
	return cmd
}

func newCardsListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(app)
			cards, err := client.ListCards(cmd.Context(), search)
			if err != nil {
				return writeErr(cmd, err)
			}

			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"items": cards}})
			}

			if len(cards) == 0 {
				if search != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "no cards match %q\n", search)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "no cards")
				}
				return nil
			}

			name := color.New(color.Bold)
			meta := color.New(color.Faint)
			for _, c := range cards {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s  %s\n", c.Order, name.Sprint(c.Name), c.URL)
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", meta.Sprintf("id=%s icon=%s", c.ID, c.Icon))
				if c.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", meta.Sprint(c.Description))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Substring filter on name and description")
	return cmd
}

func newCardsAddCmd(app *App) *cobra.Command {
	var fields model.CardFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(app)
			card, err := client.CreateCard(cmd.Context(), fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"card": card}})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", color.New(color.Bold).Sprint(card.Name), card.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&fields.Name, "name", "", "Card name (required, unique)")
	cmd.Flags().StringVar(&fields.Icon, "icon", "", "Icon name from the catalog (required)")
	cmd.Flags().StringVar(&fields.URL, "url", "", "Service URL (required)")
	cmd.Flags().StringVar(&fields.Description, "description", "", "Optional description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("icon")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newCardsEditCmd(app *App) *cobra.Command {
	var (
		name, icon, url, description string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a card; omitted flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			client := newClient(app)

			cards, err := client.ListCards(cmd.Context(), "")
			if err != nil {
				return writeErr(cmd, err)
			}
			var current *model.Card
			for i := range cards {
				if cards[i].ID == id {
					current = &cards[i]
					break
				}
			}
			if current == nil {
				return writeErr(cmd, fmt.Errorf("card not found: %s", id))
			}

			fields := model.CardFields{
				Name:        current.Name,
				Icon:        current.Icon,
				URL:         current.URL,
				Description: current.Description,
			}
			if cmd.Flags().Changed("name") {
				fields.Name = name
			}
			if cmd.Flags().Changed("icon") {
				fields.Icon = icon
			}
			if cmd.Flags().Changed("url") {
				fields.URL = url
			}
			if cmd.Flags().Changed("description") {
				fields.Description = description
			}

			card, err := client.UpdateCard(cmd.Context(), id, fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"card": card}})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", color.New(color.Bold).Sprint(card.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&icon, "icon", "", "New icon")
	cmd.Flags().StringVar(&url, "url", "", "New URL")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newCardsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(app)
			if err := client.DeleteCard(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newCardsReorderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <id> [id...]",
		Short: "Reorder cards; positions 1..N follow the argument order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders := make([]model.OrderEntry, len(args))
			for i, id := range args {
				orders[i] = model.OrderEntry{ID: id, Order: i + 1}
			}

			client := newClient(app)
			if err := client.ReorderCards(cmd.Context(), orders); err != nil {
				return writeErr(cmd, err)
			}
			if app.JSON {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"reordered": len(orders)}})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reordered %d cards\n", len(orders))
			return nil
		},
	}
	return cmd
}
