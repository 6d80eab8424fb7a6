package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerline/opmatch/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage rule categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesStatsCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rule categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			activeOnly, _ := cmd.Flags().GetBool("active")
			categories, err := a.store.ListCategories(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tCOLOR\tACTIVE")
			for _, category := range categories {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n",
					category.ID, category.Name, category.Description,
					category.Color, category.IsActive)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Bool("active", false, "show only active categories")

	return cmd
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a rule category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			color, _ := cmd.Flags().GetString("color")

			category := &model.RuleCategory{
				Name:        args[0],
				Description: description,
				Color:       color,
				IsActive:    true,
			}
			if err := category.Validate(); err != nil {
				return err
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.CreateCategory(cmd.Context(), category); err != nil {
				return err
			}

			fmt.Printf("Created category %d: %s\n", category.ID, category.Name)
			return nil
		},
	}

	cmd.Flags().String("description", "", "category description")
	cmd.Flags().String("color", "", "hex display color, e.g. #33AA55")

	return cmd
}

func categoriesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <name>",
		Short: "Show aggregate statistics for a category's rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.GetCategoryStatistics(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Category %s: %d rules (%d active)\n",
				stats.Category, stats.TotalRules, stats.ActiveRules)
			fmt.Printf("  total usage %d, confirmed %d (%.1f%% success)\n",
				stats.TotalUsage, stats.TotalSuccess, stats.SuccessRate)
			return nil
		},
	}
}
