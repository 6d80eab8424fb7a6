package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage matching rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesDeactivateCmd())
	cmd.AddCommand(rulesStatsCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List matching rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			filter := service.RuleFilter{}
			if ruleType, _ := cmd.Flags().GetString("type"); ruleType != "" {
				rt := model.RuleType(ruleType)
				filter.RuleType = &rt
			}
			if category, _ := cmd.Flags().GetString("category"); category != "" {
				filter.Category = &category
			}
			activeOnly, _ := cmd.Flags().GetBool("active")
			filter.ActiveOnly = activeOnly

			rules, err := a.store.ListRules(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tCATEGORY\tPATTERN\tWEIGHT\tPRIORITY\tACTIVE\tUSED\tOK")
			for _, rule := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%t\t%d\t%d\n",
					rule.ID, rule.RuleType, rule.Category, rule.Pattern,
					rule.Weight, rule.Priority, rule.IsActive,
					rule.UsageCount, rule.SuccessCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("type", "", "filter by rule type (exact, keyword, pattern)")
	cmd.Flags().String("category", "", "filter by category")
	cmd.Flags().Bool("active", false, "show only active rules")

	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <type> <category> <pattern>",
		Short: "Add a matching rule",
		Long: `Add a matching rule. For exact rules the pattern is the literal
description; for keyword rules a comma-separated keyword list; for pattern
rules a regular expression, validated before it is stored.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, _ := cmd.Flags().GetInt("weight")
			priority, _ := cmd.Flags().GetInt("priority")
			comments, _ := cmd.Flags().GetString("comments")

			rule := &model.MatchingRule{
				RuleType: model.RuleType(args[0]),
				Category: args[1],
				Pattern:  args[2],
				Weight:   weight,
				Priority: priority,
				IsActive: true,
				Comments: comments,
			}
			if err := rule.Validate(); err != nil {
				return err
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.CreateRule(cmd.Context(), rule); err != nil {
				return err
			}

			fmt.Printf("Created rule %d: %s %q -> %s\n", rule.ID, rule.RuleType, rule.Pattern, rule.Category)
			return nil
		},
	}

	cmd.Flags().Int("weight", 85, "rule weight (0-100)")
	cmd.Flags().Int("priority", 100, "rule priority (lower is preferred first)")
	cmd.Flags().String("comments", "", "free-text comments")

	return cmd
}

func rulesDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <rule-id>",
		Short: "Deactivate a matching rule",
		Long: `Mark a rule inactive. Inactive rules are never evaluated but retain
their statistics; rules referenced by match logs are never deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.DeactivateRule(cmd.Context(), ruleID); err != nil {
				return err
			}

			fmt.Printf("Deactivated rule %d\n", ruleID)
			return nil
		},
	}
}

func rulesStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <rule-id>",
		Short: "Show a rule's usage statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.GetRuleStatistics(cmd.Context(), ruleID)
			if err != nil {
				return err
			}

			fmt.Printf("Rule %d: %q -> %s\n", stats.RuleID, stats.Pattern, stats.Category)
			fmt.Printf("  used %d times, %d confirmed (%.1f%% success)\n",
				stats.UsageCount, stats.SuccessCount, stats.SuccessRate)
			if stats.LastUsed != nil {
				fmt.Printf("  last used %s\n", stats.LastUsed.Format("2006-01-02 15:04:05"))
			}
			for _, entry := range stats.RecentLogs {
				fmt.Printf("  %s  %-40s %s (%.1f%%, success=%t)\n",
					entry.Timestamp.Format("2006-01-02"), entry.Description,
					entry.Category, entry.Confidence, entry.Success)
			}
			return nil
		},
	}
}
