package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <description> <rule-id>",
		Short: "Confirm a classification made by a rule",
		Long: `Record that the category assigned by the given rule was correct.
The rule's usage and success counters advance and its last-used time is
stamped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[1], err)
			}

			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.recorder.Confirm(cmd.Context(), args[0], ruleID); err != nil {
				return err
			}

			fmt.Printf("Confirmed rule %d for %q\n", ruleID, args[0])
			return nil
		},
	}
}

func correctCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <description> <category>",
		Short: "Correct a misclassification",
		Long: `Record that the engine chose the wrong category for a description and
teach it the right one. A new exact rule is created so the same
description classifies correctly next time.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			rule, err := a.recorder.Correct(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("Learned rule %d: %q -> %s\n", rule.ID, rule.Pattern, rule.Category)
			return nil
		},
	}
}
