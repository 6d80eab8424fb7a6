package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load seed rules from configuration into the database",
		Long: `Insert the exact, keyword, and pattern rules defined in the config
file's seeds section. Rules are validated before insertion; a seed rule
that fails validation is skipped with a warning.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := initApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			created := 0
			for _, rule := range a.cfg.Seeds.Rules() {
				seedRule := rule
				if err := seedRule.Validate(); err != nil {
					slog.Warn("skipping invalid seed rule",
						"pattern", seedRule.Pattern,
						"error", err)
					continue
				}
				if err := a.store.CreateRule(cmd.Context(), &seedRule); err != nil {
					return fmt.Errorf("failed to insert seed rule %q: %w", seedRule.Pattern, err)
				}
				created++
			}

			fmt.Printf("Seeded %d rules\n", created)
			return nil
		},
	}
}
