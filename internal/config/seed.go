package config

import (
	"sort"
	"strings"

	"github.com/ledgerline/opmatch/internal/model"
)

// seedCreator marks rules loaded from seed configuration.
const seedCreator = "seed"

// defaultSeedPriority leaves room for learned rules (priority 0) to be
// preferred first.
const defaultSeedPriority = 100

// Rules converts the seed configuration into matching rules ready for the
// store. Exact seeds are emitted in pattern order so repeated loads are
// deterministic.
func (s SeedConfig) Rules() []model.MatchingRule {
	rules := make([]model.MatchingRule, 0, len(s.Exact)+len(s.Keywords)+len(s.Patterns))

	patterns := make([]string, 0, len(s.Exact))
	for pattern := range s.Exact {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	for _, pattern := range patterns {
		rules = append(rules, model.MatchingRule{
			RuleType:  model.RuleTypeExact,
			Category:  s.Exact[pattern],
			Pattern:   pattern,
			Weight:    100,
			Priority:  defaultSeedPriority,
			IsActive:  true,
			CreatedBy: seedCreator,
		})
	}

	for _, seed := range s.Keywords {
		priority := defaultSeedPriority
		if seed.Priority != nil {
			priority = *seed.Priority
		}
		rules = append(rules, model.MatchingRule{
			RuleType:  model.RuleTypeKeyword,
			Category:  seed.Category,
			Pattern:   strings.Join(seed.Keywords, ","),
			Weight:    seed.Weight,
			Priority:  priority,
			IsActive:  true,
			CreatedBy: seedCreator,
		})
	}

	for _, seed := range s.Patterns {
		priority := defaultSeedPriority
		if seed.Priority != nil {
			priority = *seed.Priority
		}
		rules = append(rules, model.MatchingRule{
			RuleType:  model.RuleTypePattern,
			Category:  seed.Category,
			Pattern:   seed.Pattern,
			Weight:    seed.Weight,
			Priority:  priority,
			IsActive:  true,
			CreatedBy: seedCreator,
		})
	}

	return rules
}
