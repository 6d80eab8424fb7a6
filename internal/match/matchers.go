package match

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ledgerline/opmatch/internal/model"
)

// candidate is a single matcher's scored proposal for a description.
type candidate struct {
	diagnostics *model.Diagnostics
	rule        *model.MatchingRule
	method      model.MatchMethod
	confidence  float64
}

func (c candidate) result(decision model.Decision) model.MatchResult {
	ruleID := c.rule.ID
	return model.MatchResult{
		Category:      c.rule.Category,
		Confidence:    c.confidence,
		Method:        c.method,
		MatchedRuleID: &ruleID,
		Decision:      decision,
		Diagnostics:   c.diagnostics,
	}
}

// matchExact looks the normalized description up against the active exact
// rules. A hit always carries confidence 100 and wins over every other
// matcher.
func matchExact(s *RuleSet, desc string) (candidate, bool) {
	entry, ok := s.exactIndex[desc]
	if !ok {
		return candidate{}, false
	}

	return candidate{
		rule:       &entry.rule,
		method:     model.MethodExact,
		confidence: 100,
		diagnostics: &model.Diagnostics{
			MatchedPattern: entry.pattern,
		},
	}, true
}

// matchFuzzy scores the description against every exact rule's normalized
// pattern using normalized Levenshtein similarity. It exists to catch near
// variants of known merchants. Results below minSimilarity are discarded.
func matchFuzzy(s *RuleSet, desc string, minSimilarity float64) (candidate, bool) {
	var (
		best     *exactEntry
		bestSim  float64
		haveBest bool
	)

	for i := range s.exactEntries {
		entry := &s.exactEntries[i]
		sim := similarity(desc, entry.pattern)
		if sim < minSimilarity {
			continue
		}

		if !haveBest || sim > bestSim || (sim == bestSim && preferRule(&entry.rule, &best.rule)) {
			best = entry
			bestSim = sim
			haveBest = true
		}
	}

	if !haveBest {
		return candidate{}, false
	}

	return candidate{
		rule:       &best.rule,
		method:     model.MethodFuzzy,
		confidence: bestSim,
		diagnostics: &model.Diagnostics{
			MatchedPattern: best.pattern,
			Similarity:     bestSim,
		},
	}, true
}

// similarity computes 100 × (1 − editDistance/maxLen), clamped to [0,100].
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}

	dist := levenshtein.ComputeDistance(a, b)
	sim := 100 * (1 - float64(dist)/float64(maxLen))

	return clampConfidence(sim)
}

// matchKeyword scores each keyword rule by its weight scaled by the fraction
// of its keywords found as substrings of the description. A rule with no
// matching keyword contributes nothing.
func matchKeyword(s *RuleSet, desc string) (candidate, bool) {
	var (
		best        *keywordEntry
		bestScore   float64
		bestMatched []string
		haveBest    bool
	)

	for i := range s.keywordEntries {
		entry := &s.keywordEntries[i]

		var matched []string
		for _, kw := range entry.keywords {
			if strings.Contains(desc, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		score := float64(entry.rule.Weight) * float64(len(matched)) / float64(len(entry.keywords))
		score = clampConfidence(score)

		if !haveBest || score > bestScore || (score == bestScore && preferRule(&entry.rule, &best.rule)) {
			best = entry
			bestScore = score
			bestMatched = matched
			haveBest = true
		}
	}

	if !haveBest {
		return candidate{}, false
	}

	return candidate{
		rule:       &best.rule,
		method:     model.MethodKeyword,
		confidence: bestScore,
		diagnostics: &model.Diagnostics{
			MatchedKeywords: bestMatched,
			TotalKeywords:   len(best.keywords),
		},
	}, true
}

// matchPattern evaluates pattern rules in ascending priority order; the first
// rule whose expression matches wins and contributes its weight as
// confidence. A rule that misbehaves at evaluation is skipped, never fatal.
func matchPattern(s *RuleSet, desc string) (candidate, bool) {
	for i := range s.patternEntries {
		entry := &s.patternEntries[i]

		matched, err := safeMatch(entry.re, desc)
		if err != nil {
			slog.Warn("pattern rule failed during evaluation",
				"rule_id", entry.rule.ID,
				"pattern", entry.rule.Pattern,
				"error", err)
			continue
		}
		if !matched {
			continue
		}

		return candidate{
			rule:       &entry.rule,
			method:     model.MethodPattern,
			confidence: clampConfidence(float64(entry.rule.Weight)),
			diagnostics: &model.Diagnostics{
				MatchedPattern: entry.rule.Pattern,
			},
		}, true
	}

	return candidate{}, false
}

// safeMatch evaluates a regex against a description, converting a panic in
// the regexp engine into a rule-level error.
func safeMatch(re *regexp.Regexp, desc string) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("regex evaluation panicked: %v", r)
		}
	}()
	return re.MatchString(desc), nil
}

// preferRule reports whether rule a should win a confidence tie over rule b:
// lower priority value first, then lower id.
func preferRule(a, b *model.MatchingRule) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
