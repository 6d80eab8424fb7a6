package match

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

// exactEntry pairs an exact rule with its normalized pattern. The normalized
// patterns double as the comparison corpus for the fuzzy matcher.
type exactEntry struct {
	rule    model.MatchingRule
	pattern string
}

// keywordEntry pairs a keyword rule with its parsed, normalized keywords.
type keywordEntry struct {
	rule     model.MatchingRule
	keywords []string
}

// patternEntry pairs a pattern rule with its compiled expression.
type patternEntry struct {
	re   *regexp.Regexp
	rule model.MatchingRule
}

// RuleSet is an immutable snapshot of the active rules and categories. All
// matching runs against one snapshot, so in-flight classifications never
// observe a partially updated rule set.
type RuleSet struct {
	exactIndex       map[string]*exactEntry
	categories       map[string]model.RuleCategory
	exactFingerprint string
	exactEntries     []exactEntry
	keywordEntries   []keywordEntry
	patternEntries   []patternEntry
	version          uint64
	exactVersion     uint64
}

// Version identifies the full rule population this snapshot was built from.
// It changes on every rule mutation.
func (s *RuleSet) Version() uint64 { return s.version }

// ExactVersion identifies the exact-rule population only. Fuzzy results are
// computed against the exact-rule corpus, so cached fuzzy results keyed to an
// older ExactVersion are stale.
func (s *RuleSet) ExactVersion() uint64 { return s.exactVersion }

// Categories returns the categories known to this snapshot, keyed by name.
func (s *RuleSet) Categories() map[string]model.RuleCategory { return s.categories }

// RuleCounts reports how many active rules of each type the snapshot holds.
func (s *RuleSet) RuleCounts() (exact, keyword, pattern int) {
	return len(s.exactEntries), len(s.keywordEntries), len(s.patternEntries)
}

// Repository maintains the current RuleSet snapshot, refreshed from the rule
// store. Mutations rebuild a new snapshot and atomically swap it in
// (copy-on-write), so readers never block and never see partial state.
type Repository struct {
	store   service.RuleStore
	current atomic.Pointer[RuleSet]

	// mu serializes refreshes so version counters advance consistently.
	mu           sync.Mutex
	version      uint64
	exactVersion uint64
}

// NewRepository creates a repository backed by the given store. Call Refresh
// before first use.
func NewRepository(store service.RuleStore) *Repository {
	r := &Repository{store: store}
	r.current.Store(buildRuleSet(nil, nil, 0, 0))
	return r
}

// Snapshot returns the current immutable rule set.
func (r *Repository) Snapshot() *RuleSet {
	return r.current.Load()
}

// Refresh rebuilds the snapshot from the store and swaps it in. The snapshot
// version is always advanced; the exact-rule version advances only when the
// exact-rule population actually changed.
func (r *Repository) Refresh(ctx context.Context) error {
	// The store reads happen under mu too: a snapshot must never be
	// published with a version newer than the rule population it was built
	// from.
	r.mu.Lock()
	defer r.mu.Unlock()

	rules, err := r.store.ListRules(ctx, service.RuleFilter{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("failed to load active rules: %w", err)
	}

	categories, err := r.store.ListCategories(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	old := r.current.Load()
	r.version++

	next := buildRuleSet(rules, categories, r.version, r.exactVersion)
	if next.exactFingerprint != old.exactFingerprint {
		r.exactVersion++
		next.exactVersion = r.exactVersion
	}

	r.current.Store(next)

	slog.Debug("rule snapshot refreshed",
		"version", next.version,
		"exact_version", next.exactVersion,
		"exact_rules", len(next.exactEntries),
		"keyword_rules", len(next.keywordEntries),
		"pattern_rules", len(next.patternEntries))

	return nil
}

func buildRuleSet(rules []model.MatchingRule, categories []model.RuleCategory, version, exactVersion uint64) *RuleSet {
	s := &RuleSet{
		exactIndex:   make(map[string]*exactEntry),
		categories:   make(map[string]model.RuleCategory, len(categories)),
		version:      version,
		exactVersion: exactVersion,
	}

	for _, cat := range categories {
		s.categories[cat.Name] = cat
	}

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		switch rule.RuleType {
		case model.RuleTypeExact:
			s.exactEntries = append(s.exactEntries, exactEntry{
				rule:    rule,
				pattern: Normalize(rule.Pattern),
			})
		case model.RuleTypeKeyword:
			keywords := rule.Keywords()
			for i, kw := range keywords {
				keywords[i] = Normalize(kw)
			}
			if len(keywords) == 0 {
				continue
			}
			s.keywordEntries = append(s.keywordEntries, keywordEntry{
				rule:     rule,
				keywords: keywords,
			})
		case model.RuleTypePattern:
			// Descriptions are normalized to upper case, so pattern rules
			// match case-insensitively regardless of how they were authored.
			re, err := regexp.Compile("(?i)" + rule.Pattern)
			if err != nil {
				// Validated at creation time; a rule that still fails here
				// is skipped, never fatal.
				slog.Warn("skipping pattern rule with invalid regex",
					"rule_id", rule.ID,
					"pattern", rule.Pattern,
					"error", err)
				continue
			}
			s.patternEntries = append(s.patternEntries, patternEntry{
				rule: rule,
				re:   re,
			})
		}
	}

	// Exact rules: on duplicate normalized patterns the preferred rule wins
	// (lower priority value, then lower id).
	sort.SliceStable(s.exactEntries, func(i, j int) bool {
		a, b := s.exactEntries[i], s.exactEntries[j]
		if a.rule.Priority != b.rule.Priority {
			return a.rule.Priority < b.rule.Priority
		}
		return a.rule.ID < b.rule.ID
	})
	for i := range s.exactEntries {
		entry := &s.exactEntries[i]
		if _, exists := s.exactIndex[entry.pattern]; !exists {
			s.exactIndex[entry.pattern] = entry
		}
	}

	// Pattern rules fire in ascending priority order; priority is the
	// tie-break, not a score comparison.
	sort.SliceStable(s.patternEntries, func(i, j int) bool {
		a, b := s.patternEntries[i], s.patternEntries[j]
		if a.rule.Priority != b.rule.Priority {
			return a.rule.Priority < b.rule.Priority
		}
		return a.rule.ID < b.rule.ID
	})

	s.exactFingerprint = exactFingerprint(s.exactEntries)

	return s
}

// exactFingerprint identifies the exact-rule population so the repository can
// tell whether a refresh touched it.
func exactFingerprint(entries []exactEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%d|%s|%s|%d|%s\n",
			e.rule.ID, e.pattern, e.rule.Category, e.rule.Priority,
			e.rule.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000000000"))
	}
	return sb.String()
}
