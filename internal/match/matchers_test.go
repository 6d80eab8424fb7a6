package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/opmatch/internal/model"
)

func exactRule(id int64, pattern, category string) model.MatchingRule {
	return model.MatchingRule{
		ID:       id,
		RuleType: model.RuleTypeExact,
		Category: category,
		Pattern:  pattern,
		Weight:   100,
		Priority: 100,
		IsActive: true,
	}
}

func keywordRule(id int64, keywords, category string, weight int) model.MatchingRule {
	return model.MatchingRule{
		ID:       id,
		RuleType: model.RuleTypeKeyword,
		Category: category,
		Pattern:  keywords,
		Weight:   weight,
		Priority: 100,
		IsActive: true,
	}
}

func patternRule(id int64, pattern, category string, weight, priority int) model.MatchingRule {
	return model.MatchingRule{
		ID:       id,
		RuleType: model.RuleTypePattern,
		Category: category,
		Pattern:  pattern,
		Weight:   weight,
		Priority: priority,
		IsActive: true,
	}
}

func newRuleSet(t *testing.T, rules ...model.MatchingRule) *RuleSet {
	t.Helper()
	return buildRuleSet(rules, nil, 1, 1)
}

func TestMatchExact(t *testing.T) {
	snap := newRuleSet(t, exactRule(1, "agrobazar", "Food"))

	cand, ok := matchExact(snap, "AGROBAZAR")
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)
	assert.Equal(t, model.MethodExact, cand.method)
	assert.InDelta(t, 100.0, cand.confidence, 0.001)

	_, ok = matchExact(snap, "AGROBAZAR SHOP 02")
	assert.False(t, ok)
}

func TestMatchExact_DuplicatePatternsPreferLowerPriority(t *testing.T) {
	learned := exactRule(7, "AGROBAZAR", "Groceries")
	learned.Priority = 0
	snap := newRuleSet(t, exactRule(3, "AGROBAZAR", "Food"), learned)

	cand, ok := matchExact(snap, "AGROBAZAR")
	require.True(t, ok)
	assert.Equal(t, "Groceries", cand.rule.Category)
	assert.Equal(t, int64(7), cand.rule.ID)
}

func TestMatchFuzzy(t *testing.T) {
	snap := newRuleSet(t,
		exactRule(1, "AGROBAZAR", "Food"),
		exactRule(2, "FARMACIA FAMILIEI", "Healthcare"),
	)

	// One edit away from a 10-character target: similarity 90.
	cand, ok := matchFuzzy(snap, "AGROBAZARX", 85)
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)
	assert.Equal(t, model.MethodFuzzy, cand.method)
	assert.InDelta(t, 90.0, cand.confidence, 0.001)
	require.NotNil(t, cand.diagnostics)
	assert.InDelta(t, 90.0, cand.diagnostics.Similarity, 0.001)

	// Below the suggest cutoff: no candidate.
	_, ok = matchFuzzy(snap, "XYZ RANDOM 123", 85)
	assert.False(t, ok)
}

func TestMatchFuzzy_TieBreaksOnPriorityThenID(t *testing.T) {
	a := exactRule(5, "AGROBAZAR", "Food")
	b := exactRule(2, "AGROBAZAq", "Groceries")
	snap := newRuleSet(t, a, b)

	// Both patterns are one edit from the description at equal length.
	cand, ok := matchFuzzy(snap, "AGROBAZAX", 80)
	require.True(t, ok)
	assert.Equal(t, int64(2), cand.rule.ID)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 100.0, similarity("AGROBAZAR", "AGROBAZAR"), 0.001)
	assert.InDelta(t, 90.0, similarity("AGROBAZARX", "AGROBAZAR"), 0.001)
	assert.InDelta(t, 0.0, similarity("", "AGROBAZAR"), 0.001)
	assert.InDelta(t, 0.0, similarity("ABC", ""), 0.001)
}

func TestMatchKeyword(t *testing.T) {
	snap := newRuleSet(t,
		keywordRule(1, "FARMACIA,APOTECA,MEDICAL", "Healthcare", 90),
		keywordRule(2, "AGRO,MARKET,FOOD", "Food", 90),
	)

	// One of three keywords matches: 90 × 1/3 = 30.
	cand, ok := matchKeyword(snap, "FARMACIA MIRON")
	require.True(t, ok)
	assert.Equal(t, "Healthcare", cand.rule.Category)
	assert.InDelta(t, 30.0, cand.confidence, 0.001)
	require.NotNil(t, cand.diagnostics)
	assert.Equal(t, []string{"FARMACIA"}, cand.diagnostics.MatchedKeywords)
	assert.Equal(t, 3, cand.diagnostics.TotalKeywords)

	// Two of three keywords: 90 × 2/3 = 60, beating the one-keyword rule.
	cand, ok = matchKeyword(snap, "AGRO MARKET CENTRAL")
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)
	assert.InDelta(t, 60.0, cand.confidence, 0.001)

	_, ok = matchKeyword(snap, "XYZ RANDOM 123")
	assert.False(t, ok)
}

func TestMatchKeyword_SingleKeywordFullWeight(t *testing.T) {
	snap := newRuleSet(t, keywordRule(1, "FARMACIA", "Healthcare", 90))

	cand, ok := matchKeyword(snap, "FARMACIA MIRON")
	require.True(t, ok)
	assert.InDelta(t, 90.0, cand.confidence, 0.001)
}

func TestMatchPattern(t *testing.T) {
	snap := newRuleSet(t,
		patternRule(1, `.*MARKET.*`, "Food", 75, 100),
		patternRule(2, `^ATM `, "Cash", 80, 100),
	)

	cand, ok := matchPattern(snap, "CITY MARKET 12")
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)
	assert.Equal(t, model.MethodPattern, cand.method)
	assert.InDelta(t, 75.0, cand.confidence, 0.001)

	cand, ok = matchPattern(snap, "ATM WITHDRAWAL 200")
	require.True(t, ok)
	assert.Equal(t, "Cash", cand.rule.Category)

	_, ok = matchPattern(snap, "XYZ RANDOM 123")
	assert.False(t, ok)
}

func TestMatchPattern_CaseInsensitive(t *testing.T) {
	snap := newRuleSet(t,
		patternRule(1, `.*market.*`, "Food", 75, 100),
		patternRule(2, `^taxi \d+$`, "Transport", 75, 100),
	)

	// Descriptions arrive upper-cased; a lowercase-authored expression still
	// fires.
	cand, ok := matchPattern(snap, "CITY MARKET 12")
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)

	cand, ok = matchPattern(snap, "TAXI 14052")
	require.True(t, ok)
	assert.Equal(t, "Transport", cand.rule.Category)
}

func TestMatchPattern_FirstFiringRuleWinsByPriority(t *testing.T) {
	snap := newRuleSet(t,
		patternRule(1, `.*MARKET.*`, "Food", 60, 200),
		patternRule(2, `.*MARKET.*`, "Groceries", 50, 10),
	)

	// Priority order decides, not the weight.
	cand, ok := matchPattern(snap, "CITY MARKET 12")
	require.True(t, ok)
	assert.Equal(t, "Groceries", cand.rule.Category)
	assert.InDelta(t, 50.0, cand.confidence, 0.001)
}

func TestBuildRuleSet_SkipsInvalidRegex(t *testing.T) {
	snap := newRuleSet(t,
		patternRule(1, `[unclosed`, "Broken", 75, 10),
		patternRule(2, `.*MARKET.*`, "Food", 75, 20),
	)

	_, _, patterns := snap.RuleCounts()
	assert.Equal(t, 1, patterns)

	cand, ok := matchPattern(snap, "CITY MARKET 12")
	require.True(t, ok)
	assert.Equal(t, "Food", cand.rule.Category)
}

func TestBuildRuleSet_IgnoresInactiveRules(t *testing.T) {
	inactive := exactRule(1, "AGROBAZAR", "Food")
	inactive.IsActive = false
	snap := newRuleSet(t, inactive)

	_, ok := matchExact(snap, "AGROBAZAR")
	assert.False(t, ok)

	_, ok = matchFuzzy(snap, "AGROBAZARX", 50)
	assert.False(t, ok)
}
