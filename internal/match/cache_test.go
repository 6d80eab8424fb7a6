package match

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/opmatch/internal/model"
)

func fuzzyResult(category string, confidence float64) model.MatchResult {
	return model.MatchResult{
		Category:   category,
		Confidence: confidence,
		Method:     model.MethodFuzzy,
		Decision:   model.DecisionSuggest,
	}
}

func keywordResult(category string, confidence float64) model.MatchResult {
	return model.MatchResult{
		Category:   category,
		Confidence: confidence,
		Method:     model.MethodKeyword,
		Decision:   model.DecisionAuto,
	}
}

func TestResultCache_PutGet(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	snap := buildRuleSet(nil, nil, 1, 1)

	cache.Put("FARMACIA MIRON", keywordResult("Healthcare", 90), snap)
	cache.Put("AGROBAZARX", fuzzyResult("Food", 90), snap)

	got, ok := cache.Get("FARMACIA MIRON", snap)
	require.True(t, ok)
	assert.Equal(t, "Healthcare", got.Category)

	got, ok = cache.Get("AGROBAZARX", snap)
	require.True(t, ok)
	assert.Equal(t, model.MethodFuzzy, got.Method)

	_, ok = cache.Get("UNKNOWN", snap)
	assert.False(t, ok)
}

func TestResultCache_Partitions(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	snap := buildRuleSet(nil, nil, 1, 1)

	cache.Put("A", keywordResult("Food", 80), snap)
	cache.Put("B", fuzzyResult("Food", 90), snap)
	cache.Put("C", model.NoMatch(), snap)

	stable, fuzzy := cache.Len()
	assert.Equal(t, 1, stable)
	assert.Equal(t, 2, fuzzy)
}

func TestResultCache_LRUEviction(t *testing.T) {
	cache, err := NewResultCache(2, 2)
	require.NoError(t, err)

	snap := buildRuleSet(nil, nil, 1, 1)

	for i := 0; i < 3; i++ {
		cache.Put(fmt.Sprintf("DESC %d", i), keywordResult("Food", 80), snap)
	}

	// Oldest entry is evicted once capacity is exceeded.
	_, ok := cache.Get("DESC 0", snap)
	assert.False(t, ok)
	_, ok = cache.Get("DESC 2", snap)
	assert.True(t, ok)

	stable, _ := cache.Len()
	assert.Equal(t, 2, stable)
}

func TestResultCache_StaleStableEntryIsMiss(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	oldSnap := buildRuleSet(nil, nil, 1, 1)
	cache.Put("FARMACIA MIRON", keywordResult("Healthcare", 90), oldSnap)

	// Any rule mutation advances the rule-set version; the stale entry
	// self-heals into a miss.
	newSnap := buildRuleSet(nil, nil, 2, 1)
	_, ok := cache.Get("FARMACIA MIRON", newSnap)
	assert.False(t, ok)

	// The stale entry was also evicted.
	stable, _ := cache.Len()
	assert.Zero(t, stable)
}

func TestResultCache_FuzzyEntrySurvivesUnrelatedMutation(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	oldSnap := buildRuleSet(nil, nil, 1, 1)
	cache.Put("AGROBAZARX", fuzzyResult("Food", 90), oldSnap)

	// A mutation that does not touch exact rules leaves the exact-rule
	// corpus, and therefore cached fuzzy results, intact.
	newSnap := buildRuleSet(nil, nil, 2, 1)
	_, ok := cache.Get("AGROBAZARX", newSnap)
	assert.True(t, ok)

	// An exact-rule mutation invalidates it.
	exactChanged := buildRuleSet(nil, nil, 3, 2)
	_, ok = cache.Get("AGROBAZARX", exactChanged)
	assert.False(t, ok)
}

func TestResultCache_NoMatchEntryTracksFullRuleSet(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	oldSnap := buildRuleSet(nil, nil, 1, 1)
	cache.Put("XYZ RANDOM 123", model.NoMatch(), oldSnap)

	// Any new rule could turn a no-match into a match, so no-match entries
	// go stale on any mutation.
	newSnap := buildRuleSet(nil, nil, 2, 1)
	_, ok := cache.Get("XYZ RANDOM 123", newSnap)
	assert.False(t, ok)
}

func TestResultCache_Remove(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	snap := buildRuleSet(nil, nil, 1, 1)
	cache.Put("A", keywordResult("Food", 80), snap)
	cache.Put("A", fuzzyResult("Food", 90), snap)

	cache.Remove("A")

	_, ok := cache.Get("A", snap)
	assert.False(t, ok)
}

func TestResultCache_Purge(t *testing.T) {
	cache, err := NewResultCache(8, 8)
	require.NoError(t, err)

	snap := buildRuleSet(nil, nil, 1, 1)
	cache.Put("A", keywordResult("Food", 80), snap)
	cache.Put("B", fuzzyResult("Food", 90), snap)

	cache.Purge()

	stable, fuzzy := cache.Len()
	assert.Zero(t, stable)
	assert.Zero(t, fuzzy)
}
