package match

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ledgerline/opmatch/internal/model"
)

// cacheEntry is a memoized match result together with the rule-set version it
// was computed against. An entry whose version no longer matches the current
// snapshot is treated as a miss.
type cacheEntry struct {
	result  model.MatchResult
	version uint64
}

// ResultCache memoizes engine outputs per normalized description. It keeps
// two bounded LRU partitions: a stable partition for exact, keyword, and
// pattern results, and a fuzzy partition for fuzzy and no-match results.
// Fuzzy results depend on the full exact-rule corpus, so their entries are
// keyed to the snapshot's exact-rule version and go stale whenever an exact
// rule is added, removed, or edited. Stable entries are keyed to the overall
// rule-set version.
type ResultCache struct {
	stable *lru.Cache[string, cacheEntry]
	fuzzy  *lru.Cache[string, cacheEntry]
}

// DefaultStableCacheSize is the default stable partition capacity.
const DefaultStableCacheSize = 2048

// DefaultFuzzyCacheSize is the default fuzzy partition capacity. Fuzzy
// results are the costliest to recompute, so the partition is sized
// generously relative to stable results.
const DefaultFuzzyCacheSize = 2048

// NewResultCache creates a cache with the given per-partition capacities.
func NewResultCache(stableSize, fuzzySize int) (*ResultCache, error) {
	if stableSize <= 0 {
		stableSize = DefaultStableCacheSize
	}
	if fuzzySize <= 0 {
		fuzzySize = DefaultFuzzyCacheSize
	}

	stable, err := lru.New[string, cacheEntry](stableSize)
	if err != nil {
		return nil, err
	}

	fuzzy, err := lru.New[string, cacheEntry](fuzzySize)
	if err != nil {
		return nil, err
	}

	return &ResultCache{stable: stable, fuzzy: fuzzy}, nil
}

// Get returns the cached result for a normalized description, if present and
// computed against the current rule-set version. A stale hit is self-healing:
// it is evicted and reported as a miss.
func (c *ResultCache) Get(desc string, snap *RuleSet) (model.MatchResult, bool) {
	if entry, ok := c.stable.Get(desc); ok {
		if entry.version == snap.Version() {
			return entry.result, true
		}
		c.stable.Remove(desc)
	}

	if entry, ok := c.fuzzy.Get(desc); ok {
		if entry.version == c.fuzzyVersion(entry.result, snap) {
			return entry.result, true
		}
		c.fuzzy.Remove(desc)
	}

	return model.MatchResult{}, false
}

// Put stores a result in the partition appropriate for its winning method.
func (c *ResultCache) Put(desc string, result model.MatchResult, snap *RuleSet) {
	switch result.Method {
	case model.MethodExact, model.MethodKeyword, model.MethodPattern:
		c.stable.Add(desc, cacheEntry{result: result, version: snap.Version()})
	default:
		// Fuzzy results and no-match results could both flip when the rule
		// corpus changes; they share the costlier partition.
		c.fuzzy.Add(desc, cacheEntry{result: result, version: c.fuzzyVersion(result, snap)})
	}
}

// fuzzyVersion picks the version a fuzzy-partition entry is bound to: fuzzy
// results track the exact-rule corpus, no-match results track the full rule
// set (any new rule could turn them into a match).
func (c *ResultCache) fuzzyVersion(result model.MatchResult, snap *RuleSet) uint64 {
	if result.Method == model.MethodFuzzy {
		return snap.ExactVersion()
	}
	return snap.Version()
}

// Remove drops any cached result for a normalized description from both
// partitions. Used when a correction mints a new exact rule for it.
func (c *ResultCache) Remove(desc string) {
	c.stable.Remove(desc)
	c.fuzzy.Remove(desc)
}

// Purge empties both partitions.
func (c *ResultCache) Purge() {
	c.stable.Purge()
	c.fuzzy.Purge()
}

// Len reports the entry count of each partition.
func (c *ResultCache) Len() (stable, fuzzy int) {
	return c.stable.Len(), c.fuzzy.Len()
}
