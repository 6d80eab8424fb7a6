package match

import (
	"log/slog"
	"sync"

	"github.com/ledgerline/opmatch/internal/model"
)

// methodPrecedence orders candidate methods for confidence ties: fuzzy beats
// keyword beats pattern.
var methodPrecedence = map[model.MatchMethod]int{
	model.MethodFuzzy:   0,
	model.MethodKeyword: 1,
	model.MethodPattern: 2,
}

// Config holds engine configuration.
type Config struct {
	Thresholds Thresholds
	Workers    int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Workers:    4,
	}
}

// Engine orchestrates the four matchers in fixed precedence order, applies
// the threshold policy, and memoizes results. Classification is a pure
// CPU-bound computation over the current rule snapshot; independent
// descriptions may be classified concurrently.
type Engine struct {
	repo       *Repository
	cache      *ResultCache
	thresholds Thresholds
	workers    int
}

// NewEngine creates an engine over the given repository and cache.
func NewEngine(repo *Repository, cache *ResultCache, cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	return &Engine{
		repo:       repo,
		cache:      cache,
		thresholds: cfg.Thresholds,
		workers:    workers,
	}
}

// Thresholds returns the engine's threshold configuration.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Classify classifies one raw description. Empty or whitespace-only input is
// a defined no-match, not an error; it runs no matcher and writes no cache
// entry.
func (e *Engine) Classify(description string) model.MatchResult {
	desc := Normalize(description)
	if desc == "" {
		return model.NoMatch()
	}

	snap := e.repo.Snapshot()

	if result, ok := e.cache.Get(desc, snap); ok {
		return result
	}

	result := e.classify(snap, desc)
	e.cache.Put(desc, result, snap)

	return result
}

func (e *Engine) classify(snap *RuleSet, desc string) model.MatchResult {
	// Exact matches are maximal and deterministic; short-circuit before any
	// fuzzy, keyword, or pattern work.
	if cand, ok := matchExact(snap, desc); ok {
		return cand.result(model.DecisionAuto)
	}

	// The remaining matchers all run so the engine can pick the best of the
	// three; there is no short-circuit between them.
	candidates := make([]candidate, 0, 3)
	if cand, ok := matchFuzzy(snap, desc, e.thresholds.Fuzzy.Suggest); ok {
		candidates = append(candidates, cand)
	}
	if cand, ok := matchKeyword(snap, desc); ok {
		candidates = append(candidates, cand)
	}
	if cand, ok := matchPattern(snap, desc); ok {
		candidates = append(candidates, cand)
	}

	if len(candidates) == 0 {
		return model.NoMatch()
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.confidence > best.confidence {
			best = cand
			continue
		}
		if cand.confidence == best.confidence &&
			methodPrecedence[cand.method] < methodPrecedence[best.method] {
			best = cand
		}
	}

	decision := e.thresholds.decide(best.method, best.confidence)
	if decision == model.DecisionNone {
		// Below the suggest cutoff the candidate is discarded entirely.
		return model.NoMatch()
	}

	slog.Debug("classified description",
		"description", desc,
		"category", best.rule.Category,
		"method", best.method,
		"confidence", best.confidence,
		"decision", decision)

	return best.result(decision)
}

// ClassifyTransactions classifies a slice of statement lines by their
// descriptions, preserving order. Amount and date play no part in matching.
func (e *Engine) ClassifyTransactions(txns []model.Transaction) []model.MatchResult {
	descriptions := make([]string, len(txns))
	for i, txn := range txns {
		descriptions[i] = txn.Description
	}
	return e.ClassifyBatch(descriptions)
}

// ClassifyBatch classifies independent descriptions in parallel over a
// bounded worker pool, preserving input order.
func (e *Engine) ClassifyBatch(descriptions []string) []model.MatchResult {
	results := make([]model.MatchResult, len(descriptions))
	if len(descriptions) == 0 {
		return results
	}

	workers := e.workers
	if workers > len(descriptions) {
		workers = len(descriptions)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = e.Classify(descriptions[i])
			}
		}()
	}

	for i := range descriptions {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
