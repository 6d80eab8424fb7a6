package match

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

// LearnedRuleCreator identifies rules minted by the learning loop.
const LearnedRuleCreator = "learner"

// Recorder applies user feedback to the rule set: confirmations update rule
// statistics, corrections additionally mint a new exact rule so an identical
// future description resolves correctly via the exact matcher.
type Recorder struct {
	store  service.RuleStore
	repo   *Repository
	cache  *ResultCache
	engine *Engine
	now    func() time.Time
}

// NewRecorder creates a recorder wired to the store, repository, cache, and
// engine.
func NewRecorder(store service.RuleStore, repo *Repository, cache *ResultCache, engine *Engine) *Recorder {
	return &Recorder{
		store:  store,
		repo:   repo,
		cache:  cache,
		engine: engine,
		now:    time.Now,
	}
}

// Confirm records that the user accepted the classification made by the
// given rule: usage and success counters both advance and a match log row is
// written. Counters do not influence matching, so no snapshot rebuild is
// needed.
func (r *Recorder) Confirm(ctx context.Context, description string, ruleID int64) error {
	rule, err := r.store.GetRule(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("failed to load rule %d: %w", ruleID, err)
	}

	usedAt := r.now()
	if err := r.store.RecordRuleUsage(ctx, ruleID, true, usedAt); err != nil {
		return fmt.Errorf("failed to record rule usage: %w", err)
	}

	// Log the confidence the engine actually scored, not the rule's raw
	// weight; a partial keyword match scores below its weight.
	confidence := float64(rule.Weight)
	method := methodForRuleType(rule.RuleType)
	if result := r.engine.Classify(description); result.MatchedRuleID != nil && *result.MatchedRuleID == ruleID {
		confidence = result.Confidence
		method = result.Method
	}

	entry := &model.RuleMatchLog{
		RuleID:      &ruleID,
		Description: Normalize(description),
		Category:    rule.Category,
		Method:      method,
		Confidence:  confidence,
		Success:     true,
		Timestamp:   usedAt,
	}
	if err := r.store.LogMatch(ctx, entry); err != nil {
		return fmt.Errorf("failed to log match: %w", err)
	}

	slog.Debug("confirmed classification", "rule_id", ruleID, "category", rule.Category)

	return nil
}

// Correct records that the user picked a different category than the engine
// chose. The rule that produced the wrong classification gets its usage
// counter advanced without a success, and a new exact rule mapping the
// normalized description to the chosen category is created with weight 100
// and top priority. The fuzzy cache partition goes stale through the
// rule-set version bump; the description's own entries are evicted directly.
func (r *Recorder) Correct(ctx context.Context, description, chosenCategory string) (*model.MatchingRule, error) {
	desc := Normalize(description)
	if desc == "" {
		return nil, fmt.Errorf("cannot correct an empty description")
	}

	usedAt := r.now()

	// Identify the rule the engine used; classification is deterministic
	// against an unchanged snapshot.
	original := r.engine.Classify(description)
	if original.MatchedRuleID != nil {
		if err := r.store.RecordRuleUsage(ctx, *original.MatchedRuleID, false, usedAt); err != nil {
			return nil, fmt.Errorf("failed to record rule usage: %w", err)
		}
	}

	rule := &model.MatchingRule{
		RuleType:  model.RuleTypeExact,
		Category:  chosenCategory,
		Pattern:   desc,
		Weight:    100,
		Priority:  0,
		IsActive:  true,
		CreatedBy: LearnedRuleCreator,
		Comments:  "learned from user correction",
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to learn invalid rule: %w", err)
	}
	if err := r.store.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create learned rule: %w", err)
	}

	entry := &model.RuleMatchLog{
		RuleID:      original.MatchedRuleID,
		Description: desc,
		Category:    chosenCategory,
		Method:      original.Method,
		Confidence:  original.Confidence,
		Success:     false,
		Timestamp:   usedAt,
	}
	if err := r.store.LogMatch(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log correction: %w", err)
	}

	if err := r.repo.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh rule snapshot: %w", err)
	}
	r.cache.Remove(desc)

	slog.Info("learned exact rule from correction",
		"rule_id", rule.ID,
		"category", chosenCategory,
		"description", desc)

	return rule, nil
}

// methodForRuleType maps a rule type to the matcher method it feeds.
func methodForRuleType(t model.RuleType) model.MatchMethod {
	switch t {
	case model.RuleTypeExact:
		return model.MethodExact
	case model.RuleTypeKeyword:
		return model.MethodKeyword
	case model.RuleTypePattern:
		return model.MethodPattern
	default:
		return model.MethodNone
	}
}
