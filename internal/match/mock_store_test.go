package match

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

// memStore is an in-memory RuleStore for engine and recorder tests.
type memStore struct {
	mu         sync.Mutex
	rules      map[int64]*model.MatchingRule
	categories []model.RuleCategory
	logs       []model.RuleMatchLog
	nextID     int64
}

func newMemStore(rules ...model.MatchingRule) *memStore {
	s := &memStore{
		rules:  make(map[int64]*model.MatchingRule),
		nextID: 1,
	}
	for i := range rules {
		rule := rules[i]
		if rule.ID == 0 {
			rule.ID = s.nextID
		}
		if rule.ID >= s.nextID {
			s.nextID = rule.ID + 1
		}
		s.rules[rule.ID] = &rule
	}
	return s
}

func (s *memStore) CreateRule(_ context.Context, rule *model.MatchingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

func (s *memStore) GetRule(_ context.Context, id int64) (*model.MatchingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule %d not found", id)
	}
	copied := *rule
	return &copied, nil
}

func (s *memStore) ListRules(_ context.Context, filter service.RuleFilter) ([]model.MatchingRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rules []model.MatchingRule
	for _, rule := range s.rules {
		if filter.ActiveOnly && !rule.IsActive {
			continue
		}
		if filter.RuleType != nil && rule.RuleType != *filter.RuleType {
			continue
		}
		if filter.Category != nil && rule.Category != *filter.Category {
			continue
		}
		rules = append(rules, *rule)
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

func (s *memStore) UpdateRule(_ context.Context, rule *model.MatchingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[rule.ID]; !ok {
		return fmt.Errorf("rule %d not found", rule.ID)
	}
	copied := *rule
	copied.UpdatedAt = time.Now().UTC()
	s.rules[rule.ID] = &copied
	return nil
}

func (s *memStore) DeactivateRule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("rule %d not found", id)
	}
	rule.IsActive = false
	rule.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) RecordRuleUsage(_ context.Context, id int64, success bool, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("rule %d not found", id)
	}
	rule.UsageCount++
	if success {
		rule.SuccessCount++
	}
	rule.LastUsed = &usedAt
	return nil
}

func (s *memStore) CreateCategory(_ context.Context, category *model.RuleCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = s.nextID
	s.nextID++
	s.categories = append(s.categories, *category)
	return nil
}

func (s *memStore) GetCategoryByName(_ context.Context, name string) (*model.RuleCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].Name == name {
			copied := s.categories[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("category %q not found", name)
}

func (s *memStore) ListCategories(_ context.Context, activeOnly bool) ([]model.RuleCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var categories []model.RuleCategory
	for _, category := range s.categories {
		if activeOnly && !category.IsActive {
			continue
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s *memStore) UpdateCategory(_ context.Context, category *model.RuleCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == category.ID {
			s.categories[i] = *category
			return nil
		}
	}
	return fmt.Errorf("category %d not found", category.ID)
}

func (s *memStore) LogMatch(_ context.Context, entry *model.RuleMatchLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *memStore) GetRuleStatistics(_ context.Context, _ int64) (*service.RuleStatistics, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *memStore) GetCategoryStatistics(_ context.Context, _ string) (*service.CategoryStatistics, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *memStore) Close() error { return nil }

func (s *memStore) loggedMatches() []model.RuleMatchLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := make([]model.RuleMatchLog, len(s.logs))
	copy(logs, s.logs)
	return logs
}
