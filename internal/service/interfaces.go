// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgerline/opmatch/internal/model"
)

// RuleFilter defines filtering options for rule queries.
type RuleFilter struct {
	RuleType   *model.RuleType
	Category   *string
	ActiveOnly bool
}

// RuleStatistics summarizes a single rule's classification history.
type RuleStatistics struct {
	LastUsed     *time.Time
	Pattern      string
	Category     string
	RecentLogs   []model.RuleMatchLog
	RuleID       int64
	UsageCount   int
	SuccessCount int
	SuccessRate  float64
}

// CategoryStatistics summarizes all rules targeting one category.
type CategoryStatistics struct {
	Category     string
	Rules        []model.MatchingRule
	TotalRules   int
	ActiveRules  int
	TotalUsage   int
	TotalSuccess int
	SuccessRate  float64
}

// RuleStore defines the contract for the rule persistence layer. The matching
// engine reads full rule snapshots from it and writes usage statistics back.
type RuleStore interface {
	// Rule operations
	CreateRule(ctx context.Context, rule *model.MatchingRule) error
	GetRule(ctx context.Context, id int64) (*model.MatchingRule, error)
	ListRules(ctx context.Context, filter RuleFilter) ([]model.MatchingRule, error)
	UpdateRule(ctx context.Context, rule *model.MatchingRule) error
	DeactivateRule(ctx context.Context, id int64) error
	RecordRuleUsage(ctx context.Context, id int64, success bool, usedAt time.Time) error

	// Category operations
	CreateCategory(ctx context.Context, category *model.RuleCategory) error
	GetCategoryByName(ctx context.Context, name string) (*model.RuleCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]model.RuleCategory, error)
	UpdateCategory(ctx context.Context, category *model.RuleCategory) error

	// Match log operations
	LogMatch(ctx context.Context, entry *model.RuleMatchLog) error
	GetRuleStatistics(ctx context.Context, ruleID int64) (*RuleStatistics, error)
	GetCategoryStatistics(ctx context.Context, category string) (*CategoryStatistics, error)

	Close() error
}
