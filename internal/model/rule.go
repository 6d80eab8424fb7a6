// Package model defines the core domain models for the opmatch application.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RuleType identifies which matching strategy a rule belongs to.
type RuleType string

// Rule type constants.
const (
	RuleTypeExact   RuleType = "exact"
	RuleTypeKeyword RuleType = "keyword"
	RuleTypePattern RuleType = "pattern"
)

// MatchingRule represents a single classification heuristic.
//
// For exact rules, Pattern is the literal description to match. For keyword
// rules, Pattern holds a comma-separated keyword list. For pattern rules,
// Pattern is a regular expression, matched case-insensitively.
type MatchingRule struct {
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	RuleType     RuleType   `json:"rule_type"`
	Category     string     `json:"category"`
	Pattern      string     `json:"pattern"`
	Comments     string     `json:"comments,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
	ID           int64      `json:"id"`
	Weight       int        `json:"weight"`
	Priority     int        `json:"priority"`
	UsageCount   int        `json:"usage_count"`
	SuccessCount int        `json:"success_count"`
	IsActive     bool       `json:"is_active"`
}

// Keywords returns the parsed keyword list for a keyword rule. Entries are
// trimmed; empty entries are dropped.
func (r *MatchingRule) Keywords() []string {
	if r.RuleType != RuleTypeKeyword {
		return nil
	}

	parts := strings.Split(r.Pattern, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Validate ensures the rule has valid data. Regex compilability for pattern
// rules is checked here so a bad expression never reaches the matcher.
func (r *MatchingRule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return fmt.Errorf("rule pattern is required")
	}

	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("rule category is required")
	}

	if r.Weight < 0 || r.Weight > 100 {
		return fmt.Errorf("rule weight must be between 0 and 100, got %d", r.Weight)
	}

	if r.UsageCount < 0 || r.SuccessCount < 0 {
		return fmt.Errorf("rule usage counters cannot be negative")
	}

	if r.SuccessCount > r.UsageCount {
		return fmt.Errorf("rule success count %d exceeds usage count %d", r.SuccessCount, r.UsageCount)
	}

	switch r.RuleType {
	case RuleTypeExact:
	case RuleTypeKeyword:
		if len(r.Keywords()) == 0 {
			return fmt.Errorf("keyword rule must define at least one keyword")
		}
	case RuleTypePattern:
		if _, err := regexp.Compile("(?i)" + r.Pattern); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", r.Pattern, err)
		}
	default:
		return fmt.Errorf("unknown rule type: %s", r.RuleType)
	}

	return nil
}
