// Package storage provides the SQLite persistence layer for rules,
// categories, and match logs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerline/opmatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRule    = errors.New("invalid rule")
	ErrInvalidLog     = errors.New("invalid match log")
	ErrRuleNotFound   = errors.New("rule not found")
	ErrCategoryExists = errors.New("category already exists")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRule validates a matching rule before it touches the database.
// Regex compilability for pattern rules is enforced here, at creation time,
// so runtime matcher failures stay rare.
func validateRule(rule *model.MatchingRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

// validateCategory validates a rule category.
func validateCategory(category *model.RuleCategory) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}

// validateMatchLog validates a match log entry.
func validateMatchLog(entry *model.RuleMatchLog) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if strings.TrimSpace(entry.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidLog)
	}
	if entry.Confidence < 0 || entry.Confidence > 100 {
		return fmt.Errorf("%w: confidence must be between 0 and 100", ErrInvalidLog)
	}
	return nil
}
