package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

const ruleColumns = `id, rule_type, category, pattern, weight, priority,
	is_active, usage_count, success_count, last_used, comments, created_by,
	created_at, updated_at`

// CreateRule creates a new matching rule. The rule is validated first, so an
// uncompilable regex pattern never reaches the database.
func (s *SQLiteStore) CreateRule(ctx context.Context, rule *model.MatchingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO matching_rules (
			rule_type, category, pattern, weight, priority, is_active,
			usage_count, success_count, comments, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		rule.RuleType, rule.Category, rule.Pattern, rule.Weight, rule.Priority,
		rule.IsActive, rule.UsageCount, rule.SuccessCount,
		nullString(rule.Comments), nullString(rule.CreatedBy), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}

	rule.ID = id
	rule.CreatedAt = now
	rule.UpdatedAt = now

	return nil
}

// GetRule retrieves a matching rule by ID.
func (s *SQLiteStore) GetRule(ctx context.Context, id int64) (*model.MatchingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + ` FROM matching_rules WHERE id = ?`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// ListRules retrieves matching rules with optional filtering, ordered by
// priority (lower value first) then id.
func (s *SQLiteStore) ListRules(ctx context.Context, filter service.RuleFilter) ([]model.MatchingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + ` FROM matching_rules WHERE 1=1`
	args := make([]any, 0, 3)

	if filter.RuleType != nil {
		query += " AND rule_type = ?"
		args = append(args, *filter.RuleType)
	}
	if filter.Category != nil {
		query += " AND category = ?"
		args = append(args, *filter.Category)
	}
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY priority ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.MatchingRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", scanErr)
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// UpdateRule updates a matching rule's definition fields. Usage counters are
// managed through RecordRuleUsage, not here.
func (s *SQLiteStore) UpdateRule(ctx context.Context, rule *model.MatchingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	query := `
		UPDATE matching_rules
		SET rule_type = ?, category = ?, pattern = ?, weight = ?, priority = ?,
			is_active = ?, comments = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query,
		rule.RuleType, rule.Category, rule.Pattern, rule.Weight, rule.Priority,
		rule.IsActive, nullString(rule.Comments), now, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRuleNotFound, rule.ID)
	}

	rule.UpdatedAt = now

	return nil
}

// DeactivateRule marks a rule inactive. Rules referenced by match logs are
// never physically deleted; they retain their statistics.
func (s *SQLiteStore) DeactivateRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE matching_rules SET is_active = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule deactivation: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}

	return nil
}

// RecordRuleUsage advances a rule's usage counter, and on success its
// success counter, and stamps last_used.
func (s *SQLiteStore) RecordRuleUsage(ctx context.Context, id int64, success bool, usedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	successIncrement := 0
	if success {
		successIncrement = 1
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE matching_rules
		SET usage_count = usage_count + 1,
			success_count = success_count + ?,
			last_used = ?,
			updated_at = ?
		WHERE id = ?
	`, successIncrement, usedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record rule usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule usage update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*model.MatchingRule, error) {
	var (
		rule      model.MatchingRule
		lastUsed  sql.NullTime
		comments  sql.NullString
		createdBy sql.NullString
	)

	err := row.Scan(
		&rule.ID, &rule.RuleType, &rule.Category, &rule.Pattern, &rule.Weight,
		&rule.Priority, &rule.IsActive, &rule.UsageCount, &rule.SuccessCount,
		&lastUsed, &comments, &createdBy, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastUsed.Valid {
		t := lastUsed.Time
		rule.LastUsed = &t
	}
	rule.Comments = comments.String
	rule.CreatedBy = createdBy.String

	return &rule, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
