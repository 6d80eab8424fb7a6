package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/opmatch/internal/model"
	"github.com/ledgerline/opmatch/internal/service"
)

// recentLogLimit caps how many log rows feed a rule's statistics.
const recentLogLimit = 100

// LogMatch appends a classification outcome to the match log.
func (s *SQLiteStore) LogMatch(ctx context.Context, entry *model.RuleMatchLog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMatchLog(entry); err != nil {
		return err
	}

	if entry.LogID == "" {
		entry.LogID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var ruleID sql.NullInt64
	if entry.RuleID != nil {
		ruleID = sql.NullInt64{Int64: *entry.RuleID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_match_logs (log_id, rule_id, description, category, method, confidence, success, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.LogID, ruleID, entry.Description, entry.Category, entry.Method,
		entry.Confidence, entry.Success, entry.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to log match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get log ID: %w", err)
	}
	entry.ID = id

	return nil
}

// GetRuleStatistics summarizes a rule's classification history, including its
// recent match log rows.
func (s *SQLiteStore) GetRuleStatistics(ctx context.Context, ruleID int64) (*service.RuleStatistics, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	stats := &service.RuleStatistics{
		RuleID:       rule.ID,
		Pattern:      rule.Pattern,
		Category:     rule.Category,
		UsageCount:   rule.UsageCount,
		SuccessCount: rule.SuccessCount,
		LastUsed:     rule.LastUsed,
	}
	if rule.UsageCount > 0 {
		stats.SuccessRate = float64(rule.SuccessCount) / float64(rule.UsageCount) * 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, log_id, rule_id, description, category, method, confidence, success, timestamp
		FROM rule_match_logs
		WHERE rule_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, ruleID, recentLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get match logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		entry, scanErr := scanMatchLog(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match log: %w", scanErr)
		}
		stats.RecentLogs = append(stats.RecentLogs, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match logs: %w", err)
	}

	return stats, nil
}

// GetCategoryStatistics summarizes all rules targeting one category.
func (s *SQLiteStore) GetCategoryStatistics(ctx context.Context, category string) (*service.CategoryStatistics, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}

	rules, err := s.ListRules(ctx, service.RuleFilter{Category: &category})
	if err != nil {
		return nil, err
	}

	stats := &service.CategoryStatistics{
		Category:   category,
		Rules:      rules,
		TotalRules: len(rules),
	}

	for _, rule := range rules {
		if rule.IsActive {
			stats.ActiveRules++
		}
		stats.TotalUsage += rule.UsageCount
		stats.TotalSuccess += rule.SuccessCount
	}
	if stats.TotalUsage > 0 {
		stats.SuccessRate = float64(stats.TotalSuccess) / float64(stats.TotalUsage) * 100
	}

	return stats, nil
}

func scanMatchLog(row rowScanner) (*model.RuleMatchLog, error) {
	var (
		entry  model.RuleMatchLog
		ruleID sql.NullInt64
	)

	err := row.Scan(
		&entry.ID, &entry.LogID, &ruleID, &entry.Description, &entry.Category,
		&entry.Method, &entry.Confidence, &entry.Success, &entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if ruleID.Valid {
		id := ruleID.Int64
		entry.RuleID = &id
	}

	return &entry, nil
}
