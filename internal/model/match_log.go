package model

import "time"

// RuleMatchLog records one classification outcome for analytics and for
// auditing the learning loop. Rules referenced by log rows are deactivated
// rather than deleted.
type RuleMatchLog struct {
	Timestamp   time.Time   `json:"timestamp"`
	RuleID      *int64      `json:"rule_id,omitempty"`
	LogID       string      `json:"log_id"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Method      MatchMethod `json:"method"`
	ID          int64       `json:"id"`
	Confidence  float64     `json:"confidence"`
	Success     bool        `json:"success"`
}
