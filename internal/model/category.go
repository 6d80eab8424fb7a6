package model

import (
	"fmt"
	"strings"
	"time"
)

// RuleCategory represents a named classification bucket with display metadata.
// Rules reference categories by name; a rule whose category does not exist
// yet is still valid, so category existence is never a matching precondition.
type RuleCategory struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	ID          int64     `json:"id"`
	IsActive    bool      `json:"is_active"`
}

// Validate ensures the category has valid data.
func (c *RuleCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required")
	}

	if c.Color != "" && !isHexColor(c.Color) {
		return fmt.Errorf("category color must be a hex color like #A1B2C3, got %q", c.Color)
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
