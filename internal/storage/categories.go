package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerline/opmatch/internal/model"
)

const categoryColumns = `id, name, description, color, is_active, created_at, updated_at`

// CreateCategory creates a new rule category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *model.RuleCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_categories (name, description, color, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, category.Name, nullString(category.Description), nullString(category.Color),
		category.IsActive, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrCategoryExists, category.Name)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}

	category.ID = id
	category.CreatedAt = now
	category.UpdatedAt = now

	return nil
}

// GetCategoryByName retrieves a category by its unique name.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*model.RuleCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM rule_categories WHERE name = ?`

	category, err := scanCategory(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q not found", name)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// ListCategories retrieves all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, activeOnly bool) ([]model.RuleCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM rule_categories`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.RuleCategory
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// UpdateCategory updates a category's metadata.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *model.RuleCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE rule_categories
		SET name = ?, description = ?, color = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, category.Name, nullString(category.Description), nullString(category.Color),
		category.IsActive, now, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check category update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category id %d not found", category.ID)
	}

	category.UpdatedAt = now

	return nil
}

func scanCategory(row rowScanner) (*model.RuleCategory, error) {
	var (
		category    model.RuleCategory
		description sql.NullString
		color       sql.NullString
	)

	err := row.Scan(
		&category.ID, &category.Name, &description, &color,
		&category.IsActive, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	category.Description = description.String
	category.Color = color.String

	return &category, nil
}
