package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/opmatch/internal/model"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("create and retrieve", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		cat := &model.RuleCategory{
			Name:        "Food",
			Description: "Groceries and restaurants",
			Color:       "#AA3322",
			IsActive:    true,
		}
		require.NoError(t, store.CreateCategory(ctx, cat))
		assert.Positive(t, cat.ID)

		got, err := store.GetCategoryByName(ctx, "Food")
		require.NoError(t, err)
		assert.Equal(t, cat.ID, got.ID)
		assert.Equal(t, "Groceries and restaurants", got.Description)
		assert.Equal(t, "#AA3322", got.Color)
		assert.True(t, got.IsActive)
	})

	t.Run("duplicate name", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		cat := &model.RuleCategory{Name: "Food", IsActive: true}
		require.NoError(t, store.CreateCategory(ctx, cat))

		dup := &model.RuleCategory{Name: "Food", IsActive: true}
		assert.ErrorIs(t, store.CreateCategory(ctx, dup), ErrCategoryExists)
	})

	t.Run("invalid color", func(t *testing.T) {
		store, cleanup := createTestStore(t)
		defer cleanup()

		cat := &model.RuleCategory{Name: "Food", Color: "red", IsActive: true}
		assert.Error(t, store.CreateCategory(ctx, cat))
	})
}

func TestGetCategoryByNameNotFound(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	_, err := store.GetCategoryByName(context.Background(), "Nonexistent")
	assert.Error(t, err)
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	for _, c := range []*model.RuleCategory{
		{Name: "Transport", IsActive: true},
		{Name: "Food", IsActive: true},
		{Name: "Deprecated", IsActive: false},
	} {
		require.NoError(t, store.CreateCategory(ctx, c))
	}

	t.Run("all ordered by name", func(t *testing.T) {
		cats, err := store.ListCategories(ctx, false)
		require.NoError(t, err)
		require.Len(t, cats, 3)
		assert.Equal(t, "Deprecated", cats[0].Name)
		assert.Equal(t, "Food", cats[1].Name)
		assert.Equal(t, "Transport", cats[2].Name)
	})

	t.Run("active only", func(t *testing.T) {
		cats, err := store.ListCategories(ctx, true)
		require.NoError(t, err)
		assert.Len(t, cats, 2)
	})
}

func TestUpdateCategory(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStore(t)
	defer cleanup()

	cat := &model.RuleCategory{Name: "Food", IsActive: true}
	require.NoError(t, store.CreateCategory(ctx, cat))

	cat.Description = "Everything edible"
	cat.Color = "#00FF00"
	require.NoError(t, store.UpdateCategory(ctx, cat))

	got, err := store.GetCategoryByName(ctx, "Food")
	require.NoError(t, err)
	assert.Equal(t, "Everything edible", got.Description)
	assert.Equal(t, "#00FF00", got.Color)

	t.Run("unknown id", func(t *testing.T) {
		missing := &model.RuleCategory{ID: 9999, Name: "Ghost", IsActive: true}
		assert.Error(t, store.UpdateCategory(ctx, missing))
	})
}
