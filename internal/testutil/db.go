// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/customeros/recipestack/internal/database"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/internal/utils"
)

// NewTestDB opens a private in-memory sqlite database with the schema migrated.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.GenerateNanoIDWithPrefix("test", 12))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("SILENT"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, repository.AutoMigrate(db))
	return db
}

// NewTestRepositories returns repositories backed by a fresh test database.
func NewTestRepositories(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.InitRepositories(NewTestDB(t))
}

func InsertIngredient(ctx context.Context, t *testing.T, repos *repository.Repositories, name string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name}
	require.NoError(t, repos.IngredientRepository.Create(ctx, ingredient))
	return ingredient
}

func InsertRecipe(ctx context.Context, t *testing.T, repos *repository.Repositories, title string, ingredients ...*models.Ingredient) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{Title: title, Ingredients: ingredients}
	require.NoError(t, repos.RecipeRepository.Create(ctx, recipe))
	return recipe
}
