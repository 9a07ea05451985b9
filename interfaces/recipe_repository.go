package interfaces

import (
	"context"

	"github.com/customeros/recipestack/internal/models"
)

type RecipeRepository interface {
	// Create stores the recipe together with its ingredient associations.
	Create(ctx context.Context, recipe *models.Recipe) error
	// GetByID returns the recipe with its current ingredient set loaded.
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	AddIngredients(ctx context.Context, recipeID string, ingredients []*models.Ingredient) error
	RemoveIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error
}
