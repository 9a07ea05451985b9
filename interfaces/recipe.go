package interfaces

import (
	"context"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/models"
)

type RecipeService interface {
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, input dto.RecipeInput) (*models.Recipe, error)
	AddIngredientsToRecipe(ctx context.Context, recipeID string, ingredientIDs []string) (*models.Recipe, error)
	RemoveIngredientsFromRecipe(ctx context.Context, recipeID string, ingredientIDs []string) (*models.Recipe, error)
}
