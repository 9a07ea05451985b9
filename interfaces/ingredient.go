package interfaces

import (
	"context"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/models"
)

type IngredientService interface {
	CreateIngredient(ctx context.Context, input dto.IngredientInput) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, id string, input dto.IngredientPatch) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, id string) (bool, error)
	ListIngredients(ctx context.Context, query dto.IngredientListQuery) (*dto.IngredientPage, error)
}
