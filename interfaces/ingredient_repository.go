package interfaces

import (
	"context"

	"github.com/customeros/recipestack/internal/models"
)

type IngredientRepository interface {
	Create(ctx context.Context, ingredient *models.Ingredient) error
	GetByID(ctx context.Context, id string) (*models.Ingredient, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Ingredient, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Update(ctx context.Context, ingredient *models.Ingredient) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter string, limit, offset int) ([]*models.Ingredient, int64, error)
}
