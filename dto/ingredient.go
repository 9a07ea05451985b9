package dto

import "github.com/customeros/recipestack/internal/models"

type IngredientInput struct {
	Name string
}

// IngredientPatch carries only the fields being changed.
type IngredientPatch struct {
	Name *string
}

type IngredientListQuery struct {
	Filter   string
	Page     int
	PageSize int
}

type IngredientPage struct {
	Items      []*models.Ingredient
	TotalCount int64
	Page       int
	PageSize   int
}
