package dto

type RecipeInput struct {
	Title         string
	Description   *string
	IngredientIds []string
}
