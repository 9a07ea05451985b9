package models

// RecipeIngredient is a row of the recipe/ingredient join table.
type RecipeIngredient struct {
	RecipeID     string `gorm:"column:recipe_id;type:varchar(50);primaryKey"`
	IngredientID string `gorm:"column:ingredient_id;type:varchar(50);primaryKey"`
}

func (RecipeIngredient) TableName() string {
	return RecipeIngredientsJoinTable
}
