package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/recipestack/internal/utils"
)

const (
	RecipeTitleMaxLength       = 200
	RecipeIngredientsJoinTable = "recipe_ingredients"
)

type Recipe struct {
	ID          string        `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Title       string        `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string        `gorm:"column:description;type:text;not null;default:''" json:"description"`
	Ingredients []*Ingredient `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
	CreatedAt   time.Time     `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("rcp", 16)
	}
	now := utils.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

// IngredientCount is the size of the currently loaded ingredient set.
func (r *Recipe) IngredientCount() int {
	return len(r.Ingredients)
}

func (r *Recipe) String() string {
	return r.Title
}
