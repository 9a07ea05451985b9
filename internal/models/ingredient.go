package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/recipestack/internal/utils"
)

const IngredientNameMaxLength = 100

type Ingredient struct {
	ID        string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uq_ingredients_name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp" json:"updatedAt"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("ingr", 16)
	}
	now := utils.Now()
	i.CreatedAt = now
	i.UpdatedAt = now
	return nil
}

func (i *Ingredient) String() string {
	return i.Name
}
