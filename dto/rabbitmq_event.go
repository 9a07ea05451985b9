package dto

import "github.com/customeros/recipestack/internal/enum"

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	RequestId   string `json:"requestId,omitempty"`
	UserId      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	Timestamp   string `json:"timestamp"`
}

type IngredientCreated struct {
	Name string `json:"name"`
}

type IngredientUpdated struct {
	Name string `json:"name"`
}

type IngredientDeleted struct{}

type RecipeCreated struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	IngredientIds []string `json:"ingredientIds"`
}

type RecipeIngredientsAdded struct {
	IngredientIds []string `json:"ingredientIds"`
}

type RecipeIngredientsRemoved struct {
	IngredientIds []string `json:"ingredientIds"`
}
