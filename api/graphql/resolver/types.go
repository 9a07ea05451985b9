package resolver

import (
	"github.com/graph-gophers/graphql-go"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/models"
)

type IngredientResolver struct {
	ingredient *models.Ingredient
}

func (r *IngredientResolver) ID() graphql.ID {
	return graphql.ID(r.ingredient.ID)
}

func (r *IngredientResolver) Name() string {
	return r.ingredient.Name
}

type RecipeResolver struct {
	recipe *models.Recipe
}

func (r *RecipeResolver) ID() graphql.ID {
	return graphql.ID(r.recipe.ID)
}

func (r *RecipeResolver) Title() string {
	return r.recipe.Title
}

func (r *RecipeResolver) Description() *string {
	return &r.recipe.Description
}

func (r *RecipeResolver) Ingredients() []*IngredientResolver {
	return mapIngredients(r.recipe.Ingredients)
}

// IngredientCount is taken from the ingredient set loaded with the recipe.
func (r *RecipeResolver) IngredientCount() int32 {
	return int32(r.recipe.IngredientCount())
}

type IngredientListResolver struct {
	page *dto.IngredientPage
}

func (r *IngredientListResolver) Items() []*IngredientResolver {
	return mapIngredients(r.page.Items)
}

func (r *IngredientListResolver) TotalCount() int32 {
	return int32(r.page.TotalCount)
}

func (r *IngredientListResolver) Page() int32 {
	return int32(r.page.Page)
}

func (r *IngredientListResolver) PageSize() int32 {
	return int32(r.page.PageSize)
}

func mapIngredients(ingredients []*models.Ingredient) []*IngredientResolver {
	resolvers := make([]*IngredientResolver, 0, len(ingredients))
	for _, ingredient := range ingredients {
		resolvers = append(resolvers, &IngredientResolver{ingredient: ingredient})
	}
	return resolvers
}

func idsToStrings(ids []graphql.ID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, string(id))
	}
	return result
}
