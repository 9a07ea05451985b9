package resolver

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/customeros/recipestack/dto"
)

type createRecipeArgs struct {
	Title         string
	Description   *string
	IngredientIds *[]graphql.ID
}

type recipeIngredientsArgs struct {
	RecipeId      graphql.ID
	IngredientIds []graphql.ID
}

// GetRecipe is the resolver for the getRecipe field.
func (r *Resolver) GetRecipe(ctx context.Context, args struct{ ID graphql.ID }) (*RecipeResolver, error) {
	span, ctx := startResolverSpan(ctx, "GetRecipe")
	defer span.Finish()

	recipe, err := r.services.RecipeService.GetRecipe(ctx, string(args.ID))
	if err != nil {
		return nil, r.graphqlError(ctx, "getRecipe", err)
	}
	return &RecipeResolver{recipe: recipe}, nil
}

// CreateRecipe is the resolver for the createRecipe field.
func (r *Resolver) CreateRecipe(ctx context.Context, args createRecipeArgs) (*RecipeResolver, error) {
	span, ctx := startResolverSpan(ctx, "CreateRecipe")
	defer span.Finish()

	input := dto.RecipeInput{
		Title:       args.Title,
		Description: args.Description,
	}
	if args.IngredientIds != nil {
		input.IngredientIds = idsToStrings(*args.IngredientIds)
	}

	recipe, err := r.services.RecipeService.CreateRecipe(ctx, input)
	if err != nil {
		return nil, r.graphqlError(ctx, "createRecipe", err)
	}
	return &RecipeResolver{recipe: recipe}, nil
}

// AddIngredientsToRecipe is the resolver for the addIngredientsToRecipe field.
func (r *Resolver) AddIngredientsToRecipe(ctx context.Context, args recipeIngredientsArgs) (*RecipeResolver, error) {
	span, ctx := startResolverSpan(ctx, "AddIngredientsToRecipe")
	defer span.Finish()

	recipe, err := r.services.RecipeService.AddIngredientsToRecipe(ctx, string(args.RecipeId), idsToStrings(args.IngredientIds))
	if err != nil {
		return nil, r.graphqlError(ctx, "addIngredientsToRecipe", err)
	}
	return &RecipeResolver{recipe: recipe}, nil
}

// RemoveIngredientsFromRecipe is the resolver for the removeIngredientsFromRecipe field.
func (r *Resolver) RemoveIngredientsFromRecipe(ctx context.Context, args recipeIngredientsArgs) (*RecipeResolver, error) {
	span, ctx := startResolverSpan(ctx, "RemoveIngredientsFromRecipe")
	defer span.Finish()

	recipe, err := r.services.RecipeService.RemoveIngredientsFromRecipe(ctx, string(args.RecipeId), idsToStrings(args.IngredientIds))
	if err != nil {
		return nil, r.graphqlError(ctx, "removeIngredientsFromRecipe", err)
	}
	return &RecipeResolver{recipe: recipe}, nil
}
