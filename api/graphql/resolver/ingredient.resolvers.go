package resolver

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/utils"
)

type listIngredientsArgs struct {
	Filter   *string
	Page     int32
	PageSize int32
}

// ListIngredients is the resolver for the listIngredients field.
func (r *Resolver) ListIngredients(ctx context.Context, args listIngredientsArgs) (*IngredientListResolver, error) {
	span, ctx := startResolverSpan(ctx, "ListIngredients")
	defer span.Finish()

	page, err := r.services.IngredientService.ListIngredients(ctx, dto.IngredientListQuery{
		Filter:   utils.GetOrDefault(args.Filter, ""),
		Page:     int(args.Page),
		PageSize: int(args.PageSize),
	})
	if err != nil {
		return nil, r.graphqlError(ctx, "listIngredients", err)
	}
	return &IngredientListResolver{page: page}, nil
}

// CreateIngredient is the resolver for the createIngredient field.
func (r *Resolver) CreateIngredient(ctx context.Context, args struct{ Name string }) (*IngredientResolver, error) {
	span, ctx := startResolverSpan(ctx, "CreateIngredient")
	defer span.Finish()

	ingredient, err := r.services.IngredientService.CreateIngredient(ctx, dto.IngredientInput{Name: args.Name})
	if err != nil {
		return nil, r.graphqlError(ctx, "createIngredient", err)
	}
	return &IngredientResolver{ingredient: ingredient}, nil
}

// UpdateIngredient is the resolver for the updateIngredient field.
func (r *Resolver) UpdateIngredient(ctx context.Context, args struct {
	ID   graphql.ID
	Name string
}) (*IngredientResolver, error) {
	span, ctx := startResolverSpan(ctx, "UpdateIngredient")
	defer span.Finish()

	ingredient, err := r.services.IngredientService.UpdateIngredient(ctx, string(args.ID), dto.IngredientPatch{Name: &args.Name})
	if err != nil {
		return nil, r.graphqlError(ctx, "updateIngredient", err)
	}
	return &IngredientResolver{ingredient: ingredient}, nil
}

// DeleteIngredient is the resolver for the deleteIngredient field.
func (r *Resolver) DeleteIngredient(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	span, ctx := startResolverSpan(ctx, "DeleteIngredient")
	defer span.Finish()

	deleted, err := r.services.IngredientService.DeleteIngredient(ctx, string(args.ID))
	if err != nil {
		return false, r.graphqlError(ctx, "deleteIngredient", err)
	}
	return deleted, nil
}
