package recipe

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/enum"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
	"github.com/customeros/recipestack/internal/validation"
	"github.com/customeros/recipestack/services/events"
)

const entityRecipe = "Recipe"

type recipeService struct {
	repositories *repository.Repositories
	events       *events.EventsService
	logger       logger.Logger
}

func NewRecipeService(repos *repository.Repositories, eventsService *events.EventsService, log logger.Logger) interfaces.RecipeService {
	return &recipeService{
		repositories: repos,
		events:       eventsService,
		logger:       log,
	}
}

func (s *recipeService) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeService.GetRecipe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	recipe, err := s.repositories.RecipeRepository.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, id)
	}
	return recipe, nil
}

// CreateRecipe stores a recipe with whichever of the requested ingredients exist.
func (s *recipeService) CreateRecipe(ctx context.Context, input dto.RecipeInput) (*models.Recipe, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeService.CreateRecipe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "input", input)

	fields, err := validation.ValidateRecipe(ctx, s.repositories.IngredientRepository, "create recipe", input)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:       fields.Title,
		Description: fields.Description,
		Ingredients: fields.Ingredients,
	}
	err = s.repositories.RecipeRepository.Create(ctx, recipe)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logger.Errorf("failed to create recipe: %v", err)
		return nil, err
	}
	tracing.TagEntity(span, recipe.ID)

	s.events.Publish(ctx, recipe.ID, enum.RECIPE, dto.RecipeCreated{
		Title:         recipe.Title,
		Description:   recipe.Description,
		IngredientIds: ingredientIDs(recipe.Ingredients),
	})

	// re-read so ingredients come back in their listed order
	return s.GetRecipe(ctx, recipe.ID)
}

// AddIngredientsToRecipe links the resolvable ingredient ids. It fails only when none resolve.
func (s *recipeService) AddIngredientsToRecipe(ctx context.Context, recipeID string, ingredientIDsToAdd []string) (*models.Recipe, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeService.AddIngredientsToRecipe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, recipeID)

	if _, err := s.repositories.RecipeRepository.GetByID(ctx, recipeID); err != nil {
		return nil, s.mapRepositoryError(span, err, recipeID)
	}

	ingredients, err := s.repositories.IngredientRepository.GetByIDs(ctx, utils.UniqueStrings(ingredientIDsToAdd))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, recipeerrors.NewValidationMessage("ingredientIds", recipeerrors.ErrNoValidIngredients.Error())
	}

	err = s.repositories.RecipeRepository.AddIngredients(ctx, recipeID, ingredients)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, recipeID)
	}

	s.events.Publish(ctx, recipeID, enum.RECIPE, dto.RecipeIngredientsAdded{IngredientIds: ingredientIDs(ingredients)})
	return s.GetRecipe(ctx, recipeID)
}

// RemoveIngredientsFromRecipe unlinks the given ids. Ids that are not linked are ignored.
func (s *recipeService) RemoveIngredientsFromRecipe(ctx context.Context, recipeID string, ingredientIDsToRemove []string) (*models.Recipe, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeService.RemoveIngredientsFromRecipe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, recipeID)

	ids := utils.UniqueStrings(ingredientIDsToRemove)
	err := s.repositories.RecipeRepository.RemoveIngredients(ctx, recipeID, ids)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, recipeID)
	}

	s.events.Publish(ctx, recipeID, enum.RECIPE, dto.RecipeIngredientsRemoved{IngredientIds: ids})
	return s.GetRecipe(ctx, recipeID)
}

func (s *recipeService) mapRepositoryError(span opentracing.Span, err error, id string) error {
	if errors.Is(err, repository.ErrRecipeNotFound) {
		return recipeerrors.NewNotFoundError(entityRecipe, id)
	}
	tracing.TraceErr(span, err)
	s.logger.Errorf("recipe store error for %q: %v", id, err)
	return err
}

func ingredientIDs(ingredients []*models.Ingredient) []string {
	ids := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		ids = append(ids, ingredient.ID)
	}
	return ids
}
