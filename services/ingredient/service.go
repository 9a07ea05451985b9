package ingredient

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
	"github.com/customeros/recipestack/internal/validation"
	"github.com/customeros/recipestack/services/events"
)

const entityIngredient = "Ingredient"

type ingredientService struct {
	repositories *repository.Repositories
	events       *events.EventsService
	logger       logger.Logger
}

func NewIngredientService(repos *repository.Repositories, eventsService *events.EventsService, log logger.Logger) interfaces.IngredientService {
	return &ingredientService{
		repositories: repos,
		events:       eventsService,
		logger:       log,
	}
}

func (s *ingredientService) CreateIngredient(ctx context.Context, input dto.IngredientInput) (*models.Ingredient, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientService.CreateIngredient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "input", input)

	fields, err := validation.ValidateIngredient(ctx, s.repositories.IngredientRepository, "create ingredient", input, "")
	if err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{Name: fields.Name}
	err = s.repositories.IngredientRepository.Create(ctx, ingredient)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, "")
	}
	tracing.TagEntity(span, ingredient.ID)

	s.events.Publish(ctx, ingredient.ID, enum.INGREDIENT, dto.IngredientCreated{Name: ingredient.Name})
	return ingredient, nil
}

// UpdateIngredient applies a partial update. An empty patch returns the ingredient unchanged.
func (s *ingredientService) UpdateIngredient(ctx context.Context, id string, patch dto.IngredientPatch) (*models.Ingredient, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientService.UpdateIngredient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	ingredient, err := s.repositories.IngredientRepository.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, id)
	}

	if patch.Name == nil {
		return ingredient, nil
	}

	fields, err := validation.ValidateIngredientPatch(ctx, s.repositories.IngredientRepository, "update ingredient", patch, id, false)
	if err != nil {
		return nil, err
	}

	ingredient.Name = fields.Name
	err = s.repositories.IngredientRepository.Update(ctx, ingredient)
	if err != nil {
		return nil, s.mapRepositoryError(span, err, id)
	}

	s.events.Publish(ctx, ingredient.ID, enum.INGREDIENT, dto.IngredientUpdated{Name: ingredient.Name})
	return ingredient, nil
}

// DeleteIngredient removes the ingredient and its recipe links. It reports true on success.
func (s *ingredientService) DeleteIngredient(ctx context.Context, id string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientService.DeleteIngredient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, id)

	err := s.repositories.IngredientRepository.Delete(ctx, id)
	if err != nil {
		return false, s.mapRepositoryError(span, err, id)
	}

	s.events.Publish(ctx, id, enum.INGREDIENT, dto.IngredientDeleted{})
	return true, nil
}

func (s *ingredientService) ListIngredients(ctx context.Context, query dto.IngredientListQuery) (*dto.IngredientPage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientService.ListIngredients")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "query", query)

	if err := validation.ValidatePage(query.Page, query.PageSize); err != nil {
		return nil, err
	}

	offset := (query.Page - 1) * query.PageSize
	items, totalCount, err := s.repositories.IngredientRepository.List(ctx, query.Filter, query.PageSize, offset)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list ingredients")
	}
	span.SetTag("result.totalCount", totalCount)

	if items == nil {
		items = []*models.Ingredient{}
	}

	return &dto.IngredientPage{
		Items:      items,
		TotalCount: totalCount,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}, nil
}

func (s *ingredientService) mapRepositoryError(span opentracing.Span, err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrIngredientNotFound):
		return recipeerrors.NewNotFoundError(entityIngredient, id)
	case errors.Is(err, repository.ErrIngredientNameTaken):
		return recipeerrors.NewValidationMessage("name", validation.MsgIngredientNameUsed)
	default:
		tracing.TraceErr(span, err)
		s.logger.Errorf("ingredient store error for %q: %v", id, err)
		return err
	}
}
