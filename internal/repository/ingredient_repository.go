package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

// ingredientNameOrder sorts names case-insensitively on every database, with the
// exact name breaking ties between names that differ only in case.
const ingredientNameOrder = "LOWER(name) ASC, name ASC"

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) interfaces.IngredientRepository {
	return &ingredientRepository{db: db}
}

// Create inserts a new ingredient. A concurrent insert of the same name loses on the unique index.
func (r *ingredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if ingredient == nil {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	err := r.db.WithContext(ctx).Create(ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrIngredientNameTaken
		}
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "error creating ingredient")
	}

	tracing.TagEntity(span, ingredient.ID)
	return nil
}

func (r *ingredientRepository) GetByID(ctx context.Context, id string) (*models.Ingredient, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if id == "" {
		return nil, ErrIngredientNotFound
	}

	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &ingredient, nil
}

// GetByIDs returns the ingredients that exist among ids; unknown ids are skipped.
func (r *ingredientRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Ingredient, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.GetByIDs")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	span.SetTag("ingredient_ids", strings.Join(ids, ","))

	ingredients := make([]*models.Ingredient, 0, len(ids))
	if len(ids) == 0 {
		return ingredients, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order(ingredientNameOrder).
		Find(&ingredients).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.SetTag("result.count", len(ingredients))
	return ingredients, nil
}

// ExistsByName reports whether an ingredient other than excludeID already uses name.
func (r *ingredientRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.ExistsByName")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	span.LogKV("request.name", name, "request.excludeID", excludeID)

	query := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("name = ?", name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}

	return count > 0, nil
}

func (r *ingredientRepository) Update(ctx context.Context, ingredient *models.Ingredient) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.Update")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if ingredient == nil || ingredient.ID == "" {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}
	tracing.TagEntity(span, ingredient.ID)

	ingredient.UpdatedAt = utils.Now()

	result := r.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id = ?", ingredient.ID).
		Updates(map[string]interface{}{
			"name":       ingredient.Name,
			"updated_at": ingredient.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrIngredientNameTaken
		}
		tracing.TraceErr(span, result.Error)
		return errors.Wrap(result.Error, "error updating ingredient")
	}
	if result.RowsAffected == 0 {
		return ErrIngredientNotFound
	}

	return nil
}

// Delete removes the ingredient and detaches it from every recipe in one transaction.
func (r *ingredientRepository) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.Delete")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if id == "" {
		return ErrIngredientNotFound
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		tracing.TraceErr(span, tx.Error)
		return tx.Error
	}

	if err := tx.Where("ingredient_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "error detaching ingredient from recipes")
	}

	result := tx.Where("id = ?", id).Delete(&models.Ingredient{})
	if result.Error != nil {
		tx.Rollback()
		tracing.TraceErr(span, result.Error)
		return errors.Wrap(result.Error, "error deleting ingredient")
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return ErrIngredientNotFound
	}

	if err := tx.Commit().Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// List returns one page of ingredients ordered by name, plus the total number matching filter.
func (r *ingredientRepository) List(ctx context.Context, filter string, limit, offset int) ([]*models.Ingredient, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingredientRepository.List")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	span.SetTag("filter", filter)
	span.SetTag("limit", limit)
	span.SetTag("offset", offset)

	var totalCount int64
	if err := r.filtered(ctx, filter).Count(&totalCount).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	var ingredients []*models.Ingredient
	err := r.filtered(ctx, filter).
		Order(ingredientNameOrder).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&ingredients).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, 0, err
	}

	return ingredients, totalCount, nil
}

func (r *ingredientRepository) filtered(ctx context.Context, filter string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Ingredient{})
	if filter != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, utils.ContainsPattern(filter))
	}
	return query
}
