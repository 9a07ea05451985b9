package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) interfaces.RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts the recipe and links recipe.Ingredients, all in one transaction.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeRepository.Create")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if recipe == nil {
		tracing.TraceErr(span, ErrInvalidInput)
		return ErrInvalidInput
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		tracing.TraceErr(span, tx.Error)
		return tx.Error
	}

	if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "error creating recipe")
	}
	tracing.TagEntity(span, recipe.ID)

	if err := linkIngredients(tx, recipe.ID, recipe.Ingredients); err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, id)

	if id == "" {
		return nil, ErrRecipeNotFound
	}

	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("LOWER(ingredients.name) ASC, ingredients.name ASC")
		}).
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &recipe, nil
}

// AddIngredients links the given ingredients to the recipe. Links that already exist are kept as is.
func (r *recipeRepository) AddIngredients(ctx context.Context, recipeID string, ingredients []*models.Ingredient) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeRepository.AddIngredients")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, recipeID)

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		tracing.TraceErr(span, tx.Error)
		return tx.Error
	}

	if err := touchRecipe(tx, recipeID); err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return err
	}

	if err := linkIngredients(tx, recipeID, ingredients); err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// RemoveIngredients unlinks the given ingredient ids. Ids that are not linked are ignored.
func (r *recipeRepository) RemoveIngredients(ctx context.Context, recipeID string, ingredientIDs []string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "recipeRepository.RemoveIngredients")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagEntity(span, recipeID)
	span.SetTag("ingredient_ids", strings.Join(ingredientIDs, ","))

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		tracing.TraceErr(span, tx.Error)
		return tx.Error
	}

	if err := touchRecipe(tx, recipeID); err != nil {
		tx.Rollback()
		tracing.TraceErr(span, err)
		return err
	}

	if len(ingredientIDs) > 0 {
		result := tx.Where("recipe_id = ? AND ingredient_id IN ?", recipeID, ingredientIDs).
			Delete(&models.RecipeIngredient{})
		if result.Error != nil {
			tx.Rollback()
			tracing.TraceErr(span, result.Error)
			return errors.Wrap(result.Error, "error removing recipe ingredients")
		}
		span.SetTag("result.removed", result.RowsAffected)
	}

	if err := tx.Commit().Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// touchRecipe bumps updated_at and doubles as the existence check inside a transaction.
func touchRecipe(tx *gorm.DB, recipeID string) error {
	if recipeID == "" {
		return ErrRecipeNotFound
	}
	result := tx.Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Update("updated_at", utils.Now())
	if result.Error != nil {
		return errors.Wrap(result.Error, "error updating recipe")
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func linkIngredients(tx *gorm.DB, recipeID string, ingredients []*models.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}

	links := make([]models.RecipeIngredient, 0, len(ingredients))
	seen := make(map[string]struct{}, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient == nil {
			continue
		}
		if _, ok := seen[ingredient.ID]; ok {
			continue
		}
		seen[ingredient.ID] = struct{}{}
		links = append(links, models.RecipeIngredient{RecipeID: recipeID, IngredientID: ingredient.ID})
	}
	if len(links) == 0 {
		return nil
	}

	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	if err != nil {
		return errors.Wrap(err, "error linking recipe ingredients")
	}
	return nil
}
