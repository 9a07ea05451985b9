// Package validation turns raw ingredient and recipe input into field sets
// that are safe to persist. It only reads from the store.
package validation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/interfaces"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

const (
	msgRequired           = "This field is required."
	msgBlank              = "This field may not be blank."
	MsgIngredientNameUsed = "ingredient with this name already exists."
)

type IngredientFields struct {
	Name string
}

type RecipeFields struct {
	Title       string
	Description string
	Ingredients []*models.Ingredient
}

// ValidateIngredient checks a full ingredient input. existingID is the id of the
// ingredient being updated, or empty on create.
func ValidateIngredient(ctx context.Context, repo interfaces.IngredientRepository, op string, input dto.IngredientInput, existingID string) (*IngredientFields, error) {
	return ValidateIngredientPatch(ctx, repo, op, dto.IngredientPatch{Name: &input.Name}, existingID, true)
}

// ValidateIngredientPatch checks only the fields present in the patch unless full is set,
// in which case missing fields are reported as required.
func ValidateIngredientPatch(ctx context.Context, repo interfaces.IngredientRepository, op string, patch dto.IngredientPatch, existingID string, full bool) (*IngredientFields, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "validation.ValidateIngredient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	validationErr := recipeerrors.NewValidationError(op)
	fields := &IngredientFields{}

	switch {
	case patch.Name == nil && full:
		validationErr.Add("name", msgRequired)
	case patch.Name != nil:
		name := strings.TrimSpace(*patch.Name)
		if msg := checkText(name, models.IngredientNameMaxLength); msg != "" {
			validationErr.Add("name", msg)
			break
		}
		exists, err := repo.ExistsByName(ctx, name, existingID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if exists {
			validationErr.Add("name", MsgIngredientNameUsed)
			break
		}
		fields.Name = name
	}

	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return fields, nil
}

// ValidateRecipe checks the recipe input and resolves its ingredient ids.
// Ids that do not resolve to a stored ingredient are dropped without error.
func ValidateRecipe(ctx context.Context, repo interfaces.IngredientRepository, op string, input dto.RecipeInput) (*RecipeFields, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "validation.ValidateRecipe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	validationErr := recipeerrors.NewValidationError(op)

	title := strings.TrimSpace(input.Title)
	if msg := checkText(title, models.RecipeTitleMaxLength); msg != "" {
		validationErr.Add("title", msg)
	}
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	ingredients, err := repo.GetByIDs(ctx, utils.UniqueStrings(input.IngredientIds))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogKV("requested", len(input.IngredientIds), "resolved", len(ingredients))

	return &RecipeFields{
		Title:       title,
		Description: utils.GetOrDefault(input.Description, ""),
		Ingredients: ingredients,
	}, nil
}

// ValidatePage rejects page numbers and sizes below one. There is no upper bound on size.
func ValidatePage(page, pageSize int) error {
	validationErr := recipeerrors.NewValidationError("list ingredients")
	if page < 1 {
		validationErr.Add("page", "Ensure this value is greater than or equal to 1.")
	}
	if pageSize < 1 {
		validationErr.Add("pageSize", "Ensure this value is greater than or equal to 1.")
	}
	return validationErr.OrNil()
}

func checkText(value string, maxLength int) string {
	if value == "" {
		return msgBlank
	}
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Sprintf("Ensure this field has no more than %d characters.", maxLength)
	}
	return ""
}
