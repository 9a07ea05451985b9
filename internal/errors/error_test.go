package errors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	validationErr := NewValidationError("create ingredient")
	assert.NoError(t, validationErr.OrNil())

	validationErr.Add("name", "This field may not be blank.")
	validationErr.Add("alias", "Too short.")

	assert.True(t, validationErr.HasErrors())
	assert.Equal(t, "Failed to create ingredient: alias: Too short. | name: This field may not be blank.", validationErr.Error())
}

func TestNewValidationMessage(t *testing.T) {
	err := NewValidationMessage("ingredientIds", ErrNoValidIngredients.Error())

	assert.Equal(t, "No valid ingredients to add.", err.Error())
	assert.Equal(t, []string{"No valid ingredients to add."}, err.Fields["ingredientIds"])
}

func TestOrNil_NilReceiver(t *testing.T) {
	var validationErr *ValidationError
	assert.Nil(t, validationErr.OrNil())
}

func TestClassifiers(t *testing.T) {
	notFound := errors.Wrap(NewNotFoundError("Recipe", "rcp_1"), "lookup")
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsValidation(notFound))
	assert.Equal(t, "Recipe not found.", NewNotFoundError("Recipe", "rcp_1").Error())

	assert.True(t, IsValidation(errors.WithStack(NewValidationMessage("page", "bad"))))

	authErr := NewAuthenticationError("token expired")
	assert.True(t, IsUnauthenticated(authErr))
	assert.True(t, IsUnauthenticated(ErrUnauthenticated))
	assert.Equal(t, "Authentication required.", authErr.Error())
	assert.False(t, IsUnauthenticated(errors.New("boom")))
}
