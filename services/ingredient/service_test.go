package ingredient

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/enum"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/internal/testutil"
	"github.com/customeros/recipestack/internal/utils"
	"github.com/customeros/recipestack/services/events"
)

func newTestService(t *testing.T) (interfaces.IngredientService, *repository.Repositories, *testutil.MockEventPublisher) {
	t.Helper()
	log := logger.NewNopLogger()
	repos := testutil.NewTestRepositories(t)
	publisher := testutil.NewAcceptingPublisher()
	return NewIngredientService(repos, events.NewEventsServiceWithPublisher(publisher, log), log), repos, publisher
}

func TestIngredientService_CreateIngredient(t *testing.T) {
	ctx := context.Background()
	service, _, publisher := newTestService(t)

	ingredient, err := service.CreateIngredient(ctx, dto.IngredientInput{Name: " Tomato "})

	require.NoError(t, err)
	assert.Equal(t, "Tomato", ingredient.Name)
	publisher.AssertCalled(t, "PublishFanoutEvent", mock.Anything, ingredient.ID, enum.INGREDIENT, dto.IngredientCreated{Name: "Tomato"})
}

func TestIngredientService_CreateIngredient_Duplicate(t *testing.T) {
	ctx := context.Background()
	service, _, publisher := newTestService(t)
	_, err := service.CreateIngredient(ctx, dto.IngredientInput{Name: "Salt"})
	require.NoError(t, err)

	_, err = service.CreateIngredient(ctx, dto.IngredientInput{Name: "Salt"})

	require.True(t, recipeerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "ingredient with this name already exists.")
	publisher.AssertNumberOfCalls(t, "PublishFanoutEvent", 1)
}

func TestIngredientService_CreateIngredient_Blank(t *testing.T) {
	ctx := context.Background()
	service, _, publisher := newTestService(t)

	_, err := service.CreateIngredient(ctx, dto.IngredientInput{Name: ""})

	assert.True(t, recipeerrors.IsValidation(err))
	publisher.AssertNotCalled(t, "PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngredientService_CreateIngredient_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()
	repos := testutil.NewTestRepositories(t)
	publisher := &testutil.MockEventPublisher{}
	publisher.On("PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	service := NewIngredientService(repos, events.NewEventsServiceWithPublisher(publisher, log), log)

	ingredient, err := service.CreateIngredient(ctx, dto.IngredientInput{Name: "Thyme"})

	require.NoError(t, err)
	stored, err := repos.IngredientRepository.GetByID(ctx, ingredient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thyme", stored.Name)
}

func TestIngredientService_UpdateIngredient(t *testing.T) {
	ctx := context.Background()
	service, repos, publisher := newTestService(t)
	ingredient := testutil.InsertIngredient(ctx, t, repos, "Chilli")

	updated, err := service.UpdateIngredient(ctx, ingredient.ID, dto.IngredientPatch{Name: utils.StringPtr("Chili")})

	require.NoError(t, err)
	assert.Equal(t, "Chili", updated.Name)
	stored, err := repos.IngredientRepository.GetByID(ctx, ingredient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chili", stored.Name)
	publisher.AssertCalled(t, "PublishFanoutEvent", mock.Anything, ingredient.ID, enum.INGREDIENT, dto.IngredientUpdated{Name: "Chili"})
}

func TestIngredientService_UpdateIngredient_SameName(t *testing.T) {
	ctx := context.Background()
	service, repos, _ := newTestService(t)
	ingredient := testutil.InsertIngredient(ctx, t, repos, "Cumin")

	updated, err := service.UpdateIngredient(ctx, ingredient.ID, dto.IngredientPatch{Name: utils.StringPtr("Cumin")})

	require.NoError(t, err)
	assert.Equal(t, "Cumin", updated.Name)
}

func TestIngredientService_UpdateIngredient_EmptyPatch(t *testing.T) {
	ctx := context.Background()
	service, repos, publisher := newTestService(t)
	ingredient := testutil.InsertIngredient(ctx, t, repos, "Mint")

	updated, err := service.UpdateIngredient(ctx, ingredient.ID, dto.IngredientPatch{})

	require.NoError(t, err)
	assert.Equal(t, "Mint", updated.Name)
	publisher.AssertNotCalled(t, "PublishFanoutEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngredientService_UpdateIngredient_Errors(t *testing.T) {
	ctx := context.Background()
	service, repos, _ := newTestService(t)
	ingredient := testutil.InsertIngredient(ctx, t, repos, "Dill")
	testutil.InsertIngredient(ctx, t, repos, "Fennel")

	_, err := service.UpdateIngredient(ctx, "ingr_missing", dto.IngredientPatch{Name: utils.StringPtr("Anything")})
	require.True(t, recipeerrors.IsNotFound(err))
	assert.Equal(t, "Ingredient not found.", err.Error())

	_, err = service.UpdateIngredient(ctx, ingredient.ID, dto.IngredientPatch{Name: utils.StringPtr("Fennel")})
	assert.True(t, recipeerrors.IsValidation(err))

	_, err = service.UpdateIngredient(ctx, ingredient.ID, dto.IngredientPatch{Name: utils.StringPtr(" ")})
	assert.True(t, recipeerrors.IsValidation(err))
}

func TestIngredientService_DeleteIngredient(t *testing.T) {
	ctx := context.Background()
	service, repos, publisher := newTestService(t)
	ingredient := testutil.InsertIngredient(ctx, t, repos, "Sage")

	deleted, err := service.DeleteIngredient(ctx, ingredient.ID)

	require.NoError(t, err)
	assert.True(t, deleted)
	publisher.AssertCalled(t, "PublishFanoutEvent", mock.Anything, ingredient.ID, enum.INGREDIENT, dto.IngredientDeleted{})

	deleted, err = service.DeleteIngredient(ctx, ingredient.ID)
	assert.False(t, deleted)
	require.True(t, recipeerrors.IsNotFound(err))
	assert.Equal(t, "Ingredient not found.", err.Error())
}

func TestIngredientService_ListIngredients(t *testing.T) {
	ctx := context.Background()
	service, repos, _ := newTestService(t)
	for i := 1; i <= 12; i++ {
		testutil.InsertIngredient(ctx, t, repos, fmt.Sprintf("Spice %02d", i))
	}

	page, err := service.ListIngredients(ctx, dto.IngredientListQuery{Page: 2, PageSize: 5})

	require.NoError(t, err)
	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PageSize)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "Spice 06", page.Items[0].Name)
	assert.Equal(t, "Spice 10", page.Items[4].Name)
}

func TestIngredientService_ListIngredients_PastTheEnd(t *testing.T) {
	ctx := context.Background()
	service, repos, _ := newTestService(t)
	testutil.InsertIngredient(ctx, t, repos, "Only")

	page, err := service.ListIngredients(ctx, dto.IngredientListQuery{Page: 5, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestIngredientService_ListIngredients_InvalidPage(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.ListIngredients(ctx, dto.IngredientListQuery{Page: 0, PageSize: 10})
	assert.True(t, recipeerrors.IsValidation(err))

	_, err = service.ListIngredients(ctx, dto.IngredientListQuery{Page: 1, PageSize: 0})
	assert.True(t, recipeerrors.IsValidation(err))
}
