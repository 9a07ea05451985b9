package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/recipestack/api/graphql/schema"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/metrics"
	"github.com/customeros/recipestack/internal/testutil"
	"github.com/customeros/recipestack/services"
	"github.com/customeros/recipestack/services/events"
	"github.com/customeros/recipestack/services/ingredient"
	"github.com/customeros/recipestack/services/recipe"
)

type gqlError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions"`
}

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

type ingredientView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type recipeView struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	Ingredients     []ingredientView `json:"ingredients"`
	IngredientCount int              `json:"ingredientCount"`
}

type listView struct {
	Items      []ingredientView `json:"items"`
	TotalCount int              `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}

const recipeFields = `id title description ingredientCount ingredients { id name }`

func newTestSchema(t *testing.T) *graphqlgo.Schema {
	t.Helper()
	log := logger.NewNopLogger()
	repos := testutil.NewTestRepositories(t)
	eventsService := events.NewEventsServiceWithPublisher(events.NewNoopPublisher(log), log)
	svcs := &services.Services{
		EventsService:     eventsService,
		IngredientService: ingredient.NewIngredientService(repos, eventsService, log),
		RecipeService:     recipe.NewRecipeService(repos, eventsService, log),
	}

	gqlSchema, err := NewSchema(svcs, log, 10)
	require.NoError(t, err)
	return gqlSchema
}

func exec(t *testing.T, gqlSchema *graphqlgo.Schema, query string, variables map[string]interface{}) gqlResult {
	t.Helper()
	response := gqlSchema.Exec(context.Background(), query, "", variables)
	body, err := json.Marshal(response)
	require.NoError(t, err)

	var result gqlResult
	require.NoError(t, json.Unmarshal(body, &result))
	return result
}

func field[T any](t *testing.T, result gqlResult, name string) T {
	t.Helper()
	require.Empty(t, result.Errors)
	var value T
	require.NoError(t, json.Unmarshal(result.Data[name], &value))
	return value
}

func createIngredient(t *testing.T, gqlSchema *graphqlgo.Schema, name string) ingredientView {
	t.Helper()
	result := exec(t, gqlSchema, `mutation($name: String!) { createIngredient(name: $name) { id name } }`,
		map[string]interface{}{"name": name})
	return field[ingredientView](t, result, "createIngredient")
}

func errorCode(t *testing.T, result gqlResult) string {
	t.Helper()
	require.Len(t, result.Errors, 1)
	code, _ := result.Errors[0].Extensions["code"].(string)
	return code
}

func TestSchema_GetRecipe_NotFoundAfterCreatingIngredient(t *testing.T) {
	gqlSchema := newTestSchema(t)
	kale := createIngredient(t, gqlSchema, "Kale")
	assert.Equal(t, "Kale", kale.Name)

	result := exec(t, gqlSchema, `query($id: ID!) { getRecipe(id: $id) { id } }`,
		map[string]interface{}{"id": kale.ID})

	assert.Equal(t, "NOT_FOUND", errorCode(t, result))
	assert.Equal(t, "Recipe not found.", result.Errors[0].Message)
}

func TestSchema_TomatoSoupLifecycle(t *testing.T) {
	gqlSchema := newTestSchema(t)
	tomato := createIngredient(t, gqlSchema, "Tomato")
	basil := createIngredient(t, gqlSchema, "Basil")

	created := field[recipeView](t, exec(t, gqlSchema,
		`mutation($ids: [ID!]) { createRecipe(title: "Tomato Soup", ingredientIds: $ids) { `+recipeFields+` } }`,
		map[string]interface{}{"ids": []interface{}{tomato.ID, basil.ID}}), "createRecipe")
	assert.Equal(t, "Tomato Soup", created.Title)
	assert.Equal(t, 2, created.IngredientCount)
	require.NotNil(t, created.Description)
	assert.Equal(t, "", *created.Description)

	removed := field[recipeView](t, exec(t, gqlSchema,
		`mutation($id: ID!, $ids: [ID!]!) { removeIngredientsFromRecipe(recipeId: $id, ingredientIds: $ids) { `+recipeFields+` } }`,
		map[string]interface{}{"id": created.ID, "ids": []interface{}{basil.ID}}), "removeIngredientsFromRecipe")
	assert.Equal(t, 1, removed.IngredientCount)
	require.Len(t, removed.Ingredients, 1)
	assert.Equal(t, "Tomato", removed.Ingredients[0].Name)

	fetched := field[recipeView](t, exec(t, gqlSchema,
		`query($id: ID!) { getRecipe(id: $id) { `+recipeFields+` } }`,
		map[string]interface{}{"id": created.ID}), "getRecipe")
	assert.Equal(t, 1, fetched.IngredientCount)
}

func TestSchema_CreateRecipe_MixedIds(t *testing.T) {
	gqlSchema := newTestSchema(t)
	tomato := createIngredient(t, gqlSchema, "Tomato")

	created := field[recipeView](t, exec(t, gqlSchema,
		`mutation { createRecipe(title: "Sauce", description: "Simmer.", ingredientIds: ["`+tomato.ID+`", "ingr_nope"]) { `+recipeFields+` } }`,
		nil), "createRecipe")

	assert.Equal(t, 1, created.IngredientCount)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Simmer.", *created.Description)
}

func TestSchema_AddIngredients(t *testing.T) {
	gqlSchema := newTestSchema(t)
	tomato := createIngredient(t, gqlSchema, "Tomato")
	basil := createIngredient(t, gqlSchema, "Basil")
	created := field[recipeView](t, exec(t, gqlSchema, `mutation { createRecipe(title: "Salad") { `+recipeFields+` } }`, nil), "createRecipe")
	assert.Equal(t, 0, created.IngredientCount)

	query := `mutation($id: ID!, $ids: [ID!]!) { addIngredientsToRecipe(recipeId: $id, ingredientIds: $ids) { ` + recipeFields + ` } }`

	result := exec(t, gqlSchema, query, map[string]interface{}{"id": created.ID, "ids": []interface{}{"ingr_a", "ingr_b"}})
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, result))
	assert.Equal(t, "No valid ingredients to add.", result.Errors[0].Message)

	added := field[recipeView](t, exec(t, gqlSchema, query,
		map[string]interface{}{"id": created.ID, "ids": []interface{}{tomato.ID, "ingr_a", basil.ID}}), "addIngredientsToRecipe")
	assert.Equal(t, 2, added.IngredientCount)

	result = exec(t, gqlSchema, query, map[string]interface{}{"id": "rcp_missing", "ids": []interface{}{tomato.ID}})
	assert.Equal(t, "NOT_FOUND", errorCode(t, result))
}

func TestSchema_IngredientMutations(t *testing.T) {
	gqlSchema := newTestSchema(t)
	salt := createIngredient(t, gqlSchema, "Salt")

	result := exec(t, gqlSchema, `mutation { createIngredient(name: "Salt") { id } }`, nil)
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, result))
	assert.Contains(t, result.Errors[0].Message, "ingredient with this name already exists.")

	updated := field[ingredientView](t, exec(t, gqlSchema, `mutation($id: ID!) { updateIngredient(id: $id, name: "Sea Salt") { id name } }`,
		map[string]interface{}{"id": salt.ID}), "updateIngredient")
	assert.Equal(t, "Sea Salt", updated.Name)

	deleted := field[bool](t, exec(t, gqlSchema, `mutation($id: ID!) { deleteIngredient(id: $id) }`,
		map[string]interface{}{"id": salt.ID}), "deleteIngredient")
	assert.True(t, deleted)

	result = exec(t, gqlSchema, `mutation($id: ID!) { deleteIngredient(id: $id) }`, map[string]interface{}{"id": salt.ID})
	assert.Equal(t, "NOT_FOUND", errorCode(t, result))
	assert.Equal(t, "Ingredient not found.", result.Errors[0].Message)
}

func TestSchema_ListIngredients(t *testing.T) {
	gqlSchema := newTestSchema(t)
	for i := 1; i <= 12; i++ {
		createIngredient(t, gqlSchema, fmt.Sprintf("Herb %02d", i))
	}

	list := field[listView](t, exec(t, gqlSchema,
		`{ listIngredients(page: 2, pageSize: 5) { totalCount page pageSize items { id name } } }`, nil), "listIngredients")

	assert.Equal(t, 12, list.TotalCount)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 5, list.PageSize)
	require.Len(t, list.Items, 5)
	assert.Equal(t, "Herb 06", list.Items[0].Name)
	assert.Equal(t, "Herb 10", list.Items[4].Name)

	defaults := field[listView](t, exec(t, gqlSchema, `{ listIngredients(filter: "herb 1") { totalCount page pageSize items { name } } }`, nil), "listIngredients")
	assert.Equal(t, 3, defaults.TotalCount)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 10, defaults.PageSize)

	result := exec(t, gqlSchema, `{ listIngredients(page: 0) { totalCount } }`, nil)
	assert.Equal(t, "BAD_USER_INPUT", errorCode(t, result))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gqlSchema := newTestSchema(t)
	router := gin.New()
	router.POST("/graphql", Handler(gqlSchema, logger.NewNopLogger()))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/graphql",
		strings.NewReader(`{"query":"mutation { createIngredient(name: \"Leek\") { name } }","operationName":""}`))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"createIngredient":{"name":"Leek"}}}`, recorder.Body.String())

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`not json`))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "BAD_USER_INPUT")
}

func TestOperationLabel(t *testing.T) {
	assert.Equal(t, "anonymous", operationLabel(""))
	assert.Equal(t, "getRecipe", operationLabel("getRecipe"))
	assert.Equal(t, "other", operationLabel("MyDashboardQuery"))
	assert.Equal(t, "other", operationLabel("GetRecipe"))

	for name := range knownOperations {
		assert.Contains(t, schema.Schema, "    "+name+"(", "unknown root field %s", name)
	}
}

func TestHandler_ClientOperationNamesDoNotBecomeLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gqlSchema := newTestSchema(t)
	router := gin.New()
	router.POST("/graphql", Handler(gqlSchema, logger.NewNopLogger()))
	seriesBefore := promtestutil.CollectAndCount(metrics.GraphqlOperations)
	before := promtestutil.ToFloat64(metrics.GraphqlOperations.WithLabelValues("other", metrics.OutcomeSuccess))

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"query":"query Client%d { listIngredients { totalCount } }","operationName":"Client%d"}`, i, i)
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	after := promtestutil.ToFloat64(metrics.GraphqlOperations.WithLabelValues("other", metrics.OutcomeSuccess))
	assert.Equal(t, float64(3), after-before)
	// at most the "other" series is new, one per client name would add three
	assert.LessOrEqual(t, promtestutil.CollectAndCount(metrics.GraphqlOperations)-seriesBefore, 1)
}
