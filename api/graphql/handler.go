package graphql

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	graphqlgo "github.com/graph-gophers/graphql-go"
	gqlopentracing "github.com/graph-gophers/graphql-go/trace/opentracing"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	apierrors "github.com/customeros/recipestack/api/errors"
	"github.com/customeros/recipestack/api/graphql/resolver"
	"github.com/customeros/recipestack/api/graphql/schema"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/metrics"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/services"
)

const (
	anonymousOperation = "anonymous"
	otherOperation     = "other"
)

// knownOperations are the root fields of the schema. Clients choose operation names
// freely, so only these are used as metric labels.
var knownOperations = map[string]struct{}{
	"listIngredients":             {},
	"getRecipe":                   {},
	"createIngredient":            {},
	"updateIngredient":            {},
	"deleteIngredient":            {},
	"createRecipe":                {},
	"addIngredientsToRecipe":      {},
	"removeIngredientsFromRecipe": {},
}

func operationLabel(operationName string) string {
	if operationName == "" {
		return anonymousOperation
	}
	if _, ok := knownOperations[operationName]; ok {
		return operationName
	}
	return otherOperation
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// NewSchema parses the embedded schema against the root resolver.
func NewSchema(svcs *services.Services, log logger.Logger, maxDepth int) (*graphqlgo.Schema, error) {
	opts := []graphqlgo.SchemaOpt{
		graphqlgo.UseFieldResolvers(),
		graphqlgo.Tracer(gqlopentracing.Tracer{}),
	}
	if maxDepth > 0 {
		opts = append(opts, graphqlgo.MaxDepth(maxDepth))
	}

	parsed, err := graphqlgo.ParseSchema(schema.Schema, resolver.NewResolver(svcs, log), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse graphql schema")
	}
	return parsed, nil
}

// Handler executes GraphQL requests posted as JSON.
func Handler(gqlSchema *graphqlgo.Schema, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "GraphqlHandler")
		defer span.Finish()
		tracing.SetDefaultGraphqlSpanTags(ctx, span)

		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, apierrors.NewResponse(apierrors.NewError("Invalid request body.", apierrors.CodeBadInput, nil)))
			return
		}

		operation := operationLabel(req.OperationName)
		span.SetTag("graphql.operation", req.OperationName)

		start := time.Now()
		response := gqlSchema.Exec(ctx, req.Query, req.OperationName, req.Variables)
		metrics.GraphqlDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

		outcome := metrics.OutcomeSuccess
		if len(response.Errors) > 0 {
			outcome = metrics.OutcomeError
			span.LogKV("graphql.errors", len(response.Errors))
			log.Debugf("graphql operation %q returned %d errors", req.OperationName, len(response.Errors))
		}
		metrics.GraphqlOperations.WithLabelValues(operation, outcome).Inc()

		c.JSON(http.StatusOK, response)
	}
}
