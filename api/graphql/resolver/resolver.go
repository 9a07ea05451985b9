package resolver

import (
	"context"

	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/recipestack/api/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
	"github.com/customeros/recipestack/services"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	services *services.Services
	logger   logger.Logger
}

func NewResolver(svcs *services.Services, log logger.Logger) *Resolver {
	return &Resolver{
		services: svcs,
		logger:   log,
	}
}

// graphqlError converts a service error into the error returned to graphql-go.
// Unexpected errors are logged and replaced by a generic message.
func (r *Resolver) graphqlError(ctx context.Context, operation string, err error) error {
	gqlErr, unexpected := apierrors.FromDomainError(err)
	if unexpected {
		if span := opentracing.SpanFromContext(ctx); span != nil {
			tracing.TraceErr(span, err)
		}
		r.logger.Errorf("%s failed (user %s %s, request %s): %v", operation,
			utils.GetUserIdFromContext(ctx), utils.GetUsernameFromContext(ctx), utils.GetRequestIdFromContext(ctx), err)
	}
	return gqlErr
}

func startResolverSpan(ctx context.Context, operation string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Resolver."+operation)
	tracing.SetDefaultGraphqlSpanTags(ctx, span)
	return span, ctx
}
