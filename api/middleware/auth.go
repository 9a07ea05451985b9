package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	apierrors "github.com/customeros/recipestack/api/errors"
	"github.com/customeros/recipestack/interfaces"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

const bearerPrefix = "Bearer "

// AuthMiddleware requires a valid access token on every request it guards.
// Rejected requests get a 401 with a GraphQL shaped error body.
func AuthMiddleware(authService interfaces.AuthService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AuthMiddleware")
		defer span.Finish()
		tracing.TagComponent(span, tracing.ComponentRest)

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			span.LogKV("reason", "missing or malformed authorization header")
			abortUnauthenticated(c)
			return
		}

		user, err := authService.Authenticate(ctx, strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			if recipeerrors.IsUnauthenticated(err) {
				span.LogKV("reason", err.Error())
				abortUnauthenticated(c)
				return
			}
			tracing.TraceErr(span, err)
			log.Errorf("authentication failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierrors.NewResponse(apierrors.NewInternalError()))
			return
		}

		c.Request = c.Request.WithContext(utils.SetUserInContext(c.Request.Context(), user.ID, user.Username, user.Email))

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewResponse(apierrors.NewUnauthenticatedError()))
}
