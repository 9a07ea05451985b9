package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/customeros/recipestack/api/graphql"
	"github.com/customeros/recipestack/api/handlers"
	"github.com/customeros/recipestack/api/middleware"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/services"
)

const appSource = "recipestack"

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, log logger.Logger, graphqlMaxDepth int) error {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Health check and metrics endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gqlSchema, err := graphql.NewSchema(s, log, graphqlMaxDepth)
	if err != nil {
		return err
	}

	tokenHandler := handlers.NewTokenHandler(s.AuthService, log)
	token := r.Group("/api/token")
	token.Use(middleware.CustomContextMiddleware(appSource))
	token.Use(middleware.TracingMiddleware())
	{
		token.POST("/", tokenHandler.Obtain())
		token.POST("/refresh/", tokenHandler.Refresh())
	}

	gql := r.Group("/graphql")
	gql.Use(middleware.CustomContextMiddleware(appSource))
	gql.Use(middleware.TracingMiddleware())
	gql.Use(middleware.AuthMiddleware(s.AuthService, log))
	{
		gql.POST("", graphql.Handler(gqlSchema, log))
		gql.POST("/", graphql.Handler(gqlSchema, log))
	}

	return nil
}
