package services

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/customeros/recipestack/config"
	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/services/auth"
	"github.com/customeros/recipestack/services/events"
	"github.com/customeros/recipestack/services/ingredient"
	"github.com/customeros/recipestack/services/recipe"
)

type Services struct {
	EventsService     *events.EventsService
	IngredientService interfaces.IngredientService
	RecipeService     interfaces.RecipeService
	AuthService       interfaces.AuthService

	redisClient *redis.Client
}

func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	// events
	eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, events.PublisherConfigFrom(cfg.EventsConfig))
	if err != nil {
		return nil, err
	}

	// refresh token blacklist
	var blacklist interfaces.TokenBlacklist
	var redisClient *redis.Client
	if cfg.RedisConfig.URL != "" {
		redisClient, err = auth.NewRedisClient(ctx, cfg.RedisConfig.URL)
		if err != nil {
			eventsService.Close()
			return nil, err
		}
		blacklist = auth.NewRedisBlacklist(redisClient)
	} else if cfg.AuthConfig.RotateRefreshTokens {
		log.Warn("REDIS_URL not set, rotated refresh tokens will not be blacklisted")
	}

	services := Services{
		EventsService:     eventsService,
		IngredientService: ingredient.NewIngredientService(repos, eventsService, log),
		RecipeService:     recipe.NewRecipeService(repos, eventsService, log),
		AuthService:       auth.NewAuthService(cfg.AuthConfig, repos, blacklist, log),
		redisClient:       redisClient,
	}

	return &services, nil
}

func (s *Services) Close() error {
	var err error
	if s.EventsService != nil {
		err = s.EventsService.Close()
	}
	if s.redisClient != nil {
		if closeErr := s.redisClient.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
