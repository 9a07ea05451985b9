package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
)

type Config struct {
	AppConfig                 *AppConfig
	Logger                    *logger.Config
	Tracing                   *tracing.JaegerConfig
	RecipestackDatabaseConfig *RecipestackDatabaseConfig
	AuthConfig                *AuthConfig
	EventsConfig              *EventsConfig
	RedisConfig               *RedisConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:                 &AppConfig{},
		Logger:                    &logger.Config{},
		Tracing:                   &tracing.JaegerConfig{},
		RecipestackDatabaseConfig: &RecipestackDatabaseConfig{},
		AuthConfig:                &AuthConfig{},
		EventsConfig:              &EventsConfig{},
		RedisConfig:               &RedisConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		return nil, err
	}

	return config, nil
}
