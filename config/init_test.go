package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("RECIPESTACK_POSTGRES_HOST", "localhost")
	t.Setenv("RECIPESTACK_POSTGRES_PORT", "5432")
	t.Setenv("RECIPESTACK_POSTGRES_USER", "recipes")
	t.Setenv("RECIPESTACK_POSTGRES_DB_NAME", "recipes")
	t.Setenv("RECIPESTACK_POSTGRES_PASSWORD", "secret")
	t.Setenv("JWT_SIGNING_KEY", "signing-key")
}

func TestInitConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := InitConfig()

	require.NoError(t, err)
	assert.Equal(t, "12222", cfg.AppConfig.APIPort)
	assert.Equal(t, 10, cfg.AppConfig.GraphQLMaxDepth)
	assert.Equal(t, "", cfg.AppConfig.RabbitMQURL)
	assert.Equal(t, 5, cfg.AuthConfig.AccessTokenLifetime)
	assert.Equal(t, 1440, cfg.AuthConfig.RefreshTokenLifetime)
	assert.False(t, cfg.AuthConfig.RotateRefreshTokens)
	assert.Equal(t, "require", cfg.RecipestackDatabaseConfig.SSLMode)
	assert.Equal(t, "recipestack", cfg.Tracing.ServiceName)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
	assert.Equal(t, 240, cfg.EventsConfig.MessageTTLHours)
	assert.Equal(t, 3, cfg.EventsConfig.PublishMaxRetries)
}

func TestInitConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_ROTATE_REFRESH_TOKENS", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := InitConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppConfig.APIPort)
	assert.True(t, cfg.AuthConfig.RotateRefreshTokens)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisConfig.URL)
}

func TestInitConfig_MissingSigningKey(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

	_, err := InitConfig()

	assert.Error(t, err)
}
