package interfaces

import (
	"context"
	"time"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/internal/models"
)

type AuthService interface {
	// ObtainTokenPair checks credentials and issues an access/refresh pair.
	ObtainTokenPair(ctx context.Context, username, password string) (*dto.TokenPair, error)
	// RefreshToken exchanges a refresh token for a new access token.
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
	// Authenticate resolves an access token to an active user.
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
	CreateUser(ctx context.Context, username, password, email string) (*models.User, error)
}

// TokenBlacklist remembers spent refresh tokens until they would have expired anyway.
type TokenBlacklist interface {
	// Add atomically marks jti as spent. It reports false when jti was already spent
	// or ttl has run out, in which case the token must be rejected.
	Add(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Contains(ctx context.Context, jti string) (bool, error)
}
