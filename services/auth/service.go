package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/customeros/recipestack/config"
	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/interfaces"
	"github.com/customeros/recipestack/internal/enum"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/metrics"
	"github.com/customeros/recipestack/internal/models"
	"github.com/customeros/recipestack/internal/repository"
	"github.com/customeros/recipestack/internal/tracing"
	"github.com/customeros/recipestack/internal/utils"
)

// metric kinds
const (
	kindToken   = "token"
	kindRefresh = "refresh"
	kindRequest = "request"
)

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	})
	return dummyHash
}

type Claims struct {
	TokenType enum.TokenType `json:"token_type"`
	UserID    string         `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	repositories    *repository.Repositories
	blacklist       interfaces.TokenBlacklist
	logger          logger.Logger
	signingKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	rotate          bool
	now             func() time.Time
}

// NewAuthService builds the token service. blacklist may be nil, in which case
// rotated refresh tokens stay valid until they expire.
func NewAuthService(cfg *config.AuthConfig, repos *repository.Repositories, blacklist interfaces.TokenBlacklist, log logger.Logger) interfaces.AuthService {
	return &authService{
		repositories:    repos,
		blacklist:       blacklist,
		logger:          log,
		signingKey:      []byte(cfg.SigningKey),
		accessLifetime:  time.Duration(cfg.AccessTokenLifetime) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetime) * time.Minute,
		rotate:          cfg.RotateRefreshTokens,
		now:             utils.Now,
	}
}

func (s *authService) ObtainTokenPair(ctx context.Context, username, password string) (*dto.TokenPair, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authService.ObtainTokenPair")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("username", username)

	user, err := s.repositories.UserRepository.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// keep timing close to the wrong-password path
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(password))
			metrics.AuthAttempts.WithLabelValues(kindToken, metrics.OutcomeDenied).Inc()
			return nil, recipeerrors.ErrInvalidCredentials
		}
		tracing.TraceErr(span, err)
		metrics.AuthAttempts.WithLabelValues(kindToken, metrics.OutcomeError).Inc()
		return nil, err
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttempts.WithLabelValues(kindToken, metrics.OutcomeDenied).Inc()
		return nil, recipeerrors.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		tracing.TraceErr(span, err)
		metrics.AuthAttempts.WithLabelValues(kindToken, metrics.OutcomeError).Inc()
		return nil, err
	}

	if err := s.repositories.UserRepository.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warnf("failed to update last login for user %s: %v", user.ID, err)
	}

	metrics.AuthAttempts.WithLabelValues(kindToken, metrics.OutcomeSuccess).Inc()
	return pair, nil
}

// RefreshToken issues a new access token. With rotation enabled it also issues a
// new refresh token and blacklists the one presented.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPair, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authService.RefreshToken")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	claims, err := s.parse(refreshToken, enum.TokenTypeRefresh)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(kindRefresh, metrics.OutcomeDenied).Inc()
		return nil, recipeerrors.ErrTokenInvalid
	}

	spent, err := s.spend(ctx, claims)
	if err != nil {
		tracing.TraceErr(span, err)
		metrics.AuthAttempts.WithLabelValues(kindRefresh, metrics.OutcomeError).Inc()
		return nil, err
	}
	if spent {
		metrics.AuthAttempts.WithLabelValues(kindRefresh, metrics.OutcomeDenied).Inc()
		return nil, recipeerrors.ErrTokenInvalid
	}

	access, err := s.sign(claims.UserID, enum.TokenTypeAccess, s.accessLifetime)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	pair := &dto.TokenPair{Access: access}

	if s.rotate {
		pair.Refresh, err = s.sign(claims.UserID, enum.TokenTypeRefresh, s.refreshLifetime)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	metrics.AuthAttempts.WithLabelValues(kindRefresh, metrics.OutcomeSuccess).Inc()
	return pair, nil
}

// spend reports whether the refresh token was already used. With rotation the token is
// claimed in the same step, before anything is signed, so concurrent callers cannot
// both rotate it.
func (s *authService) spend(ctx context.Context, claims *Claims) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	if !s.rotate {
		return s.blacklist.Contains(ctx, claims.ID)
	}
	claimed, err := s.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authService.Authenticate")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	claims, err := s.parse(accessToken, enum.TokenTypeAccess)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(kindRequest, metrics.OutcomeDenied).Inc()
		return nil, recipeerrors.NewAuthenticationError(err.Error())
	}

	user, err := s.repositories.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthAttempts.WithLabelValues(kindRequest, metrics.OutcomeDenied).Inc()
			return nil, recipeerrors.NewAuthenticationError("user not found")
		}
		tracing.TraceErr(span, err)
		metrics.AuthAttempts.WithLabelValues(kindRequest, metrics.OutcomeError).Inc()
		return nil, err
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues(kindRequest, metrics.OutcomeDenied).Inc()
		return nil, recipeerrors.NewAuthenticationError("user is inactive")
	}

	tracing.TagEntity(span, user.ID)
	metrics.AuthAttempts.WithLabelValues(kindRequest, metrics.OutcomeSuccess).Inc()
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, username, password, email string) (*models.User, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "authService.CreateUser")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("username", username)

	validationErr := recipeerrors.NewValidationError("create user")
	if username == "" {
		validationErr.Add("username", "This field may not be blank.")
	}
	if password == "" {
		validationErr.Add("password", "This field may not be blank.")
	}
	if err := validationErr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	err = s.repositories.UserRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, recipeerrors.NewValidationMessage("username", "A user with that username already exists.")
		}
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagEntity(span, user.ID)
	return user, nil
}

func (s *authService) issuePair(userID string) (*dto.TokenPair, error) {
	access, err := s.sign(userID, enum.TokenTypeAccess, s.accessLifetime)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(userID, enum.TokenTypeRefresh, s.refreshLifetime)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *authService) sign(userID string, tokenType enum.TokenType, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

func (s *authService) parse(token string, expected enum.TokenType) (*Claims, error) {
	if token == "" {
		return nil, errors.New("token is empty")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, errors.Errorf("token has wrong type %q", claims.TokenType)
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user")
	}
	return claims, nil
}
