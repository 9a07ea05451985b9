package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/recipestack/dto"
	"github.com/customeros/recipestack/interfaces"
	recipeerrors "github.com/customeros/recipestack/internal/errors"
	"github.com/customeros/recipestack/internal/logger"
	"github.com/customeros/recipestack/internal/tracing"
)

const codeTokenNotValid = "token_not_valid"

type TokenHandler struct {
	authService interfaces.AuthService
	logger      logger.Logger
}

func NewTokenHandler(authService interfaces.AuthService, log logger.Logger) *TokenHandler {
	return &TokenHandler{
		authService: authService,
		logger:      log,
	}
}

// Obtain exchanges username and password for an access/refresh token pair.
func (h *TokenHandler) Obtain() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TokenHandler.Obtain")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.TokenObtainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "username and password are required"})
			return
		}

		pair, err := h.authService.ObtainTokenPair(ctx, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, recipeerrors.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": recipeerrors.ErrInvalidCredentials.Error()})
				return
			}
			tracing.TraceErr(span, err)
			h.logger.Errorf("failed to obtain token pair: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			return
		}

		c.JSON(http.StatusOK, pair)
	}
}

// Refresh exchanges a refresh token for a new access token.
func (h *TokenHandler) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "TokenHandler.Refresh")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var req dto.TokenRefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "refresh is required"})
			return
		}

		pair, err := h.authService.RefreshToken(ctx, req.Refresh)
		if err != nil {
			if errors.Is(err, recipeerrors.ErrTokenInvalid) {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": recipeerrors.ErrTokenInvalid.Error(), "code": codeTokenNotValid})
				return
			}
			tracing.TraceErr(span, err)
			h.logger.Errorf("failed to refresh token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error."})
			return
		}

		c.JSON(http.StatusOK, pair)
	}
}
