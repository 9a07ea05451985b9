package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customeros/recipestack/internal/utils"
)

const HeaderRequestId = "X-Request-Id"

// CustomContextMiddleware attaches caller state to the request context. The user is
// added later by AuthMiddleware. The request id
// is taken from the X-Request-Id header when the client sent one and echoed back.
func CustomContextMiddleware(appSource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(HeaderRequestId)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header(HeaderRequestId, requestId)

		ctx := utils.WithCustomContext(c.Request.Context(), &utils.CustomContext{
			AppSource: appSource,
			RequestId: requestId,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
