package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"go.uber.org/zap"
)

// ErrorHandler catches panics and converts them to a JSON 500
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
				)
				appErr := errors.Internal("internal server error", "")
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr)
			}
		}()
		c.Next()
	}
}

// JSONErrorResponse renders err as {"error", "code", "details"}
func JSONErrorResponse(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.JSON(appErr.Status, appErr)
}
