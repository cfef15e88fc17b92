// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"albash_solutions_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler maps errors attached to the Gin context onto the APIError
// envelope after the handler chain has run. Handlers attach errors with
// c.Error and abort; only the first attached error is rendered.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors[0].Err
			if apiErr, ok := common.IsAPIError(err); ok {
				c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
				return
			}

			logger.Error("Unhandled application error",
				zap.Error(err),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetString(RequestIDContextKey)),
			)
			internal := common.ErrInternalServer
			// Raw error text only leaks in debug mode.
			if gin.Mode() == gin.DebugMode && err != nil {
				internal = internal.WithDetails(err.Error())
			}
			c.AbortWithStatusJSON(internal.StatusCode, internal)
			return
		}

		// Router-level misses never reach a handler, so they carry no
		// context error to map.
		switch c.Writer.Status() {
		case http.StatusNotFound:
			notFound := common.ErrNotFound.WithDetails("The requested endpoint does not exist.")
			c.AbortWithStatusJSON(notFound.StatusCode, notFound)
		case http.StatusMethodNotAllowed:
			notAllowed := common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")
			c.AbortWithStatusJSON(notAllowed.StatusCode, notAllowed)
		}
	}
}
