package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ems-mock/internal/api/models"
	"ems-mock/internal/logger"
)

// ErrorHandler recovers panics raised while building a response and turns
// them into 500 {"error": "<message>"}.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NopLogger{}
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		msg := recoveredMessage(recovered)
		log.Errorf("%s %s failed: %s", c.Request.Method, c.Request.URL.Path, msg)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: msg})
	})
}

func recoveredMessage(recovered any) string {
	switch v := recovered.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
}
