package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ems-mock/internal/api/models"
)

// Health handles GET /health and GET /api/health. It does not touch the
// simulation.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: models.ServiceName,
		Version: models.ServiceVersion,
	})
}
