package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzla-dev/bolivar_rates_api/internal/dto"
)

// getHealth godoc
// @Summary Liveness probe
// @Description Reports that the API process is up.
// @Tags health
// @Produce json
// @Success 200 {object} dto.Response
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "API is running",
		Meta:    map[string]any{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
}
