package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
	"github.com/vzla-dev/bolivar_rates_api/internal/dto"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	registerValidations()

	r.GET("/health", getHealth)

	registerRateRoutes(&r.RouterGroup, services.Rate, services.Scraper)
	registerBinanceRoutes(&r.RouterGroup, services.Rate, services.BinanceLive, services.Scraper)

	// Unknown routes answer with the same envelope as everything else.
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Fail("Route not found"))
	})
}

// registerValidations adds the custom binding rules used by the query DTOs.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("datefmt", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dto.DateLayout, fl.Field().String())
		return err == nil
	})
}
