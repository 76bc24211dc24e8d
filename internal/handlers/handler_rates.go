package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
	"github.com/vzla-dev/bolivar_rates_api/internal/dto"
	"github.com/vzla-dev/bolivar_rates_api/internal/middleware"
)

// defaultHistoryWindow is how far back history queries reach when no start
// date is given.
const defaultHistoryWindow = 30 * 24 * time.Hour

// rateHandler handles HTTP requests for stored exchange rates.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
	scraper     portssvc.ScraperSvcFacade
}

// newRateHandler creates a new rateHandler.
func newRateHandler(rs portssvc.RateSvcFacade, scraper portssvc.ScraperSvcFacade) *rateHandler {
	return &rateHandler{rateService: rs, scraper: scraper}
}

// registerRateRoutes registers routes related to stored rates.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade, scraper portssvc.ScraperSvcFacade) {
	h := newRateHandler(rateService, scraper)

	rates := rg.Group("/rates")
	{
		rates.GET("/latest", h.getLatestRates)
		rates.GET("/history", h.getHistory)
		rates.GET("/date/:date", h.getByDate)
		rates.POST("/update", h.updateRates)
	}
}

// getLatestRates godoc
// @Summary Latest stored rates
// @Description Returns the most recent rate per (provider, base currency) pair.
// @Tags rates
// @Produce json
// @Param provider query string false "Provider name filter"
// @Param currency query string false "Base currency filter"
// @Success 200 {object} dto.Response
// @Router /rates/latest [get]
func (h *rateHandler) getLatestRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	provider := c.Query("provider")
	currency := c.Query("currency")

	rates, err := h.rateService.GetLatestRates(c.Request.Context(), provider, currency)
	if err != nil {
		logger.Error("Failed to get latest rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to retrieve latest rates"))
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToListRateResponse(rates)))
}

// getHistory godoc
// @Summary Historical stored rates
// @Description Returns rates for a currency within an inclusive date range, defaulting to the last 30 days.
// @Tags rates
// @Produce json
// @Param currency query string true "Base currency"
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Param provider query string false "Provider name filter"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /rates/history [get]
func (h *rateHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid query parameters: "+err.Error()))
		return
	}

	startDate, endDate, err := resolveDateRange(query.StartDate, query.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
		return
	}

	rates, err := h.rateService.GetHistoricalRates(c.Request.Context(), query.Currency, startDate, endDate, query.Provider)
	if err != nil {
		logger.Error("Failed to get historical rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to retrieve historical rates"))
		return
	}

	c.JSON(http.StatusOK, dto.OKWithMeta(dto.ToListRateResponse(rates), map[string]any{
		"currency":  query.Currency,
		"startDate": startDate.Format(dto.DateLayout),
		"endDate":   endDate.Format(dto.DateLayout),
		"provider":  orAll(query.Provider),
	}))
}

// getByDate godoc
// @Summary Stored rates for one date
// @Description Returns every rate captured for a single calendar date.
// @Tags rates
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param provider query string false "Provider name filter"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /rates/date/{date} [get]
func (h *rateHandler) getByDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, err := time.Parse(dto.DateLayout, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail("Invalid date format. Use YYYY-MM-DD"))
		return
	}

	rates, err := h.rateService.GetRatesByDate(c.Request.Context(), date, c.Query("provider"))
	if err != nil {
		logger.Error("Failed to get rates by date", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to retrieve rates"))
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToListRateResponse(rates)))
}

// updateRates godoc
// @Summary Trigger a rate update
// @Description Scrapes all providers, or one when named in the body, and persists the results.
// @Tags rates
// @Accept json
// @Produce json
// @Param request body dto.UpdateRatesRequest false "Optional provider selector"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /rates/update [post]
func (h *rateHandler) updateRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateRatesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.Fail("Invalid request format: "+err.Error()))
			return
		}
	}

	saved, err := h.rateService.UpdateRates(c.Request.Context(), req.Provider)
	if err != nil {
		respondUpdateError(c, logger, err, h.scraper)
		return
	}

	logger.Info("Manual rate update completed", slog.Int("saved", len(saved)))
	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Rates updated successfully",
		Data:    dto.ToListRateResponse(saved),
	})
}

// respondUpdateError maps update-trigger failures onto status codes: naming
// an unknown provider is the caller's mistake, an upstream that cannot be
// fetched or parsed is a bad gateway, anything else is internal. The
// unknown-provider response names the valid providers.
func respondUpdateError(c *gin.Context, logger *slog.Logger, err error, scraper portssvc.ScraperSvcFacade) {
	switch {
	case errors.Is(err, apperrors.ErrUnknownProvider):
		logger.Warn("Update requested for unknown provider", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.Fail(
			err.Error()+". Valid providers: "+strings.Join(scraper.ProviderNames(), ", ")))
	case errors.Is(err, apperrors.ErrUpstreamFetch), errors.Is(err, apperrors.ErrParse):
		logger.Error("Rate update failed upstream", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.Fail(err.Error()))
	default:
		logger.Error("Rate update failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to update rates"))
	}
}

// resolveDateRange applies the 30-day default window and rejects inverted
// ranges. Inputs were already format-checked by binding.
func resolveDateRange(start, end string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	endDate := now
	startDate := now.Add(-defaultHistoryWindow)

	var err error
	if start != "" {
		if startDate, err = time.Parse(dto.DateLayout, start); err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid startDate format. Use YYYY-MM-DD")
		}
	}
	if end != "" {
		if endDate, err = time.Parse(dto.DateLayout, end); err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid endDate format. Use YYYY-MM-DD")
		}
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, errors.New("startDate must be before endDate")
	}
	return startDate.Truncate(24 * time.Hour), endDate.Truncate(24 * time.Hour), nil
}

func orAll(provider string) string {
	if provider == "" {
		return "all"
	}
	return provider
}
