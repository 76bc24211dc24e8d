package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
	"github.com/vzla-dev/bolivar_rates_api/internal/dto"
	"github.com/vzla-dev/bolivar_rates_api/internal/middleware"
	"github.com/vzla-dev/bolivar_rates_api/internal/providers"
)

// binanceHandler handles the P2P-specific endpoints: the live (never
// persisted) quote and convenience views over the stored Binance_P2P rows.
type binanceHandler struct {
	rateService portssvc.RateSvcFacade
	liveService portssvc.BinanceLiveSvcFacade
	scraper     portssvc.ScraperSvcFacade
}

// newBinanceHandler creates a new binanceHandler.
func newBinanceHandler(rs portssvc.RateSvcFacade, ls portssvc.BinanceLiveSvcFacade, scraper portssvc.ScraperSvcFacade) *binanceHandler {
	return &binanceHandler{rateService: rs, liveService: ls, scraper: scraper}
}

// registerBinanceRoutes registers the P2P-specific routes.
func registerBinanceRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade, liveService portssvc.BinanceLiveSvcFacade, scraper portssvc.ScraperSvcFacade) {
	h := newBinanceHandler(rateService, liveService, scraper)

	binance := rg.Group("/binance")
	{
		binance.GET("/live", h.getLive)
		binance.GET("/history", h.getHistory)
		binance.GET("/latest", h.getLatest)
		binance.POST("/update", h.update)
	}
}

// getLive godoc
// @Summary Live P2P quote
// @Description Computes the current buy/sell quote on demand; nothing is stored.
// @Tags binance
// @Produce json
// @Param type query string false "Selector: buy, sell or average"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /binance/live [get]
func (h *binanceHandler) getLive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	quote, err := h.liveService.GetLiveRates(c.Request.Context(), c.Query("type"))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidSelector) {
			c.JSON(http.StatusBadRequest, dto.Fail("Invalid type parameter. Must be: buy, sell, or average"))
			return
		}
		logger.Error("Failed to compute live quote", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.Fail("Failed to compute live quote"))
		return
	}

	c.JSON(http.StatusOK, dto.OKWithMeta(dto.ToLiveQuoteResponse(quote), map[string]any{
		"source":     "binance_p2p_live",
		"not_stored": true,
		"info":       "This data is fetched in real-time and not stored in the database",
	}))
}

// getHistory godoc
// @Summary Stored P2P rate history
// @Description Returns stored Binance_P2P rows, optionally narrowed to one trade direction.
// @Tags binance
// @Produce json
// @Param type query string false "Trade direction: buy or sell"
// @Param startDate query string false "Range start (YYYY-MM-DD)"
// @Param endDate query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /binance/history [get]
func (h *binanceHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	startDate, endDate, err := resolveDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Fail(err.Error()))
		return
	}
	tradeType := c.Query("type")

	rates, err := h.rateService.GetHistoricalRates(c.Request.Context(), "USDT", startDate, endDate, providers.BinanceProviderName)
	if err != nil {
		logger.Error("Failed to get P2P history", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to retrieve historical rates"))
		return
	}

	c.JSON(http.StatusOK, dto.OKWithMeta(dto.ToListRateResponse(filterBySlot(rates, tradeType)), map[string]any{
		"currency":   "USDT",
		"startDate":  startDate.Format(dto.DateLayout),
		"endDate":    endDate.Format(dto.DateLayout),
		"provider":   providers.BinanceProviderName,
		"trade_type": orAll(tradeType),
	}))
}

// getLatest godoc
// @Summary Latest stored P2P rates
// @Description Returns the latest stored Binance_P2P rows, optionally narrowed to one trade direction.
// @Tags binance
// @Produce json
// @Param type query string false "Trade direction: buy or sell"
// @Success 200 {object} dto.Response
// @Router /binance/latest [get]
func (h *binanceHandler) getLatest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tradeType := c.Query("type")

	rates, err := h.rateService.GetLatestRates(c.Request.Context(), providers.BinanceProviderName, "USDT")
	if err != nil {
		logger.Error("Failed to get latest P2P rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Fail("Failed to retrieve latest rates"))
		return
	}

	c.JSON(http.StatusOK, dto.OKWithMeta(dto.ToListRateResponse(filterBySlot(rates, tradeType)), map[string]any{
		"provider":   providers.BinanceProviderName,
		"trade_type": orAll(tradeType),
		"source":     "database",
	}))
}

// update godoc
// @Summary Trigger a P2P-only update
// @Description Scrapes only the Binance_P2P provider and persists the results.
// @Tags binance
// @Produce json
// @Success 200 {object} dto.Response
// @Router /binance/update [post]
func (h *binanceHandler) update(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Manual P2P scrape triggered")

	saved, err := h.rateService.UpdateRates(c.Request.Context(), providers.BinanceProviderName)
	if err != nil {
		respondUpdateError(c, logger, err, h.scraper)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: fmt.Sprintf("Successfully scraped %d Binance P2P rate(s)", len(saved)),
		Data:    dto.ToListRateResponse(saved),
	})
}

// filterBySlot narrows stored rows to one trade direction when the query
// names buy or sell; anything else leaves the set untouched.
func filterBySlot(rates []domain.StoredRate, tradeType string) []domain.StoredRate {
	slot := strings.ToUpper(tradeType)
	if slot != domain.SlotBuy && slot != domain.SlotSell {
		return rates
	}
	filtered := make([]domain.StoredRate, 0, len(rates))
	for _, rate := range rates {
		if rate.UpdateSlot != nil && strings.ToUpper(*rate.UpdateSlot) == slot {
			filtered = append(filtered, rate)
		}
	}
	return filtered
}
