package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
	"github.com/vzla-dev/bolivar_rates_api/internal/dto"
	"github.com/vzla-dev/bolivar_rates_api/internal/handlers"
)

type BinanceHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockRate    *MockRateService
	mockLive    *MockLiveService
	mockScraper *MockScraperService
}

func (s *BinanceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockRate = new(MockRateService)
	s.mockLive = new(MockLiveService)
	s.mockScraper = new(MockScraperService)
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, &portssvc.ServiceContainer{
		Rate:        s.mockRate,
		Scraper:     s.mockScraper,
		BinanceLive: s.mockLive,
	})
}

func (s *BinanceHandlerTestSuite) serve(method, target string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var envelope dto.Response
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func (s *BinanceHandlerTestSuite) TestGetLive() {
	quote := &domain.LiveQuote{
		BuyRate:          decimalPtr("50"),
		SellRate:         decimalPtr("48"),
		AverageRate:      decimalPtr("49"),
		Spread:           decimalPtr("2"),
		SpreadPercentage: decimalPtr("4.17"),
		CalculatedAt:     time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC),
		SampleSize:       domain.LiveSampleSize{Buy: 10, Sell: 10},
	}
	s.mockLive.On("GetLiveRates", mock.Anything, "average").Return(quote, nil)

	w, envelope := s.serve(http.MethodGet, "/binance/live?type=average")

	s.Equal(http.StatusOK, w.Code)
	s.True(envelope.Success)
	s.Require().NotNil(envelope.Meta)
	s.Equal("binance_p2p_live", envelope.Meta["source"])
	s.Equal(true, envelope.Meta["not_stored"])

	data, ok := envelope.Data.(map[string]any)
	s.Require().True(ok)
	s.Equal("50", data["buyRate"])
	s.Equal("4.17", data["spreadPercentage"])
}

func (s *BinanceHandlerTestSuite) TestGetLiveInvalidSelector() {
	s.mockLive.On("GetLiveRates", mock.Anything, "median").
		Return(nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidSelector, "median"))

	w, envelope := s.serve(http.MethodGet, "/binance/live?type=median")

	s.Equal(http.StatusBadRequest, w.Code)
	s.False(envelope.Success)
	s.Equal("Invalid type parameter. Must be: buy, sell, or average", envelope.Error)
}

func (s *BinanceHandlerTestSuite) TestGetLatestFiltersByTradeType() {
	buySlot, sellSlot := domain.SlotBuy, domain.SlotSell
	stored := []domain.StoredRate{
		sampleStored(1, "Binance_P2P", "USDT", &buySlot),
		sampleStored(2, "Binance_P2P", "USDT", &sellSlot),
	}
	s.mockRate.On("GetLatestRates", mock.Anything, "Binance_P2P", "USDT").Return(stored, nil)

	w, envelope := s.serve(http.MethodGet, "/binance/latest?type=buy")

	s.Equal(http.StatusOK, w.Code)
	s.True(envelope.Success)
	data, ok := envelope.Data.([]any)
	s.Require().True(ok)
	s.Require().Len(data, 1)
	row := data[0].(map[string]any)
	s.Equal("BUY", row["updateType"])
	s.Equal("buy", envelope.Meta["trade_type"])
}

func (s *BinanceHandlerTestSuite) TestGetLatestWithoutTypeReturnsAll() {
	buySlot, sellSlot := domain.SlotBuy, domain.SlotSell
	stored := []domain.StoredRate{
		sampleStored(1, "Binance_P2P", "USDT", &buySlot),
		sampleStored(2, "Binance_P2P", "USDT", &sellSlot),
	}
	s.mockRate.On("GetLatestRates", mock.Anything, "Binance_P2P", "USDT").Return(stored, nil)

	w, envelope := s.serve(http.MethodGet, "/binance/latest")

	s.Equal(http.StatusOK, w.Code)
	data, ok := envelope.Data.([]any)
	s.Require().True(ok)
	s.Len(data, 2)
	s.Equal("all", envelope.Meta["trade_type"])
}

func (s *BinanceHandlerTestSuite) TestGetHistoryHardcodesPair() {
	s.mockRate.On("GetHistoricalRates",
		mock.Anything, "USDT", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"), "Binance_P2P").
		Return([]domain.StoredRate{}, nil)

	w, envelope := s.serve(http.MethodGet, "/binance/history")

	s.Equal(http.StatusOK, w.Code)
	s.True(envelope.Success)
	s.Equal("USDT", envelope.Meta["currency"])
	s.Equal("Binance_P2P", envelope.Meta["provider"])
	s.mockRate.AssertExpectations(s.T())
}

func (s *BinanceHandlerTestSuite) TestGetHistoryRejectsInvertedRange() {
	w, envelope := s.serve(http.MethodGet,
		"/binance/history?startDate=2024-02-01&endDate=2024-01-01")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("startDate must be before endDate", envelope.Error)
	s.mockRate.AssertNotCalled(s.T(), "GetHistoricalRates",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BinanceHandlerTestSuite) TestUpdateScrapesOnlyBinance() {
	buySlot := domain.SlotBuy
	s.mockRate.On("UpdateRates", mock.Anything, "Binance_P2P").
		Return([]domain.StoredRate{sampleStored(9, "Binance_P2P", "USDT", &buySlot)}, nil)

	w, envelope := s.serve(http.MethodPost, "/binance/update")

	s.Equal(http.StatusOK, w.Code)
	s.True(envelope.Success)
	s.Equal("Successfully scraped 1 Binance P2P rate(s)", envelope.Message)
}

func (s *BinanceHandlerTestSuite) TestUpdateUpstreamFailure() {
	s.mockRate.On("UpdateRates", mock.Anything, "Binance_P2P").
		Return(nil, fmt.Errorf("%w: P2P API returned error code 100001", apperrors.ErrUpstreamFetch))

	w, envelope := s.serve(http.MethodPost, "/binance/update")

	s.Equal(http.StatusBadGateway, w.Code)
	s.False(envelope.Success)
}

func TestBinanceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(BinanceHandlerTestSuite))
}
