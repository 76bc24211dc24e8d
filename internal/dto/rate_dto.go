package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

// DateLayout is the wire format of calendar dates throughout the API.
const DateLayout = "2006-01-02"

// UpdateRatesRequest optionally narrows a manual update to one provider.
type UpdateRatesRequest struct {
	Provider string `json:"provider"`
}

// HistoryQuery binds the query parameters of the history endpoints.
// Dates are validated by the custom datefmt rule registered at startup.
type HistoryQuery struct {
	Currency  string `form:"currency" binding:"required"`
	StartDate string `form:"startDate" binding:"omitempty,datefmt"`
	EndDate   string `form:"endDate" binding:"omitempty,datefmt"`
	Provider  string `form:"provider"`
}

// RateResponse is the API shape of one stored rate.
type RateResponse struct {
	ID           int64           `json:"id"`
	Provider     string          `json:"provider"`
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"`
	UpdateType   *string         `json:"updateType"`
	Date         string          `json:"date"`
	ScrapedAt    time.Time       `json:"scrapedAt"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

// ToRateResponse converts a domain.StoredRate to a RateResponse DTO.
func ToRateResponse(rate domain.StoredRate) RateResponse {
	return RateResponse{
		ID:           rate.ID,
		Provider:     rate.Provider,
		CurrencyFrom: rate.BaseCurrency,
		CurrencyTo:   rate.QuoteCurrency,
		Rate:         rate.Rate,
		UpdateType:   rate.UpdateSlot,
		Date:         rate.AsOfDate.Format(DateLayout),
		ScrapedAt:    rate.FetchedAt,
		Metadata:     rate.Metadata,
	}
}

// ToListRateResponse converts a slice of domain.StoredRate to response DTOs.
func ToListRateResponse(rates []domain.StoredRate) []RateResponse {
	responses := make([]RateResponse, len(rates))
	for i, rate := range rates {
		responses[i] = ToRateResponse(rate)
	}
	return responses
}
