package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

// LiveQuoteResponse is the API shape of an on-demand P2P quote.
type LiveQuoteResponse struct {
	BuyRate          *decimal.Decimal `json:"buyRate"`
	SellRate         *decimal.Decimal `json:"sellRate"`
	AverageRate      *decimal.Decimal `json:"averageRate"`
	Spread           *decimal.Decimal `json:"spread"`
	SpreadPercentage *decimal.Decimal `json:"spreadPercentage"`
	CalculatedAt     time.Time        `json:"calculatedAt"`
	SampleSize       LiveSampleSize   `json:"sampleSize"`
}

// LiveSampleSize reports how many listings fed each side of the quote.
type LiveSampleSize struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
}

// ToLiveQuoteResponse converts a domain.LiveQuote to its response DTO.
func ToLiveQuoteResponse(quote *domain.LiveQuote) LiveQuoteResponse {
	return LiveQuoteResponse{
		BuyRate:          quote.BuyRate,
		SellRate:         quote.SellRate,
		AverageRate:      quote.AverageRate,
		Spread:           quote.Spread,
		SpreadPercentage: quote.SpreadPercentage,
		CalculatedAt:     quote.CalculatedAt,
		SampleSize: LiveSampleSize{
			Buy:  quote.SampleSize.Buy,
			Sell: quote.SampleSize.Sell,
		},
	}
}
