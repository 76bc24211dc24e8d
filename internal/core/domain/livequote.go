package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LiveQuote is an on-demand peer-exchange quote. It is never persisted.
// Derived fields are only set when both sides were computed.
type LiveQuote struct {
	BuyRate          *decimal.Decimal `json:"buyRate"`
	SellRate         *decimal.Decimal `json:"sellRate"`
	AverageRate      *decimal.Decimal `json:"averageRate"`
	Spread           *decimal.Decimal `json:"spread"`
	SpreadPercentage *decimal.Decimal `json:"spreadPercentage"` // rounded to 2 decimal places
	CalculatedAt     time.Time        `json:"calculatedAt"`
	SampleSize       LiveSampleSize   `json:"sampleSize"`
}

// LiveSampleSize reports how many listings fed each side of a LiveQuote.
type LiveSampleSize struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
}
