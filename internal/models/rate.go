package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate mirrors one row of the exchange_rates table.
// UpdateType and Metadata are nullable; Metadata holds the raw JSONB bytes.
type ExchangeRate struct {
	ID           int64           `json:"id"`
	Provider     string          `json:"provider"`
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"`
	UpdateType   *string         `json:"updateType"`
	ScrapedAt    time.Time       `json:"scrapedAt"`
	Date         time.Time       `json:"date"`
	Metadata     []byte          `json:"metadata"`
}
