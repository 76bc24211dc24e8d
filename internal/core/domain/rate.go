package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateRecord is the normalized output of a provider fetch. It is created in
// memory during a fetch call and is immutable after creation; it only gains
// an identity once it passes through the rate repository's upsert.
// Note: Rate uses github.com/shopspring/decimal since float64 cannot be
// trusted with financial rates.
type RateRecord struct {
	Provider      string          `json:"provider"`
	BaseCurrency  string          `json:"currencyFrom"`
	QuoteCurrency string          `json:"currencyTo"`
	Rate          decimal.Decimal `json:"rate"`
	UpdateSlot    *string         `json:"updateType"` // nil means no slot distinction
	AsOfDate      time.Time       `json:"date"`       // calendar date in the provider's market timezone
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// StoredRate is a RateRecord that has been persisted. FetchedAt is the
// capture timestamp, distinct from AsOfDate.
type StoredRate struct {
	ID int64 `json:"id"`
	RateRecord
	FetchedAt time.Time `json:"scrapedAt"`
}

// Update slots used by the built-in providers.
const (
	SlotAM   = "AM"
	SlotPM   = "PM"
	SlotBuy  = "BUY"
	SlotSell = "SELL"
)
