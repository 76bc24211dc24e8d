package services

import (
	"context"
	"time"

	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

// RateReaderSvc defines read operations over stored rates.
type RateReaderSvc interface {
	// GetLatestRates returns the most-recently-captured row per distinct
	// (provider, base currency) pair. Empty filters match everything.
	GetLatestRates(ctx context.Context, provider, currency string) ([]domain.StoredRate, error)

	// GetHistoricalRates returns rows for the currency with as-of dates in
	// the inclusive range, newest first.
	GetHistoricalRates(ctx context.Context, currency string, startDate, endDate time.Time, provider string) ([]domain.StoredRate, error)

	// GetRatesByDate returns all rows for exactly that as-of date.
	GetRatesByDate(ctx context.Context, date time.Time, provider string) ([]domain.StoredRate, error)
}

// RateUpdaterSvc triggers a scrape-and-persist cycle.
type RateUpdaterSvc interface {
	// UpdateRates scrapes the named provider (all providers when empty) and
	// upserts every returned record. Returns the stored rows.
	UpdateRates(ctx context.Context, providerName string) ([]domain.StoredRate, error)
}

// RateSvcFacade combines all rate-related service interfaces.
type RateSvcFacade interface {
	RateReaderSvc
	RateUpdaterSvc
}

// ScraperSvcFacade runs registered providers without persisting anything.
type ScraperSvcFacade interface {
	// ScrapeAll runs every provider in registration order, isolating
	// failures to their own outcome entry.
	ScrapeAll(ctx context.Context) []domain.ProviderOutcome

	// ScrapeProvider runs exactly one named provider, propagating its error.
	// Fails with apperrors.ErrUnknownProvider for unregistered names.
	ScrapeProvider(ctx context.Context, providerName string) ([]domain.RateRecord, error)

	// ProviderNames lists registered provider names in registration order.
	ProviderNames() []string
}

// BinanceLiveSvcFacade computes on-demand, never-persisted P2P quotes.
type BinanceLiveSvcFacade interface {
	// GetLiveRates computes the selected sides ("buy", "sell", "average" or
	// empty for both) plus derived spread figures when both are available.
	// Fails with apperrors.ErrInvalidSelector for anything else.
	GetLiveRates(ctx context.Context, selector string) (*domain.LiveQuote, error)
}
