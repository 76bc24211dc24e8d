package ports

import (
	"context"
	"time"

	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

// RateRepository defines the persistence operations for exchange rates.
// Context is included for cancellation/timeouts on every call.
type RateRepository interface {
	// UpsertRate inserts the record, or updates rate/metadata/capture time
	// of the existing row with the same (provider, base, quote, date, slot)
	// tuple. Returns the resulting stored row. Safe under concurrent calls
	// for the same tuple; the last writer wins.
	UpsertRate(ctx context.Context, record domain.RateRecord) (*domain.StoredRate, error)

	// FindLatest returns the single most-recently-captured row per distinct
	// (provider, base currency) pair matching the optional filters. Empty
	// strings mean "no filter".
	FindLatest(ctx context.Context, provider, currency string) ([]domain.StoredRate, error)

	// FindHistory returns all rows for the base currency with as-of dates in
	// the inclusive range, newest date first, capture-time ties newest first.
	FindHistory(ctx context.Context, currency string, startDate, endDate time.Time, provider string) ([]domain.StoredRate, error)

	// FindByDate returns all rows for exactly that as-of date, newest
	// capture first.
	FindByDate(ctx context.Context, date time.Time, provider string) ([]domain.StoredRate, error)
}
