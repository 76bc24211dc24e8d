package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

// Provider is a pluggable fetch-and-normalize unit for one upstream rate
// source. Name is the stable identifier used for registration lookups and as
// part of the persistence uniqueness tuple. FetchRates fails with
// apperrors.ErrUpstreamFetch when the network call errors or times out, and
// with apperrors.ErrParse when the response cannot be interpreted. Returning
// zero records is a valid non-error outcome.
// Implementations must be safe for concurrent use; the scheduler and manual
// triggers may overlap.
type Provider interface {
	Name() string
	FetchRates(ctx context.Context) ([]domain.RateRecord, error)
}

// normalizeRate builds a RateRecord for the named provider, stamped with the
// calendar date of `at` interpreted in `loc` (the provider's market
// timezone, never the host's local clock).
func normalizeRate(provider, baseCurrency, quoteCurrency string, rate decimal.Decimal, slot *string, metadata map[string]any, at time.Time, loc *time.Location) domain.RateRecord {
	local := at.In(loc)
	y, m, d := local.Date()
	return domain.RateRecord{
		Provider:      provider,
		BaseCurrency:  baseCurrency,
		QuoteCurrency: quoteCurrency,
		Rate:          rate,
		UpdateSlot:    slot,
		AsOfDate:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Metadata:      metadata,
	}
}

// parseLocalizedDecimal parses numeric text tolerating locale formatting:
// surrounding whitespace, thousands separators, and comma-as-decimal-point
// ("36,50", "1.234,56", "1,234.56"). Non-numeric or non-positive input
// fails with apperrors.ErrParse.
func parseLocalizedDecimal(text string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: empty rate text", apperrors.ErrParse)
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal point, the other one
		// groups thousands.
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0 && strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	rate, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: unparseable rate value %q", apperrors.ErrParse, text)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive rate value %q", apperrors.ErrParse, text)
	}
	return rate, nil
}

func strPtr(s string) *string {
	return &s
}
