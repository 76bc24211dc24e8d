package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/platform/binancep2p"
	"github.com/vzla-dev/bolivar_rates_api/internal/providers"
)

// liveSampleSize caps how many top listings feed each side of a live quote.
const liveSampleSize = 10

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// BinanceLiveService computes on-demand P2P quotes. Nothing it returns is
// ever written to storage.
type BinanceLiveService struct {
	client providers.OfferSearcher
	logger *slog.Logger
	now    func() time.Time
}

// NewBinanceLiveService creates a new BinanceLiveService. now may be nil to
// use the wall clock.
func NewBinanceLiveService(client providers.OfferSearcher, logger *slog.Logger, now func() time.Time) *BinanceLiveService {
	if now == nil {
		now = time.Now
	}
	return &BinanceLiveService{
		client: client,
		logger: logger,
		now:    now,
	}
}

// GetLiveRates computes the requested sides of the quote. Selector "buy"
// computes only the buy side, "sell" only the sell side; "average" and the
// empty selector compute both. The derived average/spread fields are only
// set when both sides came back.
func (s *BinanceLiveService) GetLiveRates(ctx context.Context, selector string) (*domain.LiveQuote, error) {
	switch selector {
	case "", "buy", "sell", "average":
	default:
		return nil, fmt.Errorf("%w: %q (must be buy, sell, or average)", apperrors.ErrInvalidSelector, selector)
	}

	quote := &domain.LiveQuote{CalculatedAt: s.now()}

	if selector != "sell" {
		quote.BuyRate, quote.SampleSize.Buy = s.fetchSide(ctx, domain.SlotBuy)
	}
	if selector != "buy" {
		quote.SellRate, quote.SampleSize.Sell = s.fetchSide(ctx, domain.SlotSell)
	}

	if quote.BuyRate != nil && quote.SellRate != nil {
		average := quote.BuyRate.Add(*quote.SellRate).Div(two)
		spread := quote.BuyRate.Sub(*quote.SellRate)
		spreadPct := spread.Div(*quote.SellRate).Mul(hundred).Round(2)
		quote.AverageRate = &average
		quote.Spread = &spread
		quote.SpreadPercentage = &spreadPct
	}

	return quote, nil
}

// fetchSide fetches and averages one trade direction. Any failure, including
// an empty listing set, degrades to a nil side rather than failing the whole
// quote.
func (s *BinanceLiveService) fetchSide(ctx context.Context, direction string) (*decimal.Decimal, int) {
	offers, err := s.client.SearchOffers(ctx, direction)
	if err != nil {
		s.logger.Warn("Live quote side unavailable",
			slog.String("direction", direction),
			slog.String("error", err.Error()),
		)
		return nil, 0
	}
	if len(offers) == 0 {
		s.logger.Warn("No qualifying P2P offers for live quote", slog.String("direction", direction))
		return nil, 0
	}

	average, prices, err := binancep2p.AverageTop(offers, liveSampleSize)
	if err != nil {
		s.logger.Warn("Failed to average live offers",
			slog.String("direction", direction),
			slog.String("error", err.Error()),
		)
		return nil, 0
	}
	return &average, len(prices)
}
