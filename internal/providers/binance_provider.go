package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/platform/binancep2p"
)

// BinanceProviderName identifies the peer-exchange USDT/VES rate source.
const BinanceProviderName = "Binance_P2P"

// averagingSampleSize is how many top listings feed the average rate.
const averagingSampleSize = 10

// OfferSearcher is the slice of the P2P client the provider needs.
type OfferSearcher interface {
	SearchOffers(ctx context.Context, tradeType string) ([]binancep2p.Offer, error)
}

// BinanceProvider derives USDT/VES rates from merchant P2P listings, one
// record per trade direction. The BUY slot averages listings where users buy
// USDT with VES, the SELL slot the opposite direction.
type BinanceProvider struct {
	client OfferSearcher
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewBinanceProvider creates a BinanceProvider. now may be nil to use the
// wall clock.
func NewBinanceProvider(client OfferSearcher, loc *time.Location, logger *slog.Logger, now func() time.Time) *BinanceProvider {
	if now == nil {
		now = time.Now
	}
	return &BinanceProvider{
		client: client,
		loc:    loc,
		now:    now,
		logger: logger,
	}
}

// Name implements Provider.
func (p *BinanceProvider) Name() string {
	return BinanceProviderName
}

// FetchRates fetches both trade directions. A direction with zero qualifying
// listings is skipped rather than failing the call; a direction whose fetch
// fails outright fails the whole call.
func (p *BinanceProvider) FetchRates(ctx context.Context) ([]domain.RateRecord, error) {
	var records []domain.RateRecord
	for _, direction := range []string{domain.SlotBuy, domain.SlotSell} {
		record, err := p.fetchDirection(ctx, direction)
		if err != nil {
			return nil, fmt.Errorf("fetching %s direction: %w", direction, err)
		}
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

func (p *BinanceProvider) fetchDirection(ctx context.Context, direction string) (*domain.RateRecord, error) {
	offers, err := p.client.SearchOffers(ctx, direction)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		p.logger.Warn("No qualifying P2P offers for direction", slog.String("direction", direction))
		return nil, nil
	}

	average, prices, err := binancep2p.AverageTop(offers, averagingSampleSize)
	if err != nil {
		return nil, err
	}

	minPrice, maxPrice := prices[0], prices[0]
	for _, price := range prices[1:] {
		if price.LessThan(minPrice) {
			minPrice = price
		}
		if price.GreaterThan(maxPrice) {
			maxPrice = price
		}
	}

	metadata := map[string]any{
		"sample_size": len(prices),
		"price_range": map[string]any{
			"min": minPrice.InexactFloat64(),
			"max": maxPrice.InexactFloat64(),
		},
		"top_price":    prices[0].InexactFloat64(),
		"offers_count": len(offers),
	}

	record := normalizeRate(p.Name(), "USDT", "VES", average, strPtr(direction), metadata, p.now(), p.loc)
	return &record, nil
}
