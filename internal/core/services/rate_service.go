package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/ports"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
)

// RateService provides business logic for scraping and querying rates.
type RateService struct {
	rateRepo ports.RateRepository
	scraper  portssvc.ScraperSvcFacade
	logger   *slog.Logger
}

// NewRateService creates a new RateService.
func NewRateService(rateRepo ports.RateRepository, scraper portssvc.ScraperSvcFacade, logger *slog.Logger) *RateService {
	return &RateService{
		rateRepo: rateRepo,
		scraper:  scraper,
		logger:   logger,
	}
}

// UpdateRates scrapes the named provider (all providers when the name is
// empty) and upserts every successful record. A named provider's failure
// propagates to the caller; during an all-provider run a failed provider is
// simply absent from the persisted set. Persistence errors always propagate;
// there is no durable queue to retry into.
func (s *RateService) UpdateRates(ctx context.Context, providerName string) ([]domain.StoredRate, error) {
	var outcomes []domain.ProviderOutcome
	if providerName != "" {
		records, err := s.scraper.ScrapeProvider(ctx, providerName)
		if err != nil {
			return nil, err
		}
		outcomes = []domain.ProviderOutcome{{Provider: providerName, Success: true, Records: records}}
	} else {
		outcomes = s.scraper.ScrapeAll(ctx)
	}

	saved := make([]domain.StoredRate, 0)
	for _, outcome := range outcomes {
		if !outcome.Success {
			continue
		}
		for _, record := range outcome.Records {
			stored, err := s.rateRepo.UpsertRate(ctx, record)
			if err != nil {
				return nil, fmt.Errorf("failed to persist %s rate: %w", record.Provider, err)
			}
			saved = append(saved, *stored)
		}
	}

	s.logger.Info("Rates updated", slog.Int("saved", len(saved)))
	return saved, nil
}

// GetLatestRates returns the latest stored row per (provider, base currency)
// pair matching the optional filters.
func (s *RateService) GetLatestRates(ctx context.Context, provider, currency string) ([]domain.StoredRate, error) {
	return s.rateRepo.FindLatest(ctx, provider, currency)
}

// GetHistoricalRates returns the stored rows for the currency within the
// inclusive date range.
func (s *RateService) GetHistoricalRates(ctx context.Context, currency string, startDate, endDate time.Time, provider string) ([]domain.StoredRate, error) {
	return s.rateRepo.FindHistory(ctx, currency, startDate, endDate, provider)
}

// GetRatesByDate returns the stored rows for exactly that as-of date.
func (s *RateService) GetRatesByDate(ctx context.Context, date time.Time, provider string) ([]domain.StoredRate, error) {
	return s.rateRepo.FindByDate(ctx, date, provider)
}
