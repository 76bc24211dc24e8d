package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/providers"
)

// ScraperService runs the registered providers. Registration order is fixed
// at construction and determines iteration order of ScrapeAll.
type ScraperService struct {
	providers []providers.Provider
	byName    map[string]providers.Provider
	logger    *slog.Logger
}

// NewScraperService creates a ScraperService over the given providers.
func NewScraperService(logger *slog.Logger, provs ...providers.Provider) *ScraperService {
	byName := make(map[string]providers.Provider, len(provs))
	for _, p := range provs {
		byName[p.Name()] = p
	}
	return &ScraperService{
		providers: provs,
		byName:    byName,
		logger:    logger,
	}
}

// ScrapeAll runs every provider and collects a per-provider outcome. A fetch
// or parse failure in one provider never stops the remaining ones.
func (s *ScraperService) ScrapeAll(ctx context.Context) []domain.ProviderOutcome {
	outcomes := make([]domain.ProviderOutcome, 0, len(s.providers))
	for _, provider := range s.providers {
		s.logger.Info("Scraping provider", slog.String("provider", provider.Name()))
		records, err := provider.FetchRates(ctx)
		if err != nil {
			s.logger.Error("Provider scrape failed",
				slog.String("provider", provider.Name()),
				slog.String("error", err.Error()),
			)
			outcomes = append(outcomes, domain.ProviderOutcome{
				Provider: provider.Name(),
				Success:  false,
				Error:    err.Error(),
			})
			continue
		}
		outcomes = append(outcomes, domain.ProviderOutcome{
			Provider: provider.Name(),
			Success:  true,
			Records:  records,
		})
	}
	return outcomes
}

// ScrapeProvider runs exactly one named provider. Unlike ScrapeAll the error
// propagates; the caller asked for this provider and wants to know.
func (s *ScraperService) ScrapeProvider(ctx context.Context, providerName string) ([]domain.RateRecord, error) {
	provider, ok := s.byName[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownProvider, providerName)
	}
	return provider.FetchRates(ctx)
}

// ProviderNames lists the registered provider names in registration order.
func (s *ScraperService) ProviderNames() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}
