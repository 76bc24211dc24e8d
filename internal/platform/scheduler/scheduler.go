// Package scheduler fires recurring rate updates at fixed market-local
// times, independent of the process timezone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/providers"
)

// RateUpdater is the slice of the rate service the scheduler needs.
type RateUpdater interface {
	UpdateRates(ctx context.Context, providerName string) ([]domain.StoredRate, error)
}

// Job pairs a cron spec (five-field, evaluated in the scheduler's timezone)
// with the provider it updates.
type Job struct {
	Spec     string
	Provider string
}

// DefaultJobs mirrors the publication rhythm of the upstreams: BCV posts
// just after its 9:00 and 13:00 updates, the P2P market is sampled three
// times a day.
var DefaultJobs = []Job{
	{Spec: "1 9 * * *", Provider: providers.BCVProviderName},
	{Spec: "1 13 * * *", Provider: providers.BCVProviderName},
	{Spec: "0 9 * * *", Provider: providers.BinanceProviderName},
	{Spec: "0 13 * * *", Provider: providers.BinanceProviderName},
	{Spec: "0 18 * * *", Provider: providers.BinanceProviderName},
}

// ResultFunc observes the outcome of one scheduled run. Exactly one of
// saved/err carries information.
type ResultFunc func(provider string, saved []domain.StoredRate, err error)

// Scheduler triggers provider updates on a fixed cron table. Start and Stop
// are idempotent; stopping lets in-flight runs complete but prevents any
// further firing.
type Scheduler struct {
	cron       *cron.Cron
	updater    RateUpdater
	runTimeout time.Duration
	onResult   ResultFunc
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Scheduler with its job table registered against loc. A nil
// onResult is replaced with a no-op; failures are always logged regardless.
func New(updater RateUpdater, jobs []Job, loc *time.Location, runTimeout time.Duration, logger *slog.Logger, onResult ResultFunc) (*Scheduler, error) {
	if onResult == nil {
		onResult = func(string, []domain.StoredRate, error) {}
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		updater:    updater,
		runTimeout: runTimeout,
		onResult:   onResult,
		logger:     logger,
	}

	for _, job := range jobs {
		provider := job.Provider
		if _, err := s.cron.AddFunc(job.Spec, func() { s.runJob(provider) }); err != nil {
			return nil, fmt.Errorf("registering job %q for %s: %w", job.Spec, provider, err)
		}
	}
	return s, nil
}

// Start begins firing jobs. Calling it on a running scheduler is a no-op;
// the job table was registered once at construction so triggers are never
// doubled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	s.logger.Info("Scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents further firing. In-flight runs are allowed to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cron.Stop()
	s.started = false
	s.logger.Info("Scheduler stopped")
}

// JobCount reports how many triggers are registered.
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}

// runJob updates one provider with a bounded context. A failure is reported
// and logged but never crashes the process or cancels future triggers.
func (s *Scheduler) runJob(provider string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	s.logger.Info("Running scheduled rate update", slog.String("provider", provider))
	saved, err := s.updater.UpdateRates(ctx, provider)
	if err != nil {
		s.logger.Error("Scheduled rate update failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		s.onResult(provider, nil, err)
		return
	}

	s.logger.Info("Scheduled rate update completed",
		slog.String("provider", provider),
		slog.Int("saved", len(saved)),
	)
	s.onResult(provider, saved, nil)
}
