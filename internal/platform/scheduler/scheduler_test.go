package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

type fakeUpdater struct {
	lastProvider string
	lastDeadline bool
	saved        []domain.StoredRate
	err          error
	calls        int
}

func (f *fakeUpdater) UpdateRates(ctx context.Context, providerName string) ([]domain.StoredRate, error) {
	f.calls++
	f.lastProvider = providerName
	_, f.lastDeadline = ctx.Deadline()
	return f.saved, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRegistersDefaultJobs(t *testing.T) {
	sched, err := New(&fakeUpdater{}, DefaultJobs, time.UTC, time.Minute, testLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultJobs), sched.JobCount())
}

func TestNewRejectsBadSpec(t *testing.T) {
	jobs := []Job{{Spec: "not a cron spec", Provider: "BCV"}}
	_, err := New(&fakeUpdater{}, jobs, time.UTC, time.Minute, testLogger(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCV")
}

func TestStartStopIdempotent(t *testing.T) {
	sched, err := New(&fakeUpdater{}, DefaultJobs, time.UTC, time.Minute, testLogger(), nil)
	require.NoError(t, err)

	sched.Start()
	sched.Start()
	assert.Equal(t, len(DefaultJobs), sched.JobCount())

	sched.Stop()
	sched.Stop()
	assert.Equal(t, len(DefaultJobs), sched.JobCount())

	// A stop/start cycle must not double the registered triggers.
	sched.Start()
	defer sched.Stop()
	assert.Equal(t, len(DefaultJobs), sched.JobCount())
}

func TestRunJobReportsSuccess(t *testing.T) {
	stored := domain.StoredRate{
		ID: 1,
		RateRecord: domain.RateRecord{
			Provider:      "BCV",
			BaseCurrency:  "USD",
			QuoteCurrency: "VES",
			Rate:          decimal.RequireFromString("36.5"),
		},
	}
	updater := &fakeUpdater{saved: []domain.StoredRate{stored}}

	var gotProvider string
	var gotSaved []domain.StoredRate
	var gotErr error
	onResult := func(provider string, saved []domain.StoredRate, err error) {
		gotProvider, gotSaved, gotErr = provider, saved, err
	}

	sched, err := New(updater, nil, time.UTC, time.Minute, testLogger(), onResult)
	require.NoError(t, err)

	sched.runJob("BCV")

	assert.Equal(t, 1, updater.calls)
	assert.Equal(t, "BCV", updater.lastProvider)
	assert.True(t, updater.lastDeadline, "run context should carry a deadline")
	assert.Equal(t, "BCV", gotProvider)
	require.Len(t, gotSaved, 1)
	assert.NoError(t, gotErr)
}

func TestRunJobReportsFailureWithoutPanicking(t *testing.T) {
	updater := &fakeUpdater{err: errors.New("upstream unreachable")}

	var gotErr error
	sched, err := New(updater, nil, time.UTC, time.Minute, testLogger(), func(_ string, _ []domain.StoredRate, err error) {
		gotErr = err
	})
	require.NoError(t, err)

	sched.runJob("Binance_P2P")

	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "unreachable")
}

func TestDefaultJobsCoverBothProviders(t *testing.T) {
	perProvider := map[string]int{}
	for _, job := range DefaultJobs {
		perProvider[job.Provider]++
	}
	assert.Equal(t, 2, perProvider["BCV"])
	assert.Equal(t, 3, perProvider["Binance_P2P"])
}
