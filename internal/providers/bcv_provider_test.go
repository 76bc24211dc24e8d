package providers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

const bcvPage = `
<html><body>
  <div id="dolar"><div class="centrado"><strong> 36,50 </strong></div></div>
  <div id="euro"><div class="centrado"><strong> 40,12 </strong></div></div>
</body></html>`

var marketTZ = time.FixedZone("VET", -4*60*60)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 15, hour, 30, 0, 0, marketTZ)
	}
}

func newTestBCVProvider(url string, now func() time.Time) *BCVProvider {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBCVProvider(url, 5*time.Second, marketTZ, logger, now)
}

func TestBCVFetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		io.WriteString(w, bcvPage)
	}))
	defer srv.Close()

	provider := newTestBCVProvider(srv.URL, fixedClock(9))
	records, err := provider.FetchRates(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	usd, eur := records[0], records[1]
	assert.Equal(t, "BCV", usd.Provider)
	assert.Equal(t, "USD", usd.BaseCurrency)
	assert.Equal(t, "VES", usd.QuoteCurrency)
	assert.True(t, usd.Rate.Equal(decimal.RequireFromString("36.5")))
	require.NotNil(t, usd.UpdateSlot)
	assert.Equal(t, domain.SlotAM, *usd.UpdateSlot)
	assert.Equal(t, "2024-03-15", usd.AsOfDate.Format("2006-01-02"))

	assert.Equal(t, "EUR", eur.BaseCurrency)
	assert.True(t, eur.Rate.Equal(decimal.RequireFromString("40.12")))
}

func TestBCVSlotCutover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, bcvPage)
	}))
	defer srv.Close()

	cases := []struct {
		name string
		hour int
		slot string
	}{
		{"morning is AM", 9, domain.SlotAM},
		{"last hour before cutover is AM", 12, domain.SlotAM},
		{"cutover hour is PM", 13, domain.SlotPM},
		{"evening is PM", 18, domain.SlotPM},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := newTestBCVProvider(srv.URL, fixedClock(tc.hour))
			records, err := provider.FetchRates(context.Background())
			require.NoError(t, err)
			require.NotEmpty(t, records)
			require.NotNil(t, records[0].UpdateSlot)
			assert.Equal(t, tc.slot, *records[0].UpdateSlot)
		})
	}
}

func TestBCVSkipsUnparseableCurrency(t *testing.T) {
	page := `
<html><body>
  <div id="dolar"><div class="centrado"><strong>36,50</strong></div></div>
  <div id="euro"><div class="centrado"><strong>abc</strong></div></div>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))
	defer srv.Close()

	provider := newTestBCVProvider(srv.URL, fixedClock(9))
	records, err := provider.FetchRates(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "USD", records[0].BaseCurrency)
}

func TestBCVMissingSelectorsYieldNoRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body><p>maintenance</p></body></html>")
	}))
	defer srv.Close()

	provider := newTestBCVProvider(srv.URL, fixedClock(9))
	records, err := provider.FetchRates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBCVUpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	provider := newTestBCVProvider(srv.URL, fixedClock(9))
	_, err := provider.FetchRates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamFetch))
}

func TestBCVUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	provider := newTestBCVProvider(srv.URL, fixedClock(9))
	_, err := provider.FetchRates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpstreamFetch))
}
