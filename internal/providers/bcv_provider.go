package providers

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
)

const (
	// BCVProviderName identifies the official central-bank rate source.
	BCVProviderName = "BCV"

	// DefaultBCVURL is the official rates page of the Banco Central de
	// Venezuela.
	DefaultBCVURL = "https://www.bcv.org.ve/"

	// bcvSlotCutoverHour splits the day into the AM and PM publication
	// slots, evaluated in the market timezone.
	bcvSlotCutoverHour = 13

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// bcvCurrencies maps the page's per-currency container ids to the currency
// code each one quotes against VES. Iterated in slice order so fetch output
// is deterministic.
var bcvCurrencies = []struct {
	containerID string
	code        string
}{
	{"dolar", "USD"},
	{"euro", "EUR"},
}

// BCVProvider scrapes the official USD/VES and EUR/VES reference rates from
// the central bank's HTML page.
type BCVProvider struct {
	url    string
	client *http.Client
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewBCVProvider creates a BCVProvider. loc is the market timezone used for
// the AM/PM cutover and the as-of date stamp; now is injectable for tests
// and may be nil to use the wall clock.
func NewBCVProvider(url string, timeout time.Duration, loc *time.Location, logger *slog.Logger, now func() time.Time) *BCVProvider {
	if now == nil {
		now = time.Now
	}
	return &BCVProvider{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// The BCV site serves an incomplete certificate chain;
				// verification has to be skipped to reach it at all.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		loc:    loc,
		now:    now,
		logger: logger,
	}
}

// Name implements Provider.
func (p *BCVProvider) Name() string {
	return BCVProviderName
}

// FetchRates fetches the BCV page and extracts one record per currency that
// parses cleanly. A currency whose value is missing or unparseable is logged
// and skipped; only transport and document-level failures are errors.
func (p *BCVProvider) FetchRates(ctx context.Context) ([]domain.RateRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building BCV request: %v", apperrors.ErrUpstreamFetch, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrUpstreamFetch, p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: BCV returned status %d", apperrors.ErrUpstreamFetch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading BCV page: %v", apperrors.ErrParse, err)
	}

	now := p.now()
	slot := domain.SlotPM
	if now.In(p.loc).Hour() < bcvSlotCutoverHour {
		slot = domain.SlotAM
	}

	var records []domain.RateRecord
	for _, cur := range bcvCurrencies {
		rate, err := p.extractRate(doc, cur.containerID)
		if err != nil {
			p.logger.Warn("Skipping BCV currency",
				slog.String("currency", cur.code),
				slog.String("error", err.Error()),
			)
			continue
		}
		records = append(records, normalizeRate(p.Name(), cur.code, "VES", rate, strPtr(slot), nil, now, p.loc))
	}
	return records, nil
}

// extractRate locates the rate text inside the labeled container and parses
// it as a locale-formatted decimal.
func (p *BCVProvider) extractRate(doc *goquery.Document, containerID string) (decimal.Decimal, error) {
	text := doc.Find("#" + containerID + " .centrado strong").First().Text()
	return parseLocalizedDecimal(text)
}
