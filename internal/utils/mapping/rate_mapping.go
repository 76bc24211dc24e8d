package mapping

import (
	"encoding/json"

	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/models"
)

// ToModelRate converts a domain RateRecord to a model ExchangeRate.
// Metadata is serialized to JSON; a nil map becomes an empty object so the
// JSONB column never stores SQL NULL for a fetched record.
func ToModelRate(d domain.RateRecord) (models.ExchangeRate, error) {
	meta := d.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return models.ExchangeRate{}, err
	}
	return models.ExchangeRate{
		Provider:     d.Provider,
		CurrencyFrom: d.BaseCurrency,
		CurrencyTo:   d.QuoteCurrency,
		Rate:         d.Rate,
		UpdateType:   d.UpdateSlot,
		Date:         d.AsOfDate,
		Metadata:     raw,
	}, nil
}

// ToDomainStoredRate converts a model ExchangeRate to a domain StoredRate.
// Unparseable metadata is surfaced as nil rather than failing the read; the
// column is opaque to this service.
func ToDomainStoredRate(m models.ExchangeRate) domain.StoredRate {
	var meta map[string]any
	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &meta)
	}
	return domain.StoredRate{
		ID: m.ID,
		RateRecord: domain.RateRecord{
			Provider:      m.Provider,
			BaseCurrency:  m.CurrencyFrom,
			QuoteCurrency: m.CurrencyTo,
			Rate:          m.Rate,
			UpdateSlot:    m.UpdateType,
			AsOfDate:      m.Date,
			Metadata:      meta,
		},
		FetchedAt: m.ScrapedAt,
	}
}
