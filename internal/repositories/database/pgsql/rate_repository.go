package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vzla-dev/bolivar_rates_api/internal/core/domain"
	"github.com/vzla-dev/bolivar_rates_api/internal/models"
	"github.com/vzla-dev/bolivar_rates_api/internal/utils/mapping"
)

const rateColumns = `id, provider, currency_from, currency_to, rate, update_type, scraped_at, date, metadata`

// upsertRateQuery relies on the table's NULLS NOT DISTINCT unique constraint:
// records without an update slot collide with each other on the same
// (provider, pair, date) bucket. Concurrency resolves to last-write-wins
// inside the single statement.
const upsertRateQuery = `
	INSERT INTO exchange_rates
		(provider, currency_from, currency_to, rate, update_type, date, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (provider, currency_from, currency_to, date, update_type)
	DO UPDATE SET
		rate = EXCLUDED.rate,
		scraped_at = CURRENT_TIMESTAMP,
		metadata = EXCLUDED.metadata
	RETURNING ` + rateColumns

// PgxRateRepository implements the ports.RateRepository interface using pgxpool.
type PgxRateRepository struct {
	BaseRepository
}

// NewPgxRateRepository creates a new PgxRateRepository.
func NewPgxRateRepository(db *pgxpool.Pool) *PgxRateRepository {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// UpsertRate inserts the record or replaces rate, capture time and metadata
// of the row sharing its uniqueness tuple.
func (r *PgxRateRepository) UpsertRate(ctx context.Context, record domain.RateRecord) (*domain.StoredRate, error) {
	modelRate, err := mapping.ToModelRate(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rate metadata: %w", err)
	}

	var saved models.ExchangeRate
	err = r.Pool.QueryRow(ctx, upsertRateQuery,
		modelRate.Provider, modelRate.CurrencyFrom, modelRate.CurrencyTo,
		modelRate.Rate, modelRate.UpdateType, modelRate.Date, modelRate.Metadata,
	).Scan(
		&saved.ID, &saved.Provider, &saved.CurrencyFrom, &saved.CurrencyTo,
		&saved.Rate, &saved.UpdateType, &saved.ScrapedAt, &saved.Date, &saved.Metadata,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert exchange rate: %w", err)
	}

	stored := mapping.ToDomainStoredRate(saved)
	return &stored, nil
}

// FindLatest returns the most recently captured row per distinct
// (provider, currency_from) pair. Empty filter values match everything.
func (r *PgxRateRepository) FindLatest(ctx context.Context, provider, currency string) ([]domain.StoredRate, error) {
	query, params := buildLatestQuery(provider, currency)
	return r.queryRates(ctx, query, params...)
}

// FindHistory returns the rows for the currency within the inclusive as-of
// date range, newest date first, capture-time ties newest first.
func (r *PgxRateRepository) FindHistory(ctx context.Context, currency string, startDate, endDate time.Time, provider string) ([]domain.StoredRate, error) {
	query, params := buildHistoryQuery(currency, startDate, endDate, provider)
	return r.queryRates(ctx, query, params...)
}

// FindByDate returns all rows for exactly that as-of date, newest capture
// first.
func (r *PgxRateRepository) FindByDate(ctx context.Context, date time.Time, provider string) ([]domain.StoredRate, error) {
	query, params := buildByDateQuery(date, provider)
	return r.queryRates(ctx, query, params...)
}

// buildLatestQuery assembles the DISTINCT ON latest-per-pair query with
// dynamically numbered optional filters.
func buildLatestQuery(provider, currency string) (string, []any) {
	query := `
		SELECT DISTINCT ON (provider, currency_from) ` + rateColumns + `
		FROM exchange_rates
		WHERE 1=1`
	var params []any

	if provider != "" {
		params = append(params, provider)
		query += fmt.Sprintf(" AND provider = $%d", len(params))
	}
	if currency != "" {
		params = append(params, currency)
		query += fmt.Sprintf(" AND currency_from = $%d", len(params))
	}
	query += ` ORDER BY provider, currency_from, scraped_at DESC`
	return query, params
}

// buildHistoryQuery assembles the inclusive-range history query.
func buildHistoryQuery(currency string, startDate, endDate time.Time, provider string) (string, []any) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE currency_from = $1
		  AND date >= $2
		  AND date <= $3`
	params := []any{currency, startDate, endDate}

	if provider != "" {
		params = append(params, provider)
		query += fmt.Sprintf(" AND provider = $%d", len(params))
	}
	query += ` ORDER BY date DESC, scraped_at DESC`
	return query, params
}

// buildByDateQuery assembles the single-date query.
func buildByDateQuery(date time.Time, provider string) (string, []any) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE date = $1`
	params := []any{date}

	if provider != "" {
		params = append(params, provider)
		query += fmt.Sprintf(" AND provider = $%d", len(params))
	}
	query += ` ORDER BY scraped_at DESC`
	return query, params
}

// queryRates runs a SELECT over exchange_rates and maps the rows to domain
// StoredRates.
func (r *PgxRateRepository) queryRates(ctx context.Context, query string, params ...any) ([]domain.StoredRate, error) {
	rows, err := r.Pool.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer rows.Close()

	rates := make([]domain.StoredRate, 0)
	for rows.Next() {
		var m models.ExchangeRate
		err := rows.Scan(
			&m.ID, &m.Provider, &m.CurrencyFrom, &m.CurrencyTo,
			&m.Rate, &m.UpdateType, &m.ScrapedAt, &m.Date, &m.Metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, mapping.ToDomainStoredRate(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exchange rates: %w", err)
	}
	return rates, nil
}
