package providers

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzla-dev/bolivar_rates_api/internal/apperrors"
)

func TestParseLocalizedDecimal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"comma decimal", "36,50", "36.5"},
		{"dot decimal", "36.50", "36.5"},
		{"comma decimal with dot thousands", "1.234,56", "1234.56"},
		{"dot decimal with comma thousands", "1,234.56", "1234.56"},
		{"surrounding whitespace", "  36,50\n", "36.5"},
		{"non-breaking space", "36 500,25", "36500.25"},
		{"plain integer", "42", "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseLocalizedDecimal(tc.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestParseLocalizedDecimalRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "12abc", "-5", "0", "0,00"} {
		t.Run(input, func(t *testing.T) {
			_, err := parseLocalizedDecimal(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrParse), "expected ErrParse, got %v", err)
		})
	}
}

func TestNormalizeRateStampsMarketDate(t *testing.T) {
	caracas := time.FixedZone("VET", -4*60*60)
	// 01:30 UTC is still the previous day in the market timezone.
	at := time.Date(2024, 3, 15, 1, 30, 0, 0, time.UTC)

	record := normalizeRate("BCV", "USD", "VES", decimal.RequireFromString("36.5"), nil, nil, at, caracas)

	assert.Equal(t, "BCV", record.Provider)
	assert.Equal(t, "USD", record.BaseCurrency)
	assert.Equal(t, "VES", record.QuoteCurrency)
	assert.Nil(t, record.UpdateSlot)
	assert.Equal(t, "2024-03-14", record.AsOfDate.Format("2006-01-02"))
}
