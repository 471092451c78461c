package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

func millis(y int, m time.Month, d int) float64 {
	return float64(time.Date(y, m, d, 12, 0, 0, 0, time.UTC).UnixMilli())
}

func TestNormalize(t *testing.T) {
	points := []models.RawPricePoint{
		{"date": millis(2025, time.January, 3), "price": 25010.123},
		{"date": millis(2025, time.January, 1), "price": 25000.0},
		{"date": millis(2025, time.January, 2), "price": 24999.999},
	}

	got := Normalize(points, time.UTC)
	require.Len(t, got, 3)

	// Sorted ascending by date regardless of input order.
	assert.Equal(t, "2025-01-01", got[0].Date)
	assert.Equal(t, "2025-01-02", got[1].Date)
	assert.Equal(t, "2025-01-03", got[2].Date)

	// Prices rounded to 2 decimal places.
	assert.Equal(t, "25000.00", got[0].BalanceString())
	assert.Equal(t, "25000.00", got[1].BalanceString())
	assert.Equal(t, "25010.12", got[2].BalanceString())
}

func TestNormalizeSkipsMalformedPoints(t *testing.T) {
	wellFormed := models.RawPricePoint{
		"date":  millis(2025, time.March, 15),
		"price": 31250.50,
	}

	points := []models.RawPricePoint{
		{"date": "not-a-timestamp", "price": 100.0}, // bad timestamp
		{"date": millis(2025, time.March, 1)},       // missing price
		wellFormed,
		{"price": 200.0},                                        // missing timestamp
		{"date": millis(2025, time.March, 2), "price": "cheap"}, // non-numeric price
	}

	got := Normalize(points, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-03-15", got[0].Date)
	assert.Equal(t, "31250.50", got[0].BalanceString())
}

func TestNormalizeAcceptsNumericStrings(t *testing.T) {
	points := []models.RawPricePoint{
		{"date": millis(2025, time.May, 1), "price": "19999.995"},
	}

	got := Normalize(points, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "20000.00", got[0].BalanceString())
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil, time.UTC))
	assert.Empty(t, Normalize([]models.RawPricePoint{}, time.UTC))
}

func TestNormalizeLocation(t *testing.T) {
	// 2025-01-02 03:00 UTC is still 2025-01-01 in a UTC-5 zone.
	ts := float64(time.Date(2025, time.January, 2, 3, 0, 0, 0, time.UTC).UnixMilli())
	points := []models.RawPricePoint{{"date": ts, "price": 100.0}}

	utc := Normalize(points, time.UTC)
	require.Len(t, utc, 1)
	assert.Equal(t, "2025-01-02", utc[0].Date)

	est := Normalize(points, time.FixedZone("UTC-5", -5*60*60))
	require.Len(t, est, 1)
	assert.Equal(t, "2025-01-01", est[0].Date)

	// nil location defaults to UTC.
	def := Normalize(points, nil)
	require.Len(t, def, 1)
	assert.Equal(t, "2025-01-02", def[0].Date)
}

func TestNormalizeDuplicateDatesPreserved(t *testing.T) {
	// Uniqueness is not enforced here; dedup happens during gap filling.
	points := []models.RawPricePoint{
		{"date": millis(2025, time.April, 1), "price": 100.0},
		{"date": millis(2025, time.April, 1), "price": 105.0},
	}

	got := Normalize(points, time.UTC)
	assert.Len(t, got, 2)
}
