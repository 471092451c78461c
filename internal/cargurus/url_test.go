package cargurus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
)

func TestParseTrendsURL(t *testing.T) {
	parsed, err := ParseTrendsURL(
		"https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441?entityIds=c32015")
	require.NoError(t, err)

	assert.Equal(t, "Honda-Civic-Hatchback-d2441", parsed.ModelPath)
	assert.Equal(t, "c32015", parsed.EntityID)
	assert.Empty(t, parsed.StartDate)
	assert.Empty(t, parsed.EndDate)
}

func TestParseTrendsURLWithDates(t *testing.T) {
	// 1735689600000 = 2025-01-01T00:00:00Z, 1738368000000 = 2025-02-01T00:00:00Z.
	parsed, err := ParseTrendsURL(
		"https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441" +
			"?entityIds=c32015&startDate=1735689600000&endDate=1738368000000")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", parsed.StartDate)
	assert.Equal(t, "2025-02-01", parsed.EndDate)
}

func TestParseTrendsURLShellEscaped(t *testing.T) {
	parsed, err := ParseTrendsURL(
		`https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441\?entityIds\=c32015`)
	require.NoError(t, err)

	assert.Equal(t, "Honda-Civic-Hatchback-d2441", parsed.ModelPath)
	assert.Equal(t, "c32015", parsed.EntityID)
}

func TestParseTrendsURLMultipleEntityIDs(t *testing.T) {
	parsed, err := ParseTrendsURL(
		"https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441?entityIds=c32015,c32016")
	require.NoError(t, err)
	assert.Equal(t, "c32015", parsed.EntityID)
}

func TestParseTrendsURLInvalidTimestampsIgnored(t *testing.T) {
	parsed, err := ParseTrendsURL(
		"https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441" +
			"?entityIds=c32015&startDate=notamillis")
	require.NoError(t, err)
	assert.Empty(t, parsed.StartDate)
}

func TestParseTrendsURLErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"not a price-trends URL", "https://www.cargurus.com/Cars/l-Used-Honda-Civic-d2441"},
		{"missing entityIds", "https://www.cargurus.com/research/price-trends/Honda-Civic-Hatchback-d2441"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrendsURL(tt.url)
			require.Error(t, err)
			assert.Equal(t, errkind.InvalidArgument, errkind.KindOf(err))
		})
	}
}
