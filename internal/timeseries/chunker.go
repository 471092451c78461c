// Package timeseries implements the price normalization pipeline: splitting a
// date range into calendar-month chunks, converting raw upstream price points
// into a sorted daily series, and forward-filling gaps so every day in the
// requested range carries a price.
package timeseries

import (
	"time"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// MonthlyChunks partitions [start, end] into calendar-month-bounded
// sub-ranges with no gaps or overlaps. Each chunk ends at the last day of its
// month or at end, whichever comes first. The upstream API limits query spans
// to roughly one month, so fetches are issued per chunk.
//
// A range where start equals end produces no chunks. Callers that need a
// single-day fetch must widen the range first.
func MonthlyChunks(start, end time.Time) []models.DateRange {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var chunks []models.DateRange
	current := start

	for current.Before(end) {
		nextMonth := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, current.Location()).AddDate(0, 1, 0)
		chunkEnd := nextMonth.AddDate(0, 0, -1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, models.DateRange{Start: current, End: chunkEnd})
		current = nextMonth
	}

	return chunks
}

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
