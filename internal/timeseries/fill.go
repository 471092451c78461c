package timeseries

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// ForwardFill produces one price per calendar day across [start, end] by
// carrying the last known price into days without an observation. Days before
// the first known price are omitted, never back-filled. Duplicate dates in
// the input resolve last-write-wins.
//
// An empty series fails with kind NoPriceDataAvailable: after all chunks were
// fetched there is genuinely nothing for the requested range.
func ForwardFill(series []models.PricePoint, start, end time.Time) ([]models.PricePoint, error) {
	const op = "timeseries.ForwardFill"

	if len(series) == 0 {
		return nil, errkind.New(errkind.NoPriceDataAvailable, op,
			"no price data available for the specified vehicle and date range")
	}

	index := make(map[string]decimal.Decimal, len(series))
	for _, p := range series {
		index[p.Date] = p.Price
	}

	start = truncateToDay(start)
	end = truncateToDay(end)

	filled := make([]models.PricePoint, 0, daySpan(start, end))
	var carried decimal.Decimal
	haveCarried := false

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		if price, ok := index[key]; ok {
			carried = price
			haveCarried = true
			filled = append(filled, models.PricePoint{Date: key, Price: price})
		} else if haveCarried {
			filled = append(filled, models.PricePoint{Date: key, Price: carried})
		}
	}

	return filled, nil
}

func daySpan(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
