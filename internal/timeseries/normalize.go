package timeseries

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// Upstream field names for one raw price point.
const (
	rawTimestampField = "date"
	rawPriceField     = "price"
)

// Normalize converts raw upstream price points into sorted (date, price)
// pairs. The timestamp is interpreted as milliseconds since the Unix epoch
// and rendered as a calendar date in loc (UTC when nil); the price is rounded
// to 2 decimal places, half away from zero.
//
// Malformed points (missing fields, wrong-typed timestamps, non-numeric
// prices) are skipped; a partial batch never fails. An empty result is valid
// output meaning no usable points were present.
func Normalize(points []models.RawPricePoint, loc *time.Location) []models.PricePoint {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]models.PricePoint, 0, len(points))
	for _, pt := range points {
		millis, ok := epochMillis(pt[rawTimestampField])
		if !ok {
			continue
		}
		price, ok := numericValue(pt[rawPriceField])
		if !ok {
			continue
		}
		out = append(out, models.PricePoint{
			Date:  time.UnixMilli(millis).In(loc).Format(models.DateLayout),
			Price: price.Round(2),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// epochMillis reads a millisecond epoch timestamp from a loosely-typed value.
// Only numeric representations are accepted; strings are not timestamps.
func epochMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		millis, err := t.Int64()
		return millis, err == nil
	default:
		return 0, false
	}
}

// numericValue reads a price from a loosely-typed value. Numeric strings are
// accepted alongside JSON numbers.
func numericValue(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(t)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}
