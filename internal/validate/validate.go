// Package validate checks the requested date range against the upstream's
// retention window. Wall-clock time and the decision policy for adjusting
// out-of-range dates are explicit parameters, so validation is deterministic
// and callers decide whether adjustments are accepted interactively,
// automatically, or not at all.
package validate

import (
	"time"

	"github.com/haffinnih/cargurus-to-monarch-money/internal/errkind"
	"github.com/haffinnih/cargurus-to-monarch-money/internal/models"
)

// RetentionWindow is how far back the upstream keeps price history.
const RetentionWindow = 365 * 24 * time.Hour

// Adjustment describes a proposed correction to an out-of-range date.
type Adjustment struct {
	// Field names the bound being adjusted, "start" or "end".
	Field string

	// Provided is the date the caller asked for.
	Provided time.Time

	// Suggested is the nearest date inside the supported range.
	Suggested time.Time

	// Reason explains why the provided date is not usable.
	Reason string
}

// Policy decides whether a proposed adjustment is applied. Returning false
// rejects the range outright.
type Policy func(a Adjustment) bool

// AcceptAll applies every proposed adjustment.
func AcceptAll(Adjustment) bool { return true }

// RejectAll refuses every proposed adjustment.
func RejectAll(Adjustment) bool { return false }

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	const op = "validate.ParseDate"

	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, errkind.Newf(errkind.InvalidDateFormat, op,
			"date must be in YYYY-MM-DD format, got: %s", s)
	}
	return t, nil
}

// Range validates [start, end] against the retention window relative to the
// given wall-clock time and returns the (possibly adjusted) bounds.
//
// A start older than the retention window and an end later than yesterday are
// each offered to the policy as an adjustment; a nil policy rejects both.
// start >= end always fails with kind InvalidDateRange.
func Range(start, end, now time.Time, policy Policy) (time.Time, time.Time, error) {
	const op = "validate.Range"

	if policy == nil {
		policy = RejectAll
	}

	today := truncateToDay(now)
	earliest := today.Add(-RetentionWindow)

	if start.Before(earliest) {
		adj := Adjustment{
			Field:     "start",
			Provided:  start,
			Suggested: earliest,
			Reason:    "start date is more than 1 year ago",
		}
		if !policy(adj) {
			return time.Time{}, time.Time{}, errkind.New(errkind.InvalidDateRange, op,
				"start date cannot be more than 1 year ago")
		}
		start = earliest
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, errkind.New(errkind.InvalidDateRange, op,
			"start date must be before end date")
	}

	yesterday := today.AddDate(0, 0, -1)
	if end.After(yesterday) {
		adj := Adjustment{
			Field:     "end",
			Provided:  end,
			Suggested: yesterday,
			Reason:    "upstream typically has no data past yesterday",
		}
		if !policy(adj) {
			return time.Time{}, time.Time{}, errkind.New(errkind.InvalidDateRange, op,
				"end date cannot be in the future")
		}
		end = yesterday
	}

	return start, end, nil
}

// DefaultRange returns the widest supported range relative to now: the
// retention-window boundary through yesterday. Used when the caller provides
// no explicit dates.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	today := truncateToDay(now)
	return today.Add(-RetentionWindow), today.AddDate(0, 0, -1)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
