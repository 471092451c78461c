package models

import "time"

// DateRange is a closed interval of calendar dates. Both bounds are
// inclusive; the zero time-of-day is assumed.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks the range invariant start <= end.
func (r DateRange) Validate() error {
	if r.Start.IsZero() {
		return &ValidationError{Field: "start", Message: "start date cannot be zero"}
	}
	if r.End.IsZero() {
		return &ValidationError{Field: "end", Message: "end date cannot be zero"}
	}
	if r.Start.After(r.End) {
		return &ValidationError{Field: "end", Message: "end date must not be before start date"}
	}
	return nil
}

// Days returns the number of calendar days covered, counting both bounds.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// String renders the range as "YYYY-MM-DD..YYYY-MM-DD".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
