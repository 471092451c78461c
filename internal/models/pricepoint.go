// Package models provides the data structures for vehicle price history:
// date ranges, raw upstream price points, and normalized daily price points.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used throughout the pipeline.
// Lexicographic order on this layout is chronological order.
const DateLayout = "2006-01-02"

// RawPricePoint is one price observation exactly as decoded from the upstream
// response. Fields may be missing or wrong-typed; normalization decides what
// is usable.
type RawPricePoint map[string]any

// PricePoint is a normalized daily price observation.
type PricePoint struct {
	// Date is the calendar date in YYYY-MM-DD form.
	Date string `json:"date"`

	// Price is the vehicle price rounded to 2 decimal places.
	Price decimal.Decimal `json:"price"`
}

// BalanceString renders the price as a fixed two-decimal string, the form
// written into the CSV Balance column.
func (p PricePoint) BalanceString() string {
	return p.Price.StringFixed(2)
}

// Validate checks that the point carries a well-formed date and a
// non-negative price.
func (p PricePoint) Validate() error {
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("date must be in YYYY-MM-DD format, got: %s", p.Date)}
	}
	if p.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "price cannot be negative"}
	}
	return nil
}

// ValidationError reports a model field that failed validation.
type ValidationError struct {
	Field   string // Field is the name of the field that failed validation
	Message string // Message describes the failure
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
}
