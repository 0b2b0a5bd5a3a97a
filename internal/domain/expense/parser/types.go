// Package parser turns free-text expense sentences into structured expense records.
// It is a deterministic pipeline tuned for Malaysian usage (RM amounts, day-first dates,
// English/Malay keywords) and performs no I/O.
package parser

import "time"

// Currency is the only currency the parser produces.
const Currency = "MYR"

// Warning messages surfaced to the user when a field was defaulted or guessed.
const (
	WarnAmountNotFound      = "Amount not found"
	WarnDateAssumed         = "Date assumed today"
	WarnCategoryNotDetected = "Category not detected - please select"
	WarnCategoryGuessed     = "Category guessed - please verify"
)

// ParsedExpense is the result of parsing a natural language expense input.
type ParsedExpense struct {
	AmountMinor        *int64    // Amount in sen; nil when no amount was found
	Currency           string    // Always MYR
	Merchant           string    // Display-cased merchant, empty when absent
	Date               time.Time // Never zero; defaults to the parse instant
	DateExplicit       bool      // True when the date came from the input text
	Notes              string    // Leftover text, empty when absent
	CategoryName       string    // Lowercase category identifier, empty when absent
	CategoryConfidence float64   // Suggester score that produced CategoryName
	Confidence         float64   // Overall score in [0,1]
	Warnings           []string  // Ordered user-facing warnings
}

// Amount returns the amount in ringgit and whether one was found.
func (p ParsedExpense) Amount() (float64, bool) {
	if p.AmountMinor == nil {
		return 0, false
	}
	return float64(*p.AmountMinor) / 100, true
}

// HasWarning reports whether msg is among the warnings.
func (p ParsedExpense) HasWarning(msg string) bool {
	for _, w := range p.Warnings {
		if w == msg {
			return true
		}
	}
	return false
}

// AmountResult is the outcome of the amount extraction stage.
type AmountResult struct {
	Minor int64
	Found bool
}

// DateResult is the outcome of the date resolution stage.
type DateResult struct {
	Date     time.Time
	Explicit bool
}

// CategoryResult is the outcome of the category suggestion stage.
type CategoryResult struct {
	Name       string
	Confidence float64
}
