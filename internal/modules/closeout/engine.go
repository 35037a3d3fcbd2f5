// Package closeout computes the end-of-day cash reconciliation for a store:
// expected versus counted drawer cash, variance classification, and the
// note-required policy for large differences.
package closeout

import (
	"math"
	"strconv"
	"strings"
)

// Denominations is the GHS note and coin set counted at close, largest
// first.
var Denominations = []float64{200, 100, 50, 20, 10, 5, 2, 1, 0.5, 0.2, 0.1}

// MatchTolerance absorbs floating-point drift: variances within it are
// treated as an exact match.
const MatchTolerance = 0.01

// DefaultNoteThreshold is the |variance| in GHS above which a free-text
// note becomes mandatory.
const DefaultNoteThreshold = 20.0

// Outcome classifies a reconciliation.
type Outcome string

const (
	Matches Outcome = "matches"
	Short   Outcome = "short"
	Over    Outcome = "over"
)

// stripNonNumeric keeps digits, the decimal point and the minus sign.
// Counts arrive from free-form till inputs; everything else is noise.
func stripNonNumeric(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseCurrency parses a monetary amount defensively: non-numeric characters
// are stripped first, anything still malformed parses to 0. Never returns
// NaN or infinity.
func ParseCurrency(raw string) float64 {
	value, err := strconv.ParseFloat(stripNonNumeric(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// ParseQuantity parses a denomination count the same way, truncating to a
// whole number. Negative counts clamp to 0.
func ParseQuantity(raw string) int {
	count := int(ParseCurrency(raw))
	if count < 0 {
		return 0
	}
	return count
}

// DenominationKey is the map key a denomination's count is entered under
// ("200", "0.5", ...).
func DenominationKey(denomination float64) string {
	return strconv.FormatFloat(denomination, 'f', -1, 64)
}

// CountedCash totals the drawer: each denomination times its counted
// quantity, plus separately entered loose cash.
func CountedCash(counts map[string]string, looseCash string) float64 {
	var total float64
	for _, denomination := range Denominations {
		total += denomination * float64(ParseQuantity(counts[DenominationKey(denomination)]))
	}
	return total + ParseCurrency(looseCash)
}

// ExpectedCash is what the drawer should hold at close: cash taken out for
// deposits and payouts subtracts, float top-ups add.
func ExpectedCash(totalSales, nonCashTotal, cashRemoved, cashAdded float64) float64 {
	return totalSales - nonCashTotal - cashRemoved + cashAdded
}

// Classify maps a variance (counted − expected) to an outcome within the
// match tolerance band.
func Classify(variance float64) Outcome {
	switch {
	case math.Abs(variance) <= MatchTolerance:
		return Matches
	case variance < 0:
		return Short
	default:
		return Over
	}
}

// NoteRequired reports whether the variance obliges an explanatory note.
// A non-positive threshold falls back to the default.
func NoteRequired(variance, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultNoteThreshold
	}
	return math.Abs(variance) > threshold
}

// Round2 rounds to two decimal places for display and persisted summaries.
// Internal accumulation stays unrounded.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Reconciliation is the computed result of one count.
type Reconciliation struct {
	CountedCash  float64 `json:"counted_cash"`
	ExpectedCash float64 `json:"expected_cash"`
	Variance     float64 `json:"variance"`
	Outcome      Outcome `json:"outcome"`
	NoteRequired bool    `json:"note_required"`
}

// Reconcile runs the full computation for one drawer count.
func Reconcile(counts map[string]string, looseCash string, totalSales, nonCashTotal float64, cashRemoved, cashAdded string, noteThreshold float64) Reconciliation {
	counted := CountedCash(counts, looseCash)
	expected := ExpectedCash(totalSales, nonCashTotal, ParseCurrency(cashRemoved), ParseCurrency(cashAdded))
	variance := counted - expected
	return Reconciliation{
		CountedCash:  Round2(counted),
		ExpectedCash: Round2(expected),
		Variance:     Round2(variance),
		Outcome:      Classify(variance),
		NoteRequired: NoteRequired(variance, noteThreshold),
	}
}
