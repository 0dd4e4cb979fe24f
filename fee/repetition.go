/*
repetition.go - Repetition discount coefficient

When the authoritative lookup table for the repetition coefficient r is not
at hand, a banded estimate by repetition count stands in for it. The bands
are a practical heuristic, not the official table, so the coefficient must
always remain overridable by direct manual entry of r.
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// repetitionBand maps a repetition-count ceiling to a coefficient.
type repetitionBand struct {
	maxCount    int
	coefficient decimal.Decimal
}

// Bands are evaluated in ascending order; first match wins.
var repetitionBands = []repetitionBand{
	{1, decimal.NewFromFloat(1.00)},
	{4, decimal.NewFromFloat(0.70)},
	{8, decimal.NewFromFloat(0.60)},
	{16, decimal.NewFromFloat(0.50)},
	{32, decimal.NewFromFloat(0.40)},
}

// Coefficient for counts beyond the last band.
var repetitionFloor = decimal.NewFromFloat(0.35)

// RepetitionCoefficient estimates r from the number of repetitions q
// (e.g. the number of identical floor plates). One or fewer repetitions
// means no discount at all.
func RepetitionCoefficient(q int) decimal.Decimal {
	for _, band := range repetitionBands {
		if q <= band.maxCount {
			return band.coefficient
		}
	}
	return repetitionFloor
}
