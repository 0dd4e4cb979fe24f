/*
interpolate.go - Percentage-factor interpolation

The published tables give fp at fixed area brackets. For an area between two
brackets the factor is interpolated linearly:

  fp = fp1 - (fp1 - fp2) × ((Sc - Sc1) / (Sc2 - Sc1))

The query area is NOT clamped into [Sc1, Sc2]; extrapolated factors may land
outside [0,1] and are reported via advisory, not rejected.
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// InterpolateFactor computes fp for the query area sc from a calibration
// pair. A degenerate pair (both areas equal) returns Factor1 unconditionally,
// avoiding the zero denominator.
func InterpolateFactor(pair CalibrationPair, sc decimal.Decimal) decimal.Decimal {
	if pair.Degenerate() {
		return pair.Factor1
	}
	span := pair.Area2.Sub(pair.Area1)
	position := sc.Sub(pair.Area1).Div(span)
	return pair.Factor1.Sub(pair.Factor1.Sub(pair.Factor2).Mul(position))
}
