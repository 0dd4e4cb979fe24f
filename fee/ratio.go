/*
ratio.go - Productive-area ratio

The ratio R discounts repeated floor area before it enters the price:
  Sp = Snr + Sr × r
  R  = Sp / Sc

A zero total area yields R = 0 rather than a division failure; the engine
attaches a zero_total_area advisory when that guard fires.
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// AreaRatio computes R = (Snr + Sr×r) / Sc.
//
// Contract: returns zero when Sc is zero. No other validation - negative or
// inconsistent areas propagate arithmetically, matching the permissive
// posture of the rest of the engine.
func AreaRatio(areas AreaInputs, r decimal.Decimal) decimal.Decimal {
	if areas.Total.IsZero() {
		return decimal.Zero
	}
	productive := areas.NonRepeated.Add(areas.Repeated.Mul(r))
	return productive.Div(areas.Total)
}
