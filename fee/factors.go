/*
factors.go - Unit rate, composite adjustment and complexity factors

Three independent primitives that feed the price formula:

  UnitRate:            BH = cost index × adequacy multiplier
  CompositeAdjustment: K  = Π (1 + loading/100) over {ES, DI, L, DL}
  ComplexityIndex:     IC = mean of ten discrete indicator coefficients

Each is stateless. CompositeAdjustment may be evaluated up to four times for
the named factors K1..K4; every invocation is independent.
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// UNIT RATE
// =============================================================================

// UnitRate derives the unit benchmark rate BH from a base cost-index value
// and an adequacy multiplier. The multiplier comes from a static table keyed
// by project typology; the caller selects it by name - it is never computed.
func UnitRate(costIndex, adequacyMultiplier decimal.Decimal) decimal.Decimal {
	return costIndex.Mul(adequacyMultiplier)
}

// TypologyLookup resolves an adequacy multiplier by typology name. The
// tables package provides the process-lifetime implementation.
type TypologyLookup interface {
	Multiplier(typology string) (decimal.Decimal, bool)
}

// =============================================================================
// COMPOSITE ADJUSTMENT
// =============================================================================

// CompositeAdjustment multiplies the four percentage loadings into one
// scalar: K = (1+ES/100)(1+DI/100)(1+L/100)(1+DL/100). Zero loadings yield
// the identity factor 1.0.
func CompositeAdjustment(l AdjustmentLoadings) decimal.Decimal {
	k := one
	for _, pct := range []decimal.Decimal{l.SocialCharges, l.IndirectCosts, l.Profit, l.LegalDuties} {
		k = k.Mul(one.Add(pct.Div(hundred)))
	}
	return k
}

// =============================================================================
// COMPLEXITY INDEX
// =============================================================================

// ComplexityIndex averages the coefficients of the selected indicators.
//
// The form collects exactly ten selections, one per reference indicator.
// An empty selection returns the neutral 1.0.
func ComplexityIndex(selections []IndicatorSelection) decimal.Decimal {
	if len(selections) == 0 {
		return one
	}
	sum := decimal.Zero
	for _, s := range selections {
		sum = sum.Add(s.Severity.Coefficient())
	}
	return sum.Div(decimal.NewFromInt(int64(len(selections))))
}
