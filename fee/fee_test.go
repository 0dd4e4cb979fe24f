/*
fee_test.go - Tests for the calculation primitives

ORGANIZATION:
  1. Area ratio - degenerate-denominator guard, arithmetic
  2. Repetition bands - every band boundary
  3. Interpolation - endpoints, midpoints, degenerate pair, extrapolation
  4. Unit rate, composite adjustment, complexity index

Each test has GIVEN/WHEN/THEN comments stating the scenario.
*/
package fee_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/fee-engine/fee"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func areas(sc, snr, sr float64) fee.AreaInputs {
	return fee.AreaInputs{Total: d(sc), NonRepeated: d(snr), Repeated: d(sr)}
}

func pair(sc1, fp1, sc2, fp2 float64) fee.CalibrationPair {
	return fee.CalibrationPair{Area1: d(sc1), Factor1: d(fp1), Area2: d(sc2), Factor2: d(fp2)}
}

// assertDecimalEqual compares decimals by value, not representation.
func assertDecimalEqual(t *testing.T, expected float64, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual),
		"expected %v, got %s (%v)", expected, actual.String(), msgAndArgs)
}

// assertDecimalClose allows a small tolerance for chained divisions.
func assertDecimalClose(t *testing.T, expected float64, actual decimal.Decimal) {
	t.Helper()
	diff := d(expected).Sub(actual).Abs()
	assert.True(t, diff.LessThan(d(0.0000001)),
		"expected ~%v, got %s (diff %s)", expected, actual.String(), diff.String())
}

// =============================================================================
// AREA RATIO
// =============================================================================

func TestAreaRatio_ZeroTotalArea(t *testing.T) {
	// GIVEN: Any sub-areas and coefficient, but Sc = 0
	// WHEN: Computing the ratio
	// THEN: The guard returns zero instead of dividing by zero
	ratio := fee.AreaRatio(areas(0, 1500, 3500), d(0.6))
	assert.True(t, ratio.IsZero(), "ratio must be 0 when Sc is 0, got %s", ratio)
}

func TestAreaRatio_ReferenceValues(t *testing.T) {
	// GIVEN: Sc=5000, Snr=750, Sr=4250, r=0.6
	// WHEN: Computing the ratio
	// THEN: R = (750 + 4250×0.6)/5000 = 0.66
	ratio := fee.AreaRatio(areas(5000, 750, 4250), d(0.6))
	assertDecimalEqual(t, 0.66, ratio)
}

func TestAreaRatio_NoRepeatedArea(t *testing.T) {
	// GIVEN: All area non-repeated
	// THEN: r has no effect and R = Snr/Sc
	ratio := fee.AreaRatio(areas(2000, 2000, 0), d(0.35))
	assertDecimalEqual(t, 1.0, ratio)
}

func TestAreaRatio_NegativeAreasPropagate(t *testing.T) {
	// GIVEN: A negative non-repeated area (not validated at this layer)
	// THEN: The arithmetic result flows through unchanged
	ratio := fee.AreaRatio(areas(1000, -500, 0), d(1))
	assertDecimalEqual(t, -0.5, ratio)
}

// =============================================================================
// REPETITION BANDS
// =============================================================================

func TestRepetitionCoefficient_BandBoundaries(t *testing.T) {
	// GIVEN: The fixed band table
	// THEN: Every boundary resolves to its band's coefficient
	cases := []struct {
		q    int
		want float64
	}{
		{1, 1.00},
		{2, 0.70}, {4, 0.70},
		{5, 0.60}, {8, 0.60},
		{9, 0.50}, {16, 0.50},
		{17, 0.40}, {32, 0.40},
		{33, 0.35},
	}
	for _, tc := range cases {
		got := fee.RepetitionCoefficient(tc.q)
		assertDecimalEqual(t, tc.want, got, "q=%d", tc.q)
	}
}

func TestRepetitionCoefficient_LargeCounts(t *testing.T) {
	// Counts beyond the last band all hit the floor.
	assertDecimalEqual(t, 0.35, fee.RepetitionCoefficient(100))
	assertDecimalEqual(t, 0.35, fee.RepetitionCoefficient(10000))
}

// =============================================================================
// INTERPOLATION
// =============================================================================

func TestInterpolateFactor_ExactAtEndpoints(t *testing.T) {
	// GIVEN: Calibration (3000→0.22, 10000→0.15)
	// WHEN: Querying exactly at each calibration area
	// THEN: The factor is the calibration value, exactly
	p := pair(3000, 0.22, 10000, 0.15)
	assertDecimalEqual(t, 0.22, fee.InterpolateFactor(p, d(3000)))
	assertDecimalEqual(t, 0.15, fee.InterpolateFactor(p, d(10000)))
}

func TestInterpolateFactor_Midpoint(t *testing.T) {
	// GIVEN: A symmetric bracket
	// WHEN: Querying at the midpoint
	// THEN: The factor is the average of the two calibration factors
	p := pair(1000, 0.30, 3000, 0.10)
	assertDecimalClose(t, 0.20, fee.InterpolateFactor(p, d(2000)))
}

func TestInterpolateFactor_DegeneratePair(t *testing.T) {
	// GIVEN: Both calibration areas equal
	// WHEN: Querying anywhere
	// THEN: fp1 is returned unconditionally
	p := pair(4000, 0.19, 4000, 0.99)
	assertDecimalEqual(t, 0.19, fee.InterpolateFactor(p, d(4000)))
	assertDecimalEqual(t, 0.19, fee.InterpolateFactor(p, d(100000)))
	assertDecimalEqual(t, 0.19, fee.InterpolateFactor(p, d(0)))
}

func TestInterpolateFactor_ExtrapolationUnclamped(t *testing.T) {
	// GIVEN: A query area far outside the bracket
	// THEN: The line is extended, even past [0,1]
	p := pair(1000, 0.30, 2000, 0.20)
	assertDecimalClose(t, 0.40, fee.InterpolateFactor(p, d(0)))
	assertDecimalClose(t, -0.10, fee.InterpolateFactor(p, d(5000)))
}

// =============================================================================
// UNIT RATE
// =============================================================================

func TestUnitRate_Multiplication(t *testing.T) {
	// BH = cost index × adequacy multiplier, nothing else.
	assertDecimalEqual(t, 150.0, fee.UnitRate(d(125), d(1.2)))
	assertDecimalEqual(t, 0.0, fee.UnitRate(d(0), d(1.2)))
}

// =============================================================================
// COMPOSITE ADJUSTMENT
// =============================================================================

func TestCompositeAdjustment_Identity(t *testing.T) {
	// GIVEN: All four loadings at zero
	// THEN: K = 1.0 exactly
	k := fee.CompositeAdjustment(fee.AdjustmentLoadings{})
	assertDecimalEqual(t, 1.0, k)
}

func TestCompositeAdjustment_KnownValue(t *testing.T) {
	// K = 1.2 × 1.1 × 1.15 × 1.05 for ES=20, DI=10, L=15, DL=5.
	k := fee.CompositeAdjustment(fee.AdjustmentLoadings{
		SocialCharges: d(20),
		IndirectCosts: d(10),
		Profit:        d(15),
		LegalDuties:   d(5),
	})
	assertDecimalClose(t, 1.2*1.1*1.15*1.05, k)
}

func TestCompositeAdjustment_MonotoneInEachLoading(t *testing.T) {
	// GIVEN: A baseline factor
	// WHEN: Raising any single loading
	// THEN: The factor strictly increases
	base := fee.AdjustmentLoadings{
		SocialCharges: d(10), IndirectCosts: d(10), Profit: d(10), LegalDuties: d(10),
	}
	k0 := fee.CompositeAdjustment(base)

	bump := func(mutate func(*fee.AdjustmentLoadings)) decimal.Decimal {
		l := base
		mutate(&l)
		return fee.CompositeAdjustment(l)
	}

	require.True(t, bump(func(l *fee.AdjustmentLoadings) { l.SocialCharges = d(11) }).GreaterThan(k0))
	require.True(t, bump(func(l *fee.AdjustmentLoadings) { l.IndirectCosts = d(11) }).GreaterThan(k0))
	require.True(t, bump(func(l *fee.AdjustmentLoadings) { l.Profit = d(11) }).GreaterThan(k0))
	require.True(t, bump(func(l *fee.AdjustmentLoadings) { l.LegalDuties = d(11) }).GreaterThan(k0))
}

// =============================================================================
// COMPLEXITY INDEX
// =============================================================================

func tenSelections(severity fee.Severity) []fee.IndicatorSelection {
	sels := make([]fee.IndicatorSelection, 10)
	for i := range sels {
		sels[i] = fee.IndicatorSelection{Indicator: "indicator", Severity: severity}
	}
	return sels
}

func TestComplexityIndex_AllMediumIsNeutral(t *testing.T) {
	assertDecimalEqual(t, 1.0, fee.ComplexityIndex(tenSelections(fee.SeverityMedium)))
}

func TestComplexityIndex_Bounds(t *testing.T) {
	// GIVEN: Any ten selections from {0.70, 1.00, 1.30}
	// THEN: The mean stays inside [0.70, 1.30]
	assertDecimalEqual(t, 0.70, fee.ComplexityIndex(tenSelections(fee.SeverityLow)))
	assertDecimalEqual(t, 1.30, fee.ComplexityIndex(tenSelections(fee.SeverityHigh)))

	mixed := tenSelections(fee.SeverityMedium)
	mixed[0].Severity = fee.SeverityLow
	mixed[1].Severity = fee.SeverityHigh
	ic := fee.ComplexityIndex(mixed)
	assert.True(t, ic.GreaterThanOrEqual(d(0.70)) && ic.LessThanOrEqual(d(1.30)),
		"index %s outside [0.70, 1.30]", ic)
	assertDecimalEqual(t, 1.0, ic, "one low and one high cancel out")
}

func TestComplexityIndex_EmptySelectionIsNeutral(t *testing.T) {
	// An empty selection yields the neutral index.
	assertDecimalEqual(t, 1.0, fee.ComplexityIndex(nil))
}

func TestSeverity_UnknownMapsToMedium(t *testing.T) {
	assertDecimalEqual(t, 1.0, fee.Severity("whatever").Coefficient())
}
