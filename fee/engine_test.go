/*
engine_test.go - Pipeline composition tests

The reference worked example from the methodology:
  Sc=5000, Snr=750, Sr=4250, r=0.6, BH=120, fp=0.18
  R = (750 + 4250×0.6)/5000 = 0.66
  PV = 5000 × 120 × (0.18 × 0.66) = 71,280.00
  PV_total at 10% surcharge = 78,408.00
*/
package fee_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/fee-engine/fee"
)

// staticTypologies is a minimal TypologyLookup for engine tests.
type staticTypologies map[string]decimal.Decimal

func (s staticTypologies) Multiplier(name string) (decimal.Decimal, bool) {
	m, ok := s[name]
	return m, ok
}

func referenceInput() fee.Input {
	return fee.Input{
		Areas:      areas(5000, 750, 4250),
		RMode:      fee.RManual,
		R:          d(0.6),
		FactorMode: fee.FactorManual,
		Factor:     d(0.18),
		RateMode:   fee.RateManual,
		UnitRate:   d(120),
	}
}

func TestEngine_ReferenceExample(t *testing.T) {
	// GIVEN: The methodology's worked example
	// WHEN: Computing without a surcharge
	// THEN: R = 0.66 and PV = 71,280.00 exactly
	engine := &fee.Engine{}
	result, advs := engine.Compute(referenceInput())

	assertDecimalEqual(t, 0.66, result.Ratio)
	assertDecimalEqual(t, 71280.00, result.BasePrice)
	assertDecimalEqual(t, 71280.00, result.TotalPrice, "no surcharge means total == base")
	assert.False(t, advs.Has(fee.CodeZeroTotalArea))
}

func TestEngine_ReferenceExampleWithSurcharge(t *testing.T) {
	// GIVEN: The same example with a 10% surcharge
	// THEN: PV_total = 78,408.00
	engine := &fee.Engine{}
	in := referenceInput()
	in.SurchargePercent = d(10)

	result, _ := engine.Compute(in)
	assertDecimalEqual(t, 71280.00, result.BasePrice)
	assertDecimalEqual(t, 78408.00, result.TotalPrice)
}

func TestEngine_EstimatesRFromRepetitions(t *testing.T) {
	// GIVEN: REstimate with q=17
	// THEN: r resolves to the 0.40 band and feeds the ratio
	engine := &fee.Engine{}
	in := referenceInput()
	in.RMode = fee.REstimate
	in.Repetitions = 17
	in.R = decimal.Zero // ignored in estimate mode

	result, _ := engine.Compute(in)
	assertDecimalEqual(t, 0.40, result.R)
	// R = (750 + 4250×0.4)/5000 = 0.49
	assertDecimalEqual(t, 0.49, result.Ratio)
}

func TestEngine_InterpolatesFactor(t *testing.T) {
	// GIVEN: FactorInterpolate with the default calibration bracket
	// WHEN: Sc = 5000 between 3000→0.22 and 10000→0.15
	// THEN: fp = 0.22 - 0.07 × (2000/7000) = 0.20
	engine := &fee.Engine{}
	in := referenceInput()
	in.FactorMode = fee.FactorInterpolate
	in.Calibration = pair(3000, 0.22, 10000, 0.15)

	result, advs := engine.Compute(in)
	assertDecimalClose(t, 0.20, result.Factor)
	assert.False(t, advs.Has(fee.CodeDegenerateCalibration))
	assert.False(t, advs.Has(fee.CodeFactorOutOfRange))
}

func TestEngine_DegenerateCalibrationAdvisory(t *testing.T) {
	// GIVEN: A degenerate calibration pair
	// THEN: fp falls back to fp1 and an advisory is raised, not an error
	engine := &fee.Engine{}
	in := referenceInput()
	in.FactorMode = fee.FactorInterpolate
	in.Calibration = pair(3000, 0.22, 3000, 0.15)

	result, advs := engine.Compute(in)
	assertDecimalEqual(t, 0.22, result.Factor)
	assert.True(t, advs.Has(fee.CodeDegenerateCalibration))
}

func TestEngine_ExtrapolatedFactorFlagged(t *testing.T) {
	// GIVEN: A query area far past the bracket, pushing fp below zero
	// THEN: The factor flows into the price and is flagged out-of-range
	engine := &fee.Engine{}
	in := referenceInput()
	in.Areas = areas(50000, 50000, 0)
	in.FactorMode = fee.FactorInterpolate
	in.Calibration = pair(1000, 0.30, 2000, 0.20)

	result, advs := engine.Compute(in)
	assert.True(t, result.Factor.IsNegative())
	assert.True(t, result.BasePrice.IsNegative(), "negative factor propagates to price")
	assert.True(t, advs.Has(fee.CodeFactorOutOfRange))
}

func TestEngine_DerivesUnitRateFromTypology(t *testing.T) {
	// GIVEN: RateDerive with a known typology at multiplier 1.2
	// THEN: BH = 100 × 1.2 = 120 and the reference price holds
	engine := &fee.Engine{Typologies: staticTypologies{"multifamily-residential": d(1.2)}}
	in := referenceInput()
	in.RateMode = fee.RateDerive
	in.CostIndex = d(100)
	in.Typology = "multifamily-residential"
	in.UnitRate = decimal.Zero

	result, advs := engine.Compute(in)
	assertDecimalEqual(t, 120, result.UnitRate)
	assertDecimalEqual(t, 71280.00, result.BasePrice)
	assert.False(t, advs.Has(fee.CodeUnknownTypology))
}

func TestEngine_UnknownTypologyUsesNeutralMultiplier(t *testing.T) {
	// GIVEN: A typology absent from the table
	// THEN: Multiplier 1.0 is used and an advisory raised
	engine := &fee.Engine{Typologies: staticTypologies{}}
	in := referenceInput()
	in.RateMode = fee.RateDerive
	in.CostIndex = d(120)
	in.Typology = "space-elevator"

	result, advs := engine.Compute(in)
	assertDecimalEqual(t, 120, result.UnitRate)
	assert.True(t, advs.Has(fee.CodeUnknownTypology))
}

func TestEngine_ZeroTotalAreaAdvisory(t *testing.T) {
	// GIVEN: Sc = 0
	// THEN: Ratio and price are zero, with a zero_total_area advisory
	engine := &fee.Engine{}
	in := referenceInput()
	in.Areas = areas(0, 1500, 3500)

	result, advs := engine.Compute(in)
	assert.True(t, result.Ratio.IsZero())
	assert.True(t, result.BasePrice.IsZero())
	assert.True(t, advs.Has(fee.CodeZeroTotalArea))
}

func TestEngine_AreaSumMismatchAdvisory(t *testing.T) {
	// GIVEN: Snr + Sr != Sc (methodology implies equality; we only flag)
	// THEN: The price is still computed from Sc as the denominator
	engine := &fee.Engine{}
	in := referenceInput()
	in.Areas = areas(5000, 1000, 3500)

	result, advs := engine.Compute(in)
	assert.True(t, advs.Has(fee.CodeAreaSumMismatch))
	assert.False(t, result.BasePrice.IsZero())
}

func TestEngine_NegativeInputsPropagateWithAdvisory(t *testing.T) {
	// GIVEN: A negative total area
	// THEN: The price goes negative and a negative_input advisory is raised
	engine := &fee.Engine{}
	in := referenceInput()
	in.Areas = areas(-5000, 1500, 3500)

	result, advs := engine.Compute(in)
	assert.True(t, advs.Has(fee.CodeNegativeInput))
	assert.True(t, result.BasePrice.IsNegative())
}

func TestEngine_NamedAdjustmentsReported(t *testing.T) {
	// GIVEN: Two named K factors
	// THEN: Each is computed independently and reported, leaving PV alone
	engine := &fee.Engine{}
	in := referenceInput()
	in.Adjustments = []fee.NamedAdjustment{
		{Name: "K1", Loadings: fee.AdjustmentLoadings{}},
		{Name: "K2", Loadings: fee.AdjustmentLoadings{SocialCharges: d(20), IndirectCosts: d(10)}},
	}

	result, _ := engine.Compute(in)
	require.Len(t, result.Adjustments, 2)
	assertDecimalEqual(t, 1.0, result.Adjustments["K1"])
	assertDecimalClose(t, 1.32, result.Adjustments["K2"])
	assertDecimalEqual(t, 71280.00, result.BasePrice, "informational factors do not move PV")
}

func TestEngine_ComplexityAppliedOnlyWhenEnabled(t *testing.T) {
	// GIVEN: Ten all-high selections (IC = 1.30)
	// WHEN: ApplyComplexity is off, then on
	// THEN: The index is always reported; the price moves only when applied
	engine := &fee.Engine{}
	in := referenceInput()
	in.Complexity = tenSelections(fee.SeverityHigh)

	reported, _ := engine.Compute(in)
	assertDecimalEqual(t, 1.30, reported.ComplexityIndex)
	assertDecimalEqual(t, 71280.00, reported.BasePrice)

	in.ApplyComplexity = true
	applied, _ := engine.Compute(in)
	assertDecimalEqual(t, 1.30, applied.ComplexityIndex)
	assertDecimalClose(t, 71280.00*1.30, applied.BasePrice)
	assertDecimalEqual(t, 120, applied.UnitRate, "reported BH stays the table value")
}
