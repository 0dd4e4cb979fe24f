/*
engine.go - Fee computation pipeline

PURPOSE:
  Composes the primitives (area ratio, repetition bands, interpolation, unit
  rate, adjustment and complexity factors) into the final price:

    PV       = Sc × BH × (fp × R)
    PV_total = PV × (1 + surcharge/100)

RESOLUTION MODES:
  Three of the inputs can either be supplied directly or derived:
    r  - manual value, or estimated from the repetition count q
    fp - manual value, or interpolated from a calibration pair
    BH - manual value, or derived from cost index × typology multiplier

VALIDATION:
  Advisory-only. Negative inputs, extrapolated factors outside [0,1] and an
  area breakdown that does not add up to the total all flow through into the
  result arithmetically and come back as advisories. There are no fatal
  errors in normal operation.

SEE ALSO:
  - types.go: Input building blocks and Result
  - advisory.go: The advisory codes emitted here
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RESOLUTION MODES
// =============================================================================

// RMode selects how the repetition coefficient is obtained.
type RMode string

const (
	RManual   RMode = "manual"   // use Input.R as-is
	REstimate RMode = "estimate" // derive from Input.Repetitions
)

// FactorMode selects how the percentage factor fp is obtained.
type FactorMode string

const (
	FactorManual      FactorMode = "manual"
	FactorInterpolate FactorMode = "interpolate"
)

// RateMode selects how the unit benchmark rate BH is obtained.
type RateMode string

const (
	RateManual RateMode = "manual"
	RateDerive RateMode = "derive" // cost index × typology multiplier
)

// =============================================================================
// INPUT
// =============================================================================

// Input is everything one engine run needs. It is a pure value record built
// fresh for each computation request.
type Input struct {
	Areas AreaInputs

	RMode       RMode
	R           decimal.Decimal // used when RMode == RManual
	Repetitions int             // q, used when RMode == REstimate

	FactorMode  FactorMode
	Factor      decimal.Decimal // fp, used when FactorMode == FactorManual
	Calibration CalibrationPair // used when FactorMode == FactorInterpolate

	RateMode  RateMode
	UnitRate  decimal.Decimal // BH, used when RateMode == RateManual
	CostIndex decimal.Decimal // used when RateMode == RateDerive
	Typology  string          // used when RateMode == RateDerive

	SurchargePercent decimal.Decimal // optional BDI loading on PV

	// Optional factors. Adjustments (K1..K4) are always informational.
	// Complexity feeds the price only when ApplyComplexity is set; otherwise
	// the index is computed and reported but left out of PV.
	Adjustments     []NamedAdjustment
	Complexity      []IndicatorSelection
	ApplyComplexity bool
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs the full pipeline. Typologies is only consulted for
// RateDerive; a nil lookup behaves like a table with no entries.
type Engine struct {
	Typologies TypologyLookup
}

// Compute resolves the input modes, prices the proposal and returns the
// result together with every advisory raised along the way.
func (e *Engine) Compute(in Input) (Result, Advisories) {
	var advs Advisories

	advs = e.checkAreas(in.Areas, advs)

	// Resolve r.
	r := in.R
	if in.RMode == REstimate {
		r = RepetitionCoefficient(in.Repetitions)
	}

	// Ratio.
	ratio := AreaRatio(in.Areas, r)
	if in.Areas.Total.IsZero() {
		advs = advs.Add(CodeZeroTotalArea, "sc", "total area is zero; ratio defaults to 0")
	}

	// Resolve fp.
	fp := in.Factor
	if in.FactorMode == FactorInterpolate {
		fp = InterpolateFactor(in.Calibration, in.Areas.Total)
		if in.Calibration.Degenerate() {
			advs = advs.Add(CodeDegenerateCalibration, "fp",
				"calibration areas coincide at %s; using fp1", in.Calibration.Area1.String())
		}
	}
	if fp.IsNegative() || fp.GreaterThan(one) {
		advs = advs.Add(CodeFactorOutOfRange, "fp",
			"fp %s is outside [0,1]", fp.String())
	}

	// Resolve BH.
	bh := in.UnitRate
	if in.RateMode == RateDerive {
		multiplier := one
		if e.Typologies != nil {
			if m, ok := e.Typologies.Multiplier(in.Typology); ok {
				multiplier = m
			} else {
				advs = advs.Add(CodeUnknownTypology, "typology",
					"typology %q not in reference table; using neutral multiplier", in.Typology)
			}
		} else {
			advs = advs.Add(CodeUnknownTypology, "typology",
				"no typology table configured; using neutral multiplier")
		}
		bh = UnitRate(in.CostIndex, multiplier)
	}
	if bh.IsNegative() {
		advs = advs.Add(CodeNegativeInput, "bh", "unit rate %s is negative", bh.String())
	}

	// Optional factors.
	var adjustments map[string]decimal.Decimal
	if len(in.Adjustments) > 0 {
		adjustments = make(map[string]decimal.Decimal, len(in.Adjustments))
		for _, na := range in.Adjustments {
			adjustments[na.Name] = CompositeAdjustment(na.Loadings)
		}
	}

	ic := decimal.Zero
	effectiveRate := bh
	if len(in.Complexity) > 0 {
		ic = ComplexityIndex(in.Complexity)
		if in.ApplyComplexity {
			effectiveRate = bh.Mul(ic)
		}
	}

	// Price.
	base := in.Areas.Total.Mul(effectiveRate).Mul(fp.Mul(ratio))
	total := base.Mul(one.Add(in.SurchargePercent.Div(hundred)))

	return Result{
		Ratio:           ratio,
		R:               r,
		Factor:          fp,
		UnitRate:        bh,
		BasePrice:       base,
		TotalPrice:      total,
		Adjustments:     adjustments,
		ComplexityIndex: ic,
	}, advs
}

// checkAreas raises the permissive-input advisories on the raw areas.
func (e *Engine) checkAreas(areas AreaInputs, advs Advisories) Advisories {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"sc", areas.Total},
		{"snr", areas.NonRepeated},
		{"sr", areas.Repeated},
	} {
		if f.value.IsNegative() {
			advs = advs.Add(CodeNegativeInput, f.name, "area %s is negative", f.value.String())
		}
	}

	// Snr + Sr == Sc is implied by the methodology but deliberately not
	// enforced; the breakdown is only flagged when it disagrees.
	if !areas.Total.IsZero() {
		sum := areas.NonRepeated.Add(areas.Repeated)
		if !sum.Equal(areas.Total) {
			advs = advs.Add(CodeAreaSumMismatch, "areas",
				"Snr + Sr = %s differs from Sc = %s", sum.String(), areas.Total.String())
		}
	}
	return advs
}
