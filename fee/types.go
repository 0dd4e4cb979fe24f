/*
Package fee implements the fee-proposal calculation engine.

PURPOSE:
  This package contains the deterministic formulas that turn raw project
  inputs (built areas, repetition counts, calibration points, cost indexes)
  into a priced proposal: a base price, an optional surcharge, and a
  stage-by-stage payment schedule.

KEY CONCEPTS IN THIS FILE (types.go):
  - AreaInputs: Total, non-repeated and repeated built area
  - CalibrationPair: Two (area, factor) points for interpolation
  - AdjustmentLoadings: Four percentage loadings behind a composite factor
  - Severity: Discrete complexity level (Low/Medium/High)
  - Result: The computed price output
  - Money/Factor helpers: decimal constructors in one place

DESIGN PRINCIPLES:
  1. Purity: Every computation is a function of its inputs; nothing here
     owns mutable state across runs
  2. Precision: Uses decimal.Decimal so money and factors compose exactly
  3. Permissiveness: Inconsistent inputs are flagged via advisories (see
     advisory.go), never rejected - per-entry results stay well-defined

FORMULA (reference methodology):
  PV = Sc × BH × (fp × R), where R = (Snr + Sr×r) / Sc

SEE ALSO:
  - engine.go: Pipeline composition
  - schedule.go: Payment apportionment
  - advisory.go: Non-fatal validation signals
*/
package fee

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// D builds a decimal from a float input. Form inputs arrive as floats; all
// downstream arithmetic stays in decimal.
func D(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// MustParseDecimal parses a decimal string, returning zero on failure.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// =============================================================================
// AREA INPUTS
// =============================================================================

// AreaInputs carries the raw area figures in square meters.
//
// The methodology treats Total as the nominal denominator for the
// productive-area ratio. Snr + Sr is NOT required to equal Total; a
// mismatch is reported as an advisory but never corrected.
type AreaInputs struct {
	Total       decimal.Decimal // Sc - total estimated built area
	NonRepeated decimal.Decimal // Snr
	Repeated    decimal.Decimal // Sr
}

// =============================================================================
// CALIBRATION PAIR
// =============================================================================

// CalibrationPair holds two (area, percentage-factor) points used to
// interpolate fp for an intermediate area. The pair is degenerate when both
// areas are equal; interpolation then falls back to the first factor.
type CalibrationPair struct {
	Area1   decimal.Decimal // Sc1
	Factor1 decimal.Decimal // fp1
	Area2   decimal.Decimal // Sc2
	Factor2 decimal.Decimal // fp2
}

// Degenerate reports whether the two calibration areas coincide.
func (c CalibrationPair) Degenerate() bool {
	return c.Area1.Equal(c.Area2)
}

// =============================================================================
// COMPOSITE ADJUSTMENT LOADINGS
// =============================================================================

// AdjustmentLoadings are the four independent percentage loadings behind one
// composite adjustment factor (K1..K4). A value of 20 means 20%.
type AdjustmentLoadings struct {
	SocialCharges decimal.Decimal // ES
	IndirectCosts decimal.Decimal // DI
	Profit        decimal.Decimal // L
	LegalDuties   decimal.Decimal // DL
}

// NamedAdjustment pairs a factor name (K1..K4) with its loadings.
type NamedAdjustment struct {
	Name     string
	Loadings AdjustmentLoadings
}

// =============================================================================
// COMPLEXITY SEVERITY
// =============================================================================

// Severity is the discrete level assigned to one complexity indicator.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Coefficient maps a severity to its numeric weight. Unknown severities map
// to the neutral medium weight.
func (s Severity) Coefficient() decimal.Decimal {
	switch s {
	case SeverityLow:
		return decimal.NewFromFloat(0.70)
	case SeverityHigh:
		return decimal.NewFromFloat(1.30)
	default:
		return decimal.NewFromFloat(1.00)
	}
}

// IndicatorSelection assigns a severity to one named complexity indicator.
type IndicatorSelection struct {
	Indicator string
	Severity  Severity
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the output of one engine run. All fields are resolved values:
// when a mode asked the engine to derive r, fp or BH, the derived value is
// what appears here.
type Result struct {
	Ratio    decimal.Decimal // R = (Snr + Sr×r) / Sc
	R        decimal.Decimal // repetition coefficient actually used
	Factor   decimal.Decimal // fp actually used
	UnitRate decimal.Decimal // BH actually used

	BasePrice  decimal.Decimal // PV, before surcharge
	TotalPrice decimal.Decimal // PV × (1 + surcharge/100)

	// Informational factors, populated when the caller supplied the inputs.
	Adjustments     map[string]decimal.Decimal // K1..K4 by name
	ComplexityIndex decimal.Decimal            // IC, zero when not computed
}
