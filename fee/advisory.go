/*
advisory.go - Non-fatal validation signals for the fee engine

PURPOSE:
  The reference methodology leaves most of its input domain unconstrained:
  negative areas, extrapolated factors outside [0,1] and percentage sets that
  do not sum to 100 all still produce well-defined per-entry values. The
  engine therefore never aborts a computation; instead every validating
  operation returns its result together with a list of advisories, and the
  caller decides whether to surface, log or ignore them.

ADVISORY CODES:
  zero_total_area        Sc == 0; ratio fell back to zero
  degenerate_calibration Both calibration areas equal; fp fell back to fp1
  schedule_sum_mismatch  Stage percentages do not sum to exactly 100
  area_sum_mismatch      Snr + Sr differs from Sc
  factor_out_of_range    fp outside [0,1] (usually from extrapolation)
  negative_input         A negative area, rate or loading was supplied
  unknown_typology       Typology name not in the reference table

USAGE:
  result, advs := engine.Compute(input)
  if advs.Has(fee.CodeScheduleSumMismatch) {
      // show a warning, keep the values
  }

SEE ALSO:
  - engine.go: Emits most of these
  - schedule.go: Emits schedule_sum_mismatch
*/
package fee

import (
	"fmt"
	"strings"
)

// =============================================================================
// ADVISORY CODES
// =============================================================================

const (
	CodeZeroTotalArea         = "zero_total_area"
	CodeDegenerateCalibration = "degenerate_calibration"
	CodeScheduleSumMismatch   = "schedule_sum_mismatch"
	CodeAreaSumMismatch       = "area_sum_mismatch"
	CodeFactorOutOfRange      = "factor_out_of_range"
	CodeNegativeInput         = "negative_input"
	CodeUnknownTypology       = "unknown_typology"
)

// =============================================================================
// ADVISORY - One non-fatal finding
// =============================================================================

// Advisory is a display-only validation finding. It is deliberately not an
// error: nothing that produces an Advisory prevents a defined result.
type Advisory struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (a Advisory) String() string {
	if a.Field != "" {
		return fmt.Sprintf("%s (%s): %s", a.Code, a.Field, a.Message)
	}
	return fmt.Sprintf("%s: %s", a.Code, a.Message)
}

// Advisories is an ordered collection of findings from one computation run.
type Advisories []Advisory

// Has reports whether any advisory carries the given code.
func (as Advisories) Has(code string) bool {
	for _, a := range as {
		if a.Code == code {
			return true
		}
	}
	return false
}

// Add appends a finding and returns the extended list.
func (as Advisories) Add(code, field, format string, args ...any) Advisories {
	return append(as, Advisory{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// Summary joins all findings into one line for logs.
func (as Advisories) Summary() string {
	if len(as) == 0 {
		return ""
	}
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = a.String()
	}
	return strings.Join(parts, "; ")
}
