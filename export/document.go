/*
Package export serializes a computed proposal into interchange formats.

PURPOSE:
  Pure data projection - no calculation happens here. One Document captures
  the identification fields, every resolved input, the computed results and
  the stage apportionment of a single engine run, and the format writers
  (JSON, CSV, XLSX, PDF) render that Document without transforming it.

FORMATS:
  JSON - the structured hierarchical document (the canonical export)
  CSV  - flat stage/percentage/value table in preset stage order
  XLSX - spreadsheet rendition of the full proposal
  PDF  - printable proposal summary

ENCODING:
  Project and client names are free text and routinely non-ASCII; every
  writer here must preserve them losslessly (UTF-8 throughout, no HTML
  escaping in JSON).

SEE ALSO:
  - json.go / csv.go / excel.go / pdf.go: Format writers
  - fee/engine.go: Produces the values projected here
*/
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelier/fee-engine/fee"
)

// =============================================================================
// DOCUMENT MODEL
// =============================================================================

// Identification is the free-text header of a proposal.
type Identification struct {
	Project  string `json:"project"`
	Client   string `json:"client"`
	Region   string `json:"region"`
	Typology string `json:"typology"`
	Date     string `json:"date"` // ISO-8601 calendar date, set at export time
}

// Inputs mirrors the resolved input parameters. Key casing follows the
// methodology's symbols: lowercase r is the repetition coefficient,
// uppercase R the productive-area ratio.
type Inputs struct {
	Sc               decimal.Decimal  `json:"Sc"`
	Snr              decimal.Decimal  `json:"Snr"`
	Sr               decimal.Decimal  `json:"Sr"`
	R                decimal.Decimal  `json:"r"`
	Repetitions      *int             `json:"q"`
	Ratio            decimal.Decimal  `json:"R"`
	UnitRate         decimal.Decimal  `json:"BH"`
	Factor           decimal.Decimal  `json:"fp"`
	SurchargePercent decimal.Decimal  `json:"surcharge_percent"`
	ComputedUnitRate *decimal.Decimal `json:"computed_BH,omitempty"`
}

// Results carries the two price figures.
type Results struct {
	BasePrice  decimal.Decimal `json:"price_excl_surcharge"`
	TotalPrice decimal.Decimal `json:"price_total"`
}

// ScheduleLine is one exported stage, order-preserving.
type ScheduleLine struct {
	Stage      string
	Percentage decimal.Decimal
	Value      decimal.Decimal
}

// Document is the full structured export of one computation run.
type Document struct {
	Identification Identification `json:"identification"`
	Inputs         Inputs         `json:"inputs"`
	Results        Results        `json:"results"`
	Schedule       ScheduleMap    `json:"schedule"`
}

// ScheduleMap serializes as a {stage: value} object while keeping the
// preset's stage order for the tabular writers.
type ScheduleMap []ScheduleLine

// =============================================================================
// PROJECTION
// =============================================================================

// BuildDocument projects one engine run into a Document. The date is the
// export instant, not the computation instant.
func BuildDocument(id Identification, in fee.Input, res fee.Result, schedule fee.Schedule, now time.Time) Document {
	id.Date = now.Format("2006-01-02")

	inputs := Inputs{
		Sc:               in.Areas.Total,
		Snr:              in.Areas.NonRepeated,
		Sr:               in.Areas.Repeated,
		R:                res.R,
		Ratio:            res.Ratio,
		UnitRate:         res.UnitRate,
		Factor:           res.Factor,
		SurchargePercent: in.SurchargePercent,
	}
	if in.RMode == fee.REstimate {
		q := in.Repetitions
		inputs.Repetitions = &q
	}
	if in.RateMode == fee.RateDerive {
		bh := res.UnitRate
		inputs.ComputedUnitRate = &bh
	}

	lines := make(ScheduleMap, len(schedule))
	for i, e := range schedule {
		lines[i] = ScheduleLine{Stage: e.Stage, Percentage: e.Percentage, Value: e.Value}
	}

	return Document{
		Identification: id,
		Inputs:         inputs,
		Results: Results{
			BasePrice:  res.BasePrice,
			TotalPrice: res.TotalPrice,
		},
		Schedule: lines,
	}
}
