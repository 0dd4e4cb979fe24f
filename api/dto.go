/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  Defines the JSON shapes exchanged with the form host. DTOs use float64
  for numeric fields - the boundary format of the form - and are converted
  to decimal at the edge; everything past the handlers is decimal.

CONVENTIONS:
  - Optional numeric inputs are pointers: nil means "not supplied, fall
    back to the session default"
  - Mode fields take the fee package's mode strings (manual/estimate,
    manual/interpolate, manual/derive)

SEE ALSO:
  - handlers.go: Uses these DTOs
  - fee/engine.go: The Input the request maps onto
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/atelier/fee-engine/fee"
)

// =============================================================================
// REQUEST DTOS
// =============================================================================

// IdentificationDTO is the free-text proposal header.
type IdentificationDTO struct {
	Project  string `json:"project"`
	Client   string `json:"client"`
	Region   string `json:"region"`
	Typology string `json:"typology"`
}

// AreasDTO carries the three raw area figures in m².
type AreasDTO struct {
	Total       float64 `json:"sc"`
	NonRepeated float64 `json:"snr"`
	Repeated    float64 `json:"sr"`
}

// CalibrationDTO is the fp interpolation bracket. Omitting it selects the
// reference-table default.
type CalibrationDTO struct {
	Area1   float64 `json:"sc1"`
	Factor1 float64 `json:"fp1"`
	Area2   float64 `json:"sc2"`
	Factor2 float64 `json:"fp2"`
}

// AdjustmentDTO is one named composite factor (K1..K4) with its loadings.
type AdjustmentDTO struct {
	Name          string  `json:"name"`
	SocialCharges float64 `json:"es"`
	IndirectCosts float64 `json:"di"`
	Profit        float64 `json:"l"`
	LegalDuties   float64 `json:"dl"`
}

// IndicatorDTO is one complexity indicator selection.
type IndicatorDTO struct {
	Indicator string `json:"indicator"`
	Severity  string `json:"severity"` // low | medium | high
}

// StageShareDTO is one schedule stage percentage override.
type StageShareDTO struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
}

// ComputeRequest is the full pipeline input.
type ComputeRequest struct {
	SessionID      string            `json:"session_id,omitempty"`
	Identification IdentificationDTO `json:"identification"`
	Areas          AreasDTO          `json:"areas"`

	RMode       string   `json:"r_mode,omitempty"` // manual (default) | estimate
	R           *float64 `json:"r,omitempty"`
	Repetitions int      `json:"q,omitempty"`

	FactorMode  string          `json:"fp_mode,omitempty"` // manual (default) | interpolate
	Factor      *float64        `json:"fp,omitempty"`
	Calibration *CalibrationDTO `json:"calibration,omitempty"`

	RateMode  string   `json:"bh_mode,omitempty"` // manual (default) | derive
	UnitRate  *float64 `json:"bh,omitempty"`
	CostIndex float64  `json:"cost_index,omitempty"`

	SurchargePercent float64 `json:"surcharge_percent,omitempty"`

	Adjustments     []AdjustmentDTO `json:"adjustments,omitempty"`
	Complexity      []IndicatorDTO  `json:"complexity,omitempty"`
	ApplyComplexity bool            `json:"apply_complexity,omitempty"`

	Preset string          `json:"preset,omitempty"`
	Shares []StageShareDTO `json:"shares,omitempty"`
}

// =============================================================================
// RESPONSE DTOS
// =============================================================================

// ResolvedInputsDTO echoes the inputs actually used after mode resolution
// and session-default fill-in.
type ResolvedInputsDTO struct {
	Sc               float64 `json:"sc"`
	Snr              float64 `json:"snr"`
	Sr               float64 `json:"sr"`
	R                float64 `json:"r"`
	Repetitions      *int    `json:"q,omitempty"`
	Factor           float64 `json:"fp"`
	UnitRate         float64 `json:"bh"`
	SurchargePercent float64 `json:"surcharge_percent"`
	Preset           string  `json:"preset"`
}

// ResultDTO carries the computed outputs.
type ResultDTO struct {
	Ratio           float64            `json:"ratio"`
	BasePrice       float64            `json:"price_excl_surcharge"`
	TotalPrice      float64            `json:"price_total"`
	Adjustments     map[string]float64 `json:"adjustments,omitempty"`
	ComplexityIndex *float64           `json:"complexity_index,omitempty"`
}

// ScheduleEntryDTO is one apportioned stage.
type ScheduleEntryDTO struct {
	Stage      string  `json:"stage"`
	Percentage float64 `json:"percentage"`
	Value      float64 `json:"value"`
}

// ComputeResponse is the full pipeline output.
type ComputeResponse struct {
	Inputs     ResolvedInputsDTO  `json:"inputs"`
	Result     ResultDTO          `json:"result"`
	Schedule   []ScheduleEntryDTO `json:"schedule"`
	Advisories fee.Advisories     `json:"advisories"`
}

// TypologyDTO is one reference-table typology.
type TypologyDTO struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

// PresetDTO is one schedule preset.
type PresetDTO struct {
	Name   string          `json:"name"`
	Stages []StageShareDTO `json:"stages"`
}

// ProposalSummaryDTO is one archived proposal without its document body.
type ProposalSummaryDTO struct {
	ID        string `json:"id"`
	Project   string `json:"project"`
	Client    string `json:"client"`
	Region    string `json:"region"`
	Typology  string `json:"typology"`
	CreatedAt string `json:"created_at"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func f(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func toScheduleDTOs(schedule fee.Schedule) []ScheduleEntryDTO {
	dtos := make([]ScheduleEntryDTO, len(schedule))
	for i, e := range schedule {
		dtos[i] = ScheduleEntryDTO{
			Stage:      e.Stage,
			Percentage: f(e.Percentage),
			Value:      f(e.Value),
		}
	}
	return dtos
}

func toResultDTO(res fee.Result) ResultDTO {
	dto := ResultDTO{
		Ratio:      f(res.Ratio),
		BasePrice:  f(res.BasePrice),
		TotalPrice: f(res.TotalPrice),
	}
	if len(res.Adjustments) > 0 {
		dto.Adjustments = make(map[string]float64, len(res.Adjustments))
		for name, k := range res.Adjustments {
			dto.Adjustments[name] = f(k)
		}
	}
	if !res.ComplexityIndex.IsZero() {
		ic := f(res.ComplexityIndex)
		dto.ComplexityIndex = &ic
	}
	return dto
}
