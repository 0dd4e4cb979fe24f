/*
handlers.go - HTTP API handlers for the fee proposal engine

PURPOSE:
  Exposes the calculation pipeline via REST. Handles HTTP request/response,
  JSON serialization, session-default fill-in and delegates all arithmetic
  to the fee package.

ENDPOINTS:
  Compute:
    POST   /api/compute                 Run the full pipeline

  Reference tables:
    GET    /api/tables/typologies       Typology multipliers
    GET    /api/tables/presets          Schedule presets
    GET    /api/tables/indicators       Complexity indicators
    GET    /api/tables/regions          Region codes

  Export:
    POST   /api/export/json             Structured document (archived)
    POST   /api/export/csv              Flat schedule table
    POST   /api/export/xlsx             Workbook
    POST   /api/export/pdf              Printable proposal

  Archive:
    GET    /api/proposals               List archived proposals
    GET    /api/proposals/{id}          One archived document

  Admin:
    POST   /api/reset                   Clear sessions and archive (dev)

REQUEST FLOW:
  1. Parse request
  2. Fill omitted fields from the session's remembered defaults
  3. Run the engine and the apportioner
  4. Write the session's new defaults back
  5. Serialize response (computation advisories ride along, still HTTP 200)

ERROR HANDLING:
  Calculation findings are advisories, never HTTP errors. HTTP errors are
  reserved for the transport edge: malformed JSON, unknown preset names,
  storage failures.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier/fee-engine/export"
	"github.com/atelier/fee-engine/fee"
	"github.com/atelier/fee-engine/session"
	"github.com/atelier/fee-engine/store/sqlite"
	"github.com/atelier/fee-engine/tables"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Sessions session.Store
	Engine   *fee.Engine
	Tables   *tables.Catalog
}

// NewHandler creates a handler backed by the given store. The store doubles
// as the durable session store.
func NewHandler(store *sqlite.Store) *Handler {
	cat := tables.Load()
	return &Handler{
		Store:    store,
		Sessions: store,
		Engine:   &fee.Engine{Typologies: cat},
		Tables:   cat,
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// pipelineRun is everything one request produced, shared by the compute and
// export handlers.
type pipelineRun struct {
	input      fee.Input
	preset     string
	result     fee.Result
	schedule   fee.Schedule
	advisories fee.Advisories
}

// runPipeline resolves the request against session defaults, computes the
// price and apportionment, and writes the new defaults back.
func (h *Handler) runPipeline(r *http.Request, req ComputeRequest) (*pipelineRun, error) {
	ctx := r.Context()

	var defaults *session.Defaults
	if req.SessionID != "" && h.Sessions != nil {
		d, err := h.Sessions.Get(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session defaults: %w", err)
		}
		defaults = d
	}

	input, err := h.buildInput(req, defaults)
	if err != nil {
		return nil, err
	}

	result, advs := h.Engine.Compute(input)

	presetName, shares, err := h.resolveShares(req, defaults)
	if err != nil {
		return nil, err
	}
	schedule, scheduleAdvs := fee.Apportion(result.TotalPrice, shares)
	advs = append(advs, scheduleAdvs...)

	if req.SessionID != "" && h.Sessions != nil {
		if err := h.Sessions.Put(ctx, req.SessionID, carryOver(result, presetName, shares)); err != nil {
			return nil, fmt.Errorf("save session defaults: %w", err)
		}
	}

	return &pipelineRun{
		input:      input,
		preset:     presetName,
		result:     result,
		schedule:   schedule,
		advisories: advs,
	}, nil
}

// buildInput maps the request onto a fee.Input, filling omitted manual
// values from the session defaults. The neutral fallbacks (r=1, fp=0, BH=0)
// apply when neither the request nor the session supplies a value.
func (h *Handler) buildInput(req ComputeRequest, defaults *session.Defaults) (fee.Input, error) {
	in := fee.Input{
		Areas: fee.AreaInputs{
			Total:       fee.D(req.Areas.Total),
			NonRepeated: fee.D(req.Areas.NonRepeated),
			Repeated:    fee.D(req.Areas.Repeated),
		},
		RMode:            fee.RManual,
		FactorMode:       fee.FactorManual,
		RateMode:         fee.RateManual,
		SurchargePercent: fee.D(req.SurchargePercent),
		ApplyComplexity:  req.ApplyComplexity,
		Typology:         req.Identification.Typology,
	}

	switch req.RMode {
	case "", string(fee.RManual):
		in.R = pickDecimal(req.R, sessionDecimal(defaults, func(d *session.Defaults) *decimal.Decimal { return d.R }), decimal.NewFromInt(1))
	case string(fee.REstimate):
		in.RMode = fee.REstimate
		in.Repetitions = req.Repetitions
	default:
		return fee.Input{}, fmt.Errorf("unknown r_mode %q", req.RMode)
	}

	switch req.FactorMode {
	case "", string(fee.FactorManual):
		in.Factor = pickDecimal(req.Factor, sessionDecimal(defaults, func(d *session.Defaults) *decimal.Decimal { return d.Factor }), decimal.Zero)
	case string(fee.FactorInterpolate):
		in.FactorMode = fee.FactorInterpolate
		if req.Calibration != nil {
			in.Calibration = fee.CalibrationPair{
				Area1:   fee.D(req.Calibration.Area1),
				Factor1: fee.D(req.Calibration.Factor1),
				Area2:   fee.D(req.Calibration.Area2),
				Factor2: fee.D(req.Calibration.Factor2),
			}
		} else {
			in.Calibration = h.Tables.DefaultCalibration()
		}
	default:
		return fee.Input{}, fmt.Errorf("unknown fp_mode %q", req.FactorMode)
	}

	switch req.RateMode {
	case "", string(fee.RateManual):
		in.UnitRate = pickDecimal(req.UnitRate, sessionDecimal(defaults, func(d *session.Defaults) *decimal.Decimal { return d.UnitRate }), decimal.Zero)
	case string(fee.RateDerive):
		in.RateMode = fee.RateDerive
		in.CostIndex = fee.D(req.CostIndex)
	default:
		return fee.Input{}, fmt.Errorf("unknown bh_mode %q", req.RateMode)
	}

	for _, a := range req.Adjustments {
		in.Adjustments = append(in.Adjustments, fee.NamedAdjustment{
			Name: a.Name,
			Loadings: fee.AdjustmentLoadings{
				SocialCharges: fee.D(a.SocialCharges),
				IndirectCosts: fee.D(a.IndirectCosts),
				Profit:        fee.D(a.Profit),
				LegalDuties:   fee.D(a.LegalDuties),
			},
		})
	}
	for _, c := range req.Complexity {
		in.Complexity = append(in.Complexity, fee.IndicatorSelection{
			Indicator: c.Indicator,
			Severity:  fee.Severity(strings.ToLower(c.Severity)),
		})
	}
	return in, nil
}

// resolveShares picks the schedule preset and its (possibly overridden)
// stage percentages.
func (h *Handler) resolveShares(req ComputeRequest, defaults *session.Defaults) (string, []fee.StageShare, error) {
	presetName := req.Preset
	if presetName == "" && defaults != nil && defaults.Preset != "" {
		presetName = defaults.Preset
	}
	if presetName == "" {
		presetName = "standard"
	}

	preset, ok := h.Tables.Preset(presetName)
	if !ok {
		return "", nil, fmt.Errorf("unknown schedule preset %q", presetName)
	}

	if len(req.Shares) > 0 {
		shares := make([]fee.StageShare, len(req.Shares))
		for i, s := range req.Shares {
			shares[i] = fee.StageShare{Stage: s.Stage, Percentage: fee.D(s.Percentage)}
		}
		return presetName, shares, nil
	}

	// A remembered override only applies to the preset it was made on.
	if defaults != nil && defaults.Preset == presetName && len(defaults.Shares) > 0 {
		shares := make([]fee.StageShare, len(defaults.Shares))
		for i, s := range defaults.Shares {
			shares[i] = fee.StageShare{Stage: s.Stage, Percentage: s.Percentage}
		}
		return presetName, shares, nil
	}

	return presetName, preset.Stages, nil
}

// carryOver builds the next pass's defaults from this pass's outputs.
func carryOver(result fee.Result, preset string, shares []fee.StageShare) session.Defaults {
	bh := result.UnitRate
	fp := result.Factor
	rr := result.R
	d := session.Defaults{
		UnitRate: &bh,
		Factor:   &fp,
		R:        &rr,
		Preset:   preset,
	}
	for _, s := range shares {
		d.Shares = append(d.Shares, session.StagePercent{Stage: s.Stage, Percentage: s.Percentage})
	}
	return d
}

func pickDecimal(request *float64, remembered *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if request != nil {
		return fee.D(*request)
	}
	if remembered != nil {
		return *remembered
	}
	return fallback
}

func sessionDecimal(d *session.Defaults, get func(*session.Defaults) *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	return get(d)
}

// =============================================================================
// COMPUTE HANDLER
// =============================================================================

// Compute runs the full pipeline.
// POST /api/compute
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	run, err := h.runPipeline(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Computation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toComputeResponse(run))
}

func (h *Handler) toComputeResponse(run *pipelineRun) ComputeResponse {
	inputs := ResolvedInputsDTO{
		Sc:               f(run.input.Areas.Total),
		Snr:              f(run.input.Areas.NonRepeated),
		Sr:               f(run.input.Areas.Repeated),
		R:                f(run.result.R),
		Factor:           f(run.result.Factor),
		UnitRate:         f(run.result.UnitRate),
		SurchargePercent: f(run.input.SurchargePercent),
		Preset:           run.preset,
	}
	if run.input.RMode == fee.REstimate {
		q := run.input.Repetitions
		inputs.Repetitions = &q
	}

	advisories := run.advisories
	if advisories == nil {
		advisories = fee.Advisories{}
	}

	return ComputeResponse{
		Inputs:     inputs,
		Result:     toResultDTO(run.result),
		Schedule:   toScheduleDTOs(run.schedule),
		Advisories: advisories,
	}
}

// =============================================================================
// REFERENCE TABLE HANDLERS
// =============================================================================

// ListTypologies returns the typology multiplier table.
// GET /api/tables/typologies
func (h *Handler) ListTypologies(w http.ResponseWriter, r *http.Request) {
	typologies := h.Tables.Typologies()
	dtos := make([]TypologyDTO, len(typologies))
	for i, t := range typologies {
		dtos[i] = TypologyDTO{Name: t.Name, Multiplier: f(t.Multiplier)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPresets returns the schedule presets.
// GET /api/tables/presets
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets := h.Tables.Presets()
	dtos := make([]PresetDTO, len(presets))
	for i, p := range presets {
		dto := PresetDTO{Name: p.Name}
		for _, s := range p.Stages {
			dto.Stages = append(dto.Stages, StageShareDTO{Stage: s.Stage, Percentage: f(s.Percentage)})
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListIndicators returns the ten complexity indicator names.
// GET /api/tables/indicators
func (h *Handler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tables.Indicators())
}

// ListRegions returns the region codes.
// GET /api/tables/regions
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Tables.Regions())
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// exportDocument reruns the pipeline and projects it into a Document.
func (h *Handler) exportDocument(r *http.Request, req ComputeRequest) (export.Document, error) {
	run, err := h.runPipeline(r, req)
	if err != nil {
		return export.Document{}, err
	}

	doc := export.BuildDocument(export.Identification{
		Project:  req.Identification.Project,
		Client:   req.Identification.Client,
		Region:   req.Identification.Region,
		Typology: req.Identification.Typology,
	}, run.input, run.result, run.schedule, time.Now().UTC())
	return doc, nil
}

// ExportJSON renders the structured document and archives the export event.
// POST /api/export/json
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.exportDocument(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Export failed", err)
		return
	}

	data, err := export.JSON(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize proposal", err)
		return
	}

	id := uuid.NewString()
	if h.Store != nil {
		record := sqlite.ProposalRecord{
			ID:           id,
			Project:      doc.Identification.Project,
			Client:       doc.Identification.Client,
			Region:       doc.Identification.Region,
			Typology:     doc.Identification.Typology,
			DocumentJSON: string(data),
		}
		if err := h.Store.SaveProposal(r.Context(), record); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to archive proposal", err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(doc.Identification.Project, "json"))
	w.Header().Set("X-Proposal-ID", id)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportCSV renders the flat schedule table.
// POST /api/export/csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.exportFile(w, r, "text/csv; charset=utf-8", "csv", func(doc export.Document) ([]byte, error) {
		return export.CSV(doc.Schedule)
	})
}

// ExportXLSX renders the workbook.
// POST /api/export/xlsx
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportFile(w, r,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", export.Excel)
}

// ExportPDF renders the printable proposal.
// POST /api/export/pdf
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.exportFile(w, r, "application/pdf", "pdf", export.PDF)
}

func (h *Handler) exportFile(w http.ResponseWriter, r *http.Request, contentType, ext string, render func(export.Document) ([]byte, error)) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	doc, err := h.exportDocument(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Export failed", err)
		return
	}

	data, err := render(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render export", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", attachment(doc.Identification.Project, ext))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// attachment builds a download filename from the project name.
func attachment(project, ext string) string {
	name := strings.ReplaceAll(strings.TrimSpace(project), " ", "_")
	if name == "" {
		name = "proposal"
	}
	return fmt.Sprintf(`attachment; filename="proposal_%s.%s"`, name, ext)
}

// =============================================================================
// ARCHIVE HANDLERS
// =============================================================================

// ListProposals returns archived export events, newest first.
// GET /api/proposals
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListProposals(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list proposals", err)
		return
	}

	dtos := make([]ProposalSummaryDTO, len(records))
	for i, p := range records {
		dtos[i] = ProposalSummaryDTO{
			ID:        p.ID,
			Project:   p.Project,
			Client:    p.Client,
			Region:    p.Region,
			Typology:  p.Typology,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProposal returns one archived document verbatim.
// GET /api/proposals/{id}
func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.Store.GetProposal(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get proposal", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Proposal not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(p.DocumentJSON))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears sessions and the proposal archive. Dev only.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
