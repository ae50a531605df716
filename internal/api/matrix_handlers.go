package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/value-matrix/internal/matrix"
)

// GetReport returns the stored report, optionally filtered by group or
// agency query params. Filters narrow the response only; the stored
// session is never modified.
// GET /api/datasets/{id}/report?group=...&agency=...
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, filteredReport(session.Report, r))
}

// rescoreRequest carries per-evaluation overrides. Pointer fields
// distinguish "absent" from zero so callers can change one knob at a time.
type rescoreRequest struct {
	AdoptionWeight *float64 `json:"adoption_weight"`
	StageWeight    *float64 `json:"stage_weight"`
	ScoreThreshold *float64 `json:"score_threshold"`
	StageThreshold *float64 `json:"stage_threshold"`
	ScaleMax       *float64 `json:"scale_max"`
}

func (req rescoreRequest) apply(opts matrix.Options) matrix.Options {
	if req.AdoptionWeight != nil {
		opts.Weights.Adoption = *req.AdoptionWeight
	}
	if req.StageWeight != nil {
		opts.Weights.Stage = *req.StageWeight
	}
	if req.ScoreThreshold != nil {
		opts.ScoreThreshold = *req.ScoreThreshold
	}
	if req.StageThreshold != nil {
		opts.StageThreshold = *req.StageThreshold
	}
	if req.ScaleMax != nil {
		opts.ScaleMax = *req.ScaleMax
	}
	return opts
}

// RescoreDataset re-evaluates a stored dataset with caller overrides
// merged over the session's current options and persists the result as
// the session's report.
// POST /api/datasets/{id}/report
func (h *Handlers) RescoreDataset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var req rescoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := req.apply(session.Options)
	report, err := h.engine.EvaluateWith(session.Table, opts)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to evaluate dataset: %v", err))
		return
	}

	session.Options = opts
	session.Report = report
	session.UpdatedAt = time.Now().UTC()
	if err := h.store.Save(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save session: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, filteredReport(report, r))
}

// GetRecordBreakdown returns the detail payload for one scored record:
// its ordered feature adoption pairs plus score, quadrant, and tier.
// GET /api/datasets/{id}/records/{recordID}/breakdown
func (h *Handlers) GetRecordBreakdown(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	rec, found := session.Report.Record(chi.URLParam(r, "recordID"))
	if !found {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func filteredReport(report *matrix.Report, r *http.Request) *matrix.Report {
	q := r.URL.Query()
	return report.Filter(q["group"], q["agency"])
}
