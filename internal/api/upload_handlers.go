package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ignite/value-matrix/internal/dataset"
	"github.com/ignite/value-matrix/internal/store"
)

// uploadJSONRequest is the raw-rows alternative to a multipart upload.
type uploadJSONRequest struct {
	Filename string     `json:"filename"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// UploadDataset ingests a dataset, evaluates it with the default options,
// and stores the resulting session.
// POST /api/datasets
// Accepts: multipart/form-data with "file" field OR application/json with
// "columns" and "rows" fields.
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	var (
		table    *dataset.Table
		filename string
	)

	limits := dataset.ReadOptions{
		MaxRows:    h.config.Upload.MaxRows,
		MaxColumns: h.config.Upload.MaxColumns,
	}
	maxBytes := h.config.Upload.MaxFileSize()

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req uploadJSONRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes)).Decode(&req); err != nil {
			if isMaxBytesError(err) {
				respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
				return
			}
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Columns) == 0 {
			respondError(w, http.StatusBadRequest, "columns are required")
			return
		}

		t, err := dataset.FromRows(req.Columns, req.Rows, limits)
		if err != nil {
			respondDatasetError(w, err)
			return
		}
		table = t
		filename = req.Filename
		if filename == "" {
			filename = "upload.json"
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if isMaxBytesError(err) {
				respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
				return
			}
			respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		t, err := dataset.Read(file, header.Filename, limits)
		if err != nil {
			respondDatasetError(w, err)
			return
		}
		table = t
		filename = header.Filename
	}

	report, err := h.engine.Evaluate(table)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to evaluate dataset: %v", err))
		return
	}

	now := time.Now().UTC()
	session := &store.Session{
		ID:        uuid.New().String(),
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		Table:     table,
		Report:    report,
		Options:   h.engine.Defaults(),
	}
	if err := h.store.Save(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save session: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         session.ID,
		"filename":   session.Filename,
		"created_at": session.CreatedAt,
		"rows":       table.RowCount(),
		"report":     report,
	})
}

// GetDataset returns the stored dataset's summary: shape, detected column
// roles, and the headline report numbers.
// GET /api/datasets/{id}
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	schema := dataset.DetectSchema(session.Table)
	roles := make(map[string]string, 3)
	if schema.IdentifierColumn >= 0 {
		roles["identifier"] = session.Table.Columns[schema.IdentifierColumn]
	}
	if schema.HasTier() {
		roles["tier"] = session.Table.Columns[schema.TierColumn]
	}
	if schema.HasGroup() {
		roles["group"] = session.Table.Columns[schema.GroupColumn]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":              session.ID,
		"filename":        session.Filename,
		"created_at":      session.CreatedAt,
		"updated_at":      session.UpdatedAt,
		"rows":            session.Table.RowCount(),
		"columns":         session.Table.Columns,
		"roles":           roles,
		"features":        session.Report.Features,
		"skipped":         session.Report.Skipped,
		"quadrant_counts": session.Report.QuadrantCounts,
		"options":         session.Options,
	})
}

// DeleteDataset discards a stored session
// DELETE /api/datasets/{id}
func (h *Handlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete dataset: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondDatasetError maps parse errors onto API statuses: the size limit
// sentinels are 413, everything else 400.
func respondDatasetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrTooManyRows), errors.Is(err, dataset.ErrTooManyColumns):
		respondError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse dataset: %v", err))
	}
}

func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
