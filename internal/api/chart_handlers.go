package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ignite/value-matrix/internal/chart"
)

// GetScatterChart renders the quadrant scatter as a PNG. Dimensions and
// the zone tinting are tunable per request; group and agency filters
// match the report endpoint.
// GET /api/datasets/{id}/chart/scatter?width=&height=&zones=&group=&agency=
func (h *Handlers) GetScatterChart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	cfg := chart.DefaultScatterConfig()
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("width")); err == nil && v > 0 {
		cfg.Width = v
	}
	if v, err := strconv.Atoi(q.Get("height")); err == nil && v > 0 {
		cfg.Height = v
	}
	if v, err := strconv.ParseBool(q.Get("zones")); err == nil {
		cfg.ShowZones = v
	}

	png, err := chart.RenderScatter(session.Report.Filter(q["group"], q["agency"]), cfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// GetHeatmapChart renders the adoption heatmap as a PNG
// GET /api/datasets/{id}/chart/heatmap?group=&agency=
func (h *Handlers) GetHeatmapChart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	png, err := chart.RenderHeatmap(session.Report.Filter(q["group"], q["agency"]), chart.DefaultHeatmapConfig())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
