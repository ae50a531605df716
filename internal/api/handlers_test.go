package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/matrix"
	"github.com/ignite/value-matrix/internal/store"
)

const sampleCSV = `Agency Name,Physician Group,Sales Stage,CRM,Portal,EDI,Analytics,Support
Acme Health,North,Orders 360 Full,Yes,Yes,Yes,Yes,Yes
Globex Medical,South,Freemium,Yes,Yes,Yes,No,No
Initech Care,North,DA-Direct,Yes,Yes,Yes,Yes,No
Umbrella Rx,South,Untouched,No,No,No,No,No
`

func testConfig() *config.Config {
	return &config.Config{
		Matrix: config.MatrixConfig{
			AdoptionWeight: 0.5,
			StageWeight:    0.5,
			ScoreThreshold: 0.65,
			StageThreshold: 2.0,
			ScaleMax:       1.0,
		},
		Upload: config.UploadConfig{
			MaxFileSizeMB: 25,
			MaxRows:       50000,
			MaxColumns:    256,
		},
	}
}

func setupRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	st := store.NewMemory(time.Hour)
	t.Cleanup(func() { st.Close() })

	engine := matrix.NewEngine(EngineOptions(cfg.Matrix))
	return SetupRoutes(NewHandlers(st, engine, cfg))
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func uploadSample(t *testing.T, router http.Handler) string {
	t.Helper()
	body, contentType := multipartBody(t, "agencies.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "ok", response["store"])
}

func TestGetTiers(t *testing.T) {
	router := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/tiers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Tiers    []matrix.TierInfo `json:"tiers"`
		MaxStage float64           `json:"max_stage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Tiers, 5)
	assert.Equal(t, "Untouched", response.Tiers[0].Label)
	assert.Equal(t, 0.0, response.Tiers[0].Stage)
	assert.Equal(t, "Orders 360 Full", response.Tiers[4].Label)
	assert.Equal(t, 4.0, response.Tiers[4].Stage)
	assert.Equal(t, 4.0, response.MaxStage)
}

func TestUploadDataset(t *testing.T) {
	router := setupRouter(t, testConfig())
	body, contentType := multipartBody(t, "agencies.csv", sampleCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID       string        `json:"id"`
		Filename string        `json:"filename"`
		Rows     int           `json:"rows"`
		Report   matrix.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "agencies.csv", resp.Filename)
	assert.Equal(t, 4, resp.Rows)
	assert.Len(t, resp.Report.Records, 4)
	assert.Equal(t, []string{"CRM", "Portal", "EDI", "Analytics", "Support"}, resp.Report.Features)
	assert.Equal(t, 2, resp.Report.QuadrantCounts[matrix.QuadrantStrategic])
	assert.Equal(t, 2, resp.Report.QuadrantCounts[matrix.QuadrantBasic])
}

func TestUploadDatasetJSONRows(t *testing.T) {
	router := setupRouter(t, testConfig())

	payload := map[string]interface{}{
		"filename": "from-crm.json",
		"columns":  []string{"Agency Name", "Sales Stage", "CRM", "Portal"},
		"rows": [][]string{
			{"Acme Health", "Orders 360 Full", "Yes", "Yes"},
			{"Umbrella Rx", "Untouched", "No", "No"},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Filename string        `json:"filename"`
		Rows     int           `json:"rows"`
		Report   matrix.Report `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "from-crm.json", resp.Filename)
	assert.Equal(t, 2, resp.Rows)
	assert.Len(t, resp.Report.Records, 2)
	assert.Equal(t, []string{"CRM", "Portal"}, resp.Report.Features)
}

func TestUploadDatasetMissingFile(t *testing.T) {
	router := setupRouter(t, testConfig())

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "file is required", response["error"])
}

func TestUploadDatasetNoFeatures(t *testing.T) {
	router := setupRouter(t, testConfig())
	csv := "Agency Name,Sales Stage\nAcme Health,Freemium\n"
	body, contentType := multipartBody(t, "bare.csv", csv)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "failed to evaluate dataset")
}

func TestUploadDatasetRowLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxRows = 2
	router := setupRouter(t, cfg)

	body, contentType := multipartBody(t, "agencies.csv", sampleCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "row limit")
}

func TestUploadDatasetBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSizeMB = 1
	router := setupRouter(t, cfg)

	// Build a CSV comfortably past the 1MB cap.
	var sb strings.Builder
	sb.WriteString("Agency Name,Sales Stage,CRM\n")
	row := fmt.Sprintf("%s,Freemium,Yes\n", strings.Repeat("x", 120))
	for sb.Len() < 2<<20 {
		sb.WriteString(row)
	}

	body, contentType := multipartBody(t, "big.csv", sb.String())
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGetDataset(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID       string            `json:"id"`
		Rows     int               `json:"rows"`
		Columns  []string          `json:"columns"`
		Roles    map[string]string `json:"roles"`
		Features []string          `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, id, resp.ID)
	assert.Equal(t, 4, resp.Rows)
	assert.Len(t, resp.Columns, 8)
	assert.Equal(t, "Agency Name", resp.Roles["identifier"])
	assert.Equal(t, "Sales Stage", resp.Roles["tier"])
	assert.Equal(t, "Physician Group", resp.Roles["group"])
	assert.Len(t, resp.Features, 5)
}

func TestGetDatasetNotFound(t *testing.T) {
	router := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/no-such-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "dataset not found", response["error"])
}

func TestGetReportFilters(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/report?group=North", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report matrix.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Records, 2)
	for _, rec := range report.Records {
		assert.Equal(t, "North", rec.Group)
	}
	assert.Equal(t, 2, report.QuadrantCounts[matrix.QuadrantStrategic])

	// Agency filter narrows to one record.
	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/report?agency=Globex+Medical", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &report))
	require.Len(t, report.Records, 1)
	assert.Equal(t, "Globex Medical", report.Records[0].ID)

	// The stored session still holds the full report.
	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/report", nil)
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req)
	require.NoError(t, json.Unmarshal(rec3.Body.Bytes(), &report))
	assert.Len(t, report.Records, 4)
}

func TestRescoreDataset(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	body := bytes.NewBufferString(`{"score_threshold": 0.9}`)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/report", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report matrix.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.9, report.Thresholds.Score)

	// Initech Care scores 0.65: above the default cut, below 0.9.
	assert.Equal(t, 1, report.QuadrantCounts[matrix.QuadrantStrategic])
	assert.Equal(t, 1, report.QuadrantCounts[matrix.QuadrantGrowth])
	assert.Equal(t, 2, report.QuadrantCounts[matrix.QuadrantBasic])

	initech, found := report.Record("Initech Care")
	require.True(t, found)
	assert.Equal(t, matrix.QuadrantGrowth, initech.Quadrant)

	// The override persists: a later GET returns the rescored report.
	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/report", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &report))
	assert.Equal(t, 0.9, report.Thresholds.Score)
	assert.Equal(t, 1, report.QuadrantCounts[matrix.QuadrantStrategic])

	// And the session options reflect the merge.
	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil)
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req)
	require.Equal(t, http.StatusOK, rec3.Code)

	var summary struct {
		Options matrix.Options `json:"options"`
	}
	require.NoError(t, json.Unmarshal(rec3.Body.Bytes(), &summary))
	assert.Equal(t, 0.9, summary.Options.ScoreThreshold)
	assert.Equal(t, 0.5, summary.Options.Weights.Adoption)
}

func TestRescoreDatasetScale(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	body := bytes.NewBufferString(`{"scale_max": 100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/report", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var report matrix.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 100.0, report.ScaleMax)
	assert.Equal(t, 65.0, report.Thresholds.Score)

	acme, found := report.Record("Acme Health")
	require.True(t, found)
	assert.Equal(t, 100.0, acme.ValueScore)
	assert.Equal(t, matrix.QuadrantStrategic, acme.Quadrant)
}

func TestRescoreDatasetInvalidBody(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	body := bytes.NewBufferString(`{"score_threshold": "high"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+id+"/report", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRecordBreakdown(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	path := "/api/datasets/" + id + "/records/" + url.PathEscape("Initech Care") + "/breakdown"
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result matrix.RecordResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "Initech Care", result.ID)
	assert.Equal(t, "DA-Direct", result.TierLabel)
	assert.Equal(t, 4, result.AdoptedCount)
	assert.Equal(t, matrix.QuadrantStrategic, result.Quadrant)
	require.Len(t, result.Breakdown, 5)
	assert.Equal(t, "CRM", result.Breakdown[0].Feature)
	assert.True(t, result.Breakdown[0].Adopted)
	assert.Equal(t, "Support", result.Breakdown[4].Feature)
	assert.False(t, result.Breakdown[4].Adopted)
}

func TestGetRecordBreakdownNotFound(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/records/Nobody/breakdown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "record not found", response["error"])
}

func TestGetScatterChart(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/chart/scatter?width=500&height=400", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestGetHeatmapChart(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/chart/heatmap", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
}

func TestExportDataset(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "agencies-scored.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Scores", "Features"}, f.GetSheetList())

	rows, err := f.GetRows("Scores")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, scoreHeaders, rows[0])
	// Rank order puts the top scorer first.
	assert.Equal(t, "Acme Health", rows[1][0])
	assert.Equal(t, "Strategic Partners", rows[1][7])
	assert.Equal(t, "Umbrella Rx", rows[4][0])

	grid, err := f.GetRows("Features")
	require.NoError(t, err)
	require.Len(t, grid, 5)
	assert.Equal(t, []string{"Agency", "CRM", "Portal", "EDI", "Analytics", "Support"}, grid[0])
	assert.Equal(t, []string{"Acme Health", "Yes", "Yes", "Yes", "Yes", "Yes"}, grid[1])
}

func TestDeleteDataset(t *testing.T) {
	router := setupRouter(t, testConfig())
	id := uploadSample(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting a missing session is idempotent.
	req = httptest.NewRequest(http.MethodDelete, "/api/datasets/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	router := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/tiers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// CORS preflight should be handled
	assert.Contains(t, []int{http.StatusOK, http.StatusNoContent}, rec.Code)
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		upload string
		want   string
	}{
		{"agencies.csv", "agencies-scored.xlsx"},
		{"Q3 report.xlsx", "Q3 report-scored.xlsx"},
		{"noext", "noext-scored.xlsx"},
		{"", "dataset-scored.xlsx"},
	}
	for _, tt := range tests {
		if got := exportFilename(tt.upload); got != tt.want {
			t.Errorf("exportFilename(%q) = %q, want %q", tt.upload, got, tt.want)
		}
	}
}
