package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/value-matrix/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportDataset writes the scored dataset as an XLSX download: a Scores
// sheet with one row per record in rank order, and a Features sheet with
// the adoption grid.
// GET /api/datasets/{id}/export
func (h *Handlers) ExportDataset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	f, err := buildExportWorkbook(session)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to build workbook: %v", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(session.Filename)))
	f.Write(w)
}

var scoreHeaders = []string{"Agency", "Group", "Tier", "Stage", "Adopted Count", "Adoption Fraction", "Value Score", "Quadrant"}

func buildExportWorkbook(session *store.Session) (*excelize.File, error) {
	f := excelize.NewFile()

	scores := f.GetSheetName(0)
	if err := f.SetSheetName(scores, "Scores"); err != nil {
		f.Close()
		return nil, err
	}
	scores = "Scores"

	ranked := session.Report.RankedByScore()

	for i, col := range scoreHeaders {
		if err := setCell(f, scores, i+1, 1, col); err != nil {
			f.Close()
			return nil, err
		}
	}
	for r, rec := range ranked {
		values := []interface{}{
			rec.ID,
			rec.Group,
			rec.TierLabel,
			rec.Stage,
			rec.AdoptedCount,
			rec.AdoptionFraction,
			rec.ValueScore,
			string(rec.Quadrant),
		}
		for c, v := range values {
			if err := setCell(f, scores, c+1, r+2, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	features := "Features"
	if _, err := f.NewSheet(features); err != nil {
		f.Close()
		return nil, err
	}
	if err := setCell(f, features, 1, 1, "Agency"); err != nil {
		f.Close()
		return nil, err
	}
	for i, name := range session.Report.Features {
		if err := setCell(f, features, i+2, 1, name); err != nil {
			f.Close()
			return nil, err
		}
	}
	for r, rec := range ranked {
		if err := setCell(f, features, 1, r+2, rec.ID); err != nil {
			f.Close()
			return nil, err
		}
		for c, fa := range rec.Breakdown {
			mark := "No"
			if fa.Adopted {
				mark = "Yes"
			}
			if err := setCell(f, features, c+2, r+2, mark); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// exportFilename derives the download name from the upload's, swapping
// the extension for a -scored.xlsx suffix.
func exportFilename(upload string) string {
	base := filepath.Base(upload)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "dataset"
	}
	return base + "-scored.xlsx"
}
