package zipref

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrZIPColumnMissing indicates a workbook without a "ZIP Code" column.
	ErrZIPColumnMissing = errors.New(`column "ZIP Code" not found in the file`)
	// ErrEmptyWorkbook indicates a workbook with no sheets or no header row.
	ErrEmptyWorkbook = errors.New("workbook has no data")
)

// WriteWorkbook saves entries as {slug}.xlsx under dir and returns the
// file path.
func WriteWorkbook(entries []Entry, slug, dir string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, col := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return "", err
		}
	}
	for r, e := range entries {
		for c, v := range []string{e.ZIPCode, e.PlaceName, e.County, e.Type} {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(dir, slug+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook: %w", err)
	}
	return path, nil
}

// ReadZIPCodes reads a reference workbook and returns the values of
// its "ZIP Code" column, in row order.
func ReadZIPCodes(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	zipCol := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == "ZIP Code" {
			zipCol = i
			break
		}
	}
	if zipCol < 0 {
		return nil, ErrZIPColumnMissing
	}

	var codes []string
	for _, row := range rows[1:] {
		if zipCol < len(row) {
			codes = append(codes, strings.TrimSpace(row[zipCol]))
		} else {
			codes = append(codes, "")
		}
	}
	return codes, nil
}
