package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrNoHeader is returned when a file contains no header row.
	ErrNoHeader = errors.New("file contains no header row")

	// ErrTooManyRows is returned when an upload exceeds the configured row limit.
	ErrTooManyRows = errors.New("dataset exceeds the row limit")

	// ErrTooManyColumns is returned when an upload exceeds the configured column limit.
	ErrTooManyColumns = errors.New("dataset exceeds the column limit")

	// ErrNoSheets is returned when a workbook contains no sheets.
	ErrNoSheets = errors.New("workbook contains no sheets")
)

// zipMagic marks a ZIP container. Spreadsheets renamed to .csv still start
// with it, a recurring failure mode of exported client sheets.
var zipMagic = []byte("PK\x03\x04")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadOptions bound the size of an accepted upload. Zero values disable
// the corresponding limit.
type ReadOptions struct {
	MaxRows    int
	MaxColumns int
}

// Read parses an uploaded spreadsheet into a Table. XLSX is recognized by
// extension or by the ZIP magic regardless of extension; everything else
// is treated as delimited text with charset detection.
func Read(r io.Reader, filename string, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if bytes.HasPrefix(data, zipMagic) || hasWorkbookExt(filename) {
		return readWorkbook(data, opts)
	}
	return readCSV(data, opts)
}

// FromRows builds a table from pre-split values, applying the same header
// deduplication, blank-row handling, and size limits as file reads.
func FromRows(columns []string, rows [][]string, opts ReadOptions) (*Table, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, columns)
	records = append(records, rows...)
	return buildTable(records, opts)
}

func hasWorkbookExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func readCSV(data []byte, opts ReadOptions) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	enc := detectEncoding(data)

	cr := csv.NewReader(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(records, opts)
}

// detectEncoding picks the decoder for delimited text. A BOM or declared
// charset is authoritative; valid UTF-8 passes through; anything else is
// decoded as Windows-1252, which covers the Latin-1 exports agencies send.
func detectEncoding(data []byte) encoding.Encoding {
	if enc, _, certain := charset.DetermineEncoding(data, "text/plain"); certain {
		return enc
	}
	if utf8.Valid(data) {
		return unicode.UTF8
	}
	return charmap.Windows1252
}

func readWorkbook(data []byte, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return buildTable(records, opts)
}

// buildTable turns raw records into a rectangular Table: the first record
// becomes the (deduplicated) header, blank rows are dropped, and ragged
// rows are padded or truncated to header width.
func buildTable(records [][]string, opts ReadOptions) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrNoHeader
	}

	headers := dedupeHeaders(records[0])
	if opts.MaxColumns > 0 && len(headers) > opts.MaxColumns {
		return nil, fmt.Errorf("%w: %d columns, limit %d", ErrTooManyColumns, len(headers), opts.MaxColumns)
	}

	width := len(headers)
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRow(rec) {
			continue
		}
		row := make([]string, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = rec[i]
		}
		rows = append(rows, row)
		if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyRows, opts.MaxRows)
		}
	}

	return &Table{Columns: headers, Rows: rows}, nil
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
