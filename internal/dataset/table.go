// Package dataset handles tabular ingestion for engagement spreadsheets:
// CSV and XLSX parsing with charset detection, header normalization, and
// column-role discovery.
package dataset

import (
	"fmt"
	"strings"
)

// Table is one parsed upload: a header row and its data rows. Rows are
// rectangular; the reader pads or truncates ragged input to header width.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ColumnValues returns every data cell of one column in row order.
func (t *Table) ColumnValues(col int) []string {
	vals := make([]string, len(t.Rows))
	for i := range t.Rows {
		vals[i] = t.Cell(i, col)
	}
	return vals
}

// NormalizeHeader converts a header to its canonical matching form:
// lowercase, trimmed, with spaces and hyphens collapsed to underscores.
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// dedupeHeaders trims headers, names blanks, and suffixes duplicates so
// every column has a distinct display name.
func dedupeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n, ok := seen[h]; ok {
			base := h
			for {
				n++
				h = fmt.Sprintf("%s_%d", base, n)
				if _, taken := seen[h]; !taken {
					seen[base] = n
					break
				}
			}
		}
		seen[h]++
		out[i] = h
	}
	return out
}
