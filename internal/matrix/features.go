package matrix

import (
	"errors"
	"strings"

	"github.com/ignite/value-matrix/internal/dataset"
)

var (
	// ErrNoAdoptionFeatures is returned when a dataset has zero boolean-coded
	// columns; scores are never silently computed over an empty feature set.
	ErrNoAdoptionFeatures = errors.New("no adoption feature columns detected")

	// ErrEmptyDataset is returned when a dataset has no data rows.
	ErrEmptyDataset = errors.New("dataset contains no records")
)

var truthyTokens = map[string]bool{"yes": true, "y": true, "1": true, "true": true}
var falsyTokens = map[string]bool{"no": true, "n": true, "0": true, "false": true}

// FeatureSet is the detected adoption matrix: the ordered feature columns
// and the normalized adoption flags for every record.
type FeatureSet struct {
	Columns []string // detection order follows the upload's column order
	Adopted [][]bool // row-major, indexed [record][feature]
}

// Count returns the number of detected feature columns.
func (fs *FeatureSet) Count() int { return len(fs.Columns) }

// AdoptedCount returns how many features one record has adopted.
func (fs *FeatureSet) AdoptedCount(record int) int {
	if record < 0 || record >= len(fs.Adopted) {
		return 0
	}
	n := 0
	for _, adopted := range fs.Adopted[record] {
		if adopted {
			n++
		}
	}
	return n
}

// FeatureAdoption is one entry of a record's adoption breakdown.
type FeatureAdoption struct {
	Feature string `json:"feature"`
	Adopted bool   `json:"adopted"`
}

// Breakdown formats one record's adoption flags in detection order for
// the detail panel. Pure and stateless.
func (fs *FeatureSet) Breakdown(record int) []FeatureAdoption {
	if record < 0 || record >= len(fs.Adopted) {
		return nil
	}
	out := make([]FeatureAdoption, len(fs.Columns))
	for i, col := range fs.Columns {
		out[i] = FeatureAdoption{Feature: col, Adopted: fs.Adopted[record][i]}
	}
	return out
}

// DetectFeatures identifies the boolean-coded columns of a table: every
// non-empty cell must be a recognized truthy/falsy token and at least one
// cell must be non-empty. Columns claimed by a structural role (identifier,
// tier, group) are excluded. Empty cells normalize to not-adopted.
func DetectFeatures(t *dataset.Table, exclude map[int]bool) (*FeatureSet, error) {
	var indexes []int
	var names []string
	for i, col := range t.Columns {
		if exclude[i] {
			continue
		}
		if isBooleanColumn(t.ColumnValues(i)) {
			indexes = append(indexes, i)
			names = append(names, col)
		}
	}
	if len(indexes) == 0 {
		return nil, ErrNoAdoptionFeatures
	}

	fs := &FeatureSet{
		Columns: names,
		Adopted: make([][]bool, t.RowCount()),
	}
	for r := 0; r < t.RowCount(); r++ {
		flags := make([]bool, len(indexes))
		for j, idx := range indexes {
			flags[j] = truthyTokens[normalizeCell(t.Cell(r, idx))]
		}
		fs.Adopted[r] = flags
	}
	return fs, nil
}

func isBooleanColumn(values []string) bool {
	nonEmpty := 0
	for _, v := range values {
		v = normalizeCell(v)
		if v == "" {
			continue
		}
		nonEmpty++
		if !truthyTokens[v] && !falsyTokens[v] {
			return false
		}
	}
	return nonEmpty > 0
}

func normalizeCell(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
