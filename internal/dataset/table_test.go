package dataset

import (
	"reflect"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Agency Name", "agency_name"},
		{"  Sales Stage  ", "sales_stage"},
		{"DA-Direct", "da_direct"},
		{"ZIP Code", "zip_code"},
		{"already_normalized", "already_normalized"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeHeader(tt.input); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDedupeHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "no duplicates",
			input: []string{"a", "b", "c"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "duplicates suffixed",
			input: []string{"col", "col", "col"},
			want:  []string{"col", "col_2", "col_3"},
		},
		{
			name:  "blank headers named by position",
			input: []string{"a", "", "  "},
			want:  []string{"a", "column_2", "column_3"},
		},
		{
			name:  "suffix collision with real header",
			input: []string{"col", "col_2", "col"},
			want:  []string{"col", "col_2", "col_3"},
		},
		{
			name:  "whitespace trimmed",
			input: []string{" Agency Name ", "Stage"},
			want:  []string{"Agency Name", "Stage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedupeHeaders(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("dedupeHeaders(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTableAccessors(t *testing.T) {
	table := &Table{
		Columns: []string{"Agency Name", "CRM", "Stage"},
		Rows: [][]string{
			{"Acme", "Yes", "Freemium"},
			{"Globex", "No", "Untouched"},
		},
	}

	if got := table.RowCount(); got != 2 {
		t.Errorf("RowCount() = %d, want 2", got)
	}
	if got := table.ColumnIndex("CRM"); got != 1 {
		t.Errorf("ColumnIndex(CRM) = %d, want 1", got)
	}
	if got := table.ColumnIndex("missing"); got != -1 {
		t.Errorf("ColumnIndex(missing) = %d, want -1", got)
	}
	if got := table.Cell(0, 0); got != "Acme" {
		t.Errorf("Cell(0,0) = %q, want Acme", got)
	}
	if got := table.Cell(5, 0); got != "" {
		t.Errorf("Cell out of row range = %q, want empty", got)
	}
	if got := table.Cell(0, 9); got != "" {
		t.Errorf("Cell out of col range = %q, want empty", got)
	}

	want := []string{"Yes", "No"}
	if got := table.ColumnValues(1); !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnValues(1) = %v, want %v", got, want)
	}
}
