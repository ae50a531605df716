package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, records [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range records {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetCellValue(sheet, name, cell); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestReadCSV(t *testing.T) {
	csvData := "Agency Name,CRM,Sales Stage\nAcme,Yes,Freemium\nGlobex,No,Untouched\n"

	table, err := Read(strings.NewReader(csvData), "clients.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(table.Columns) != 3 {
		t.Errorf("columns = %d, want 3", len(table.Columns))
	}
	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}
	if got := table.Cell(1, 0); got != "Globex" {
		t.Errorf("Cell(1,0) = %q, want Globex", got)
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	csvData := "a,b,c\n1,2\n1,2,3,4\n"

	table, err := Read(strings.NewReader(csvData), "ragged.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if table.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", table.RowCount())
	}
	// Short row padded
	if got := table.Cell(0, 2); got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
	// Long row truncated
	if got := len(table.Rows[1]); got != 3 {
		t.Errorf("row width = %d, want 3", got)
	}
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	csvData := "a,b\n1,2\n,\n   ,  \n3,4\n"

	table, err := Read(strings.NewReader(csvData), "blank.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2 (blank rows skipped)", table.RowCount())
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Agency Name,CRM\nAcme,Yes\n")...)

	table, err := Read(bytes.NewReader(data), "bom.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.Columns[0] != "Agency Name" {
		t.Errorf("first column = %q, want %q", table.Columns[0], "Agency Name")
	}
}

func TestReadCSVLatin1(t *testing.T) {
	// "José,México" in Latin-1: the 0xE9 bytes are invalid UTF-8 on their own
	data := []byte("Agency Name,Region\nJos\xe9,M\xe9xico\n")

	table, err := Read(bytes.NewReader(data), "latin1.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := table.Cell(0, 0); got != "José" {
		t.Errorf("Cell(0,0) = %q, want José", got)
	}
	if got := table.Cell(0, 1); got != "México" {
		t.Errorf("Cell(0,1) = %q, want México", got)
	}
}

func TestReadXLSXByExtension(t *testing.T) {
	data := xlsxBytes(t, [][]string{
		{"Agency Name", "CRM"},
		{"Acme", "Yes"},
	})

	table, err := Read(bytes.NewReader(data), "clients.xlsx", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.RowCount() != 1 {
		t.Errorf("RowCount() = %d, want 1", table.RowCount())
	}
	if got := table.Cell(0, 1); got != "Yes" {
		t.Errorf("Cell(0,1) = %q, want Yes", got)
	}
}

func TestReadWorkbookDisguisedAsCSV(t *testing.T) {
	// Exports renamed to .csv keep the ZIP magic and must be parsed as XLSX
	data := xlsxBytes(t, [][]string{
		{"Agency Name", "CRM"},
		{"Acme", "Yes"},
		{"Globex", "No"},
	})

	table, err := Read(bytes.NewReader(data), "clients.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}
	if got := table.Cell(1, 0); got != "Globex" {
		t.Errorf("Cell(1,0) = %q, want Globex", got)
	}
}

func TestReadHeaderOnly(t *testing.T) {
	table, err := Read(strings.NewReader("a,b,c\n"), "empty.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", table.RowCount())
	}
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty.csv", ReadOptions{})
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Read() error = %v, want ErrNoHeader", err)
	}
}

func TestReadRowLimit(t *testing.T) {
	csvData := "a,b\n1,2\n3,4\n5,6\n"

	_, err := Read(strings.NewReader(csvData), "big.csv", ReadOptions{MaxRows: 2})
	if !errors.Is(err, ErrTooManyRows) {
		t.Errorf("Read() error = %v, want ErrTooManyRows", err)
	}
}

func TestReadColumnLimit(t *testing.T) {
	csvData := "a,b,c,d\n1,2,3,4\n"

	_, err := Read(strings.NewReader(csvData), "wide.csv", ReadOptions{MaxColumns: 3})
	if !errors.Is(err, ErrTooManyColumns) {
		t.Errorf("Read() error = %v, want ErrTooManyColumns", err)
	}
}

func TestReadDuplicateHeaders(t *testing.T) {
	csvData := "CRM,CRM,Portal\nYes,No,Yes\n"

	table, err := Read(strings.NewReader(csvData), "dup.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{"CRM", "CRM_2", "Portal"}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Errorf("Columns[%d] = %q, want %q", i, table.Columns[i], col)
		}
	}
}
