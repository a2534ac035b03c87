package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Width,Height\nSide,96,48\nEnd,40,48\n", ','},
		{"semicolon", "Label;Width;Height\nSide;96;48\nEnd;40;48\n", ';'},
		{"tab", "Label\tWidth\tHeight\nSide\t96\t48\nEnd\t40\t48\n", '\t'},
		{"pipe", "Label|Width|Height\nSide|96|48\nEnd|40|48\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
				t.Errorf("expected %q delimiter, got %q", tt.want, got)
			}
		})
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "Width", "Height", "Qty", "Cleat Width", "Sheathing"})

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, CleatWidth: 4, Sheathing: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"H", " PANEL NAME ", "length", "cleat"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Height != 0 || mapping.Label != 1 || mapping.Width != 2 || mapping.CleatWidth != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Quantity != -1 || mapping.Sheathing != -1 {
		t.Errorf("absent columns should map to -1, got %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Side", "96", "48"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Label != 0 || mapping.Width != 1 || mapping.Height != 2 || mapping.Quantity != 3 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Width,Height,Cleat Width,Sheathing\nSide,96,48,5.5,0.75\nEnd,40,48,,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(result.Panels))
	}

	side := result.Panels[0]
	if side.Label != "Side" || side.Width != 96 || side.Height != 48 {
		t.Errorf("unexpected panel %+v", side)
	}
	if side.CleatMemberWidth != 5.5 {
		t.Errorf("expected cleat width 5.5, got %f", side.CleatMemberWidth)
	}
	if side.SheathingThickness != 0.75 {
		t.Errorf("expected sheathing 0.75, got %f", side.SheathingThickness)
	}
	if side.ID == "" {
		t.Error("expected panel ID to be assigned")
	}

	if result.Panels[1].CleatMemberWidth != 0 {
		t.Errorf("blank cleat width should leave the default, got %f", result.Panels[1].CleatMemberWidth)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Side,96,48\nEnd,40,48\n"), ',')

	if len(result.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d (errors: %v)", len(result.Panels), result.Errors)
	}
	if result.Panels[1].Label != "End" || result.Panels[1].Width != 40 {
		t.Errorf("unexpected panel %+v", result.Panels[1])
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Face,Across,Up\nSide,96,48\n"), ',')

	if len(result.Panels) != 1 {
		t.Fatalf("expected 1 panel, got %d (errors: %v)", len(result.Panels), result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a header warning")
	}
}

func TestImportCSVFromReader_QuantityExpands(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name;W;H;Qty\nSide;96;48;2\nTop;96;40;1\n"), ';')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Panels) != 3 {
		t.Fatalf("expected 3 panels, got %d", len(result.Panels))
	}
	labels := []string{result.Panels[0].Label, result.Panels[1].Label, result.Panels[2].Label}
	want := []string{"Side 1", "Side 2", "Top"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], labels[i])
		}
	}
	if result.Panels[0].ID == result.Panels[1].ID {
		t.Error("copies must get distinct IDs")
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"invalid width", "Side,abc,48"},
		{"missing height", "Side,96,"},
		{"negative", "Side,-96,48"},
		{"zero quantity", "Side,96,48,0"},
		{"invalid quantity", "Side,96,48,two"},
		{"quantity over limit", "Side,96,48,2000000000"},
		{"not a number", "Side,NaN,48"},
		{"infinite", "Side,96,+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "Label,Width,Height,Qty\n" + tt.row + "\nEnd,40,48,1\n"
			result := ImportCSVFromReader(strings.NewReader(data), ',')
			if len(result.Errors) != 1 {
				t.Errorf("expected 1 error, got %v", result.Errors)
			}
			if len(result.Panels) != 1 {
				t.Errorf("expected the valid row to import, got %d panels", len(result.Panels))
			}
		})
	}
}

func TestImportCSVFromReader_QuantityAtLimit(t *testing.T) {
	data := fmt.Sprintf("Label,Width,Height,Qty\nSide,96,48,%d\n", MaxQuantity)
	result := ImportCSVFromReader(strings.NewReader(data), ',')
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Panels) != MaxQuantity {
		t.Errorf("expected %d panels, got %d", MaxQuantity, len(result.Panels))
	}
}

func TestImportCSVFromReader_InvalidOptionalWarns(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height,Cleat\nSide,96,48,wide\n"), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Panels) != 1 || result.Panels[0].CleatMemberWidth != 0 {
		t.Fatalf("expected panel with default cleat width, got %+v", result.Panels)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "cleat width") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected cleat width warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Qty\nSide,96,1\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyInputAndRows(t *testing.T) {
	if result := ImportCSVFromReader(strings.NewReader(""), ','); len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}

	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height\n\n,,\nSide,96,48\n"), ',')
	if len(result.Panels) != 1 || len(result.Errors) != 0 {
		t.Errorf("empty rows should be skipped, got %d panels, errors %v", len(result.Panels), result.Errors)
	}
}

func TestImportCSVFromReader_DefaultLabel(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height\n,96,48\n"), ',')

	if len(result.Panels) != 1 || result.Panels[0].Label != "Panel 1" {
		t.Errorf("expected default label, got %+v", result.Panels)
	}
}

func TestImportCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.csv")
	if err := os.WriteFile(path, []byte("Label;Width;Height\nSide;96.5;48.25\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := Import(path)

	if len(result.Panels) != 1 {
		t.Fatalf("expected 1 panel, got %d (errors: %v)", len(result.Panels), result.Errors)
	}
	if result.Panels[0].Width != 96.5 || result.Panels[0].Height != 48.25 {
		t.Errorf("unexpected panel %+v", result.Panels[0])
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileErrors(t *testing.T) {
	dir := t.TempDir()
	if result := ImportCSV(filepath.Join(dir, "none.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(empty); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panels.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Panel", "Width", "Height", "Quantity"},
		{"Side", 96, 48, 2},
		{"Top", 96, 40.5, 1},
	})

	result := Import(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Panels) != 3 {
		t.Fatalf("expected 3 panels, got %d", len(result.Panels))
	}
	if result.Panels[2].Label != "Top" || result.Panels[2].Height != 40.5 {
		t.Errorf("unexpected panel %+v", result.Panels[2])
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Side", 96, 48},
		{"End", 40, 48},
	})

	result := ImportExcel(path)

	if len(result.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d (errors: %v)", len(result.Panels), result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "none.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
