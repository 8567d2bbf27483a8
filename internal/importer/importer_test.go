package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Width,Height,Qty\nShelf,600,300,2\nDoor,400,800,1\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Width;Height;Qty\nShelf;600;300;2\nDoor;400;800;1\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tWidth\tHeight\tQty\nShelf\t600\t300\t2\nDoor\t400\t800\t1\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Label|Width|Height|Qty\nShelf|600|300|2\nDoor|400|800|1\n")
	if got := DetectCSVDelimiter(data); got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Width", "Height", "Quantity", "Window Width", "Window Height", "Left Border", "Bottom Border"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3, WindowWidth: 4, WindowHeight: 5, LeftBorder: 6, BottomBorder: 7}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNamesAndOrder(t *testing.T) {
	row := []string{"QTY", "H", "Item Name", "W", "ww", "wh"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Quantity != 0 || mapping.Height != 1 || mapping.Label != 2 || mapping.Width != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.WindowWidth != 4 || mapping.WindowHeight != 5 {
		t.Errorf("unexpected window mapping %+v", mapping)
	}
	if mapping.LeftBorder != -1 || mapping.BottomBorder != -1 {
		t.Errorf("absent columns should map to -1, got %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Shelf", "600", "300", "2"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping != positionalMapping() {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	csv := "Label,Width,Height,Quantity\nShelf,600,300,2\nDoor,400,800,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	shelf := result.Items[0]
	if shelf.Label != "Shelf" || shelf.Width != 600 || shelf.Height != 300 || shelf.Quantity != 2 {
		t.Errorf("unexpected item %+v", shelf)
	}
	if shelf.ID == "" {
		t.Error("expected generated ID")
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Shelf,600,300,2\nDoor,400,800,1\n"), ',')
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %v)", len(result.Items), result.Errors)
	}
}

func TestImportCSVFromReader_QuantityDefaultsToOne(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name;W;H\nPanel;10;20\n"), ';')
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", result.Items[0].Quantity)
	}
}

func TestImportCSVFromReader_Window(t *testing.T) {
	csv := "label,width,height,qty,window_width,window_height,left_border,bottom_border\n" +
		"Frame,100,80,1,40,30,10,5\n" +
		"Plain,50,50,3,,,,\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	win := result.Items[0].Window
	if win == nil {
		t.Fatal("expected window on Frame")
	}
	if win.Width != 40 || win.Height != 30 || win.LeftBorder != 10 || win.BottomBorder != 5 {
		t.Errorf("unexpected window %+v", *win)
	}
	if result.Items[1].Window != nil {
		t.Error("Plain should have no window")
	}
}

func TestImportCSVFromReader_WindowTooLargeIgnored(t *testing.T) {
	csv := "label,width,height,window_width,window_height\nFrame,10,10,9,9\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Window != nil {
		t.Error("oversized window should be dropped")
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "window ignored") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected window warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_InvalidWindow(t *testing.T) {
	csv := "label,width,height,window_width,window_height\nFrame,10,10,abc,2\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')
	if len(result.Errors) != 1 || len(result.Items) != 0 {
		t.Errorf("expected one error and no items, got %v / %d", result.Errors, len(result.Items))
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"invalid width":    "Label,Width,Height,Qty\nShelf,abc,300,2\n",
		"invalid quantity": "Label,Width,Height,Qty\nShelf,600,300,many\n",
		"negative":         "Label,Width,Height,Qty\nShelf,-600,300,2\n",
		"zero quantity":    "Label,Width,Height,Qty\nShelf,600,300,0\n",
		"missing height":   "Label,Width,Height,Qty\nShelf,600,,2\n",
	}
	for name, csv := range cases {
		result := ImportCSVFromReader(strings.NewReader(csv), ',')
		if len(result.Errors) != 1 {
			t.Errorf("%s: expected 1 error, got %v", name, result.Errors)
		}
		if len(result.Items) != 0 {
			t.Errorf("%s: expected no items, got %d", name, len(result.Items))
		}
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	csv := "Label,Width,Height,Qty\nGood,600,300,2\nBad,abc,300,1\nAlsoGood,100,100,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Items) != 2 {
		t.Errorf("expected 2 valid items, got %d", len(result.Items))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRowsAndLabels(t *testing.T) {
	csv := "Label,Width,Height,Qty\n,600,300,2\n\n,,,\nNamed,100,100,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Label != "Item 1" {
		t.Errorf("expected generated label 'Item 1', got %q", result.Items[0].Label)
	}
}

func TestImportCSVFromReader_DecimalValuesRounded(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Height\nShelf,600.0,299.6\n"), ',')

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Width != 600 || result.Items[0].Height != 300 {
		t.Errorf("unexpected size %dx%d", result.Items[0].Width, result.Items[0].Height)
	}
	rounded := 0
	for _, w := range result.Warnings {
		if strings.Contains(w, "rounded") {
			rounded++
		}
	}
	if rounded != 1 {
		t.Errorf("expected exactly one rounding warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,Width,Qty\nShelf,600,2\n"), ',')
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte("Label;Width;Height;Qty\nShelf;600;300;2\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Warnings[0] != "Detected semicolon delimiter" {
		t.Errorf("expected delimiter warning first, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	if result := ImportCSV("/nonexistent/path/file.csv"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.xlsx")

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
		{"Label", "Width", "Height", "Quantity", "Window Width", "Window Height"},
		{"Frame", 600, 300, 2, 200, 100},
		{"Door", 400, 800, 1},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0].Label != "Frame" || result.Items[0].Width != 600 {
		t.Errorf("unexpected first item %+v", result.Items[0])
	}
	if result.Items[0].Window == nil || result.Items[0].Window.Width != 200 {
		t.Errorf("expected 200 wide window, got %+v", result.Items[0].Window)
	}
	if result.Items[1].Window != nil {
		t.Error("Door should have no window")
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Shelf", 600, 300, 2},
		{"Door", 400, 800, 1},
	})

	result := ImportExcel(path)
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %v)", len(result.Items), result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	if result := ImportExcel("/nonexistent/file.xlsx"); len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Label", "Width", "Height", "Quantity"},
		{"Shelf", "abc", 300, 2},
	})

	if result := ImportExcel(path); len(result.Errors) == 0 {
		t.Error("expected error for invalid width")
	}
}
