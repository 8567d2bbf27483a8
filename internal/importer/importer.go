// Package importer provides CSV, Excel and DXF import of item lists.
// Tabular imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rectbin/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Items    []model.ItemSpec
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A value of -1 means the column is absent.
type ColumnMapping struct {
	Label        int
	Width        int
	Height       int
	Quantity     int
	WindowWidth  int
	WindowHeight int
	LeftBorder   int
	BottomBorder int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":         {"label", "name", "item", "item name", "description", "desc", "piece", "part"},
	"width":         {"width", "w", "length", "len"},
	"height":        {"height", "h", "depth"},
	"quantity":      {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"window_width":  {"window_width", "window width", "ww", "opening width"},
	"window_height": {"window_height", "window height", "wh", "opening height"},
	"left_border":   {"left_border", "left border", "lb", "window left"},
	"bottom_border": {"bottom_border", "bottom border", "bb", "window bottom"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

func emptyMapping() ColumnMapping {
	return ColumnMapping{
		Label: -1, Width: -1, Height: -1, Quantity: -1,
		WindowWidth: -1, WindowHeight: -1, LeftBorder: -1, BottomBorder: -1,
	}
}

// positionalMapping is used for files without a header row:
// label, width, height, quantity, window width, window height, left border, bottom border.
func positionalMapping() ColumnMapping {
	return ColumnMapping{
		Label: 0, Width: 1, Height: 2, Quantity: 3,
		WindowWidth: 4, WindowHeight: 5, LeftBorder: 6, BottomBorder: 7,
	}
}

// slot returns the mapping field for a canonical role.
func (m *ColumnMapping) slot(role string) *int {
	switch role {
	case "label":
		return &m.Label
	case "width":
		return &m.Width
	case "height":
		return &m.Height
	case "quantity":
		return &m.Quantity
	case "window_width":
		return &m.WindowWidth
	case "window_height":
		return &m.WindowHeight
	case "left_border":
		return &m.LeftBorder
	case "bottom_border":
		return &m.BottomBorder
	}
	return nil
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := emptyMapping()
	isHeader := false

	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if s := mapping.slot(role); s != nil && *s == -1 {
					*s = i
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping(), false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDimension parses a whole number. Values like "120.0" are accepted;
// fractional values are rounded and reported.
func parseDimension(s string) (int, bool, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	rounded := int(f + 0.5)
	if f < 0 {
		rounded = int(f - 0.5)
	}
	return rounded, float64(rounded) != f, nil
}

// parseRow extracts an item spec from a row using the given column mapping.
// Returns the spec, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) (model.ItemSpec, string, []string) {
	var warnings []string

	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	required := func(name string, idx int) (int, string) {
		raw := getCell(row, idx)
		if raw == "" {
			return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
		}
		v, rounded, err := parseDimension(raw)
		if err != nil {
			return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, raw)
		}
		if rounded {
			warnings = append(warnings, fmt.Sprintf("%s: %s '%s' rounded to %d", rowLabel, name, raw, v))
		}
		return v, ""
	}

	width, errMsg := required("width", mapping.Width)
	if errMsg != "" {
		return model.ItemSpec{}, errMsg, nil
	}
	height, errMsg := required("height", mapping.Height)
	if errMsg != "" {
		return model.ItemSpec{}, errMsg, nil
	}

	qty := 1
	if raw := getCell(row, mapping.Quantity); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.ItemSpec{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, raw), nil
		}
		qty = v
	}

	if width <= 0 || height <= 0 || qty <= 0 {
		return model.ItemSpec{}, fmt.Sprintf("%s: Width, height, and quantity must be positive", rowLabel), nil
	}

	spec := model.NewItemSpec(label, width, height, qty)

	// Optional window: attached only when both window dimensions are given.
	if getCell(row, mapping.WindowWidth) != "" || getCell(row, mapping.WindowHeight) != "" {
		win, errMsg := parseWindow(row, mapping, rowLabel, required)
		if errMsg != "" {
			return model.ItemSpec{}, errMsg, nil
		}
		if win != nil {
			spec.Window = win
			if err := spec.Rectangle().Validate(); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v, window ignored", rowLabel, err))
				spec.Window = nil
			}
		}
	}

	return spec, "", warnings
}

func parseWindow(row []string, mapping ColumnMapping, rowLabel string, required func(string, int) (int, string)) (*model.Window, string) {
	ww, errMsg := required("window width", mapping.WindowWidth)
	if errMsg != "" {
		return nil, errMsg
	}
	wh, errMsg := required("window height", mapping.WindowHeight)
	if errMsg != "" {
		return nil, errMsg
	}
	if ww <= 0 || wh <= 0 {
		return nil, ""
	}

	win := &model.Window{Width: ww, Height: wh}
	if getCell(row, mapping.LeftBorder) != "" {
		if win.LeftBorder, errMsg = required("left border", mapping.LeftBorder); errMsg != "" {
			return nil, errMsg
		}
	}
	if getCell(row, mapping.BottomBorder) != "" {
		if win.BottomBorder, errMsg = required("bottom border", mapping.BottomBorder); errMsg != "" {
			return nil, errMsg
		}
	}
	return win, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports items from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports items from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports items from the first sheet of an Excel (.xlsx) file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognised header still has a non-numeric width column.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		spec, errMsg, warnings := parseRow(row, mapping, rowLabel, len(result.Items))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Items = append(result.Items, spec)
	}

	return result
}
