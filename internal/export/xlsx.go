package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/rectbin/internal/model"
)

// Sheet names used in exported workbooks.
const (
	PlacementsSheet = "Placements"
	SummarySheet    = "Summary"
	UnplacedSheet   = "Unplaced"
)

var placementHeaders = []interface{}{
	"Bin", "ID", "Label", "X", "Y", "Width", "Height", "Rotated",
	"Window X", "Window Y", "Window Width", "Window Height",
}

// ExportExcel writes a workbook with one row per placed item, a per-bin
// summary sheet and, when needed, a sheet of unplaced items.
func ExportExcel(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("%w: no bins", ErrNothingToExport)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PlacementsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, PlacementsSheet, 1, placementHeaders); err != nil {
		return err
	}
	for i, p := range placementsByLabel(result) {
		r := p.Rect
		row := []interface{}{p.Bin + 1, r.ID, r.Label, r.X, r.Y, r.Width, r.Height, r.Rotated}
		if win, ok := r.WindowRect(); ok {
			row = append(row, win.X, win.Y, win.Width, win.Height)
		}
		if err := writeRow(f, PlacementsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	summary := []interface{}{"Bin", "Width", "Height", "Left Border", "Bottom Border", "Heuristic", "Items", "Used Area", "Usage %"}
	if err := writeRow(f, SummarySheet, 1, summary); err != nil {
		return err
	}
	for i, b := range result.Bins {
		c := b.Config
		row := []interface{}{
			b.Index + 1, c.Width, c.Height, c.LeftBorder, c.BottomBorder, c.Heuristic,
			len(b.Used), b.UsedArea(), roundPercent(b.Usage()),
		}
		if err := writeRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
	}
	total := []interface{}{"Total", "", "", "", "", "", result.PlacedCount(), "", roundPercent(result.TotalUsage())}
	if err := writeRow(f, SummarySheet, len(result.Bins)+2, total); err != nil {
		return err
	}

	if len(result.Unplaced) > 0 {
		if _, err := f.NewSheet(UnplacedSheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeRow(f, UnplacedSheet, 1, []interface{}{"ID", "Label", "Width", "Height"}); err != nil {
			return err
		}
		for i, r := range result.Unplaced {
			if err := writeRow(f, UnplacedSheet, i+2, []interface{}{r.ID, r.Label, r.Width, r.Height}); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func roundPercent(fraction float64) float64 {
	return float64(int(fraction*1000+0.5)) / 10
}
