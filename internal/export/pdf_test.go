package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/rectbin/internal/model"
)

// buildTestResult creates a realistic packing result for testing.
func buildTestResult() model.PackResult {
	first := model.DefaultBinConfig()
	first.Width, first.Height, first.LeftBorder = 2440, 1220, 10

	second := model.DefaultBinConfig()
	second.Width, second.Height = 1200, 600

	return model.PackResult{
		Bins: []model.BinResult{
			{
				Index:  0,
				Config: first,
				Used: []model.Rectangle{
					{ID: "p1", Label: "Side Panel 10", X: 10, Y: 0, Width: 600, Height: 400},
					{ID: "p2", Label: "Side Panel 2", X: 610, Y: 0, Width: 500, Height: 300, Rotated: true},
					{
						ID: "p3", Label: "Frame", X: 10, Y: 400, Width: 400, Height: 300,
						Window: &model.Window{Width: 100, Height: 80, LeftBorder: 20, BottomBorder: 30},
					},
				},
				Free: []model.Rectangle{model.Rect(1110, 0, 1330, 1220)},
			},
			{
				Index:  1,
				Config: second,
				Used: []model.Rectangle{
					{ID: "p4", Label: "Back Panel", X: 0, Y: 0, Width: 800, Height: 500},
				},
			},
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test_output.pdf")

	if err := ExportPDF(path, buildTestResult()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	// Three pages (2 bins + summary) should be a reasonable size.
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportPDF(path, model.PackResult{})
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		t.Error("no file should be written for an empty result")
	}
}

func TestExportPDF_WithUnplacedItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unplaced.pdf")

	result := buildTestResult()
	result.Unplaced = []model.Rectangle{
		{ID: "u1", Label: "Too Big", Width: 3000, Height: 2000},
		{ID: "u2", Label: "Another", Width: 1500, Height: 1500},
	}

	if err := ExportPDF(path, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestExportPDF_WithBorders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "borders.pdf")

	result := buildTestResult()
	result.Bins[1].Config.LeftBorder = 50
	result.Bins[1].Config.BottomBorder = 40

	if err := ExportPDF(path, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestExportPDF_ManyItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_items.pdf")

	// More items than colors to exercise color cycling and legend wrapping.
	used := make([]model.Rectangle, 20)
	for i := range used {
		used[i] = model.Rectangle{
			ID:      fmt.Sprintf("p%d", i),
			Label:   fmt.Sprintf("Item %d", i+1),
			X:       (i % 5) * 110,
			Y:       (i / 5) * 90,
			Width:   100,
			Height:  80,
			Rotated: i%3 == 0,
		}
	}
	cfg := model.DefaultBinConfig()
	cfg.Width, cfg.Height = 600, 400

	result := model.PackResult{Bins: []model.BinResult{{Config: cfg, Used: used}}}
	if err := ExportPDF(path, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{50, 50, 8},
		{30, 25, 7},
		{10, 15, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestFlipY(t *testing.T) {
	if got := flipY(0, 10, 100); got != 90 {
		t.Errorf("flipY(0, 10, 100) = %d, want 90", got)
	}
	if got := flipY(90, 10, 100); got != 0 {
		t.Errorf("flipY(90, 10, 100) = %d, want 0", got)
	}
}
