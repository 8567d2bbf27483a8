package export

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/rectbin/internal/model"
)

func pngTestBin() model.BinResult {
	cfg := model.DefaultBinConfig()
	cfg.Width, cfg.Height = 100, 100
	return model.BinResult{
		Config: cfg,
		Used: []model.Rectangle{
			{ID: "a", Label: "A", X: 0, Y: 0, Width: 50, Height: 50},
			{
				ID: "b", Label: "B", X: 50, Y: 0, Width: 40, Height: 40,
				Window: &model.Window{Width: 10, Height: 10, LeftBorder: 3, BottomBorder: 3},
			},
		},
	}
}

func TestRenderPNG_OriginBottomLeft(t *testing.T) {
	img, err := RenderPNG(pngTestBin(), 1)
	if err != nil {
		t.Fatalf("RenderPNG returned error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("unexpected bounds %v", b)
	}

	green := color.NRGBA{76, 175, 80, 255}
	blue := color.NRGBA{33, 150, 243, 255}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"item at origin drawn at the bottom", 10, 90, green},
		{"empty top of the bin", 10, 10, binColor},
		{"second item", 52, 98, blue},
		{"window opening", 60, 90, backgroundColor},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderPNG_Borders(t *testing.T) {
	bin := pngTestBin()
	bin.Used = nil
	bin.Config.LeftBorder = 10
	bin.Config.BottomBorder = 5

	img, err := RenderPNG(bin, 2)
	if err != nil {
		t.Fatalf("RenderPNG returned error: %v", err)
	}
	if got := img.NRGBAAt(5, 100); got != borderColor {
		t.Errorf("left border pixel = %v, want %v", got, borderColor)
	}
	if got := img.NRGBAAt(150, 195); got != borderColor {
		t.Errorf("bottom border pixel = %v, want %v", got, borderColor)
	}
	if got := img.NRGBAAt(150, 100); got != binColor {
		t.Errorf("inner pixel = %v, want %v", got, binColor)
	}
}

func TestRenderPNG_InvalidScale(t *testing.T) {
	if _, err := RenderPNG(pngTestBin(), 0); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestExportPNGs(t *testing.T) {
	dir := t.TempDir()
	paths, err := ExportPNGs(dir, buildTestResult(), 0.1)
	if err != nil {
		t.Fatalf("ExportPNGs returned error: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "bin-02.png" {
		t.Fatalf("unexpected paths %v", paths)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	img, err := imaging.Open(paths[0])
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 244 || b.Dy() != 122 {
		t.Errorf("unexpected bounds %v", b)
	}
}
