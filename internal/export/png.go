package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/rectbin/internal/model"
)

var (
	backgroundColor = color.NRGBA{255, 255, 255, 255}
	binColor        = color.NRGBA{235, 235, 235, 255}
	borderColor     = color.NRGBA{255, 200, 200, 255}
)

// RenderPNG draws a bin layout at the given scale (pixels per unit). The
// image is flipped so the bin origin sits at the bottom-left corner.
func RenderPNG(bin model.BinResult, scale float64) (*image.NRGBA, error) {
	cfg := bin.Config
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}
	w := int(float64(cfg.Width)*scale + 0.5)
	h := int(float64(cfg.Height)*scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("bin %dx%d renders empty at scale %g", cfg.Width, cfg.Height, scale)
	}

	img := imaging.New(w, h, binColor)
	fill := func(r model.Rectangle, c color.Color) {
		rect := image.Rect(
			int(float64(r.X)*scale), int(float64(r.Y)*scale),
			int(float64(r.Right())*scale), int(float64(r.Top())*scale),
		)
		draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	if cfg.LeftBorder > 0 {
		fill(model.Rect(0, 0, cfg.LeftBorder, cfg.Height), borderColor)
	}
	if cfg.BottomBorder > 0 {
		fill(model.Rect(0, 0, cfg.Width, cfg.BottomBorder), borderColor)
	}
	for i, r := range bin.Used {
		c := colorFor(i)
		fill(r, color.NRGBA{uint8(c.R), uint8(c.G), uint8(c.B), 255})
		if win, ok := r.WindowRect(); ok {
			fill(win, backgroundColor)
		}
	}

	return imaging.FlipV(img), nil
}

// ExportPNGs writes one PNG per bin into dir as bin-01.png, bin-02.png, ...
// and returns the written paths.
func ExportPNGs(dir string, result model.PackResult, scale float64) ([]string, error) {
	if len(result.Bins) == 0 {
		return nil, fmt.Errorf("%w: no bins", ErrNothingToExport)
	}

	paths := make([]string, 0, len(result.Bins))
	for _, b := range result.Bins {
		img, err := RenderPNG(b, scale)
		if err != nil {
			return paths, fmt.Errorf("render bin %d: %w", b.Index+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("bin-%02d.png", b.Index+1))
		if err := imaging.Save(img, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
