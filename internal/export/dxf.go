package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/rectbin/internal/model"
)

// DXF layer names.
const (
	LayerBins    = "BINS"
	LayerItems   = "ITEMS"
	LayerWindows = "WINDOWS"
)

// ExportDXF writes every bin side by side along the X axis. Bin outlines,
// item outlines and window openings go to separate layers as closed
// chains of LINE entities.
func ExportDXF(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("%w: no bins", ErrNothingToExport)
	}

	offsets := binOffsets(result.Bins)
	d := dxf.NewDrawing()

	if _, err := d.AddLayer(LayerBins, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerBins, err)
	}
	for i, b := range result.Bins {
		if err := outline(d, offsets[i], model.Rect(0, 0, b.Config.Width, b.Config.Height)); err != nil {
			return err
		}
	}

	if _, err := d.AddLayer(LayerItems, color.Green, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerItems, err)
	}
	for i, b := range result.Bins {
		for _, r := range b.Used {
			if err := outline(d, offsets[i], r); err != nil {
				return err
			}
		}
	}

	if _, err := d.AddLayer(LayerWindows, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerWindows, err)
	}
	for i, b := range result.Bins {
		for _, r := range b.Used {
			if win, ok := r.WindowRect(); ok {
				if err := outline(d, offsets[i], win); err != nil {
					return err
				}
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save DXF: %w", err)
	}
	return nil
}

// binOffsets returns the X offset of each bin, leaving a gap of a tenth of
// the widest bin between neighbours.
func binOffsets(bins []model.BinResult) []float64 {
	widest := 0
	for _, b := range bins {
		widest = max(widest, b.Config.Width)
	}
	gap := max(float64(widest)/10, 10)

	offsets := make([]float64, len(bins))
	x := 0.0
	for i, b := range bins {
		offsets[i] = x
		x += float64(b.Config.Width) + gap
	}
	return offsets
}

// outline draws r as four LINE entities on the current layer.
func outline(d *drawing.Drawing, dx float64, r model.Rectangle) error {
	x0, y0 := dx+float64(r.X), float64(r.Y)
	x1, y1 := dx+float64(r.Right()), float64(r.Top())
	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	for i, a := range corners {
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return fmt.Errorf("draw %s: %w", r, err)
		}
	}
	return nil
}
