// Package export writes packing results to PDF reports, label sheets,
// spreadsheets, DXF drawings and PNG previews.
package export

import (
	"errors"
	"sort"

	"github.com/maruel/natural"

	"github.com/piwi3910/rectbin/internal/model"
)

// ErrNothingToExport is returned when a result has no bins or no placed items.
var ErrNothingToExport = errors.New("nothing to export")

// itemColor represents an RGB color for a placed item.
type itemColor struct {
	R, G, B int
}

var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(i int) itemColor {
	return itemColors[i%len(itemColors)]
}

// placement is a placed item together with the bin it landed in.
type placement struct {
	Bin  int
	Rect model.Rectangle
}

// placementsByLabel lists every placed item, bin by bin, with labels in
// natural order inside each bin ("Item 2" before "Item 10").
func placementsByLabel(result model.PackResult) []placement {
	var out []placement
	for _, b := range result.Bins {
		start := len(out)
		for _, r := range b.Used {
			out = append(out, placement{Bin: b.Index, Rect: r})
		}
		group := out[start:]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Rect.Label != group[j].Rect.Label {
				return natural.Less(group[i].Rect.Label, group[j].Rect.Label)
			}
			return natural.Less(group[i].Rect.ID, group[j].Rect.ID)
		})
	}
	return out
}

// flipY converts a bottom-left origin y to a top-left origin y for a
// rectangle of height h inside a bin of height binH.
func flipY(y, h, binH int) int {
	return binH - y - h
}
