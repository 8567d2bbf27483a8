package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable rectangular remnant left in a bin after packing.
type Offcut struct {
	ID       string `json:"id"`
	BinIndex int    `json:"bin_index"` // Index of the source bin in the result
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (o Offcut) Area() int {
	return o.Width * o.Height
}

// ToItemSpec converts an offcut into an item spec, e.g. to use it as a bin
// or to book it back into a stock list.
func (o Offcut) ToItemSpec() ItemSpec {
	return NewItemSpec("Offcut "+o.ID, o.Width, o.Height, 1)
}

// MinOffcutDimension is the minimum width and height for a remnant to be
// considered a usable offcut. Remnants smaller than this are waste.
const MinOffcutDimension = 50

// DetectOffcuts reports the free rectangles of a bin that are large enough to
// be reused, largest first. Free rectangles may overlap each other, so the
// offcuts are alternatives rather than a partition of the leftover area.
func DetectOffcuts(b BinResult, minDim int) []Offcut {
	if minDim <= 0 {
		minDim = MinOffcutDimension
	}

	var offcuts []Offcut
	for _, f := range b.Free {
		if f.Width < minDim || f.Height < minDim {
			continue
		}
		offcuts = append(offcuts, Offcut{
			ID:       uuid.New().String()[:8],
			BinIndex: b.Index,
			X:        f.X,
			Y:        f.Y,
			Width:    f.Width,
			Height:   f.Height,
		})
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across all bins in a result.
func DetectAllOffcuts(result PackResult, minDim int) []Offcut {
	var all []Offcut
	for _, b := range result.Bins {
		all = append(all, DetectOffcuts(b, minDim)...)
	}
	return all
}

// LargestOffcutArea returns the area of the biggest offcut, or 0.
func LargestOffcutArea(offcuts []Offcut) int {
	best := 0
	for _, o := range offcuts {
		if a := o.Area(); a > best {
			best = a
		}
	}
	return best
}
