package gcode

import (
	"fmt"
	"math"

	"github.com/piwi3910/rectbin/internal/model"
)

// Conflict is a pair of neighbouring items too close for the tool to pass
// between them without cutting into one of them.
type Conflict struct {
	BinIndex int
	A, B     string // Item labels
	Gap      float64
}

// CheckClearance reports every pair of items in the same bin with a gap that
// is open but narrower than the tool diameter. Flush neighbours share a cut
// line and are not reported; bins are packed without kerf spacing.
func CheckClearance(result model.PackResult, toolDiameter float64) []Conflict {
	var conflicts []Conflict
	for _, bin := range result.Bins {
		for i := 0; i < len(bin.Used); i++ {
			for j := i + 1; j < len(bin.Used); j++ {
				a, b := bin.Used[i], bin.Used[j]
				if gap := distance(a, b); gap > 0 && gap < toolDiameter {
					conflicts = append(conflicts, Conflict{
						BinIndex: bin.Index,
						A:        a.Label,
						B:        b.Label,
						Gap:      gap,
					})
				}
			}
		}
	}
	return conflicts
}

// distance returns the shortest distance between two non-overlapping rectangles.
func distance(a, b model.Rectangle) float64 {
	dx := max(b.X-a.Right(), a.X-b.Right(), 0)
	dy := max(b.Y-a.Top(), a.Y-b.Top(), 0)
	return math.Hypot(float64(dx), float64(dy))
}

// FormatConflictWarnings produces human-readable warning messages.
func FormatConflictWarnings(conflicts []Conflict) []string {
	var warnings []string
	for _, c := range conflicts {
		warnings = append(warnings, fmt.Sprintf(
			"Bin %d: %q and %q are %.1f apart, closer than the tool diameter",
			c.BinIndex+1, c.A, c.B, c.Gap,
		))
	}
	return warnings
}
