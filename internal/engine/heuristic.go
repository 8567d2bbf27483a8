package engine

import (
	"fmt"
	"strings"

	"github.com/piwi3910/rectbin/internal/model"
)

// Heuristic selects how a free rectangle is chosen for an item.
type Heuristic int

const (
	BottomLeft       Heuristic = iota // Lowest top edge, then leftmost
	BestAreaFit                       // Smallest leftover area
	BestLongSideFit                   // Smallest longer leftover side
	BestShortSideFit                  // Smallest shorter leftover side
)

// Heuristics lists every heuristic in declaration order.
var Heuristics = []Heuristic{BottomLeft, BestAreaFit, BestLongSideFit, BestShortSideFit}

func (h Heuristic) String() string {
	switch h {
	case BottomLeft:
		return "BottomLeft"
	case BestAreaFit:
		return "BestAreaFit"
	case BestLongSideFit:
		return "BestLongSideFit"
	case BestShortSideFit:
		return "BestShortSideFit"
	default:
		return fmt.Sprintf("Heuristic(%d)", int(h))
	}
}

// heuristicAliases maps lower-cased names, including the legacy class-style
// names, to heuristics.
var heuristicAliases = map[string]Heuristic{
	"bottomleft":           BottomLeft,
	"bottomleftrule":       BottomLeft,
	"rectbottomleftrule":   BottomLeft,
	"bl":                   BottomLeft,
	"bestareafit":          BestAreaFit,
	"rectbestareafit":      BestAreaFit,
	"baf":                  BestAreaFit,
	"bestlongsidefit":      BestLongSideFit,
	"rectbestlongsidefit":  BestLongSideFit,
	"blsf":                 BestLongSideFit,
	"bestshortsidefit":     BestShortSideFit,
	"rectbestshortsidefit": BestShortSideFit,
	"bssf":                 BestShortSideFit,
}

// ParseHeuristic resolves a heuristic by name. Matching ignores case.
func ParseHeuristic(name string) (Heuristic, error) {
	if h, ok := heuristicAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return h, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
}

// Score orders candidate placements. Lower is better.
type Score struct {
	Primary   int
	Secondary int
}

// Less reports whether s is strictly better than o: a smaller primary, or an
// equal primary with a smaller secondary. Equal scores are not better.
func (s Score) Less(o Score) bool {
	return s.Primary < o.Primary || (s.Primary == o.Primary && s.Secondary < o.Secondary)
}

// Placement is a proposed position for an item.
type Placement struct {
	Rect  model.Rectangle // Item at its position, rotated when Rotated is set
	Score Score
}

// Placer finds the best position for an item among free rectangles.
type Placer interface {
	FindPosition(free []model.Rectangle, allowRotation bool, item model.Rectangle) (Placement, bool)
}

// Placer returns the placement strategy for h.
func (h Heuristic) Placer() Placer {
	return scorePlacer{score: h.scoreFunc()}
}

// FindPosition implements Placer.
func (h Heuristic) FindPosition(free []model.Rectangle, allowRotation bool, item model.Rectangle) (Placement, bool) {
	return h.Placer().FindPosition(free, allowRotation, item)
}

// scoreFunc rates placing a w x h candidate into free rectangle f. The caller
// guarantees the candidate fits.
type scoreFunc func(f model.Rectangle, w, h int) Score

func (h Heuristic) scoreFunc() scoreFunc {
	switch h {
	case BottomLeft:
		return scoreBottomLeft
	case BestLongSideFit:
		return scoreBestLongSideFit
	case BestShortSideFit:
		return scoreBestShortSideFit
	default:
		return scoreBestAreaFit
	}
}

func scoreBestAreaFit(f model.Rectangle, w, h int) Score {
	return Score{
		Primary:   f.Width*f.Height - w*h,
		Secondary: min(f.Width-w, f.Height-h),
	}
}

func scoreBestLongSideFit(f model.Rectangle, w, h int) Score {
	dw, dh := f.Width-w, f.Height-h
	return Score{Primary: max(dw, dh), Secondary: min(dw, dh)}
}

func scoreBestShortSideFit(f model.Rectangle, w, h int) Score {
	dw, dh := f.Width-w, f.Height-h
	return Score{Primary: min(dw, dh), Secondary: max(dw, dh)}
}

func scoreBottomLeft(f model.Rectangle, _, h int) Score {
	return Score{Primary: f.Y + h, Secondary: f.X}
}

// scorePlacer scans every free rectangle in both allowed orientations and
// keeps the first strictly best candidate.
type scorePlacer struct {
	score scoreFunc
}

func (p scorePlacer) FindPosition(free []model.Rectangle, allowRotation bool, item model.Rectangle) (Placement, bool) {
	var best Placement
	found := false
	bestRotated := false

	consider := func(f model.Rectangle, w, h int, rotated bool) {
		if f.Width < w || f.Height < h {
			return
		}
		s := p.score(f, w, h)
		if !found || s.Less(best.Score) {
			best.Rect = model.Rect(f.X, f.Y, w, h)
			best.Score = s
			bestRotated = rotated
			found = true
		}
	}

	for _, f := range free {
		consider(f, item.Width, item.Height, false)
		if allowRotation {
			consider(f, item.Height, item.Width, true)
		}
	}
	if !found {
		return Placement{}, false
	}

	placed := item
	if bestRotated {
		placed = item.Rotated90()
	}
	best.Rect = placed.At(best.Rect.X, best.Rect.Y)
	return best, true
}
