package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/rectbin/internal/model"
)

type point struct {
	x, y float64
}

// segment is a line between two points, used for chaining loose LINE and
// ARC entities into closed outlines.
type segment struct {
	start point
	end   point
}

// box is the integer bounding box of an outline in drawing coordinates.
type box struct {
	x, y, w, h int
}

func (b box) area() int { return b.w * b.h }

// strictlyInside reports whether b lies inside o without touching its edges.
func (b box) strictlyInside(o box) bool {
	return b.x > o.x && b.y > o.y && b.x+b.w < o.x+o.w && b.y+b.h < o.y+o.h
}

// ImportDXF imports items from a DXF file. Every closed shape (LWPOLYLINE,
// CIRCLE, or chain of connected LINEs/ARCs) contributes its bounding box.
// A shape nested inside another becomes the outer item's window. Identical
// items are merged into one spec with a quantity.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]point
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			outline := make([]point, len(e.Vertices))
			for i, v := range e.Vertices {
				outline[i] = point{v[0], v[1]}
			}
			outlines = append(outlines, outline)

		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			outlines = append(outlines, []point{{cx - r, cy - r}, {cx + r, cy + r}, {cx - r, cy + r}})

		case *entity.Arc:
			segments = append(segments, pointsToSegments(arcToPoints(e, 16))...)

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}
	outlines = append(outlines, chainSegments(segments, 0.01)...)

	var boxes []box
	for _, o := range outlines {
		b := boundingBox(o)
		if b.w <= 0 || b.h <= 0 {
			result.Warnings = append(result.Warnings, "Skipped degenerate shape")
			continue
		}
		boxes = append(boxes, b)
	}
	if len(boxes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	specs, warnings := nestBoxes(boxes)
	result.Warnings = append(result.Warnings, warnings...)
	result.Items = specs
	return result
}

// nestBoxes turns bounding boxes into item specs. Boxes are visited largest
// first; a box strictly inside an item becomes that item's window, and
// anything nested deeper is dropped with a warning.
func nestBoxes(boxes []box) ([]model.ItemSpec, []string) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].area() > boxes[j].area()
	})

	type item struct {
		outer  box
		window *box
	}
	var items []*item
	var warnings []string

outer:
	for _, b := range boxes {
		for _, it := range items {
			if !b.strictlyInside(it.outer) {
				continue
			}
			if it.window == nil {
				w := b
				it.window = &w
			} else {
				warnings = append(warnings, fmt.Sprintf("Skipped nested shape %dx%d: item already has a window", b.w, b.h))
			}
			continue outer
		}
		items = append(items, &item{outer: b})
	}

	var specs []model.ItemSpec
	index := map[string]int{}
	for _, it := range items {
		var win *model.Window
		if it.window != nil {
			win = windowFor(it.outer, *it.window)
			if win == nil {
				warnings = append(warnings, fmt.Sprintf("Window of %dx%d item too small for the inner border, ignored", it.outer.w, it.outer.h))
			}
		}

		key := fmt.Sprintf("%dx%d", it.outer.w, it.outer.h)
		if win != nil {
			key += fmt.Sprintf("/%+v", *win)
		}
		if i, ok := index[key]; ok {
			specs[i].Quantity++
			continue
		}
		spec := model.NewItemSpec(fmt.Sprintf("DXF Item %d", len(specs)+1), it.outer.w, it.outer.h, 1)
		spec.Window = win
		index[key] = len(specs)
		specs = append(specs, spec)
	}
	return specs, warnings
}

// windowFor converts an inner box to a window of outer. The inner border is
// taken out of the opening when the drawn gap is narrower than it.
func windowFor(outer, inner box) *model.Window {
	left := inner.x - outer.x - model.InnerBorder
	bottom := inner.y - outer.y - model.InnerBorder
	w, h := inner.w, inner.h
	if left < 0 {
		w += left
		left = 0
	}
	if bottom < 0 {
		h += bottom
		bottom = 0
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	win := &model.Window{Width: w, Height: h, LeftBorder: left, BottomBorder: bottom}
	probe := model.Rectangle{Width: outer.w, Height: outer.h, Window: win}
	if probe.Validate() != nil {
		return nil
	}
	return win
}

// boundingBox rounds the outline's extent to whole units.
func boundingBox(o []point) box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range o {
		minX = math.Min(minX, p.x)
		minY = math.Min(minY, p.y)
		maxX = math.Max(maxX, p.x)
		maxY = math.Max(maxY, p.y)
	}
	x, y := int(math.Round(minX)), int(math.Round(minY))
	return box{x: x, y: y, w: int(math.Round(maxX)) - x, h: int(math.Round(maxY)) - y}
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []point) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
// Open chains are discarded.
func chainSegments(segs []segment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var outlines [][]point

	for startIdx := range segs {
		if used[startIdx] {
			continue
		}
		chain := []point{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		for changed := true; changed; {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tolerance
}
