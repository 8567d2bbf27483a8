package engine

import (
	"fmt"
	"slices"

	"github.com/piwi3910/rectbin/internal/model"
)

// Bin packs rectangles into a fixed-size area using a list of maximal free
// rectangles. A Bin is not safe for concurrent use.
type Bin struct {
	width         int
	height        int
	allowRotation bool
	heuristic     Heuristic
	placer        Placer
	leftBorder    int
	bottomBorder  int

	free     []model.Rectangle
	used     []model.Rectangle
	cantPack []model.Rectangle
}

// NewBin creates an empty bin. Borders must be set and Init called before
// inserting; until then the bin has no free space.
func NewBin(width, height int, allowRotation bool, heuristic string) (*Bin, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBinSize, width, height)
	}
	h, err := ParseHeuristic(heuristic)
	if err != nil {
		return nil, err
	}
	return &Bin{
		width:         width,
		height:        height,
		allowRotation: allowRotation,
		heuristic:     h,
		placer:        h.Placer(),
	}, nil
}

// New builds a ready-to-use bin from a configuration.
func New(cfg model.BinConfig) (*Bin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBin(cfg.Width, cfg.Height, cfg.AllowRotation, cfg.Heuristic)
	if err != nil {
		return nil, err
	}
	return b.SetLeftBorder(cfg.LeftBorder).SetBottomBorder(cfg.BottomBorder).Init(), nil
}

// SetLeftBorder reserves a non-packable strip along the left edge.
func (b *Bin) SetLeftBorder(n int) *Bin {
	b.leftBorder = n
	return b
}

// SetBottomBorder reserves a non-packable strip along the bottom edge.
func (b *Bin) SetBottomBorder(n int) *Bin {
	b.bottomBorder = n
	return b
}

// Init resets the bin to a single free rectangle covering the usable area.
func (b *Bin) Init() *Bin {
	b.free = nil
	b.used = nil
	b.cantPack = nil
	w, h := b.width-b.leftBorder, b.height-b.bottomBorder
	if w > 0 && h > 0 {
		b.free = []model.Rectangle{model.Rect(b.leftBorder, b.bottomBorder, w, h)}
	}
	return b
}

// Config returns the configuration the bin was built with.
func (b *Bin) Config() model.BinConfig {
	return model.BinConfig{
		Width:         b.width,
		Height:        b.height,
		AllowRotation: b.allowRotation,
		LeftBorder:    b.leftBorder,
		BottomBorder:  b.bottomBorder,
		Heuristic:     b.heuristic.String(),
	}
}

func (b *Bin) Heuristic() Heuristic {
	return b.heuristic
}

// Insert places a single item. It returns the placed rectangle, or false
// when no free rectangle can hold the item in an allowed orientation or the
// item is malformed.
func (b *Bin) Insert(item model.Rectangle) (model.Rectangle, bool) {
	if item.Validate() != nil {
		return model.Rectangle{}, false
	}
	p, ok := b.placer.FindPosition(b.free, b.allowRotation, item)
	if !ok {
		return model.Rectangle{}, false
	}
	b.placeRect(p.Rect)
	return p.Rect, true
}

// InsertMany places items one at a time. Each round every pending item is
// scored against the current free space and only the best one is placed.
// Items left over when nothing else fits are available from CantPack.
func (b *Bin) InsertMany(items []model.Rectangle) []model.Rectangle {
	pending := slices.Clone(items)
	var placed []model.Rectangle

	for len(pending) > 0 {
		bestIdx := -1
		var best Placement
		for i, item := range pending {
			if item.Validate() != nil {
				continue
			}
			p, ok := b.placer.FindPosition(b.free, b.allowRotation, item)
			if !ok {
				continue
			}
			if bestIdx < 0 || p.Score.Less(best.Score) {
				bestIdx = i
				best = p
			}
		}
		if bestIdx < 0 {
			break
		}
		b.placeRect(best.Rect)
		placed = append(placed, best.Rect)
		pending = slices.Delete(pending, bestIdx, bestIdx+1)
	}

	b.cantPack = pending
	return placed
}

// CantPack returns the items the last InsertMany call could not place.
func (b *Bin) CantPack() []model.Rectangle {
	return slices.Clone(b.cantPack)
}

// UsedRectangles returns the placed items in placement order.
func (b *Bin) UsedRectangles() []model.Rectangle {
	return slices.Clone(b.used)
}

// FreeRectangles returns the current free rectangles. They may overlap.
func (b *Bin) FreeRectangles() []model.Rectangle {
	return slices.Clone(b.free)
}

// Usage returns the placed area as a fraction of the bin area.
func (b *Bin) Usage() float64 {
	used := 0
	for _, r := range b.used {
		used += r.Area()
	}
	return float64(used) / float64(b.width*b.height)
}

// Result snapshots the bin for reporting.
func (b *Bin) Result(index int) model.BinResult {
	return model.BinResult{
		Index:  index,
		Config: b.Config(),
		Used:   b.UsedRectangles(),
		Free:   b.FreeRectangles(),
	}
}

// placeRect commits node: every free rectangle it overlaps is replaced by
// its remainders, the window of node (if any) becomes free space, and
// redundant free rectangles are pruned.
func (b *Bin) placeRect(node model.Rectangle) {
	next := make([]model.Rectangle, 0, len(b.free)+4)
	for _, f := range b.free {
		if parts, split := splitFreeNode(f, node); split {
			next = append(next, parts...)
		} else {
			next = append(next, f)
		}
	}
	if w, ok := node.WindowRect(); ok {
		next = append(next, w)
	}
	b.free = pruneFreeList(next)
	b.used = append(b.used, node)
}

// splitFreeNode returns the maximal parts of free left over around used.
// It returns false when the two do not overlap; shared edges are not overlap.
func splitFreeNode(free, used model.Rectangle) ([]model.Rectangle, bool) {
	if !free.Overlaps(used) {
		return nil, false
	}

	var parts []model.Rectangle
	// Below and above: full width of free.
	if used.Y > free.Y {
		parts = append(parts, model.Rect(free.X, free.Y, free.Width, used.Y-free.Y))
	}
	if used.Top() < free.Top() {
		parts = append(parts, model.Rect(free.X, used.Top(), free.Width, free.Top()-used.Top()))
	}
	// Left and right: full height of free.
	if used.X > free.X {
		parts = append(parts, model.Rect(free.X, free.Y, used.X-free.X, free.Height))
	}
	if used.Right() < free.Right() {
		parts = append(parts, model.Rect(used.Right(), free.Y, free.Right()-used.Right(), free.Height))
	}
	return parts, true
}

// pruneFreeList drops every rectangle contained in another one. Each pair is
// compared once; of two equal rectangles the earlier is dropped.
func pruneFreeList(free []model.Rectangle) []model.Rectangle {
	removed := make([]bool, len(free))
	for i := range free {
		if removed[i] {
			continue
		}
		for j := i + 1; j < len(free); j++ {
			if removed[j] {
				continue
			}
			if model.IsContainedIn(free[i], free[j]) {
				removed[i] = true
				break
			}
			if model.IsContainedIn(free[j], free[i]) {
				removed[j] = true
			}
		}
	}

	kept := make([]model.Rectangle, 0, len(free))
	for i, r := range free {
		if !removed[i] {
			kept = append(kept, r)
		}
	}
	return kept
}
