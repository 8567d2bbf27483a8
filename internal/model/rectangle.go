package model

import (
	"fmt"

	"github.com/google/uuid"
)

// InnerBorder is the fixed margin kept between a window's configured borders
// and the area that is released back to the bin when the item is placed.
const InnerBorder = 2

// Window describes a rectangular cut-out inside an item, in the item's local
// coordinates. The cut-out starts LeftBorder+InnerBorder from the item's left
// edge and BottomBorder+InnerBorder from its bottom edge.
type Window struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	LeftBorder   int `json:"left_border"`
	BottomBorder int `json:"bottom_border"`
}

// Rectangle is an axis-aligned rectangle with its bottom-left corner at (X, Y).
// It is used for pending items, placed items and free space alike.
type Rectangle struct {
	ID      string  `json:"id,omitempty"`
	Label   string  `json:"label,omitempty"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Rotated bool    `json:"rotated,omitempty"` // Toggled by every Rotate call
	Window  *Window `json:"window,omitempty"`  // Nil for plain rectangles
}

// NewRectangle creates a pending item with a fresh short ID.
func NewRectangle(label string, w, h int) Rectangle {
	return Rectangle{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  w,
		Height: h,
	}
}

// NewWindowedRectangle creates a pending item carrying a cut-out.
func NewWindowedRectangle(label string, w, h int, win Window) Rectangle {
	r := NewRectangle(label, w, h)
	r.Window = &win
	return r
}

// Rect builds an anonymous rectangle, as used for free space.
func Rect(x, y, w, h int) Rectangle {
	return Rectangle{X: x, Y: y, Width: w, Height: h}
}

// HasWindow reports whether the rectangle carries a cut-out.
func (r Rectangle) HasWindow() bool {
	return r.Window != nil
}

// Rotate swaps width and height in place. The window is transposed with the
// item, so its dimensions and its left/bottom borders swap too. Calling Rotate
// twice restores the original rectangle.
func (r *Rectangle) Rotate() {
	r.Width, r.Height = r.Height, r.Width
	r.Rotated = !r.Rotated
	if r.Window != nil {
		w := *r.Window
		r.Window = &Window{
			Width:        w.Height,
			Height:       w.Width,
			LeftBorder:   w.BottomBorder,
			BottomBorder: w.LeftBorder,
		}
	}
}

// Rotated90 returns a rotated copy, leaving r untouched.
func (r Rectangle) Rotated90() Rectangle {
	c := r.Clone()
	c.Rotate()
	return c
}

// At returns a copy of r positioned at (x, y).
func (r Rectangle) At(x, y int) Rectangle {
	c := r.Clone()
	c.X = x
	c.Y = y
	return c
}

// Clone returns a deep copy; the window is not shared with r.
func (r Rectangle) Clone() Rectangle {
	if r.Window != nil {
		w := *r.Window
		r.Window = &w
	}
	return r
}

func (r Rectangle) Area() int {
	return r.Width * r.Height
}

// Right returns the x coordinate of the right edge.
func (r Rectangle) Right() int {
	return r.X + r.Width
}

// Top returns the y coordinate of the top edge.
func (r Rectangle) Top() int {
	return r.Y + r.Height
}

// Overlaps reports whether r and o share interior area. Rectangles that only
// touch along an edge do not overlap.
func (r Rectangle) Overlaps(o Rectangle) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Top() && o.Y < r.Top()
}

// WindowRect returns the bin area released by the window of a placed item.
func (r Rectangle) WindowRect() (Rectangle, bool) {
	if r.Window == nil {
		return Rectangle{}, false
	}
	return Rect(
		r.X+r.Window.LeftBorder+InnerBorder,
		r.Y+r.Window.BottomBorder+InnerBorder,
		r.Window.Width,
		r.Window.Height,
	), true
}

// Validate checks that the item has a positive size and that its window,
// if any, lies strictly inside it.
func (r Rectangle) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: %q has size %dx%d", ErrInvalidItem, r.Label, r.Width, r.Height)
	}
	if r.Window == nil {
		return nil
	}
	w := r.Window
	if w.Width <= 0 || w.Height <= 0 || w.LeftBorder < 0 || w.BottomBorder < 0 {
		return fmt.Errorf("%w: %q has window %dx%d with borders %d,%d",
			ErrInvalidItem, r.Label, w.Width, w.Height, w.LeftBorder, w.BottomBorder)
	}
	if w.LeftBorder+InnerBorder+w.Width > r.Width || w.BottomBorder+InnerBorder+w.Height > r.Height {
		return fmt.Errorf("%w: window of %q extends past its outline", ErrInvalidItem, r.Label)
	}
	return nil
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.Width, r.Height, r.X, r.Y)
}

// IsContainedIn reports whether a lies within b. Shared edges count as inside.
func IsContainedIn(a, b Rectangle) bool {
	return a.X >= b.X && a.Y >= b.Y &&
		a.Right() <= b.Right() && a.Top() <= b.Top()
}
