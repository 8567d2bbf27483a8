package model

import (
	"fmt"

	"github.com/google/uuid"
)

// ItemSpec is a line of an item list: one item shape requested Quantity times.
type ItemSpec struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Quantity int     `json:"quantity"`
	Window   *Window `json:"window,omitempty"`
}

func NewItemSpec(label string, w, h, qty int) ItemSpec {
	return ItemSpec{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Quantity: qty,
	}
}

// Rectangle returns a single pending item for this spec.
func (s ItemSpec) Rectangle() Rectangle {
	r := Rectangle{ID: s.ID, Label: s.Label, Width: s.Width, Height: s.Height}
	if s.Window != nil {
		w := *s.Window
		r.Window = &w
	}
	return r
}

// ExpandItems turns item specs into individual pending rectangles, one per
// unit of quantity. Copies of a spec get the spec ID with a "-n" suffix.
func ExpandItems(specs []ItemSpec) []Rectangle {
	var out []Rectangle
	for _, s := range specs {
		for i := 0; i < s.Quantity; i++ {
			r := s.Rectangle()
			if s.Quantity > 1 {
				r.ID = fmt.Sprintf("%s-%d", s.ID, i+1)
			}
			out = append(out, r)
		}
	}
	return out
}

// Strategy selects how the optimizer fills each bin.
type Strategy string

const (
	StrategyGreedy     Strategy = "greedy"     // Best-scoring pending item first, one at a time
	StrategySequential Strategy = "sequential" // Items inserted in the given order
	StrategyGenetic    Strategy = "genetic"    // Insertion order searched by a genetic algorithm
)

// BinConfig holds the fixed parameters of every bin opened for a job.
type BinConfig struct {
	Width         int    `json:"width" yaml:"width"`
	Height        int    `json:"height" yaml:"height"`
	AllowRotation bool   `json:"allow_rotation" yaml:"allow_rotation"`
	LeftBorder    int    `json:"left_border" yaml:"left_border"`
	BottomBorder  int    `json:"bottom_border" yaml:"bottom_border"`
	Heuristic     string `json:"heuristic" yaml:"heuristic"`
}

func DefaultBinConfig() BinConfig {
	return BinConfig{
		Width:         1000,
		Height:        1000,
		AllowRotation: true,
		Heuristic:     "BestAreaFit",
	}
}

// UsableWidth returns the packable width to the right of the left border.
func (c BinConfig) UsableWidth() int {
	return c.Width - c.LeftBorder
}

// UsableHeight returns the packable height above the bottom border.
func (c BinConfig) UsableHeight() int {
	return c.Height - c.BottomBorder
}

// Area returns the full bin area, borders included.
func (c BinConfig) Area() int {
	return c.Width * c.Height
}

// Fits reports whether the item fits the usable area in either allowed orientation.
func (c BinConfig) Fits(r Rectangle) bool {
	if r.Width <= c.UsableWidth() && r.Height <= c.UsableHeight() {
		return true
	}
	return c.AllowRotation && r.Height <= c.UsableWidth() && r.Width <= c.UsableHeight()
}

// Validate checks dimensions and borders. The heuristic name is checked by
// the engine when a bin is built.
func (c BinConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: bin size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.LeftBorder < 0 || c.BottomBorder < 0 {
		return fmt.Errorf("%w: negative border", ErrInvalidConfig)
	}
	if c.UsableWidth() <= 0 || c.UsableHeight() <= 0 {
		return fmt.Errorf("%w: borders %d,%d leave no usable area in %dx%d",
			ErrInvalidConfig, c.LeftBorder, c.BottomBorder, c.Width, c.Height)
	}
	return nil
}

// BinResult is one packed bin.
type BinResult struct {
	Index  int         `json:"index"`
	Config BinConfig   `json:"config"`
	Used   []Rectangle `json:"used"`
	Free   []Rectangle `json:"free"`
}

// UsedArea returns the total area of placed items.
func (b BinResult) UsedArea() int {
	total := 0
	for _, r := range b.Used {
		total += r.Area()
	}
	return total
}

// Usage returns used area as a fraction of the bin area.
func (b BinResult) Usage() float64 {
	area := b.Config.Area()
	if area == 0 {
		return 0
	}
	return float64(b.UsedArea()) / float64(area)
}

// PackResult holds the full solution of a job.
type PackResult struct {
	Bins     []BinResult `json:"bins"`
	Unplaced []Rectangle `json:"unplaced"`
}

// PlacedCount returns the number of items placed across all bins.
func (p PackResult) PlacedCount() int {
	n := 0
	for _, b := range p.Bins {
		n += len(b.Used)
	}
	return n
}

// TotalUsage returns the overall used fraction across all bins.
func (p PackResult) TotalUsage() float64 {
	var used, total int
	for _, b := range p.Bins {
		used += b.UsedArea()
		total += b.Config.Area()
	}
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total)
}

// Job ties everything together for save/load.
type Job struct {
	Version  int         `json:"version"`
	Name     string      `json:"name"`
	Items    []ItemSpec  `json:"items"`
	Bin      BinConfig   `json:"bin"`
	Strategy Strategy    `json:"strategy"`
	MaxBins  int         `json:"max_bins,omitempty"`
	Result   *PackResult `json:"result,omitempty"`
}

// JobVersion is the current job file format version.
const JobVersion = 1

func NewJob() Job {
	return Job{
		Version:  JobVersion,
		Name:     "Untitled",
		Items:    []ItemSpec{},
		Bin:      DefaultBinConfig(),
		Strategy: StrategyGreedy,
	}
}
