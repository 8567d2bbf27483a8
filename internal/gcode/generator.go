// Package gcode turns packed bins into CNC toolpaths: every window is cut
// from the inside first, then each item is cut free along its outline.
package gcode

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/rectbin/internal/model"
)

// ErrInvalidSettings is returned for tool settings that cannot produce a toolpath.
var ErrInvalidSettings = errors.New("invalid gcode settings")

// Settings describes the tool and cutting parameters. Lengths are in bin units.
type Settings struct {
	ToolDiameter  float64 `json:"tool_diameter" yaml:"tool_diameter"`
	FeedRate      float64 `json:"feed_rate" yaml:"feed_rate"`
	PlungeRate    float64 `json:"plunge_rate" yaml:"plunge_rate"`
	SpindleSpeed  int     `json:"spindle_speed" yaml:"spindle_speed"`
	SafeZ         float64 `json:"safe_z" yaml:"safe_z"`
	CutDepth      float64 `json:"cut_depth" yaml:"cut_depth"`
	PassDepth     float64 `json:"pass_depth" yaml:"pass_depth"`
	DecimalPlaces int     `json:"decimal_places" yaml:"decimal_places"`
}

func DefaultSettings() Settings {
	return Settings{
		ToolDiameter:  6,
		FeedRate:      1500,
		PlungeRate:    500,
		SpindleSpeed:  18000,
		SafeZ:         5,
		CutDepth:      18,
		PassDepth:     6,
		DecimalPlaces: 3,
	}
}

func (s Settings) Validate() error {
	switch {
	case s.ToolDiameter <= 0:
		return fmt.Errorf("%w: tool diameter must be positive", ErrInvalidSettings)
	case s.CutDepth <= 0 || s.PassDepth <= 0:
		return fmt.Errorf("%w: cut and pass depth must be positive", ErrInvalidSettings)
	case s.FeedRate <= 0 || s.PlungeRate <= 0:
		return fmt.Errorf("%w: feed and plunge rate must be positive", ErrInvalidSettings)
	case s.SafeZ <= 0:
		return fmt.Errorf("%w: safe Z must be above the stock", ErrInvalidSettings)
	case s.DecimalPlaces < 0:
		return fmt.Errorf("%w: negative decimal places", ErrInvalidSettings)
	}
	return nil
}

// Passes returns the number of depth passes per outline.
func (s Settings) Passes() int {
	return int(math.Ceil(s.CutDepth / s.PassDepth))
}

// Generator produces GCode from packed bins.
type Generator struct {
	Settings Settings
}

func New(settings Settings) *Generator {
	return &Generator{Settings: settings}
}

// GenerateBin produces GCode for a single bin. Windows are cut before the
// item that contains them so the item is still held while its opening is cut.
func (g *Generator) GenerateBin(bin model.BinResult) string {
	var b strings.Builder

	g.writeHeader(&b, bin)
	for i, r := range bin.Used {
		if win, ok := r.WindowRect(); ok {
			g.writeWindow(&b, r, win, i+1)
		}
		g.writeItem(&b, r, i+1)
	}
	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one GCode program per bin.
func (g *Generator) GenerateAll(result model.PackResult) []string {
	var codes []string
	for _, bin := range result.Bins {
		codes = append(codes, g.GenerateBin(bin))
	}
	return codes
}

// WriteFiles writes one program per bin into dir as bin-01.nc, bin-02.nc, ...
func (g *Generator) WriteFiles(dir string, result model.PackResult) ([]string, error) {
	if err := g.Settings.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var paths []string
	for _, bin := range result.Bins {
		path := filepath.Join(dir, fmt.Sprintf("bin-%02d.nc", bin.Index+1))
		if err := os.WriteFile(path, []byte(g.GenerateBin(bin)), 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *Generator) writeHeader(b *strings.Builder, bin model.BinResult) {
	s := g.Settings
	cfg := bin.Config

	b.WriteString(g.comment(fmt.Sprintf("rectbin GCode, bin %d", bin.Index+1)))
	b.WriteString(g.comment(fmt.Sprintf("Bin: %d x %d, items: %d, usage: %.1f%%", cfg.Width, cfg.Height, len(bin.Used), bin.Usage()*100)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %s, feed: %s, plunge: %s", g.format(s.ToolDiameter), g.format(s.FeedRate), g.format(s.PlungeRate))))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %s in %d passes", g.format(s.CutDepth), s.Passes())))
	b.WriteString("\n")

	b.WriteString("G21\n")
	b.WriteString("G90\n")
	b.WriteString(fmt.Sprintf("M3 S%d\n", s.SpindleSpeed))
	b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(s.SafeZ)))
	b.WriteString(fmt.Sprintf("G0 X%s Y%s\n", g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	b.WriteString(g.comment("=== Job complete ==="))
	b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(g.Settings.SafeZ)))
	b.WriteString("M5\n")
	b.WriteString("M30\n")
}

// writeWindow cuts the opening with the tool inside it.
func (g *Generator) writeWindow(b *strings.Builder, item, win model.Rectangle, num int) {
	toolR := g.Settings.ToolDiameter / 2
	b.WriteString(g.comment(fmt.Sprintf("--- Item %d window: %s (%d x %d) ---", num, item.Label, win.Width, win.Height)))
	if float64(win.Width) <= g.Settings.ToolDiameter || float64(win.Height) <= g.Settings.ToolDiameter {
		b.WriteString(g.comment("Window narrower than the tool, skipped"))
		b.WriteString("\n")
		return
	}
	g.writeProfile(b,
		float64(win.X)+toolR, float64(win.Y)+toolR,
		float64(win.Right())-toolR, float64(win.Top())-toolR)
}

// writeItem cuts the item free with the tool outside its outline.
func (g *Generator) writeItem(b *strings.Builder, r model.Rectangle, num int) {
	toolR := g.Settings.ToolDiameter / 2
	b.WriteString(g.comment(fmt.Sprintf("--- Item %d: %s (%d x %d)%s ---", num, r.Label, r.Width, r.Height, rotatedStr(r.Rotated))))
	g.writeProfile(b,
		float64(r.X)-toolR, float64(r.Y)-toolR,
		float64(r.Right())+toolR, float64(r.Top())+toolR)
}

// writeProfile cuts the rectangle (x0,y0)-(x1,y1) in depth passes, retracting
// to safe Z after each pass.
func (g *Generator) writeProfile(b *strings.Builder, x0, y0, x1, y1 float64) {
	s := g.Settings
	passes := s.Passes()

	for pass := 1; pass <= passes; pass++ {
		depth := math.Min(float64(pass)*s.PassDepth, s.CutDepth)

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%s", pass, passes, g.format(depth))))
		b.WriteString(fmt.Sprintf("G0 X%s Y%s\n", g.format(x0), g.format(y0)))
		b.WriteString(fmt.Sprintf("G1 Z%s F%s\n", g.format(-depth), g.format(s.PlungeRate)))
		g.writePerimeter(b, x0, y0, x1, y1)
		b.WriteString(fmt.Sprintf("G0 Z%s\n", g.format(s.SafeZ)))
	}
	b.WriteString("\n")
}

func (g *Generator) writePerimeter(b *strings.Builder, x0, y0, x1, y1 float64) {
	b.WriteString(fmt.Sprintf("G1 X%s Y%s F%s\n", g.format(x1), g.format(y0), g.format(g.Settings.FeedRate)))
	b.WriteString(fmt.Sprintf("G1 X%s Y%s\n", g.format(x1), g.format(y1)))
	b.WriteString(fmt.Sprintf("G1 X%s Y%s\n", g.format(x0), g.format(y1)))
	b.WriteString(fmt.Sprintf("G1 X%s Y%s\n", g.format(x0), g.format(y0)))
}

// comment wraps text in GCode comment syntax.
func (g *Generator) comment(text string) string {
	return "; " + text + "\n"
}

// format formats a value with the configured decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.Settings.DecimalPlaces, v)
}

func rotatedStr(r bool) string {
	if r {
		return " [rotated]"
	}
	return ""
}
