package gcode

import (
	"strings"
	"testing"

	"github.com/piwi3910/rectbin/internal/model"
)

func clearanceResult(used ...model.Rectangle) model.PackResult {
	cfg := model.DefaultBinConfig()
	return model.PackResult{Bins: []model.BinResult{{Index: 0, Config: cfg, Used: used}}}
}

func TestCheckClearance_FlushItemsShareCut(t *testing.T) {
	result := clearanceResult(
		model.Rectangle{Label: "A", X: 0, Y: 0, Width: 50, Height: 50},
		model.Rectangle{Label: "B", X: 50, Y: 0, Width: 50, Height: 50},
		model.Rectangle{Label: "C", X: 50, Y: 50, Width: 50, Height: 50},
	)
	if conflicts := CheckClearance(result, 6); len(conflicts) != 0 {
		t.Errorf("expected no conflicts for flush items, got %+v", conflicts)
	}
}

func TestCheckClearance_NarrowGap(t *testing.T) {
	result := clearanceResult(
		model.Rectangle{Label: "A", X: 0, Y: 0, Width: 50, Height: 50},
		model.Rectangle{Label: "B", X: 52, Y: 0, Width: 50, Height: 50},
	)

	conflicts := CheckClearance(result, 6)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if c := conflicts[0]; c.A != "A" || c.B != "B" || c.Gap != 2 {
		t.Errorf("unexpected conflict %+v", c)
	}
}

func TestCheckClearance_EnoughGap(t *testing.T) {
	result := clearanceResult(
		model.Rectangle{Label: "A", X: 0, Y: 0, Width: 50, Height: 50},
		model.Rectangle{Label: "B", X: 56, Y: 0, Width: 50, Height: 50},
		model.Rectangle{Label: "C", X: 0, Y: 60, Width: 50, Height: 50},
	)
	if conflicts := CheckClearance(result, 6); len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", conflicts)
	}
}

func TestCheckClearance_DiagonalGap(t *testing.T) {
	// Corners 3 apart on each axis: diagonal distance ~4.24.
	result := clearanceResult(
		model.Rectangle{Label: "A", X: 0, Y: 0, Width: 10, Height: 10},
		model.Rectangle{Label: "B", X: 13, Y: 13, Width: 10, Height: 10},
	)
	if conflicts := CheckClearance(result, 4); len(conflicts) != 0 {
		t.Errorf("expected no conflict for a 4 tool, got %+v", conflicts)
	}
	if conflicts := CheckClearance(result, 5); len(conflicts) != 1 {
		t.Errorf("expected a conflict for a 5 tool, got %+v", conflicts)
	}
}

func TestFormatConflictWarnings(t *testing.T) {
	warnings := FormatConflictWarnings([]Conflict{{BinIndex: 1, A: "Shelf", B: "Door", Gap: 2}})
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	for _, want := range []string{"Bin 2", `"Shelf"`, `"Door"`, "2.0"} {
		if !strings.Contains(warnings[0], want) {
			t.Errorf("warning %q missing %q", warnings[0], want)
		}
	}
}
