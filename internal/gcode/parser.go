package gcode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/rectbin/internal/model"
)

// ErrOutOfBounds is returned when a program cuts outside its bin.
var ErrOutOfBounds = errors.New("toolpath leaves the bin")

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed (cutting move in XY plane)
	MovePlunge                  // G1 with Z decreasing: plunging into material
	MoveRetract                 // G0/G1 with Z increasing: retracting from material
)

// Move represents a single parsed movement.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

var coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// Parse reads G0/G1 moves from a program, tracking absolute position and
// the modal feed rate. Other commands and comments are skipped.
func Parse(code string) []Move {
	var moves []Move
	var cur Move

	for _, line := range strings.Split(code, "\n") {
		line, _, _ = strings.Cut(line, ";")
		if open := strings.Index(line, "("); open >= 0 {
			if end := strings.Index(line, ")"); end > open {
				line = line[:open] + line[end+1:]
			}
		}
		fields := strings.Fields(strings.ToUpper(line))
		if len(fields) == 0 {
			continue
		}

		var rapid bool
		switch fields[0] {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		default:
			continue
		}

		next := Move{ToX: cur.ToX, ToY: cur.ToY, ToZ: cur.ToZ, FeedRate: cur.FeedRate}
		for _, m := range coordRe.FindAllStringSubmatch(strings.Join(fields[1:], " "), -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				next.ToX = val
			case "Y":
				next.ToY = val
			case "Z":
				next.ToZ = val
			case "F":
				next.FeedRate = val
			}
		}
		next.FromX, next.FromY, next.FromZ = cur.ToX, cur.ToY, cur.ToZ
		next.Type = classifyMove(rapid, next.FromZ, next.ToZ, next.FromX, next.FromY, next.ToX, next.ToY)

		moves = append(moves, next)
		cur = next
	}
	return moves
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// CutBounds returns the XY extent of all feed moves and the deepest Z
// reached. ok is false when there are no feed moves.
func CutBounds(moves []Move) (minX, minY, maxX, maxY, minZ float64, ok bool) {
	minX, minY, minZ = math.Inf(1), math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, m := range moves {
		minZ = math.Min(minZ, m.ToZ)
		if m.Type != MoveFeed {
			continue
		}
		ok = true
		minX = math.Min(minX, math.Min(m.FromX, m.ToX))
		minY = math.Min(minY, math.Min(m.FromY, m.ToY))
		maxX = math.Max(maxX, math.Max(m.FromX, m.ToX))
		maxY = math.Max(maxY, math.Max(m.FromY, m.ToY))
	}
	return minX, minY, maxX, maxY, minZ, ok
}

// CheckProgram reads a program back and checks that every cutting move stays
// within the bin outline grown by the tool radius.
func CheckProgram(code string, cfg model.BinConfig, toolDiameter float64) error {
	minX, minY, maxX, maxY, _, ok := CutBounds(Parse(code))
	if !ok {
		return nil
	}
	r := toolDiameter / 2
	if minX < -r || minY < -r || maxX > float64(cfg.Width)+r || maxY > float64(cfg.Height)+r {
		return fmt.Errorf("%w: cuts span (%.3f,%.3f)-(%.3f,%.3f) in a %dx%d bin",
			ErrOutOfBounds, minX, minY, maxX, maxY, cfg.Width, cfg.Height)
	}
	return nil
}
