package engine

import "errors"

var (
	// ErrUnknownHeuristic is returned when a heuristic name is not recognised.
	ErrUnknownHeuristic = errors.New("unknown heuristic")
	// ErrInvalidBinSize is returned when a bin is built with a non-positive size.
	ErrInvalidBinSize = errors.New("invalid bin size")
)
