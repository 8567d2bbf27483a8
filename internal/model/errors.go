package model

import "errors"

var (
	// ErrInvalidConfig is returned when a bin configuration cannot produce a usable bin.
	ErrInvalidConfig = errors.New("invalid bin configuration")
	// ErrInvalidItem is returned for items with a non-positive size or a misplaced window.
	ErrInvalidItem = errors.New("invalid item")
)
