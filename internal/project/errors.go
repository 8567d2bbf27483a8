package project

import "errors"

// ErrInvalidJob is returned when a job file is readable JSON but not a job
// this version understands.
var ErrInvalidJob = errors.New("invalid job file")
