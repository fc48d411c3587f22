package renderer

import "errors"

var (
	ErrInvalidSampleCount = errors.New("samples per pixel must be at least 1")
	ErrInvalidDimensions  = errors.New("image width and height must be at least 2")
	ErrInvalidWorkers     = errors.New("worker count must not be negative")
	ErrInvalidRowsPerTask = errors.New("rows per task must be at least 1")
)
