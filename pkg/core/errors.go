package core

import "errors"

var (
	// ErrDegenerateVector is returned when a zero-length (or non-finite) vector
	// is normalized, e.g. a ray built with a zero direction.
	ErrDegenerateVector = errors.New("degenerate vector: cannot normalize zero-length vector")
)
