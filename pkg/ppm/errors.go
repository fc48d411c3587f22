package ppm

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic  = errors.New("ppm: not a plain P3 image")
	ErrTruncated = errors.New("ppm: unexpected end of data")
	ErrBadToken  = errors.New("ppm: malformed token")
)

// DimensionMismatchError is returned when two images being compared differ in size
type DimensionMismatchError struct {
	Width1, Height1 int
	Width2, Height2 int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("ppm: image dimensions differ: %dx%d vs %dx%d",
		e.Width1, e.Height1, e.Width2, e.Height2)
}
