package core

import (
	"errors"
	"math"
	"testing"
)

func TestRay_At(t *testing.T) {
	r, err := NewRay(NewVec3(1, 2, 3), UnitX)
	if err != nil {
		t.Fatalf("NewRay: %v", err)
	}

	if got := r.At(6.0); got != NewVec3(7, 2, 3) {
		t.Errorf("Expected (7, 2, 3), got %v", got)
	}
	if got := r.At(-1.0); got != NewVec3(0, 2, 3) {
		t.Errorf("Expected (0, 2, 3) for negative t, got %v", got)
	}
}

func TestNewRay_NormalizesDirection(t *testing.T) {
	r, err := NewRay(Zero, NewVec3(0, 3, 4))
	if err != nil {
		t.Fatalf("NewRay: %v", err)
	}

	if math.Abs(r.Direction().Length()-1) > tolerance {
		t.Errorf("Expected unit direction, got length %f", r.Direction().Length())
	}
	if !vecNear(r.Direction(), NewVec3(0, 0.6, 0.8)) {
		t.Errorf("Expected direction (0, 0.6, 0.8), got %v", r.Direction())
	}
}

func TestNewRay_ZeroDirection(t *testing.T) {
	_, err := NewRay(One, Zero)
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}
}

func TestRay_CopyDoesNotAlias(t *testing.T) {
	r, _ := NewRay(Zero, UnitZ)
	c := r
	c.Origin = One

	if r.Origin != Zero {
		t.Errorf("Modifying a copy changed the original origin to %v", r.Origin)
	}
}
