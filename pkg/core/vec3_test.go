package core

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func vecNear(a, b Vec3) bool {
	return a.Subtract(b).Length() < tolerance
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(10, 20, 30)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"scale", a.Multiply(2), NewVec3(2, 4, 6)},
		{"divide", NewVec3(2, 4, 6).Divide(2), a},
		{"add", a.Add(b), NewVec3(11, 22, 33)},
		{"subtract", b.Subtract(a), NewVec3(9, 18, 27)},
		{"componentwise multiply", b.MultiplyVec(a), NewVec3(10, 40, 90)},
		{"splat", Splat(0.5), NewVec3(0.5, 0.5, 0.5)},
		{"lerp start", Zero.Lerp(One, 0), Zero},
		{"lerp end", Zero.Lerp(One, 1), One},
		{"clamp", NewVec3(-0.5, 0.5, 1.5).Clamp(0, 1), NewVec3(0, 0.5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestVec3_CompoundAssign(t *testing.T) {
	v := NewVec3(1, 2, 3)
	v.AddAssign(NewVec3(1, 1, 1))
	v.MultiplyAssign(2)
	v.SubtractAssign(NewVec3(2, 2, 2))
	v.DivideAssign(2)

	if expected := NewVec3(1, 2, 3); v != expected {
		t.Errorf("Expected %v, got %v", expected, v)
	}
}

func TestVec3_Length(t *testing.T) {
	a := NewVec3(1, 2, 3)
	if a.LengthSquared() != 14 {
		t.Errorf("Expected squared length 14, got %f", a.LengthSquared())
	}
	if a.Length() != math.Sqrt(14) {
		t.Errorf("Expected length sqrt(14), got %f", a.Length())
	}
}

func TestVec3_Normalize(t *testing.T) {
	vectors := []Vec3{
		NewVec3(1, 2, 3),
		NewVec3(-4, 0.001, 7),
		NewVec3(1e-8, 0, 0),
		NewVec3(1e8, -1e8, 3),
		UnitY,
	}

	for _, v := range vectors {
		n, err := v.Normalize()
		if err != nil {
			t.Fatalf("Unexpected error normalizing %v: %v", v, err)
		}
		if math.Abs(n.LengthSquared()-1) >= tolerance {
			t.Errorf("Normalized %v has squared length %f, expected 1", v, n.LengthSquared())
		}
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	_, err := Zero.Normalize()
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector, got %v", err)
	}

	_, err = NewVec3(math.NaN(), 0, 0).Normalize()
	if !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("Expected ErrDegenerateVector for NaN vector, got %v", err)
	}
}

func TestVec3_Dot(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(10, 20, 30)
	if a.Dot(b) != 140 {
		t.Errorf("Expected 140, got %f", a.Dot(b))
	}
	if a.Dot(Zero) != 0 {
		t.Errorf("Expected 0, got %f", a.Dot(Zero))
	}
}

func TestVec3_DotBilinear(t *testing.T) {
	a := NewVec3(0.3, -1.2, 4.5)
	b := NewVec3(2.2, 0.7, -3.1)
	c := NewVec3(-0.9, 5.5, 1.25)

	lhs := a.Add(b).Dot(c)
	rhs := a.Dot(c) + b.Dot(c)
	if math.Abs(lhs-rhs) > tolerance {
		t.Errorf("dot(a+b, c) = %f, dot(a,c)+dot(b,c) = %f", lhs, rhs)
	}
}

func TestVec3_Cross(t *testing.T) {
	if got := UnitX.Cross(UnitY); got != UnitZ {
		t.Errorf("X x Y: expected %v, got %v", UnitZ, got)
	}
	if got := UnitY.Cross(UnitZ); got != UnitX {
		t.Errorf("Y x Z: expected %v, got %v", UnitX, got)
	}
	if got := Zero.Cross(UnitY); got != Zero {
		t.Errorf("0 x Y: expected %v, got %v", Zero, got)
	}

	a := NewVec3(1, 2, 3)
	b := NewVec3(-2, 0.5, 4)
	cross := a.Cross(b)
	if math.Abs(cross.Dot(a)) > tolerance || math.Abs(cross.Dot(b)) > tolerance {
		t.Errorf("Cross product %v is not orthogonal to its inputs", cross)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("Expected finite vector")
	}
	if NewVec3(1, math.Inf(1), 3).IsFinite() {
		t.Error("Expected infinite component to be reported")
	}
}
