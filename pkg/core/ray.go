package core

import "fmt"

// Ray represents a ray with an origin and a unit-length direction
type Ray struct {
	Origin    Vec3
	direction Vec3
}

// NewRay creates a new ray, normalizing direction
func NewRay(origin, direction Vec3) (Ray, error) {
	unit, err := direction.Normalize()
	if err != nil {
		return Ray{}, fmt.Errorf("ray direction: %w", err)
	}
	return Ray{Origin: origin, direction: unit}, nil
}

// Direction returns the unit direction of the ray
func (r Ray) Direction() Vec3 {
	return r.direction
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.direction.Multiply(t))
}
