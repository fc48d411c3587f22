package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
	}
}

// Hit tests if a ray intersects with the sphere
func (s Sphere) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, error) {
	d := ray.Direction()
	toCenter := s.Center.Subtract(ray.Origin)

	// |t*d - toCenter|^2 = r^2 with |d| = 1, so a = 1 and b is even
	halfB := d.Dot(toCenter.Negate())
	c := toCenter.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - c
	if discriminant < 0 {
		return nil, nil
	}
	sqrtD := math.Sqrt(discriminant)

	// The nearer root is tried first
	for _, root := range [2]float64{-halfB - sqrtD, -halfB + sqrtD} {
		if root < tMin || root >= tMax {
			continue
		}
		point := ray.At(root)
		outwardNormal, err := point.Subtract(s.Center).Normalize()
		if err != nil {
			return nil, fmt.Errorf("sphere at %v radius %g: %w", s.Center, s.Radius, err)
		}
		return NewHitRecord(ray, point, outwardNormal, root), nil
	}

	return nil, nil
}
