package geometry

import (
	"math"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// HittableList is a composite shape that owns an ordered list of shapes
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	l := &HittableList{}
	for _, shape := range shapes {
		l.Add(shape)
	}
	return l
}

// Add appends a shape to the list
func (l *HittableList) Add(shape Shape) {
	l.shapes = append(l.shapes, shape)
}

// Clear removes every shape
func (l *HittableList) Clear() {
	l.shapes = nil
}

// Len returns the number of shapes in the list
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Shapes returns a copy of the shape list
func (l *HittableList) Shapes() []Shape {
	return append([]Shape(nil), l.shapes...)
}

// Hit returns the nearest hit among all shapes.
// When two shapes report the same t, which one is returned is not guaranteed.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, error) {
	var closest *HitRecord

	for _, shape := range l.shapes {
		hit, err := shape.Hit(ray, tMin, tMax)
		if err != nil {
			return nil, err
		}
		if hit == nil || math.IsNaN(hit.T) || math.IsInf(hit.T, 0) {
			continue
		}
		if closest == nil || hit.T < closest.T {
			closest = hit
		}
	}

	return closest, nil
}
