package renderer

import (
	"fmt"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// Camera generates rays for rendering
type Camera struct {
	origin             core.Vec3
	centerRayEnd       core.Vec3
	topRightFromCenter core.Vec3
	aspectRatio        float64
}

// NewCamera creates a pinhole camera at the origin looking down -Z
func NewCamera(aspectRatio float64) *Camera {
	viewportHeight := 2.0
	viewportWidth := aspectRatio * viewportHeight
	focalLength := 1.0

	return &Camera{
		origin:             core.Zero,
		centerRayEnd:       core.NewVec3(0, 0, -focalLength),
		topRightFromCenter: core.NewVec3(viewportWidth/2, viewportHeight/2, 0),
		aspectRatio:        aspectRatio,
	}
}

// AspectRatio returns the viewport width divided by its height
func (c *Camera) AspectRatio() float64 {
	return c.aspectRatio
}

// GetRay generates a ray for viewport coordinates (u, v) where -1 <= u,v <= 1
func (c *Camera) GetRay(u, v float64) (core.Ray, error) {
	uv := core.NewVec3(u, v, 0)
	direction := c.centerRayEnd.
		Add(uv.MultiplyVec(c.topRightFromCenter)).
		Subtract(c.origin)

	ray, err := core.NewRay(c.origin, direction)
	if err != nil {
		return core.Ray{}, fmt.Errorf("camera ray at (%g, %g): %w", u, v, err)
	}
	return ray, nil
}
