package renderer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/geometry"
)

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
}

var (
	// DefaultTopColor is the sky color straight up
	DefaultTopColor = core.NewVec3(0.5, 0.7, 1.0)
	// DefaultBottomColor is the sky color straight down
	DefaultBottomColor = core.One
)

// Raytracer computes colors for rays, viewport points and pixel regions
type Raytracer struct {
	camera      *Camera
	world       geometry.Shape
	topColor    core.Vec3
	bottomColor core.Vec3
}

// NewRaytracer creates a new raytracer
func NewRaytracer(scene Scene) *Raytracer {
	topColor, bottomColor := scene.GetBackgroundColors()
	return &Raytracer{
		camera:      scene.GetCamera(),
		world:       scene.GetWorld(),
		topColor:    topColor,
		bottomColor: bottomColor,
	}
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	// Map y from [-1,1] to [0,1]
	t := 0.5 * (r.Direction().Y + 1.0)
	return rt.bottomColor.Multiply(1.0 - t).Add(rt.topColor.Multiply(t))
}

// RayColor shades a ray: hits show their normal, misses show the sky gradient
func (rt *Raytracer) RayColor(r core.Ray) (core.Vec3, error) {
	hit, err := rt.world.Hit(r, 0, math.Inf(1))
	if err != nil {
		return core.Vec3{}, err
	}
	if hit == nil {
		return rt.backgroundGradient(r), nil
	}
	return hit.Normal.Add(core.One).Divide(2), nil
}

// UVColor returns the color seen through viewport point (u, v)
func (rt *Raytracer) UVColor(u, v float64) (core.Vec3, error) {
	ray, err := rt.camera.GetRay(u, v)
	if err != nil {
		return core.Vec3{}, err
	}
	return rt.RayColor(ray)
}

// CenterRegion samples the center of the region with lower-left corner (u, v)
func (rt *Raytracer) CenterRegion(u, v, width, height float64) (core.Vec3, error) {
	return rt.UVColor(u+width/2, v+height/2)
}

// SampleRegion samples a uniformly random point inside the region
func (rt *Raytracer) SampleRegion(u, v, width, height float64, random *rand.Rand) (core.Vec3, error) {
	du := width * random.Float64()
	dv := height * random.Float64()
	return rt.UVColor(u+du, v+dv)
}

// JitteredColor averages samples random points inside the region
func (rt *Raytracer) JitteredColor(u, v, width, height float64, samples int, random *rand.Rand) (core.Vec3, error) {
	if samples < 1 {
		return core.Vec3{}, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, samples)
	}

	colorAccum := core.Vec3{}
	for sample := 0; sample < samples; sample++ {
		c, err := rt.SampleRegion(u, v, width, height, random)
		if err != nil {
			return core.Vec3{}, err
		}
		colorAccum.AddAssign(c)
	}
	return colorAccum.Divide(float64(samples)), nil
}

// RegionColor returns the color of a pixel region. A single sample is taken
// at the region center and is deterministic; more samples are jittered.
func (rt *Raytracer) RegionColor(u, v, width, height float64, samples int, random *rand.Rand) (core.Vec3, error) {
	if samples == 1 {
		return rt.CenterRegion(u, v, width, height)
	}
	return rt.JitteredColor(u, v, width, height, samples, random)
}

// PixelColor returns the color of pixel (x, y) in a width x height image
func (rt *Raytracer) PixelColor(x, y, width, height, samples int, random *rand.Rand) (core.Vec3, error) {
	u, v := core.GetUV(float64(x), float64(y), width, height)
	pixelWidth, pixelHeight := PixelExtent(width, height)
	return rt.RegionColor(u, v, pixelWidth, pixelHeight, samples, random)
}

// PixelExtent returns the viewport size of one pixel region
func PixelExtent(width, height int) (float64, float64) {
	return 2.0 / float64(width), 2.0 / float64(height)
}
