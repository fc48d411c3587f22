package scene

import (
	"math"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// groundCenter and groundRadius describe the large sphere used as ground
var (
	groundCenter = core.NewVec3(0, -1000.5, -3)
	groundRadius = 1000.0
)

// NewSphereGridScene creates a scene with a grid of small spheres on a large ground sphere
func NewSphereGridScene() *Scene {
	s := NewScene("spheregrid", SamplingConfig{
		Width:           800,
		Height:          450,
		SamplesPerPixel: 50,
	})

	s.AddSphere(groundCenter, groundRadius)

	gridSize := 10

	// Fit the grid into a fixed footprint in front of the camera
	targetWidth := 4.0
	targetDepth := 6.0
	spacingX := targetWidth / float64(gridSize-1)
	spacingZ := targetDepth / float64(gridSize-1)

	// Scale sphere radius based on spacing, but keep reasonable minimum/maximum
	sphereRadius := math.Min(spacingX, spacingZ) * 0.35
	sphereRadius = math.Max(0.02, math.Min(0.35, sphereRadius))

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacingX - targetWidth/2
			z := -1.5 - float64(j)*spacingZ

			// Rest each sphere on the curved ground surface
			y := restingHeight(x, z, sphereRadius)

			s.AddSphere(core.NewVec3(x, y, z), sphereRadius)
		}
	}

	return s
}

// restingHeight returns the center height at which a sphere of the given radius touches the ground sphere
func restingHeight(x, z, radius float64) float64 {
	dx := x - groundCenter.X
	dz := z - groundCenter.Z
	reach := groundRadius + radius
	return groundCenter.Y + math.Sqrt(reach*reach-dx*dx-dz*dz)
}
