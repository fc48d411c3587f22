package scene

import (
	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/geometry"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *renderer.Camera
	World          *geometry.HittableList // Objects in the scene
	TopColor       core.Vec3              // Sky color straight up
	BottomColor    core.Vec3              // Sky color straight down
	SamplingConfig SamplingConfig
}

// SamplingConfig contains the scene's preferred image settings
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
}

// NewScene creates an empty scene with the default sky and a camera matching the image aspect
func NewScene(name string, config SamplingConfig) *Scene {
	return &Scene{
		Name:           name,
		Camera:         renderer.NewCamera(aspectRatio(config.Width, config.Height)),
		World:          geometry.NewHittableList(),
		TopColor:       renderer.DefaultTopColor,
		BottomColor:    renderer.DefaultBottomColor,
		SamplingConfig: config,
	}
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera { return s.Camera }

// GetWorld returns the composite of every object in the scene
func (s *Scene) GetWorld() geometry.Shape { return s.World }

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64) {
	s.World.Add(geometry.NewSphere(center, radius))
}

// SetBackground overrides the sky gradient
func (s *Scene) SetBackground(topColor, bottomColor core.Vec3) {
	s.TopColor = topColor
	s.BottomColor = bottomColor
}

// Resize changes the image size and rebuilds the camera for the new aspect ratio
func (s *Scene) Resize(width, height int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = height
	s.Camera = renderer.NewCamera(aspectRatio(width, height))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return countPrimitives(s.World)
}

// countPrimitives counts primitives in a shape, descending into nested lists
func countPrimitives(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.HittableList:
		count := 0
		for _, child := range obj.Shapes() {
			count += countPrimitives(child)
		}
		return count
	default:
		return 1
	}
}

func aspectRatio(width, height int) float64 {
	if height <= 0 {
		return 1
	}
	return float64(width) / float64(height)
}
