package scene

import (
	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// NewDefaultScene creates the classic scene: a small sphere resting on a huge ground sphere
func NewDefaultScene() *Scene {
	s := NewScene("default", SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
	})
	addTwoSpheres(s)
	return s
}

// NewHDScene is the default scene at 1280x720 with fewer samples per pixel
func NewHDScene() *Scene {
	s := NewScene("hd", SamplingConfig{
		Width:           1280,
		Height:          720,
		SamplesPerPixel: 10,
	})
	addTwoSpheres(s)
	return s
}

func addTwoSpheres(s *Scene) {
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100)
}
