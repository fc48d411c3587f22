package scene

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/df07/go-ppm-raytracer/pkg/loaders"
)

const maxPBRTResolution = 8192

// NewPBRTScene creates a scene from a PBRT file
func NewPBRTScene(path string) (*Scene, error) {
	pbrtScene, err := loaders.LoadPBRT(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load PBRT file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return convertPBRTScene(name, pbrtScene)
}

// NewPBRTSceneFromReader creates a scene from PBRT text
func NewPBRTSceneFromReader(name string, r io.Reader) (*Scene, error) {
	pbrtScene, err := loaders.ParsePBRT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PBRT scene: %w", err)
	}
	return convertPBRTScene(name, pbrtScene)
}

// defaultPBRTSamplingConfig is used for any setting the file leaves out
func defaultPBRTSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
	}
}

func convertPBRTScene(name string, pbrtScene *loaders.PBRTScene) (*Scene, error) {
	config := defaultPBRTSamplingConfig()

	if pbrtScene.Film != nil {
		if width, ok := pbrtScene.Film.GetIntParam("xresolution"); ok {
			if width < 2 || width > maxPBRTResolution {
				return nil, fmt.Errorf("invalid image width %d: must be between 2 and %d", width, maxPBRTResolution)
			}
			config.Width = width
		}
		if height, ok := pbrtScene.Film.GetIntParam("yresolution"); ok {
			if height < 2 || height > maxPBRTResolution {
				return nil, fmt.Errorf("invalid image height %d: must be between 2 and %d", height, maxPBRTResolution)
			}
			config.Height = height
		}
	}

	if pbrtScene.Sampler != nil {
		if samples, ok := pbrtScene.Sampler.GetIntParam("pixelsamples"); ok {
			if samples < 1 {
				return nil, fmt.Errorf("invalid pixel samples %d: must be at least 1", samples)
			}
			config.SamplesPerPixel = samples
		}
	}

	s := NewScene(name, config)
	for _, sphere := range pbrtScene.Spheres {
		s.AddSphere(sphere.Center, sphere.Radius)
	}

	return s, nil
}
