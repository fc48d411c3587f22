package renderer

import (
	"time"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per pixel
	MaxSamples     int           // Maximum samples allowed per pixel
	MinSamples     int           // Minimum samples taken per pixel
	MaxSamplesUsed int           // Maximum samples actually used by any pixel
	RowsRendered   int           // Number of image rows completed
	Elapsed        time.Duration // Wall time spent rendering
}

// mergeStats folds the stats of one task into a running total
func mergeStats(total *RenderStats, part RenderStats) {
	if total.TotalPixels == 0 {
		total.MinSamples = part.MinSamples
	} else {
		total.MinSamples = min(total.MinSamples, part.MinSamples)
	}
	total.TotalPixels += part.TotalPixels
	total.TotalSamples += part.TotalSamples
	total.MaxSamples = max(total.MaxSamples, part.MaxSamples)
	total.MaxSamplesUsed = max(total.MaxSamplesUsed, part.MaxSamplesUsed)
	total.RowsRendered += part.RowsRendered
}

// finalizeStats calculates derived statistics after all pixels are rendered
func finalizeStats(stats *RenderStats) {
	if stats.TotalPixels == 0 {
		stats.AverageSamples = 0
		return
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
}

// PixelStats accumulates color samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// AddSamples adds the mean of count samples, weighting it by count
func (ps *PixelStats) AddSamples(mean core.Vec3, count int) {
	if count <= 0 {
		return
	}
	ps.ColorAccum = ps.ColorAccum.Add(mean.Multiply(float64(count)))
	ps.SampleCount += count
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
