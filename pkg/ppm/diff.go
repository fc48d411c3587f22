package ppm

import (
	"fmt"
	"io"
	"math"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

// DiffStats summarizes how much two images differ
type DiffStats struct {
	Pixels          int     // Pixels compared
	DifferingPixels int     // Pixels with any nonzero output channel
	MaxDelta        uint32  // Largest output channel value
	MeanDelta       float64 // Mean normalized channel difference
}

// Diff streams the per-channel absolute difference of two P3 images to out.
// Each image is normalized by its own max value, so images with different
// max values compare by intensity. Nothing is written if the sizes differ.
func Diff(a, b io.Reader, out io.Writer, progress *renderer.ProgressReporter) (DiffStats, error) {
	var stats DiffStats

	da, err := NewDecoder(a)
	if err != nil {
		return stats, fmt.Errorf("first image: %w", err)
	}
	db, err := NewDecoder(b)
	if err != nil {
		return stats, fmt.Errorf("second image: %w", err)
	}

	ha, hb := da.Header(), db.Header()
	if ha.Width != hb.Width || ha.Height != hb.Height {
		return stats, &DimensionMismatchError{
			Width1: ha.Width, Height1: ha.Height,
			Width2: hb.Width, Height2: hb.Height,
		}
	}

	progress.SetTotal(ha.Height)
	pw := NewWriter(out, ha.Width, ha.Height)
	if err := pw.WriteHeader(); err != nil {
		return stats, err
	}

	var deltaSum float64
	for y := ha.Height - 1; y >= 0; y-- {
		progress.Update(y + 1)
		for x := 0; x < ha.Width; x++ {
			ca, err := da.ReadColor()
			if err != nil {
				return stats, fmt.Errorf("first image: %w", err)
			}
			cb, err := db.ReadColor()
			if err != nil {
				return stats, fmt.Errorf("second image: %w", err)
			}

			delta := absDiff(ca, cb)
			r, g, b := renderer.QuantizeColor(delta, renderer.MaxColorValue)
			if err := pw.WritePixel(r, g, b); err != nil {
				return stats, err
			}

			stats.Pixels++
			if r|g|b != 0 {
				stats.DifferingPixels++
			}
			stats.MaxDelta = max(stats.MaxDelta, r, g, b)
			deltaSum += delta.X + delta.Y + delta.Z
		}
	}
	progress.Done()

	if stats.Pixels > 0 {
		stats.MeanDelta = deltaSum / float64(3*stats.Pixels)
	}
	return stats, pw.Flush()
}

func absDiff(a, b core.Color) core.Color {
	return core.NewVec3(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y), math.Abs(a.Z-b.Z))
}
