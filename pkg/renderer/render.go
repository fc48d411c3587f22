package renderer

import (
	"fmt"
	"time"
)

// RenderConfig contains configuration for a single-shot render
type RenderConfig struct {
	Width       int   // Image width in pixels
	Height      int   // Image height in pixels
	Samples     int   // Samples per pixel
	Workers     int   // Parallel workers (1 = serial streaming, 0 = use CPU count)
	RowsPerTask int   // Rows per worker task
	Seed        int64 // Base seed for jittered sampling
}

// DefaultRenderConfig returns the settings of the default scene
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:       400,
		Height:      225,
		Samples:     100,
		Workers:     1,
		RowsPerTask: 8,
		Seed:        42,
	}
}

// Validate checks that the configuration describes a renderable image
func (c RenderConfig) Validate() error {
	if c.Width < 2 || c.Height < 2 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, c.Width, c.Height)
	}
	if c.Samples < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleCount, c.Samples)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.RowsPerTask < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRowsPerTask, c.RowsPerTask)
	}
	return nil
}

// Renderer produces a complete image of a scene
type Renderer struct {
	raytracer *Raytracer
	config    RenderConfig
	progress  *ProgressReporter
}

// NewRenderer creates a renderer after validating its configuration
func NewRenderer(scene Scene, config RenderConfig) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{
		raytracer: NewRaytracer(scene),
		config:    config,
	}, nil
}

// SetProgress sets the scanline reporter; nil disables progress output
func (r *Renderer) SetProgress(progress *ProgressReporter) {
	r.progress = progress
}

// Config returns the renderer configuration
func (r *Renderer) Config() RenderConfig {
	return r.config
}

// Stream renders on the calling goroutine and hands each row to w as soon as
// it is computed, top row first. Pixel values match Render for the same config.
func (r *Renderer) Stream(w RowWriter) (RenderStats, error) {
	start := time.Now()
	width, height := r.config.Width, r.config.Height

	// Rows land in a scratch framebuffer and are written as soon as they are done
	fb := NewFramebuffer(width, height)
	var stats RenderStats

	for _, block := range NewRowBlocks(height, r.config.RowsPerTask, r.config.Seed) {
		for row := block.Start; row < block.End; row++ {
			y := height - 1 - row
			r.progress.Update(y + 1)

			rowBlock := &RowBlock{ID: block.ID, Start: row, End: row + 1, Random: block.Random}
			part, err := r.raytracer.renderBlock(RowTask{
				TaskID:  block.ID,
				Block:   rowBlock,
				Samples: r.config.Samples,
				Target:  fb,
			})
			if err != nil {
				return stats, fmt.Errorf("render row %d: %w", y, err)
			}
			mergeStats(&stats, part)

			if err := w.WriteRow(fb.Row(y)); err != nil {
				return stats, fmt.Errorf("write row %d: %w", y, err)
			}
		}
	}
	r.progress.Done()

	finalizeStats(&stats)
	stats.Elapsed = time.Since(start)
	return stats, nil
}

// Render computes the whole image with a worker pool and returns it
func (r *Renderer) Render() (*Framebuffer, RenderStats, error) {
	start := time.Now()
	width, height := r.config.Width, r.config.Height
	fb := NewFramebuffer(width, height)
	blocks := NewRowBlocks(height, r.config.RowsPerTask, r.config.Seed)

	pool := NewWorkerPool(r.raytracer, r.config.Workers, len(blocks))
	pool.Start()
	defer pool.Stop()

	for _, block := range blocks {
		pool.SubmitTask(RowTask{
			TaskID:  block.ID,
			Block:   block,
			Samples: r.config.Samples,
			Target:  fb,
		})
	}

	var stats RenderStats
	var firstErr error
	for range blocks {
		result, ok := pool.GetResult()
		if !ok {
			return nil, stats, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("render block %d: %w", result.TaskID, result.Error)
			}
			continue
		}
		mergeStats(&stats, result.Stats)
		r.progress.Update(height - stats.RowsRendered)
	}
	if firstErr != nil {
		return nil, stats, firstErr
	}
	r.progress.Done()

	finalizeStats(&stats)
	stats.Elapsed = time.Since(start)
	return fb, stats, nil
}
