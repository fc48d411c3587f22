package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	RowsPerTask        int   // Rows per worker task
	InitialSamples     int   // Samples for first pass (1 gives the deterministic center sample)
	MaxSamplesPerPixel int   // Maximum total samples per pixel
	MaxPasses          int   // Maximum number of passes
	NumWorkers         int   // Number of parallel workers (0 = use CPU count)
	Seed               int64 // Base seed for jittered sampling
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		RowsPerTask:        16,
		InitialSamples:     1,
		MaxSamplesPerPixel: 50,
		MaxPasses:          7, // 1, 9, 17, 25, 33, 41, 50
		NumWorkers:         0, // Auto-detect CPU count
		Seed:               42,
	}
}

// ProgressiveRaytracer refines an image over several passes, each adding
// jittered samples to the running per-pixel mean
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	blocks        []*RowBlock  // Row blocks keep their random state across passes
	currentPass   int          // Progressive state
	samplesSoFar  int          // Samples accumulated in every pixel
	pixelStats    []PixelStats // Index y*width + x
	passBuffer    *Framebuffer // Per-pass mean colors written by workers
	workerPool    *WorkerPool  // Worker pool for parallel processing
	poolStarted   bool         // Whether the pool workers are running
	closed        bool         // Set by Close; no further passes
	logger        core.Logger  // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(scene Scene, width, height int, config ProgressiveConfig, logger core.Logger) (*ProgressiveRaytracer, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if config.InitialSamples < 1 || config.MaxSamplesPerPixel < config.InitialSamples {
		return nil, fmt.Errorf("%w: initial %d, max %d", ErrInvalidSampleCount, config.InitialSamples, config.MaxSamplesPerPixel)
	}
	if config.RowsPerTask < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRowsPerTask, config.RowsPerTask)
	}
	if config.MaxPasses < 1 {
		config.MaxPasses = 1
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	blocks := NewRowBlocks(height, config.RowsPerTask, config.Seed)

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		config:     config,
		blocks:     blocks,
		pixelStats: make([]PixelStats, width*height),
		passBuffer: NewFramebuffer(width, height),
		workerPool: NewWorkerPool(NewRaytracer(scene), config.NumWorkers, len(blocks)),
		logger:     logger,
	}, nil
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(passNumber int) (*image.RGBA, RenderStats, error) {
	if pr.closed {
		return nil, RenderStats{}, fmt.Errorf("progressive raytracer is closed")
	}
	pr.currentPass = passNumber
	targetSamples := pr.getSamplesForPass(passNumber)
	newSamples := targetSamples - pr.samplesSoFar

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	if newSamples > 0 {
		if !pr.poolStarted {
			pr.workerPool.Start()
			pr.poolStarted = true
		}

		for _, block := range pr.blocks {
			pr.workerPool.SubmitTask(RowTask{
				TaskID:   block.ID,
				Block:    block,
				Samples:  newSamples,
				Jittered: pr.samplesSoFar > 0, // The first pass may take the center sample
				Target:   pr.passBuffer,
			})
		}

		var firstErr error
		for range pr.blocks {
			result, ok := pr.workerPool.GetResult()
			if !ok {
				return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
			}
			if result.Error != nil && firstErr == nil {
				firstErr = fmt.Errorf("pass %d block %d: %w", passNumber, result.TaskID, result.Error)
			}
		}
		if firstErr != nil {
			return nil, RenderStats{}, firstErr
		}

		for i := range pr.pixelStats {
			pr.pixelStats[i].AddSamples(pr.passBuffer.pixels[i], newSamples)
		}
		pr.samplesSoFar = targetSamples
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// Framebuffer returns the current per-pixel mean colors
func (pr *ProgressiveRaytracer) Framebuffer() *Framebuffer {
	fb := NewFramebuffer(pr.width, pr.height)
	for i := range pr.pixelStats {
		fb.pixels[i] = pr.pixelStats[i].GetColor()
	}
	return fb
}

// Close stops the worker pool. It is safe to call more than once.
func (pr *ProgressiveRaytracer) Close() {
	if pr.closed {
		return
	}
	pr.closed = true
	if pr.poolStarted {
		pr.workerPool.Stop()
	}
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive renders passes in the background and streams each result.
// Cancellation is checked between passes. Both channels are closed when rendering ends.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.Close()

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			// Check if client disconnected before starting this pass
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			startTime := time.Now()
			img, stats, err := pr.RenderPass(pass)
			if err != nil {
				errChan <- err
				return
			}
			stats.Elapsed = time.Since(startTime)

			pr.logger.Printf("Pass %d completed in %v (%d samples/pixel)\n",
				pass, stats.Elapsed, pr.samplesSoFar)

			isLast := pass == pr.config.MaxPasses || pr.samplesSoFar >= pr.config.MaxSamplesPerPixel
			select {
			case passChan <- PassResult{PassNumber: pass, Image: img, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				return
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, errChan
}

// assembleCurrentImage creates an image from the accumulated pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, pr.width, pr.height))

	stats := RenderStats{
		TotalPixels:  pr.width * pr.height,
		MaxSamples:   targetSamples,
		MinSamples:   pr.config.MaxSamplesPerPixel, // Start high, will be reduced
		RowsRendered: pr.height,
	}

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y*pr.width+x]

			// Image rows run top to bottom
			img.SetRGBA(x, pr.height-1-y, vec3ToColor(pixel.GetColor()))

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
		}
	}

	finalizeStats(&stats)
	return img, stats
}
