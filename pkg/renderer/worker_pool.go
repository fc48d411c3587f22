package renderer

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// RowBlock is a run of consecutive output rows rendered as one task.
// Output row 0 is the top of the image (y = height-1).
type RowBlock struct {
	ID     int
	Start  int        // First output row (inclusive)
	End    int        // Last output row (exclusive)
	Random *rand.Rand // Block-specific random generator for deterministic results
}

// NewRowBlocks splits height output rows into blocks of at most rowsPerTask rows.
// Block i is seeded with seed+i.
func NewRowBlocks(height, rowsPerTask int, seed int64) []*RowBlock {
	var blocks []*RowBlock
	for start, id := 0, 0; start < height; start, id = start+rowsPerTask, id+1 {
		blocks = append(blocks, &RowBlock{
			ID:     id,
			Start:  start,
			End:    min(start+rowsPerTask, height),
			Random: rand.New(rand.NewSource(seed + int64(id))),
		})
	}
	return blocks
}

// Rows returns the number of rows in the block
func (b *RowBlock) Rows() int {
	return b.End - b.Start
}

// RowTask represents a row block rendering task for the worker pool
type RowTask struct {
	TaskID   int
	Block    *RowBlock
	Samples  int          // Samples per pixel for this task
	Jittered bool         // Always sample randomly, even for a single sample
	Target   *Framebuffer // Shared framebuffer; each task writes only its own rows
}

// RowResult contains the result from rendering a row block
type RowResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages parallel row rendering
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual row block tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize should be at least the number of tasks submitted before results are read.
func NewWorkerPool(raytracer *Raytracer, numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, queueSize),
		resultQueue: make(chan RowResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			raytracer:   raytracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a row task to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed task result
func (wp *WorkerPool) GetResult() (RowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats, err := w.raytracer.renderBlock(task)
		w.resultQueue <- RowResult{
			TaskID: task.TaskID,
			Stats:  stats,
			Error:  err,
		}
	}
}

// renderBlock renders every pixel of a row block into the task's framebuffer.
// Rows are visited top to bottom and pixels left to right, so the block's
// random sequence is the same whichever goroutine runs it.
func (rt *Raytracer) renderBlock(task RowTask) (RenderStats, error) {
	fb := task.Target
	width, height := fb.Width(), fb.Height()
	pixelWidth, pixelHeight := PixelExtent(width, height)
	stats := RenderStats{
		TotalPixels:    width * task.Block.Rows(),
		MaxSamples:     task.Samples,
		MinSamples:     task.Samples,
		MaxSamplesUsed: task.Samples,
		RowsRendered:   task.Block.Rows(),
	}

	for row := task.Block.Start; row < task.Block.End; row++ {
		y := height - 1 - row
		for x := 0; x < width; x++ {
			u, v := core.GetUV(float64(x), float64(y), width, height)

			c, err := rt.blockPixelColor(task, u, v, pixelWidth, pixelHeight)
			if err != nil {
				return stats, err
			}
			fb.Set(x, y, c)
			stats.TotalSamples += task.Samples
		}
	}

	finalizeStats(&stats)
	return stats, nil
}

func (rt *Raytracer) blockPixelColor(task RowTask, u, v, pixelWidth, pixelHeight float64) (core.Vec3, error) {
	if task.Jittered {
		return rt.JitteredColor(u, v, pixelWidth, pixelHeight, task.Samples, task.Block.Random)
	}
	return rt.RegionColor(u, v, pixelWidth, pixelHeight, task.Samples, task.Block.Random)
}
