package renderer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/geometry"
)

func smallConfig(samples, workers int) RenderConfig {
	return RenderConfig{
		Width:       20,
		Height:      10,
		Samples:     samples,
		Workers:     workers,
		RowsPerTask: 3,
		Seed:        42,
	}
}

func streamRows(t *testing.T, config RenderConfig) [][]core.Color {
	t.Helper()
	r, err := NewRenderer(newTwoSphereScene(2), config)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	w := &recordingWriter{}
	if _, err := r.Stream(w); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	return w.rows
}

func renderRows(t *testing.T, config RenderConfig) [][]core.Color {
	t.Helper()
	r, err := NewRenderer(newTwoSphereScene(2), config)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	fb, _, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	w := &recordingWriter{}
	if err := fb.WriteRows(w, nil); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	return w.rows
}

func compareRows(t *testing.T, a, b [][]core.Color) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("Row count mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		for x := range a[i] {
			if a[i][x] != b[i][x] {
				t.Fatalf("Pixel mismatch at row %d, x %d: %v vs %v", i, x, a[i][x], b[i][x])
			}
		}
	}
}

func TestRenderer_SingleSampleDeterministic(t *testing.T) {
	first := streamRows(t, smallConfig(1, 1))
	second := streamRows(t, smallConfig(1, 1))
	compareRows(t, first, second)

	if len(first) != 10 || len(first[0]) != 20 {
		t.Fatalf("Expected 10 rows of 20 pixels, got %d rows", len(first))
	}
}

func TestRenderer_SerialMatchesParallel(t *testing.T) {
	for _, samples := range []int{1, 4} {
		serial := streamRows(t, smallConfig(samples, 1))
		for _, workers := range []int{1, 2, 5, 0} {
			parallel := renderRows(t, smallConfig(samples, workers))
			compareRows(t, serial, parallel)
		}
	}
}

func TestRenderer_PixelMatchesRegionColor(t *testing.T) {
	config := smallConfig(1, 1)
	rows := streamRows(t, config)
	rt := NewRaytracer(newTwoSphereScene(2))

	// Output row 0 is y = height-1
	for _, p := range [][2]int{{0, 0}, {19, 9}, {10, 5}, {3, 7}} {
		x, y := p[0], p[1]
		expected, err := rt.PixelColor(x, y, config.Width, config.Height, 1, nil)
		if err != nil {
			t.Fatalf("PixelColor: %v", err)
		}
		if got := rows[config.Height-1-y][x]; got != expected {
			t.Errorf("Pixel (%d, %d): expected %v, got %v", x, y, expected, got)
		}
	}
}

func TestRenderer_ImageContent(t *testing.T) {
	rows := streamRows(t, smallConfig(1, 1))

	// Top row sees sky, bottom row sees the ground sphere
	top := rows[0][10]
	bottom := rows[9][10]
	if math.Abs(top.Z-1) > tolerance || top.X >= 1 {
		t.Errorf("Expected sky blue at top, got %v", top)
	}
	if bottom.Y <= 0.5 {
		t.Errorf("Expected upward-facing ground normal color at bottom, got %v", bottom)
	}
}

func TestRenderer_Stats(t *testing.T) {
	r, err := NewRenderer(newTwoSphereScene(2), smallConfig(3, 2))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	_, stats, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if stats.TotalPixels != 200 {
		t.Errorf("Expected 200 pixels, got %d", stats.TotalPixels)
	}
	if stats.TotalSamples != 600 || stats.AverageSamples != 3 {
		t.Errorf("Expected 600 samples averaging 3, got %d averaging %f", stats.TotalSamples, stats.AverageSamples)
	}
	if stats.RowsRendered != 10 {
		t.Errorf("Expected 10 rows, got %d", stats.RowsRendered)
	}
}

// degenerateShape fails every intersection test
type degenerateShape struct{}

func (degenerateShape) Hit(ray core.Ray, tMin, tMax float64) (*geometry.HitRecord, error) {
	return nil, fmt.Errorf("test shape: %w", core.ErrDegenerateVector)
}

func TestRenderer_ErrorAbortsRender(t *testing.T) {
	scene := &testScene{
		camera:      NewCamera(2),
		world:       geometry.NewHittableList(degenerateShape{}),
		topColor:    DefaultTopColor,
		bottomColor: DefaultBottomColor,
	}

	r, err := NewRenderer(scene, smallConfig(1, 2))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	_, _, err = r.Render()
	if !errors.Is(err, core.ErrDegenerateVector) {
		t.Errorf("Render: expected ErrDegenerateVector, got %v", err)
	}

	w := &recordingWriter{}
	_, err = r.Stream(w)
	if !errors.Is(err, core.ErrDegenerateVector) {
		t.Errorf("Stream: expected ErrDegenerateVector, got %v", err)
	}
	if len(w.rows) != 0 {
		t.Errorf("Expected no rows written before the failure, got %d", len(w.rows))
	}
}

func TestRenderConfig_Validate(t *testing.T) {
	valid := DefaultRenderConfig()

	tests := []struct {
		name     string
		modify   func(c *RenderConfig)
		expected error
	}{
		{"default is valid", func(c *RenderConfig) {}, nil},
		{"width one", func(c *RenderConfig) { c.Width = 1 }, ErrInvalidDimensions},
		{"height zero", func(c *RenderConfig) { c.Height = 0 }, ErrInvalidDimensions},
		{"zero samples", func(c *RenderConfig) { c.Samples = 0 }, ErrInvalidSampleCount},
		{"negative workers", func(c *RenderConfig) { c.Workers = -1 }, ErrInvalidWorkers},
		{"zero rows per task", func(c *RenderConfig) { c.RowsPerTask = 0 }, ErrInvalidRowsPerTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			err := c.Validate()
			if tt.expected == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.expected != nil && !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}

	if _, err := NewRenderer(newTwoSphereScene(1), RenderConfig{}); err == nil {
		t.Error("Expected NewRenderer to reject a zero config")
	}
}
