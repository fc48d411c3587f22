package renderer

import (
	"testing"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// recordingWriter keeps copies of every row it receives
type recordingWriter struct {
	rows [][]core.Color
}

func (w *recordingWriter) WriteRow(row []core.Color) error {
	w.rows = append(w.rows, append([]core.Color(nil), row...))
	return nil
}

func TestFramebuffer_Indexing(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			fb.Set(x, y, core.NewVec3(float64(x), float64(y), 0))
		}
	}

	// Non-square dimensions catch swapped index math
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if got := fb.At(x, y); got != core.NewVec3(float64(x), float64(y), 0) {
				t.Errorf("At(%d, %d) = %v", x, y, got)
			}
		}
	}
	if row := fb.Row(1); len(row) != 3 || row[2] != core.NewVec3(2, 1, 0) {
		t.Errorf("Unexpected row 1: %v", row)
	}
}

func TestFramebuffer_WriteRowsTopFirst(t *testing.T) {
	fb := NewFramebuffer(2, 3)
	for y := 0; y < 3; y++ {
		fb.Set(0, y, core.Splat(float64(y)))
	}

	w := &recordingWriter{}
	if err := fb.WriteRows(w, nil); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}

	if len(w.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(w.rows))
	}
	for i, expectedY := range []int{2, 1, 0} {
		if w.rows[i][0] != core.Splat(float64(expectedY)) {
			t.Errorf("Row %d: expected y=%d, got %v", i, expectedY, w.rows[i][0])
		}
	}
}

func TestFramebuffer_ToImageFlipsRows(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 1, core.NewVec3(1, 0, 0)) // Top-left in image space
	fb.Set(1, 0, core.NewVec3(0, 0, 1)) // Bottom-right in image space

	img := fb.ToImage()
	if r, _, _, _ := img.At(0, 0).RGBA(); r>>8 != 255 {
		t.Errorf("Expected red at image (0,0), got %v", img.At(0, 0))
	}
	if _, _, b, _ := img.At(1, 1).RGBA(); b>>8 != 255 {
		t.Errorf("Expected blue at image (1,1), got %v", img.At(1, 1))
	}
}
