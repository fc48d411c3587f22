package renderer

import (
	"image"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// RowWriter consumes image rows top to bottom
type RowWriter interface {
	WriteRow(row []core.Color) error
}

// Framebuffer holds linear colors for every pixel.
// Pixel (x, y) lives at index y*width + x, with y = 0 at the bottom of the image.
type Framebuffer struct {
	width, height int
	pixels        []core.Color
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		width:  width,
		height: height,
		pixels: make([]core.Color, width*height),
	}
}

// Width returns the framebuffer width in pixels
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels
func (fb *Framebuffer) Height() int { return fb.height }

// At returns the color of pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Color {
	return fb.pixels[y*fb.width+x]
}

// Set stores the color of pixel (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Color) {
	fb.pixels[y*fb.width+x] = c
}

// Row returns the pixels of row y. The slice aliases the framebuffer.
func (fb *Framebuffer) Row(y int) []core.Color {
	return fb.pixels[y*fb.width : (y+1)*fb.width]
}

// WriteRows sends every row to w in raster order, from y = height-1 down to 0
func (fb *Framebuffer) WriteRows(w RowWriter, progress *ProgressReporter) error {
	for y := fb.height - 1; y >= 0; y-- {
		progress.Update(y + 1)
		if err := w.WriteRow(fb.Row(y)); err != nil {
			return err
		}
	}
	progress.Done()
	return nil
}

// ToImage converts the framebuffer to an RGBA image with the top row first
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			img.SetRGBA(x, fb.height-1-y, vec3ToColor(fb.At(x, y)))
		}
	}
	return img
}
