package ppm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

// Writer emits a plain-text P3 image one pixel per line.
// The header is written before the first pixel.
type Writer struct {
	w             *bufio.Writer
	width, height int
	maxValue      uint32
	headerWritten bool
	pixels        int
}

// NewWriter creates a writer for a width x height image with channel maximum 255
func NewWriter(w io.Writer, width, height int) *Writer {
	return &Writer{
		w:        bufio.NewWriter(w),
		width:    width,
		height:   height,
		maxValue: renderer.MaxColorValue,
	}
}

// WriteHeader writes the P3 header if it has not been written yet
func (pw *Writer) WriteHeader() error {
	if pw.headerWritten {
		return nil
	}
	pw.headerWritten = true
	_, err := fmt.Fprintf(pw.w, "P3\n%d %d\n%d\n", pw.width, pw.height, pw.maxValue)
	return err
}

// WritePixel writes one pixel of already quantized channels
func (pw *Writer) WritePixel(r, g, b uint32) error {
	if err := pw.WriteHeader(); err != nil {
		return err
	}
	if pw.pixels >= pw.width*pw.height {
		return fmt.Errorf("ppm: pixel %d exceeds %dx%d image", pw.pixels+1, pw.width, pw.height)
	}
	pw.pixels++
	_, err := fmt.Fprintf(pw.w, "%d %d %d\n", r, g, b)
	return err
}

// WriteColor quantizes a linear color and writes it
func (pw *Writer) WriteColor(c core.Color) error {
	r, g, b := renderer.QuantizeColor(c, pw.maxValue)
	return pw.WritePixel(r, g, b)
}

// WriteRow writes a row of linear colors. It implements renderer.RowWriter.
func (pw *Writer) WriteRow(row []core.Color) error {
	for _, c := range row {
		if err := pw.WriteColor(c); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered data to the underlying writer
func (pw *Writer) Flush() error {
	if err := pw.WriteHeader(); err != nil {
		return err
	}
	return pw.w.Flush()
}

// Encode writes a whole framebuffer as a P3 image, top row first
func Encode(w io.Writer, fb *renderer.Framebuffer, progress *renderer.ProgressReporter) error {
	pw := NewWriter(w, fb.Width(), fb.Height())
	if err := pw.WriteHeader(); err != nil {
		return err
	}
	if err := fb.WriteRows(pw, progress); err != nil {
		return err
	}
	return pw.Flush()
}
