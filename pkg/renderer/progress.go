package renderer

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stderr.
// Stdout is reserved for image data.
type DefaultLogger struct {
	logger *log.Logger
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.logger.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// ProgressReporter prints a scanline countdown, overwriting the line in place.
// A nil reporter prints nothing.
type ProgressReporter struct {
	w     io.Writer
	total int
}

// NewProgressReporter creates a reporter for an image with total rows
func NewProgressReporter(w io.Writer, total int) *ProgressReporter {
	return &ProgressReporter{w: w, total: total}
}

// SetTotal sets the row count once it is known
func (p *ProgressReporter) SetTotal(total int) {
	if p == nil {
		return
	}
	p.total = total
}

// Update reports that remaining rows are still to be produced
func (p *ProgressReporter) Update(remaining int) {
	if p == nil {
		return
	}
	percentDone := 100.0 * float64(p.total-remaining) / float64(p.total)
	fmt.Fprintf(p.w, "\rScanlines remaining: %d (%.1f%%)", remaining, percentDone)
}

// Done prints the final line
func (p *ProgressReporter) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(p.w, "\rScanlines remaining: 0 (%.1f%%)\nDone!\n", 100.0)
}
