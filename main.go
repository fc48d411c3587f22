package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-ppm-raytracer/pkg/config"
	"github.com/df07/go-ppm-raytracer/pkg/core"
	"github.com/df07/go-ppm-raytracer/pkg/export"
	"github.com/df07/go-ppm-raytracer/pkg/ppm"
	"github.com/df07/go-ppm-raytracer/pkg/renderer"
	"github.com/df07/go-ppm-raytracer/pkg/scene"
)

const ppmContentType = "image/x-portable-pixmap"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run renders one image according to args; image data goes to stdout, everything else to stderr
func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.RegisterFlags(fs)
	listScenes := fs.Bool("list-scenes", false, "List available scenes and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "PPM Raytracer")
		fmt.Fprintln(stderr, "Usage: raytracer [options] > image.ppm")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *listScenes {
		return printScenes(stdout)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	selectedScene, err := createScene(cfg)
	if err != nil {
		return err
	}

	renderConfig := renderer.RenderConfig{
		Width:       selectedScene.SamplingConfig.Width,
		Height:      selectedScene.SamplingConfig.Height,
		Samples:     selectedScene.SamplingConfig.SamplesPerPixel,
		Workers:     cfg.Workers,
		RowsPerTask: cfg.RowsPerTask,
		Seed:        cfg.Seed,
	}

	r, err := renderer.NewRenderer(selectedScene, renderConfig)
	if err != nil {
		return err
	}
	if !cfg.Quiet {
		r.SetProgress(renderer.NewProgressReporter(stderr, renderConfig.Height))
		fmt.Fprintf(stderr, "Rendering %s at %dx%d, %d samples per pixel\n",
			selectedScene.Name, renderConfig.Width, renderConfig.Height, renderConfig.Samples)
	}

	startTime := time.Now()
	fb, stats, err := renderOutput(r, cfg, stdout)
	if err != nil {
		return err
	}
	renderTime := time.Since(startTime)

	if !cfg.Quiet {
		fmt.Fprintf(stderr, "Render completed in %v\n", renderTime)
		fmt.Fprintf(stderr, "Samples per pixel: %.1f (range %d - %d), %d rows\n",
			stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed, stats.RowsRendered)
	}

	if cfg.Output == "-" {
		return nil
	}

	outputs := []string{cfg.Output}
	if cfg.Thumbnail > 0 {
		thumbPath := thumbnailPath(cfg.Output)
		if err := export.SaveImage(thumbPath, export.Thumbnail(fb.ToImage(), cfg.Thumbnail)); err != nil {
			return err
		}
		outputs = append(outputs, thumbPath)
	}
	if !cfg.Quiet {
		fmt.Fprintf(stderr, "Render saved as %s\n", strings.Join(outputs, ", "))
	}

	if cfg.Publish {
		return publish(cfg.S3, outputs, stderr)
	}
	return nil
}

// createScene loads the configured scene and applies the size and sky overrides
func createScene(cfg *config.Config) (*scene.Scene, error) {
	s, err := scene.Load(cfg.Scene)
	if err != nil {
		return nil, err
	}

	if cfg.Width > 0 || cfg.Height > 0 {
		width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
		if cfg.Width > 0 {
			width = cfg.Width
		}
		if cfg.Height > 0 {
			height = cfg.Height
		}
		s.Resize(width, height)
	}
	if cfg.Samples > 0 {
		s.SamplingConfig.SamplesPerPixel = cfg.Samples
	}

	top, bottom, ok, err := cfg.Sky(s.GetBackgroundColors())
	if err != nil {
		return nil, err
	}
	if ok {
		s.SetBackground(top, bottom)
	}

	return s, nil
}

// renderOutput renders the image and writes the primary output.
// PPM output from a single worker is streamed row by row.
func renderOutput(r *renderer.Renderer, cfg *config.Config, stdout io.Writer) (*renderer.Framebuffer, renderer.RenderStats, error) {
	isPPM := cfg.Output == "-" || strings.EqualFold(filepath.Ext(cfg.Output), ".ppm")
	if !isPPM {
		if _, err := export.FormatFor(cfg.Output); err != nil {
			return nil, renderer.RenderStats{}, err
		}
	}

	if cfg.Output != "-" && isPPM {
		file, err := createFile(cfg.Output)
		if err != nil {
			return nil, renderer.RenderStats{}, fmt.Errorf("create %s: %w", cfg.Output, err)
		}
		fb, stats, err := writeRender(r, cfg, file, true)
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", cfg.Output, closeErr)
		}
		return fb, stats, err
	}
	return writeRender(r, cfg, stdout, isPPM)
}

// createFile opens a PPM output file
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeRender renders into out as PPM, or saves an image file when isPPM is false
func writeRender(r *renderer.Renderer, cfg *config.Config, out io.Writer, isPPM bool) (*renderer.Framebuffer, renderer.RenderStats, error) {
	rc := r.Config()
	if isPPM && rc.Workers == 1 {
		pw := ppm.NewWriter(out, rc.Width, rc.Height)
		fb := renderer.NewFramebuffer(rc.Width, rc.Height)
		stats, err := r.Stream(&collectingWriter{next: pw, fb: fb, y: rc.Height - 1})
		if err != nil {
			return nil, stats, err
		}
		return fb, stats, pw.Flush()
	}

	fb, stats, err := r.Render()
	if err != nil {
		return nil, stats, err
	}
	if isPPM {
		bw := bufio.NewWriter(out)
		if err := ppm.Encode(bw, fb, nil); err != nil {
			return nil, stats, err
		}
		return fb, stats, bw.Flush()
	}
	return fb, stats, export.SaveImage(cfg.Output, fb.ToImage())
}

// collectingWriter forwards streamed rows and keeps a copy in a framebuffer
type collectingWriter struct {
	next renderer.RowWriter
	fb   *renderer.Framebuffer
	y    int // Row the next WriteRow call carries
}

func (cw *collectingWriter) WriteRow(row []core.Color) error {
	if cw.y < 0 {
		return fmt.Errorf("row overflow: framebuffer has %d rows", cw.fb.Height())
	}
	copy(cw.fb.Row(cw.y), row)
	cw.y--
	return cw.next.WriteRow(row)
}

// thumbnailPath returns where the thumbnail of output goes; PPM renders get a PNG thumbnail
func thumbnailPath(output string) string {
	path := export.ThumbnailPath(output)
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	}
	return path
}

func publish(cfg export.S3Config, paths []string, stderr io.Writer) error {
	publisher, err := export.NewS3Publisher(cfg)
	if err != nil {
		return err
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		contentType := ppmContentType
		if format, err := export.FormatFor(path); err == nil {
			contentType = export.ContentType(format)
		}

		key, err := publisher.Publish(context.Background(), filepath.Base(path), data, contentType)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Published %s\n", key)
	}
	return nil
}

func printScenes(w io.Writer) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(w, "  %-16s %s\n", info.ID, info.Description)
			} else {
				fmt.Fprintf(w, "  %s\n", info.ID)
			}
		}
	}
	return nil
}
