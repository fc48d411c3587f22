package ppm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/df07/go-ppm-raytracer/pkg/renderer"
)

func TestDiff(t *testing.T) {
	a := "P3\n2 1\n255\n255 0 0\n10 20 30\n"
	b := "P3\n2 1\n255\n0 0 0\n10 20 30\n"

	var out bytes.Buffer
	stats, err := Diff(strings.NewReader(a), strings.NewReader(b), &out, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	expected := "P3\n2 1\n255\n255 0 0\n0 0 0\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
	if stats.Pixels != 2 || stats.DifferingPixels != 1 || stats.MaxDelta != 255 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestDiff_IdenticalIsBlack(t *testing.T) {
	img := "P3\n2 2\n255\n1 2 3\n4 5 6\n7 8 9\n250 251 252\n"

	var out bytes.Buffer
	stats, err := Diff(strings.NewReader(img), strings.NewReader(img), &out, nil)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	expected := "P3\n2 2\n255\n0 0 0\n0 0 0\n0 0 0\n0 0 0\n"
	if out.String() != expected {
		t.Errorf("Expected all black, got %q", out.String())
	}
	if stats.DifferingPixels != 0 || stats.MeanDelta != 0 {
		t.Errorf("Expected no differences, got %+v", stats)
	}
}

func TestDiff_NormalizesEachImageByItsMaxValue(t *testing.T) {
	// Full intensity at max 100 equals full intensity at max 255
	a := "P3 1 1 100 100 50 0"
	b := "P3 1 1 255 255 0 0"

	var out bytes.Buffer
	if _, err := Diff(strings.NewReader(a), strings.NewReader(b), &out, nil); err != nil {
		t.Fatalf("Diff: %v", err)
	}

	expected := "P3\n1 1\n255\n0 128 0\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestDiff_DimensionMismatch(t *testing.T) {
	a := "P3\n2 1\n255\n0 0 0\n0 0 0\n"
	b := "P3\n1 2\n255\n0 0 0\n0 0 0\n"

	var out bytes.Buffer
	_, err := Diff(strings.NewReader(a), strings.NewReader(b), &out, nil)

	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected DimensionMismatchError, got %v", err)
	}
	if mismatch.Width1 != 2 || mismatch.Height2 != 2 {
		t.Errorf("Unexpected mismatch details %+v", mismatch)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output on mismatch, got %q", out.String())
	}
}

func TestDiff_TruncatedInput(t *testing.T) {
	a := "P3\n2 1\n255\n0 0 0\n0 0 0\n"
	b := "P3\n2 1\n255\n0 0 0\n"

	var out bytes.Buffer
	_, err := Diff(strings.NewReader(a), strings.NewReader(b), &out, nil)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestDiff_OversizedHeader(t *testing.T) {
	huge := "P3\n4294967295 4294967295\n255\n0 0 0\n"

	var out bytes.Buffer
	_, err := Diff(strings.NewReader(huge), strings.NewReader(huge), &out, nil)
	if !errors.Is(err, ErrBadToken) {
		t.Errorf("Expected ErrBadToken, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestDiff_Progress(t *testing.T) {
	img := "P3 1 2 255 0 0 0 0 0 0"
	var out, progress bytes.Buffer

	if _, err := Diff(strings.NewReader(img), strings.NewReader(img), &out, renderer.NewProgressReporter(&progress, 2)); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !strings.HasSuffix(progress.String(), "\rScanlines remaining: 0 (100.0%)\nDone!\n") {
		t.Errorf("Unexpected progress output %q", progress.String())
	}
}
