package core

import (
	"math"
	"testing"
)

func TestMapToRange(t *testing.T) {
	tests := []struct {
		name           string
		val            float64
		srcMin, srcMax float64
		dstMin, dstMax float64
		expected       float64
	}{
		{"low end", 0, 0, 10, -1, 1, -1},
		{"high end", 10, 0, 10, -1, 1, 1},
		{"midpoint", 5, 0, 10, -1, 1, 0},
		{"outside source range", 20, 0, 10, 0, 1, 2},
		{"shifted ranges", 3, 2, 4, 10, 20, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToRange(tt.val, tt.srcMin, tt.srcMax, tt.dstMin, tt.dstMax)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestMapToRange_InvertedPanics(t *testing.T) {
	tests := []struct {
		name                           string
		srcMin, srcMax, dstMin, dstMax float64
	}{
		{"inverted source", 10, 0, -1, 1},
		{"inverted destination", 0, 10, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic for inverted range")
				}
			}()
			MapToRange(1, tt.srcMin, tt.srcMax, tt.dstMin, tt.dstMax)
		})
	}
}

func TestGetUV_Corners(t *testing.T) {
	u, v := GetUV(0, 0, 20, 10)
	if u != -1 || v != -1 {
		t.Errorf("Expected (-1, -1) at origin pixel, got (%f, %f)", u, v)
	}

	u, v = GetUV(19, 9, 20, 10)
	if math.Abs(u-1) > tolerance || math.Abs(v-1) > tolerance {
		t.Errorf("Expected (1, 1) at last pixel, got (%f, %f)", u, v)
	}
}

func TestGetUV_RoundTrip(t *testing.T) {
	const width = 37
	for x := 0; x < width; x++ {
		u := MapToRange(float64(x), 0, width-1, -1, 1)
		back := MapToRange(u, -1, 1, 0, width-1)
		if math.Abs(back-float64(x)) > tolerance {
			t.Errorf("Round trip of %d produced %f", x, back)
		}
	}
}
