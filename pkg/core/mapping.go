package core

import "fmt"

// MapToRange maps val affinely from [srcMin, srcMax] to [dstMin, dstMax].
// An inverted range is a programming error and panics.
func MapToRange(val, srcMin, srcMax, dstMin, dstMax float64) float64 {
	if srcMin > srcMax || dstMin > dstMax {
		panic(fmt.Sprintf("invalid range in MapToRange: (%g, %g), (%g, %g)",
			srcMin, srcMax, dstMin, dstMax))
	}
	return ((val-srcMin)/(srcMax-srcMin))*(dstMax-dstMin) + dstMin
}

// GetUV converts pixel coordinates to normalized image-plane coordinates in [-1, 1].
// Pixel 0 maps to -1 and pixel width-1 (height-1) maps to 1.
func GetUV(pixelX, pixelY float64, imageWidth, imageHeight int) (u, v float64) {
	u = MapToRange(pixelX, 0, float64(imageWidth-1), -1, 1)
	v = MapToRange(pixelY, 0, float64(imageHeight-1), -1, 1)
	return u, v
}
