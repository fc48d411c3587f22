package renderer

import (
	"image/color"
	"math"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

// MaxColorValue is the channel maximum used for 8-bit output
const MaxColorValue = 255

// UnitToMax maps a unit intensity to an integer in [0, maxValue].
// Values outside [0,1] are clamped; NaN maps to 0.
func UnitToMax(x float64, maxValue uint32) uint32 {
	if math.IsNaN(x) {
		return 0
	}
	scaled := math.Round(x * float64(maxValue))
	if scaled <= 0 {
		return 0
	}
	if scaled >= float64(maxValue) {
		return maxValue
	}
	return uint32(scaled)
}

// QuantizeColor converts a linear color to integer channels in [0, maxValue]
func QuantizeColor(c core.Color, maxValue uint32) (r, g, b uint32) {
	return UnitToMax(c.X, maxValue), UnitToMax(c.Y, maxValue), UnitToMax(c.Z, maxValue)
}

// vec3ToColor converts a Vec3 color to opaque RGBA
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	r, g, b := QuantizeColor(colorVec, MaxColorValue)
	return color.RGBA{
		R: uint8(r),
		G: uint8(g),
		B: uint8(b),
		A: 255,
	}
}
