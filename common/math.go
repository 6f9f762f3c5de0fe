package common

import (
	"cmp"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GammaToLinear converts one sRGB-encoded channel to linear space using the
// piecewise sRGB transfer curve.
//
// Parameters:
//   - v: the gamma-space value
//
// Returns:
//   - float32: the linear-space value
func GammaToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64((v+0.055)/1.055), 2.4))
}

// LinearToGamma is the inverse of GammaToLinear.
//
// Parameters:
//   - v: the linear-space value
//
// Returns:
//   - float32: the gamma-space value
func LinearToGamma(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*float32(math.Pow(float64(v), 1/2.4)) - 0.055
}

// NegateRow returns m with every element of the given row negated. Used to flip
// the depth row of a clip matrix when the device uses a reversed depth buffer.
//
// Parameters:
//   - m: the source matrix
//   - row: row index in [0, 3]
//
// Returns:
//   - mgl32.Mat4: the modified copy
func NegateRow(m mgl32.Mat4, row int) mgl32.Mat4 {
	for col := 0; col < 4; col++ {
		m.Set(row, col, -m.At(row, col))
	}
	return m
}

// NegateColumn returns m with every element of the given column negated.
func NegateColumn(m mgl32.Mat4, col int) mgl32.Mat4 {
	for row := 0; row < 4; row++ {
		m.Set(row, col, -m.At(row, col))
	}
	return m
}

// IsFinite reports whether every element of m is a finite number.
func IsFinite(m mgl32.Mat4) bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// CeilDiv divides a by b rounding toward positive infinity. Both operands must
// be positive.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return mgl32.DegToRad(deg)
}
