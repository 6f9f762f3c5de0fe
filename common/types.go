package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Rect is an integer pixel rectangle inside a render target.
// X and Y address the lower-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns the number of pixels covered by the rectangle.
//
// Returns:
//   - int: width * height, or 0 for an empty rectangle
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether pixel (x, y) lies inside the rectangle.
//
// Parameters:
//   - x, y: pixel coordinates
//
// Returns:
//   - bool: true if the pixel is inside
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Overlaps reports whether two rectangles share at least one pixel.
//
// Parameters:
//   - o: the other rectangle
//
// Returns:
//   - bool: true if the rectangles intersect
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Vec4 packs the sphere as (center.xyz, radius), the layout shaders expect for
// cascade culling spheres.
//
// Returns:
//   - mgl32.Vec4: the packed sphere
func (s Sphere) Vec4() mgl32.Vec4 {
	return s.Center.Vec4(s.Radius)
}

// Bounds is an axis-aligned bounding box. The zero value is a degenerate box at
// the origin; use EmptyBounds as the identity for Union.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBounds returns an inverted box that any Union or Encapsulate call replaces.
//
// Returns:
//   - Bounds: the empty box
func EmptyBounds() Bounds {
	inf := float32(math.Inf(1))
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// NewBounds builds a box from a center point and half extents.
//
// Parameters:
//   - center: box center
//   - extents: half size along each axis
//
// Returns:
//   - Bounds: the box
func NewBounds(center, extents mgl32.Vec3) Bounds {
	return Bounds{Min: center.Sub(extents), Max: center.Add(extents)}
}

// IsEmpty reports whether the box contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half size of the box along each axis.
func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Encapsulate grows the box to contain p.
//
// Parameters:
//   - p: the point to include
//
// Returns:
//   - Bounds: the grown box
func (b Bounds) Encapsulate(p mgl32.Vec3) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
//
// Parameters:
//   - o: the other box
//
// Returns:
//   - Bounds: the combined box
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.Encapsulate(o.Min).Encapsulate(o.Max)
}

// Corners returns the eight corners of the box.
func (b Bounds) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		out[i] = mgl32.Vec3{
			pick(i&1 != 0, b.Max[0], b.Min[0]),
			pick(i&2 != 0, b.Max[1], b.Min[1]),
			pick(i&4 != 0, b.Max[2], b.Min[2]),
		}
	}
	return out
}

// Transform returns the axis-aligned box enclosing b after transformation by m.
//
// Parameters:
//   - m: an affine transform
//
// Returns:
//   - Bounds: the enclosing world-space box
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.Encapsulate(mgl32.TransformCoordinate(c, m))
	}
	return out
}

// Sphere returns the sphere circumscribing the box.
func (b Bounds) Sphere() Sphere {
	return Sphere{Center: b.Center(), Radius: b.Extents().Len()}
}

// Color is a linear-space RGBA color.
type Color struct {
	R, G, B, A float32
}

var (
	ColorBlack = Color{0, 0, 0, 1}
	ColorWhite = Color{1, 1, 1, 1}
	ColorClear = Color{}
)

// Vec4 returns the color as (r, g, b, a).
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Scale multiplies the color channels by f, leaving alpha untouched.
//
// Parameters:
//   - f: the scale factor
//
// Returns:
//   - Color: the scaled color
func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A}
}

// Linear converts an sRGB-encoded color to linear space. Alpha is unchanged.
//
// Returns:
//   - Color: the linear color
func (c Color) Linear() Color {
	return Color{GammaToLinear(c.R), GammaToLinear(c.G), GammaToLinear(c.B), c.A}
}

func pick(cond bool, a, b float32) float32 {
	if cond {
		return a
	}
	return b
}
