package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the distance from p to the plane. Positive values are
// on the side the normal points to.
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a projection * view matrix using
// the Gribb/Hartmann method. The clip volume is assumed to be GL style, with z
// in [-1, 1].
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
//   - bool: false if any plane is degenerate (zero-length normal or non-finite)
func ExtractFrustum(viewProj mgl32.Mat4) (Frustum, bool) {
	var f Frustum

	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	rows := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}

	ok := true
	for i, r := range rows {
		f.Planes[i] = Plane{Normal: r.Vec3(), Distance: r.W()}
		if !f.normalizePlane(i) {
			ok = false
		}
	}
	return f, ok
}

// ContainsSphere reports whether the sphere intersects or lies inside the frustum.
//
// Parameters:
//   - s: the sphere to test
//
// Returns:
//   - bool: false only when the sphere is fully outside one plane
func (f *Frustum) ContainsSphere(s Sphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
// Reports false when the plane cannot be normalized.
func (f *Frustum) normalizePlane(index int) bool {
	p := &f.Planes[index]
	length := p.Normal.Len()
	if length <= 1e-12 || math.IsNaN(float64(length)) || math.IsInf(float64(length), 0) {
		return false
	}

	invLen := 1.0 / length
	p.Normal = p.Normal.Mul(invLen)
	p.Distance *= invLen
	return true
}
