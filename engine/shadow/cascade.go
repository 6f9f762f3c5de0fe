package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

// Cascade is the shadow camera of one directional split.
type Cascade struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	// Sphere bounds the camera sub-frustum the cascade covers. Shaders use it
	// to pick the cascade for a fragment.
	Sphere common.Sphere
}

// CameraFrustum is the part of a camera the cascade fit needs.
type CameraFrustum struct {
	// View is the world to view matrix, looking down -Z.
	View mgl32.Mat4
	// Fov is the vertical field of view in radians.
	Fov    float32
	Aspect float32
	Near   float32
	// ShadowDistance is the far end of the last cascade.
	ShadowDistance float32
}

// SplitDistances returns the view-depth range [start, end] of every cascade.
// Boundaries are ratio*shadowDistance, never closer than the near plane.
//
// Parameters:
//   - near: the camera near plane
//   - shadowDistance: the far end of the last cascade
//   - ratios: the inner split ratios
//
// Returns:
//   - [CascadeCount][2]float32: start and end of each cascade
func SplitDistances(near, shadowDistance float32, ratios [CascadeCount - 1]float32) [CascadeCount][2]float32 {
	var out [CascadeCount][2]float32
	start := near
	for i := 0; i < CascadeCount; i++ {
		end := shadowDistance
		if i < CascadeCount-1 {
			end = shadowDistance * ratios[i]
		}
		if end < start {
			end = start
		}
		out[i] = [2]float32{start, end}
		start = end
	}
	return out
}

// FrustumCorners returns the eight world-space corners of the camera frustum
// slice between view depths start and end.
func FrustumCorners(cam CameraFrustum, start, end float32) [8]mgl32.Vec3 {
	inv := cam.View.Inv()
	tanY := float32(math.Tan(float64(cam.Fov) * 0.5))
	tanX := tanY * cam.Aspect

	var corners [8]mgl32.Vec3
	n := 0
	for _, d := range [2]float32{start, end} {
		for _, sy := range [2]float32{-1, 1} {
			for _, sx := range [2]float32{-1, 1} {
				p := mgl32.Vec3{sx * tanX * d, sy * tanY * d, -d}
				corners[n] = mgl32.TransformCoordinate(p, inv)
				n++
			}
		}
	}
	return corners
}

// BoundingSphere returns the sphere centered on the average of the points with
// a radius rounded up to a sixteenth of a unit, so it stays stable as the
// camera rotates.
func BoundingSphere(points []mgl32.Vec3) common.Sphere {
	if len(points) == 0 {
		return common.Sphere{}
	}
	var center mgl32.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	center = center.Mul(1 / float32(len(points)))

	var radius float32
	for _, p := range points {
		radius = max(radius, p.Sub(center).Len())
	}
	radius = float32(math.Ceil(float64(radius)*16)) / 16
	return common.Sphere{Center: center, Radius: radius}
}

// lightUp returns an up vector that is not parallel to forward.
func lightUp(forward mgl32.Vec3) mgl32.Vec3 {
	if abs(forward.Y()) > 0.99 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// SnapToTexel moves center onto the light-space texel grid of a map covering
// 2*radius with resolution texels, which keeps shadow edges from shimmering
// while the camera moves.
func SnapToTexel(center, forward mgl32.Vec3, radius float32, resolution int) mgl32.Vec3 {
	if resolution <= 0 || radius <= 0 {
		return center
	}
	rot := mgl32.LookAtV(mgl32.Vec3{}, forward, lightUp(forward))
	texel := 2 * radius / float32(resolution)

	ls := mgl32.TransformCoordinate(center, rot)
	ls[0] = float32(math.Floor(float64(ls[0]/texel))) * texel
	ls[1] = float32(math.Floor(float64(ls[1]/texel))) * texel
	return mgl32.TransformCoordinate(ls, rot.Inv())
}

// ComputeCascade fits an orthographic shadow camera around one camera slice.
//
// The sphere around the slice is snapped to the texel grid. The light eye sits
// behind the sphere far enough to see every caster in casters, and the depth
// range spans from the eye through the far side of the sphere.
//
// Parameters:
//   - cam: the viewing camera
//   - start, end: the slice view-depth range
//   - forward: the light travel direction
//   - casters: bounds of the light's shadow casters
//   - tileResolution: the cascade tile size in texels
//   - nearOffset: extra distance added behind the casters
//
// Returns:
//   - Cascade: the cascade camera and culling sphere
func ComputeCascade(cam CameraFrustum, start, end float32, forward mgl32.Vec3, casters common.Bounds, tileResolution int, nearOffset float32) Cascade {
	f := mgl32.Vec3{0, 0, 1}
	if forward.Len() > 0 {
		f = forward.Normalize()
	}

	corners := FrustumCorners(cam, start, end)
	sphere := BoundingSphere(corners[:])
	sphere.Center = SnapToTexel(sphere.Center, f, sphere.Radius, tileResolution)
	r := sphere.Radius

	distance := r
	if !casters.IsEmpty() {
		back := f.Mul(-1)
		for _, c := range casters.Corners() {
			distance = max(distance, c.Sub(sphere.Center).Dot(back))
		}
	}
	distance += nearOffset

	eye := sphere.Center.Sub(f.Mul(distance))
	return Cascade{
		View:       mgl32.LookAtV(eye, sphere.Center, lightUp(f)),
		Projection: mgl32.Ortho(-r, r, -r, r, 0, distance+r),
		Sphere:     sphere,
	}
}

// SpotMatrices returns the shadow camera of a spot light.
//
// Parameters:
//   - position, forward: the light placement
//   - spotAngle: the full cone angle in degrees
//   - near, lightRange: the depth range
//
// Returns:
//   - view, proj: the shadow camera
func SpotMatrices(position, forward mgl32.Vec3, spotAngle, near, lightRange float32) (view, proj mgl32.Mat4) {
	f := mgl32.Vec3{0, 0, 1}
	if forward.Len() > 0 {
		f = forward.Normalize()
	}
	far := max(lightRange, near+0.01)
	view = mgl32.LookAtV(position, position.Add(f), lightUp(f))
	proj = mgl32.Perspective(common.Radians(spotAngle), 1, near, far)
	return view, proj
}

// cubeFaces lists the point light faces in +X, -X, +Y, -Y, +Z, -Z order with
// the up vector of each face.
var cubeFaces = [PointFaceCount]struct{ dir, up mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// PointFaceMatrices returns the view and projection of one cube face of a
// point light.
//
// Parameters:
//   - position: the light position
//   - face: the face index in [0, PointFaceCount)
//   - near, lightRange: the depth range
//
// Returns:
//   - view, proj: the face camera
func PointFaceMatrices(position mgl32.Vec3, face int, near, lightRange float32) (view, proj mgl32.Mat4) {
	cf := cubeFaces[face]
	far := max(lightRange, near+0.01)
	view = mgl32.LookAtV(position, position.Add(cf.dir), cf.up)
	proj = mgl32.Perspective(common.Radians(90), 1, near, far)
	return view, proj
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
