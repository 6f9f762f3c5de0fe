package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitController places a camera on a sphere around a target using spherical
// coordinates. Azimuth rotates around the Y axis, elevation is measured from
// the horizontal plane.
type OrbitController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// orbitSpeed is the azimuth change in radians per second applied by Advance.
	orbitSpeed float32
}

// OrbitOption configures an OrbitController.
type OrbitOption func(*OrbitController)

// NewOrbitController creates an orbit controller.
// Defaults: radius 10, elevation 30 degrees, orbit speed 0.5 rad/s.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - *OrbitController: the newly created controller
func NewOrbitController(options ...OrbitOption) *OrbitController {
	oc := &OrbitController{
		mu:           &sync.Mutex{},
		radius:       10,
		elevation:    float32(math.Pi / 6),
		minRadius:    0.5,
		maxRadius:    5000,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),
		orbitSpeed:   0.5,
	}

	for _, option := range options {
		option(oc)
	}

	oc.clamp()
	oc.updatePosition()
	return oc
}

// WithOrbitRadius sets the distance from the target.
func WithOrbitRadius(radius float32) OrbitOption {
	return func(oc *OrbitController) {
		oc.radius = radius
	}
}

// WithOrbitAngles sets the initial azimuth and elevation in radians.
func WithOrbitAngles(azimuth, elevation float32) OrbitOption {
	return func(oc *OrbitController) {
		oc.azimuth = azimuth
		oc.elevation = elevation
	}
}

// WithOrbitTarget sets the pivot point.
func WithOrbitTarget(x, y, z float32) OrbitOption {
	return func(oc *OrbitController) {
		oc.target = mgl32.Vec3{x, y, z}
	}
}

// WithOrbitSpeed sets the azimuth rate used by Advance, in radians per second.
func WithOrbitSpeed(speed float32) OrbitOption {
	return func(oc *OrbitController) {
		oc.orbitSpeed = speed
	}
}

// Position returns the eye position.
func (oc *OrbitController) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

// Target returns the pivot point.
func (oc *OrbitController) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

// Advance rotates the eye around the target by orbitSpeed * dt radians.
//
// Parameters:
//   - dt: elapsed time in seconds
func (oc *OrbitController) Advance(dt float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += oc.orbitSpeed * dt
	oc.updatePosition()
}

// Zoom moves the eye toward (positive delta) or away from the target.
func (oc *OrbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta
	oc.clamp()
	oc.updatePosition()
}

// clamp keeps radius and elevation inside their bounds. Caller must hold the mutex.
func (oc *OrbitController) clamp() {
	oc.radius = max(oc.minRadius, min(oc.radius, oc.maxRadius))
	oc.elevation = max(oc.minElevation, min(oc.elevation, oc.maxElevation))
}

// updatePosition recomputes the eye from spherical coordinates. Caller must hold the mutex.
func (oc *OrbitController) updatePosition() {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))

	oc.position = mgl32.Vec3{
		oc.target[0] + oc.radius*cosElev*sinAzim,
		oc.target[1] + oc.radius*sinElev,
		oc.target[2] + oc.radius*cosElev*cosAzim,
	}
}
