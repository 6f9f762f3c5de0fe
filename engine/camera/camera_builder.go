package camera

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/okzkx/noobrp/common"
)

type CameraBuilderOption func(*cameraImpl)

// WithID sets an explicit camera identity.
//
// Parameters:
//   - id: the camera ID
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera ID
func WithID(id uuid.UUID) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.id = id
	}
}

// WithName sets the camera's display name.
func WithName(name string) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.name = name
	}
}

// WithPosition sets the eye position.
//
// Parameters:
//   - x, y, z: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - x, y, z: world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithPixelSize sets the output surface size.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the pixel size
func WithPixelSize(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pixelWidth = width
		c.pixelHeight = height
	}
}

// WithBackground sets the skybox fill color.
func WithBackground(color common.Color) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.background = color
	}
}

// WithController attaches an orbit controller. The camera pose is taken from
// the controller immediately and on every Update.
//
// Parameters:
//   - oc: the controller
//
// Returns:
//   - CameraBuilderOption: a function that attaches the controller
func WithController(oc *OrbitController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = oc
		if oc != nil {
			c.position = oc.Position()
			c.target = oc.Target()
		}
	}
}
