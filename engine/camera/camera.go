package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/culling"
)

type cameraImpl struct {
	mu *sync.RWMutex

	id   uuid.UUID
	name string

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov  float32 // vertical, degrees
	near float32
	far  float32

	pixelWidth  int
	pixelHeight int
	background  common.Color

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4

	controller *OrbitController
}

// Camera defines the interface for a rendering camera.
//
// A camera owns a stable identity, a look-at pose, a perspective projection
// and the pixel size of the surface it renders to. The renderer keys
// cross-frame state (the previous view-projection used for motion vectors) by ID.
type Camera interface {
	// ID returns the camera's stable identity.
	//
	// Returns:
	//   - uuid.UUID: the camera ID
	ID() uuid.UUID

	// Name returns the camera's display name.
	Name() string

	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// Target returns the world-space look-at point.
	Target() mgl32.Vec3

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// PixelSize returns the size of the camera's output surface.
	//
	// Returns:
	//   - width, height: size in pixels
	PixelSize() (width, height int)

	// Aspect returns the aspect ratio (width / height), or 0 for an empty surface.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Background returns the color the skybox pass fills with.
	Background() common.Color

	// ViewMatrix returns the current world-to-camera matrix. The camera looks
	// down its local -Z axis.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix with GL clip depth in [-1, 1].
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// CullingParameters derives the parameters for the culling service.
	//
	// Returns:
	//   - culling.Parameters: the parameters, ShadowDistance left at zero
	//   - bool: false when the frustum is degenerate (empty surface, bad clip
	//     planes, bad field of view or non-finite matrices)
	CullingParameters() (culling.Parameters, bool)

	// Controller returns the attached orbit controller, or nil.
	Controller() *OrbitController

	// Update reads the pose from the attached controller and recomputes matrices.
	// Does nothing without a controller.
	Update()

	// SetPosition moves the eye and recomputes matrices.
	SetPosition(x, y, z float32)

	// LookAt sets the look-at point and recomputes matrices.
	LookAt(x, y, z float32)

	// SetFov sets the vertical field of view in degrees and recomputes matrices.
	SetFov(fov float32)

	// SetClipPlanes sets the near and far planes and recomputes matrices.
	SetClipPlanes(near, far float32)

	// SetPixelSize sets the output surface size and recomputes matrices.
	SetPixelSize(width, height int)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with the provided options.
// Defaults: 60 degree vertical fov, clip planes 0.3 to 1000, 1280x720, eye at
// (0, 1, -10) looking at the origin, dark blue background.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:          &sync.RWMutex{},
		id:          uuid.New(),
		position:    mgl32.Vec3{0, 1, -10},
		up:          mgl32.Vec3{0, 1, 0},
		fov:         60,
		near:        0.3,
		far:         1000,
		pixelWidth:  1280,
		pixelHeight: 720,
		background:  common.Color{R: 0.19, G: 0.3, B: 0.47, A: 1},
	}

	for _, opt := range options {
		opt(c)
	}

	c.updateMatrices()
	return c
}

func (c *cameraImpl) ID() uuid.UUID {
	return c.id
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.far
}

func (c *cameraImpl) PixelSize() (int, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pixelWidth, c.pixelHeight
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aspect()
}

func (c *cameraImpl) Background() common.Color {
	return c.background
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

func (c *cameraImpl) CullingParameters() (culling.Parameters, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.pixelWidth <= 0 || c.pixelHeight <= 0 {
		return culling.Parameters{}, false
	}
	if c.near <= 0 || c.far <= c.near || c.fov <= 0 || c.fov >= 180 {
		return culling.Parameters{}, false
	}
	if c.position.Sub(c.target).Len() == 0 {
		return culling.Parameters{}, false
	}

	vp := c.projectionMatrix.Mul4(c.viewMatrix)
	if !common.IsFinite(vp) {
		return culling.Parameters{}, false
	}
	frustum, ok := common.ExtractFrustum(vp)
	if !ok {
		return culling.Parameters{}, false
	}

	return culling.Parameters{
		CameraID:       c.id,
		Position:       c.position,
		View:           c.viewMatrix,
		Projection:     c.projectionMatrix,
		ViewProjection: vp,
		Fov:            mgl32.DegToRad(c.fov),
		Aspect:         c.aspect(),
		Near:           c.near,
		Far:            c.far,
		Frustum:        frustum,
	}, true
}

func (c *cameraImpl) Controller() *OrbitController {
	return c.controller
}

func (c *cameraImpl) Update() {
	if c.controller == nil {
		return
	}
	pos := c.controller.Position()
	target := c.controller.Target()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) LookAt(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetPixelSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pixelWidth = width
	c.pixelHeight = height
	c.updateMatrices()
}

func (c *cameraImpl) aspect() float32 {
	if c.pixelHeight <= 0 {
		return 0
	}
	return float32(c.pixelWidth) / float32(c.pixelHeight)
}

// updateMatrices recomputes view and projection. Degenerate inputs produce
// non-finite matrices, which CullingParameters reports as invalid.
// Caller must hold the write lock or own the camera exclusively.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect(), c.near, c.far)
}
