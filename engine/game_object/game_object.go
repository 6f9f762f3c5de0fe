package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

// objectCount is an atomic counter used to assign unique IDs to objects built
// without an explicit ID.
var objectCount atomic.Uint64

// Render queue values. Objects at or below RenderQueueOpaqueMax are drawn in
// the opaque pass, the rest in the transparent pass.
const (
	RenderQueueBackground  = 1000
	RenderQueueGeometry    = 2000
	RenderQueueAlphaTest   = 2450
	RenderQueueOpaqueMax   = 2500
	RenderQueueTransparent = 3000
	RenderQueueOverlay     = 4000
	RenderQueueMax         = 5000
)

// PassTagPrimary is the pass tag every lit material implements.
const PassTagPrimary = "Both"

// QueueRange is an inclusive render queue interval.
type QueueRange struct {
	Min int
	Max int
}

var (
	QueueOpaque      = QueueRange{Min: 0, Max: RenderQueueOpaqueMax}
	QueueTransparent = QueueRange{Min: RenderQueueOpaqueMax + 1, Max: RenderQueueMax}
	QueueAll         = QueueRange{Min: 0, Max: RenderQueueMax}
)

// Contains reports whether queue lies in the range.
func (r QueueRange) Contains(queue int) bool {
	return queue >= r.Min && queue <= r.Max
}

type gameObject struct {
	mu sync.RWMutex

	id      uint64
	name    string
	enabled atomic.Bool

	position mgl32.Vec3
	rotation mgl32.Vec3 // euler angles in radians, applied Y then X then Z
	scale    mgl32.Vec3

	localToWorld         mgl32.Mat4
	previousLocalToWorld mgl32.Mat4

	localBounds   common.Bounds
	renderQueue   int
	passTags      []string
	castsShadows  bool
	motionVectors bool
	color         common.Color
}

// GameObject defines the interface for a renderable scene entity.
//
// A GameObject carries the data the culling service and the renderer need: a
// transform (current and previous frame, for motion vectors), local bounds,
// a render queue that classifies it as opaque or transparent, and the set of
// shader pass tags its material implements.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled enables or disables rendering of the object.
	SetEnabled(enabled bool)

	// Position returns the world-space position.
	Position() mgl32.Vec3

	// Rotation returns the euler rotation in radians.
	Rotation() mgl32.Vec3

	// Scale returns the per-axis scale.
	Scale() mgl32.Vec3

	// SetPosition moves the object and recomputes its transform. The previous
	// frame transform is untouched until CommitMotion.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetRotation sets the euler rotation in radians and recomputes the transform.
	//
	// Parameters:
	//   - rx, ry, rz: rotation angles
	SetRotation(rx, ry, rz float32)

	// SetScale sets the per-axis scale and recomputes the transform.
	//
	// Parameters:
	//   - sx, sy, sz: scale components
	SetScale(sx, sy, sz float32)

	// LocalToWorld returns the current object-to-world matrix.
	LocalToWorld() mgl32.Mat4

	// PreviousLocalToWorld returns the object-to-world matrix of the last
	// committed frame.
	PreviousLocalToWorld() mgl32.Mat4

	// CommitMotion records the current transform as the previous-frame transform.
	// Called once per frame after all cameras have rendered.
	CommitMotion()

	// LocalBounds returns the object-space bounding box.
	LocalBounds() common.Bounds

	// WorldBounds returns the world-space bounding box.
	WorldBounds() common.Bounds

	// RenderQueue returns the render queue value.
	RenderQueue() int

	// PassTags returns the shader pass tags the object's material implements.
	PassTags() []string

	// HasPassTag reports whether the material implements the given pass tag.
	HasPassTag(tag string) bool

	// CastsShadows returns whether the object is drawn into shadow maps.
	CastsShadows() bool

	// MotionVectors returns whether the object is drawn into the motion-vector buffer.
	MotionVectors() bool

	// Color returns the base color used by materials without textures.
	Color() common.Color
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject with the provided options.
// Defaults: unit scale, unit cube bounds, geometry queue, primary pass tag,
// casts shadows, motion vectors enabled, white color.
//
// Parameters:
//   - options: variadic list of GameObjectBuilderOption functions
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		id:            objectCount.Add(1),
		scale:         mgl32.Vec3{1, 1, 1},
		localBounds:   common.NewBounds(mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}),
		renderQueue:   RenderQueueGeometry,
		passTags:      []string{PassTagPrimary},
		castsShadows:  true,
		motionVectors: true,
		color:         common.ColorWhite,
	}
	g.enabled.Store(true)

	for _, opt := range options {
		opt(g)
	}

	g.updateTransform()
	g.previousLocalToWorld = g.localToWorld
	return g
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = mgl32.Vec3{x, y, z}
	g.updateTransform()
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = mgl32.Vec3{rx, ry, rz}
	g.updateTransform()
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = mgl32.Vec3{sx, sy, sz}
	g.updateTransform()
}

func (g *gameObject) LocalToWorld() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.localToWorld
}

func (g *gameObject) PreviousLocalToWorld() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.previousLocalToWorld
}

func (g *gameObject) CommitMotion() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.previousLocalToWorld = g.localToWorld
}

func (g *gameObject) LocalBounds() common.Bounds {
	return g.localBounds
}

func (g *gameObject) WorldBounds() common.Bounds {
	return g.localBounds.Transform(g.LocalToWorld())
}

func (g *gameObject) RenderQueue() int {
	return g.renderQueue
}

func (g *gameObject) PassTags() []string {
	return g.passTags
}

func (g *gameObject) HasPassTag(tag string) bool {
	for _, t := range g.passTags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g *gameObject) CastsShadows() bool {
	return g.castsShadows
}

func (g *gameObject) MotionVectors() bool {
	return g.motionVectors
}

func (g *gameObject) Color() common.Color {
	return g.color
}

// updateTransform rebuilds localToWorld as T * Ry * Rx * Rz * S.
// Callers must hold the write lock or own the object exclusively.
func (g *gameObject) updateTransform() {
	t := mgl32.Translate3D(g.position[0], g.position[1], g.position[2])
	r := mgl32.HomogRotate3DY(g.rotation[1]).
		Mul4(mgl32.HomogRotate3DX(g.rotation[0])).
		Mul4(mgl32.HomogRotate3DZ(g.rotation[2]))
	s := mgl32.Scale3D(g.scale[0], g.scale[1], g.scale[2])
	g.localToWorld = t.Mul4(r).Mul4(s)
}
