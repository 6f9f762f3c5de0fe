package game_object

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

// GameObjectBuilderOption is a function that configures a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets an explicit object ID instead of the next auto-assigned one.
//
// Parameters:
//   - id: the object ID
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ID option
func WithID(id uint64) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithName sets the display name.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the name option
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to render the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the position option
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial euler rotation in radians.
//
// Parameters:
//   - rx, ry, rz: rotation angles
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the rotation option
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = mgl32.Vec3{rx, ry, rz}
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - sx, sy, sz: scale components
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the scale option
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = mgl32.Vec3{sx, sy, sz}
	}
}

// WithBounds sets the object-space bounding box.
//
// Parameters:
//   - b: the local bounds
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the bounds option
func WithBounds(b common.Bounds) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.localBounds = b
	}
}

// WithRenderQueue sets the render queue value.
//
// Parameters:
//   - queue: the render queue, see the RenderQueue constants
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the queue option
func WithRenderQueue(queue int) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.renderQueue = queue
	}
}

// WithPassTags replaces the material's pass tags.
//
// Parameters:
//   - tags: the shader pass tags
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the pass tag option
func WithPassTags(tags ...string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.passTags = append([]string(nil), tags...)
	}
}

// WithCastsShadows sets whether the object is drawn into shadow maps.
func WithCastsShadows(casts bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.castsShadows = casts
	}
}

// WithMotionVectors sets whether the object is drawn into the motion-vector buffer.
func WithMotionVectors(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.motionVectors = enabled
	}
}

// WithColor sets the base color.
func WithColor(c common.Color) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.color = c
	}
}
