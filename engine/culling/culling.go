// Package culling defines the contract between the renderer and the service
// that decides which objects and lights a camera can see.
package culling

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/light"
)

// ErrInvalidParameters is returned by a Service that cannot cull with the
// given parameters.
var ErrInvalidParameters = errors.New("invalid culling parameters")

// Parameters describes one camera's view for culling. Fov is the vertical
// field of view in radians.
type Parameters struct {
	CameraID       uuid.UUID
	Position       mgl32.Vec3
	View           mgl32.Mat4
	Projection     mgl32.Mat4
	ViewProjection mgl32.Mat4
	Fov            float32
	Aspect         float32
	Near           float32
	Far            float32
	Frustum        common.Frustum
	ShadowDistance float32
}

// Result holds the visible sets for one camera. Light indices used by
// ShadowCasterBounds refer to positions in Lights.
type Result struct {
	Objects []game_object.GameObject
	Lights  []light.Light

	casterBounds []common.Bounds
	casters      [][]game_object.GameObject
}

// NewResult creates a result with no shadow casters recorded.
//
// Parameters:
//   - objects: the visible objects
//   - lights: the visible lights
//
// Returns:
//   - *Result: the result
func NewResult(objects []game_object.GameObject, lights []light.Light) *Result {
	r := &Result{
		Objects:      objects,
		Lights:       lights,
		casterBounds: make([]common.Bounds, len(lights)),
		casters:      make([][]game_object.GameObject, len(lights)),
	}
	for i := range r.casterBounds {
		r.casterBounds[i] = common.EmptyBounds()
	}
	return r
}

// SetShadowCasters records the objects that cast shadows for light i and
// the box enclosing them.
//
// Parameters:
//   - i: the light index
//   - casters: the shadow casting objects inside the light's influence
func (r *Result) SetShadowCasters(i int, casters []game_object.GameObject) {
	if i < 0 || i >= len(r.Lights) {
		return
	}
	b := common.EmptyBounds()
	for _, o := range casters {
		b = b.Union(o.WorldBounds())
	}
	r.casters[i] = casters
	r.casterBounds[i] = b
}

// ShadowCasterBounds returns the box around light i's shadow casters.
//
// Parameters:
//   - i: the light index
//
// Returns:
//   - common.Bounds: the caster box
//   - bool: false when the light has no casters
func (r *Result) ShadowCasterBounds(i int) (common.Bounds, bool) {
	if i < 0 || i >= len(r.casterBounds) {
		return common.Bounds{}, false
	}
	b := r.casterBounds[i]
	return b, !b.IsEmpty()
}

// ShadowCasters returns the casters recorded for light i.
func (r *Result) ShadowCasters(i int) []game_object.GameObject {
	if i < 0 || i >= len(r.casters) {
		return nil
	}
	return r.casters[i]
}

// Service produces visible sets for a camera.
type Service interface {
	// Cull returns the objects and lights visible with the given parameters,
	// considering shadow casters up to p.ShadowDistance.
	Cull(p Parameters) (*Result, error)
}
