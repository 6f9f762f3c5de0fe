package light

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis.
	LightTypeSpot

	// LightTypeArea is a baked rectangular area light. The forward pipeline
	// does not shade it.
	LightTypeArea

	// LightTypeDisc is a baked disc-shaped area light. The forward pipeline
	// does not shade it.
	LightTypeDisc
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "Directional"
	case LightTypePoint:
		return "Point"
	case LightTypeSpot:
		return "Spot"
	case LightTypeArea:
		return "Area"
	case LightTypeDisc:
		return "Disc"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// Default light parameters.
const (
	DefaultSpotAngle       = 30
	DefaultRange           = 10
	DefaultShadowNearPlane = 0.2
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.RWMutex

	lightType       LightType
	localToWorld    mgl32.Mat4
	color           common.Color
	intensity       float32
	lightRange      float32
	spotAngle       float32 // full cone angle in degrees
	shadowNearPlane float32
	enabled         bool
	castsShadows    bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are read-only inputs to a frame: the culling service hands the
// visible subset to the light collector and the shadow atlas builder, neither
// of which mutates them. Orientation is carried as a full local-to-world
// matrix whose third column is the forward (emission) axis and whose fourth
// column is the position.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// LocalToWorld returns the light transform.
	//
	// Returns:
	//   - mgl32.Mat4: column 2 is the forward axis, column 3 the position
	LocalToWorld() mgl32.Mat4

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: position
	Position() mgl32.Vec3

	// Forward returns the normalized emission direction.
	// Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: forward axis
	Forward() mgl32.Vec3

	// Color returns the light color without intensity applied.
	//
	// Returns:
	//   - common.Color: linear color
	Color() common.Color

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// FinalColor returns the color scaled by intensity, the value shaders receive.
	//
	// Returns:
	//   - common.Color: intensity-scaled linear color
	FinalColor() common.Color

	// Range returns the maximum attenuation distance for point and spot lights.
	//
	// Returns:
	//   - float32: the range value
	Range() float32

	// SpotAngle returns the full cone angle of a spot light in degrees.
	//
	// Returns:
	//   - float32: the cone angle
	SpotAngle() float32

	// ShadowNearPlane returns the near clip distance of the light's shadow projection.
	//
	// Returns:
	//   - float32: near plane distance
	ShadowNearPlane() float32

	// Enabled returns whether this light is active for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map generation.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetPosition moves the light, keeping its orientation.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetDirection points the light along the given direction, keeping its position.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the light color.
	//
	// Parameters:
	//   - r, g, b: linear color components
	SetColor(r, g, b float32)

	// SetIntensity sets the intensity multiplier.
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable, false to disable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light renders shadow maps.
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type with the provided options.
// Defaults: white color, intensity 1, range 10, 30 degree cone, pointing down
// the negative Y axis, enabled, no shadows.
//
// Parameters:
//   - lightType: the kind of light
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:              &sync.RWMutex{},
		lightType:       lightType,
		localToWorld:    orientation(mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}),
		color:           common.ColorWhite,
		intensity:       1,
		lightRange:      DefaultRange,
		spotAngle:       DefaultSpotAngle,
		shadowNearPlane: DefaultShadowNearPlane,
		enabled:         true,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) LocalToWorld() mgl32.Mat4 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.localToWorld
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.LocalToWorld().Col(3).Vec3()
}

func (l *lightImpl) Forward() mgl32.Vec3 {
	return l.LocalToWorld().Col(2).Vec3()
}

func (l *lightImpl) Color() common.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *lightImpl) FinalColor() common.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color.Scale(l.intensity)
}

func (l *lightImpl) Range() float32 {
	return l.lightRange
}

func (l *lightImpl) SpotAngle() float32 {
	return l.spotAngle
}

func (l *lightImpl) ShadowNearPlane() float32 {
	return l.shadowNearPlane
}

func (l *lightImpl) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.castsShadows
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.localToWorld.SetCol(3, mgl32.Vec4{x, y, z, 1})
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.localToWorld = orientation(l.localToWorld.Col(3).Vec3(), mgl32.Vec3{x, y, z})
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = common.Color{R: r, G: g, B: b, A: 1}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castsShadows = castsShadows
}

// orientation builds a rigid transform at position whose third column is the
// normalized forward vector. The basis is left-handed: right = up x forward.
func orientation(position, forward mgl32.Vec3) mgl32.Mat4 {
	f := mgl32.Vec3{0, 0, 1}
	if forward.Len() > 0 {
		f = forward.Normalize()
	}
	up := mgl32.Vec3{0, 1, 0}
	if abs32(f.Dot(up)) > 0.999 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := up.Cross(f).Normalize()
	up = f.Cross(right)

	return mgl32.Mat4{
		right[0], right[1], right[2], 0,
		up[0], up[1], up[2], 0,
		f[0], f[1], f[2], 0,
		position[0], position[1], position[2], 1,
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
