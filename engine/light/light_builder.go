package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.localToWorld.SetCol(3, mgl32.Vec4{x, y, z, 1})
	}
}

// WithDirection is an option builder that orients the light along a direction.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.localToWorld = orientation(l.localToWorld.Col(3).Vec3(), mgl32.Vec3{x, y, z})
	}
}

// WithTransform is an option builder that sets the full local-to-world matrix.
//
// Parameters:
//   - m: the transform, column 2 forward and column 3 position
//
// Returns:
//   - LightBuilderOption: a function that applies the transform option to a lightImpl
func WithTransform(m mgl32.Mat4) LightBuilderOption {
	return func(l *lightImpl) {
		l.localToWorld = m
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.Color{R: r, G: g, B: b, A: 1}
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the maximum attenuation distance for
// point and spot lights.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithSpotAngle is an option builder that sets the full cone angle of a spot light.
//
// Parameters:
//   - degrees: the cone angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the angle option to a lightImpl
func WithSpotAngle(degrees float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.spotAngle = degrees
	}
}

// WithShadowNearPlane is an option builder that sets the near plane of the
// light's shadow projection.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - LightBuilderOption: a function that applies the near plane option to a lightImpl
func WithShadowNearPlane(near float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadowNearPlane = near
	}
}

// WithEnabled is an option builder that sets whether the light starts enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows is an option builder that sets whether the light renders shadow maps.
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}
