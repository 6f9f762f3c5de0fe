package shadow

import "github.com/rs/zerolog"

// BuilderOption is a function that configures a Builder during construction.
type BuilderOption func(*Builder)

// WithDirectionalResolution sets the directional atlas size in texels.
//
// Parameters:
//   - resolution: atlas width and height, ignored when not positive
//
// Returns:
//   - BuilderOption: a function that applies the resolution option
func WithDirectionalResolution(resolution int) BuilderOption {
	return func(b *Builder) {
		if resolution > 0 {
			b.directionalResolution = resolution
		}
	}
}

// WithSpotPointResolution sets the spot/point atlas size in texels.
//
// Parameters:
//   - resolution: atlas width and height, ignored when not positive
//
// Returns:
//   - BuilderOption: a function that applies the resolution option
func WithSpotPointResolution(resolution int) BuilderOption {
	return func(b *Builder) {
		if resolution > 0 {
			b.spotPointResolution = resolution
		}
	}
}

// WithSplitRatios sets the cascade boundaries as fractions of the shadow distance.
func WithSplitRatios(ratios [CascadeCount - 1]float32) BuilderOption {
	return func(b *Builder) {
		b.splitRatios = ratios
	}
}

// WithNearPlaneOffset sets the extra distance between the cascade eye and the
// furthest caster.
func WithNearPlaneOffset(offset float32) BuilderOption {
	return func(b *Builder) {
		b.nearPlaneOffset = offset
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}
