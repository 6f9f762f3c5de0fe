package config

import "strings"

// SettingsOption is a function that adjusts Settings during construction.
type SettingsOption func(*Settings)

// New returns Default settings with the options applied and validated.
// Invalid enum names from options fall back to the defaults.
//
// Parameters:
//   - opts: variadic list of SettingsOption functions
//
// Returns:
//   - *Settings: the settings
func New(opts ...SettingsOption) *Settings {
	s := Default()
	for _, opt := range opts {
		opt(s)
	}
	d := Default()
	if !RenderMode(strings.ToLower(string(s.RenderMode))).Valid() {
		s.RenderMode = d.RenderMode
	}
	if !DrawMode(strings.ToLower(string(s.DrawMode))).Valid() {
		s.DrawMode = d.DrawMode
	}
	if !ToneMapping(strings.ToLower(string(s.ToneMapping))).Valid() {
		s.ToneMapping = d.ToneMapping
	}
	_ = s.Validate()
	return s
}

// WithRenderMode selects the frame executor.
func WithRenderMode(mode RenderMode) SettingsOption {
	return func(s *Settings) {
		s.RenderMode = mode
	}
}

// WithDrawMode selects the geometry draw mode.
func WithDrawMode(mode DrawMode) SettingsOption {
	return func(s *Settings) {
		s.DrawMode = mode
	}
}

// WithToneMapping selects the tone mapping operator.
func WithToneMapping(t ToneMapping) SettingsOption {
	return func(s *Settings) {
		s.ToneMapping = t
	}
}

// WithRenderScale sets the render scale. Values are clamped to [0.5, 2].
//
// Parameters:
//   - scale: the buffer size multiplier
//
// Returns:
//   - SettingsOption: a function that applies the scale option
func WithRenderScale(scale float32) SettingsOption {
	return func(s *Settings) {
		s.RenderScale = scale
	}
}

// WithMaxShadowDistance sets the shadow distance cap.
func WithMaxShadowDistance(distance float32) SettingsOption {
	return func(s *Settings) {
		s.MaxShadowDistance = distance
	}
}

// WithPostProcess enables or disables the post-process chain.
func WithPostProcess(enabled bool) SettingsOption {
	return func(s *Settings) {
		s.PostProcess.Enabled = enabled
	}
}

// WithComputeKernel sets the compute kernel run on the final texture.
func WithComputeKernel(kernel string) SettingsOption {
	return func(s *Settings) {
		s.PostProcess.ComputeKernel = kernel
	}
}

// WithMotionVectors enables or disables the motion vector pass.
func WithMotionVectors(enabled bool) SettingsOption {
	return func(s *Settings) {
		s.MotionVectors = enabled
	}
}

// WithMotionBlur enables or disables the velocity blur pass.
func WithMotionBlur(enabled bool) SettingsOption {
	return func(s *Settings) {
		s.MotionBlur.Enabled = enabled
	}
}

// WithDefaultPass enables the extra unlit pass after transparents.
func WithDefaultPass(enabled bool) SettingsOption {
	return func(s *Settings) {
		s.EnableDefaultPass = enabled
	}
}

// WithBloom replaces the bloom settings.
func WithBloom(b Bloom) SettingsOption {
	return func(s *Settings) {
		s.Bloom = b
	}
}

// WithColorAdjustments replaces the color adjustment settings.
func WithColorAdjustments(c ColorAdjustments) SettingsOption {
	return func(s *Settings) {
		s.ColorAdjustments = c
	}
}

// WithWhiteBalance replaces the white balance settings.
func WithWhiteBalance(w WhiteBalance) SettingsOption {
	return func(s *Settings) {
		s.WhiteBalance = w
	}
}

// WithShadowResolutions sets both atlas resolutions.
func WithShadowResolutions(directional, spotPoint int) SettingsOption {
	return func(s *Settings) {
		s.Shadows = Shadows{DirectionalResolution: directional, SpotPointResolution: spotPoint}
	}
}
