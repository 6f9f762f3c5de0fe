// Package config holds the render pipeline settings and loads them from YAML.
//
// Settings start from Default and a YAML document only overrides the keys it
// names. Validate clamps numeric values into their supported ranges and
// rejects unknown enum names.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/okzkx/noobrp/common"
	"gopkg.in/yaml.v3"
)

// RenderMode selects the frame executor.
type RenderMode string

const (
	RenderModeSteps       RenderMode = "steps"
	RenderModeRenderGraph RenderMode = "render_graph"
)

// Valid reports whether m names a known executor.
func (m RenderMode) Valid() bool {
	return m == RenderModeSteps || m == RenderModeRenderGraph
}

// ToneMapping selects the operator baked into the color grading LUT.
type ToneMapping string

const (
	ToneMappingNone     ToneMapping = "none"
	ToneMappingReinhard ToneMapping = "reinhard"
	ToneMappingACES     ToneMapping = "aces"
)

// Valid reports whether t names a known operator.
func (t ToneMapping) Valid() bool {
	return t == ToneMappingNone || t == ToneMappingReinhard || t == ToneMappingACES
}

// Index returns the shader-side operator id.
func (t ToneMapping) Index() int32 {
	switch t {
	case ToneMappingReinhard:
		return 1
	case ToneMappingACES:
		return 2
	default:
		return 0
	}
}

// DrawMode selects how the renderer shades geometry.
type DrawMode string

const (
	DrawModeShaded    DrawMode = "shaded"
	DrawModeWireframe DrawMode = "wireframe"
	DrawModeUnlit     DrawMode = "unlit"
)

// Valid reports whether m names a known draw mode.
func (m DrawMode) Valid() bool {
	return m == DrawModeShaded || m == DrawModeWireframe || m == DrawModeUnlit
}

// Range limits of the tunable values.
const (
	MinRenderScale = 0.5
	MaxRenderScale = 2.0

	MinFXAAFixedThreshold    = 0.0312
	MaxFXAAFixedThreshold    = 0.0833
	MinFXAARelativeThreshold = 0.063
	MaxFXAARelativeThreshold = 0.333
)

// Bloom configures the bloom stage.
type Bloom struct {
	Threshold     float32 `yaml:"threshold"`
	ThresholdKnee float32 `yaml:"threshold_knee"`
	Intensity     float32 `yaml:"intensity"`
}

// ColorAdjustments configures exposure and grading.
type ColorAdjustments struct {
	PostExposure float32      `yaml:"post_exposure"`
	Contrast     float32      `yaml:"contrast"`
	ColorFilter  common.Color `yaml:"color_filter"`
	HueShift     float32      `yaml:"hue_shift"`
	Saturation   float32      `yaml:"saturation"`
}

// WhiteBalance configures the white balance shift.
type WhiteBalance struct {
	Temperature float32 `yaml:"temperature"`
	Tint        float32 `yaml:"tint"`
}

// FXAA configures the anti-aliasing pass.
type FXAA struct {
	FixedThreshold    float32 `yaml:"fixed_threshold"`
	RelativeThreshold float32 `yaml:"relative_threshold"`
	SubpixelBlending  float32 `yaml:"subpixel_blending"`
}

// MotionBlur configures the velocity blur pass.
type MotionBlur struct {
	Enabled  bool    `yaml:"enabled"`
	Strength float32 `yaml:"strength"`
	Samples  int     `yaml:"samples"`
}

// Shadows configures the shadow atlases.
type Shadows struct {
	DirectionalResolution int `yaml:"directional_resolution"`
	SpotPointResolution   int `yaml:"spot_point_resolution"`
}

// PostProcess toggles the post-process chain.
type PostProcess struct {
	Enabled bool `yaml:"enabled"`
	// ComputeKernel names the optional compute pass run on the final texture.
	// Empty disables the pass.
	ComputeKernel string `yaml:"compute_kernel"`
}

// Settings is the full render pipeline configuration.
type Settings struct {
	MaxShadowDistance float32          `yaml:"max_shadow_distance"`
	RenderScale       float32          `yaml:"render_scale"`
	RenderMode        RenderMode       `yaml:"render_mode"`
	DrawMode          DrawMode         `yaml:"draw_mode"`
	EnableDefaultPass bool             `yaml:"enable_default_pass"`
	MotionVectors     bool             `yaml:"motion_vectors"`
	ToneMapping       ToneMapping      `yaml:"tone_mapping"`
	Shadows           Shadows          `yaml:"shadows"`
	Bloom             Bloom            `yaml:"bloom"`
	ColorAdjustments  ColorAdjustments `yaml:"color_adjustments"`
	WhiteBalance      WhiteBalance     `yaml:"white_balance"`
	FXAA              FXAA             `yaml:"fxaa"`
	MotionBlur        MotionBlur       `yaml:"motion_blur"`
	PostProcess       PostProcess      `yaml:"post_process"`
}

// Default returns the settings of a freshly created pipeline asset.
//
// Returns:
//   - *Settings: the defaults
func Default() *Settings {
	return &Settings{
		MaxShadowDistance: 100,
		RenderScale:       1,
		RenderMode:        RenderModeSteps,
		DrawMode:          DrawModeShaded,
		MotionVectors:     true,
		ToneMapping:       ToneMappingACES,
		Shadows: Shadows{
			DirectionalResolution: 1024,
			SpotPointResolution:   1024,
		},
		Bloom: Bloom{
			Threshold:     0.5,
			ThresholdKnee: 0.5,
			Intensity:     1,
		},
		ColorAdjustments: ColorAdjustments{
			PostExposure: 0.5,
			Contrast:     17,
			ColorFilter:  common.ColorWhite,
			Saturation:   23,
		},
		FXAA: FXAA{
			FixedThreshold:    0.04,
			RelativeThreshold: 0.07,
			SubpixelBlending:  0.25,
		},
		MotionBlur: MotionBlur{
			Strength: 1,
			Samples:  8,
		},
		PostProcess: PostProcess{Enabled: true},
	}
}

// Load reads a YAML settings file over the defaults and validates it.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Settings: the loaded settings
//   - error: read, parse or validation failure
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Settings: the decoded settings
//   - error: parse or validation failure
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Marshal encodes the settings as YAML.
func (s *Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate normalizes enum names, fills empty ones with defaults and clamps
// numeric values into range.
//
// Returns:
//   - error: an unknown enum name
func (s *Settings) Validate() error {
	s.RenderMode = RenderMode(common.Coalesce(strings.ToLower(string(s.RenderMode)), string(RenderModeSteps)))
	if !s.RenderMode.Valid() {
		return fmt.Errorf("invalid render_mode %q: must be one of steps, render_graph", s.RenderMode)
	}

	s.DrawMode = DrawMode(common.Coalesce(strings.ToLower(string(s.DrawMode)), string(DrawModeShaded)))
	if !s.DrawMode.Valid() {
		return fmt.Errorf("invalid draw_mode %q: must be one of shaded, wireframe, unlit", s.DrawMode)
	}

	s.ToneMapping = ToneMapping(common.Coalesce(strings.ToLower(string(s.ToneMapping)), string(ToneMappingACES)))
	if !s.ToneMapping.Valid() {
		return fmt.Errorf("invalid tone_mapping %q: must be one of none, reinhard, aces", s.ToneMapping)
	}

	s.MaxShadowDistance = max(s.MaxShadowDistance, 0)
	s.RenderScale = common.Clamp(s.RenderScale, MinRenderScale, MaxRenderScale)
	s.Shadows.DirectionalResolution = common.Coalesce(max(s.Shadows.DirectionalResolution, 0), 1024)
	s.Shadows.SpotPointResolution = common.Coalesce(max(s.Shadows.SpotPointResolution, 0), 1024)

	s.Bloom.Threshold = max(s.Bloom.Threshold, 0)
	s.Bloom.ThresholdKnee = common.Saturate(s.Bloom.ThresholdKnee)
	s.Bloom.Intensity = max(s.Bloom.Intensity, 0)

	c := &s.ColorAdjustments
	c.Contrast = common.Clamp(c.Contrast, -100, 100)
	c.HueShift = common.Clamp(c.HueShift, -180, 180)
	c.Saturation = common.Clamp(c.Saturation, -100, 100)
	s.WhiteBalance.Temperature = common.Clamp(s.WhiteBalance.Temperature, -100, 100)
	s.WhiteBalance.Tint = common.Clamp(s.WhiteBalance.Tint, -100, 100)

	s.FXAA.FixedThreshold = common.Clamp(s.FXAA.FixedThreshold, MinFXAAFixedThreshold, MaxFXAAFixedThreshold)
	s.FXAA.RelativeThreshold = common.Clamp(s.FXAA.RelativeThreshold, MinFXAARelativeThreshold, MaxFXAARelativeThreshold)
	s.FXAA.SubpixelBlending = common.Saturate(s.FXAA.SubpixelBlending)

	s.MotionBlur.Strength = max(s.MotionBlur.Strength, 0)
	s.MotionBlur.Samples = common.Clamp(s.MotionBlur.Samples, 1, 32)
	return nil
}

// ShadowDistance returns the shadow distance for a camera: the configured
// maximum, limited by the camera far plane.
//
// Parameters:
//   - far: the camera far clip distance
//
// Returns:
//   - float32: the shadow distance
func (s *Settings) ShadowDistance(far float32) float32 {
	return min(s.MaxShadowDistance, far)
}

// BufferSize returns the render target size for a camera pixel size.
//
// Parameters:
//   - width, height: the camera pixel size
//
// Returns:
//   - w, h: the scaled size, at least one pixel each
func (s *Settings) BufferSize(width, height int) (w, h int) {
	scale := common.Clamp(s.RenderScale, MinRenderScale, MaxRenderScale)
	w = max(int(float32(width)*scale), 1)
	h = max(int(float32(height)*scale), 1)
	return w, h
}
