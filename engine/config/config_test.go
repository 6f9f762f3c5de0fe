package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okzkx/noobrp/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, float32(100), s.MaxShadowDistance)
	assert.Equal(t, float32(1), s.RenderScale)
	assert.Equal(t, RenderModeSteps, s.RenderMode)
	assert.Equal(t, ToneMappingACES, s.ToneMapping)
	assert.Equal(t, Bloom{Threshold: 0.5, ThresholdKnee: 0.5, Intensity: 1}, s.Bloom)
	assert.Equal(t, FXAA{FixedThreshold: 0.04, RelativeThreshold: 0.07, SubpixelBlending: 0.25}, s.FXAA)
	assert.Equal(t, float32(17), s.ColorAdjustments.Contrast)
	assert.Equal(t, float32(23), s.ColorAdjustments.Saturation)
	assert.True(t, s.PostProcess.Enabled)
}

func TestParseOverridesOnlyNamedKeys(t *testing.T) {
	s, err := Parse([]byte(`
render_scale: 1.5
render_mode: RENDER_GRAPH
bloom:
  intensity: 2
color_adjustments:
  color_filter: {r: 1, g: 0.5, b: 0.25, a: 1}
post_process:
  compute_kernel: invert
`))
	require.NoError(t, err)

	assert.Equal(t, float32(1.5), s.RenderScale)
	assert.Equal(t, RenderModeRenderGraph, s.RenderMode)
	assert.Equal(t, float32(2), s.Bloom.Intensity)
	assert.Equal(t, float32(0.5), s.Bloom.Threshold)
	assert.Equal(t, common.Color{R: 1, G: 0.5, B: 0.25, A: 1}, s.ColorAdjustments.ColorFilter)
	assert.Equal(t, "invert", s.PostProcess.ComputeKernel)
	assert.True(t, s.PostProcess.Enabled)
}

func TestValidateClamps(t *testing.T) {
	s, err := Parse([]byte(`
render_scale: 5
bloom: {threshold: -1, threshold_knee: 3}
color_adjustments: {contrast: 500, hue_shift: -400, saturation: -101}
white_balance: {temperature: 250}
fxaa: {fixed_threshold: 1, relative_threshold: 0, subpixel_blending: 2}
`))
	require.NoError(t, err)

	assert.Equal(t, float32(MaxRenderScale), s.RenderScale)
	assert.Equal(t, float32(0), s.Bloom.Threshold)
	assert.Equal(t, float32(1), s.Bloom.ThresholdKnee)
	assert.Equal(t, float32(100), s.ColorAdjustments.Contrast)
	assert.Equal(t, float32(-180), s.ColorAdjustments.HueShift)
	assert.Equal(t, float32(-100), s.ColorAdjustments.Saturation)
	assert.Equal(t, float32(100), s.WhiteBalance.Temperature)
	assert.Equal(t, float32(MaxFXAAFixedThreshold), s.FXAA.FixedThreshold)
	assert.Equal(t, float32(MinFXAARelativeThreshold), s.FXAA.RelativeThreshold)
	assert.Equal(t, float32(1), s.FXAA.SubpixelBlending)
}

func TestParseRejectsUnknownEnums(t *testing.T) {
	tests := []string{
		"render_mode: deferred",
		"draw_mode: xray",
		"tone_mapping: filmic",
		"render_scale: [1, 2]",
	}
	for _, doc := range tests {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_shadow_distance: 40\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(40), s.MaxShadowDistance)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTripKeepsSettings(t *testing.T) {
	s := New(WithRenderScale(0.75), WithToneMapping(ToneMappingReinhard), WithMotionBlur(true))
	data, err := s.Marshal()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestShadowDistanceAndBufferSize(t *testing.T) {
	s := New(WithMaxShadowDistance(100), WithRenderScale(0.5))
	assert.Equal(t, float32(50), s.ShadowDistance(50))
	assert.Equal(t, float32(100), s.ShadowDistance(1000))

	w, h := s.BufferSize(1280, 721)
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)

	w, h = New(WithRenderScale(9)).BufferSize(100, 50)
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestNewFallsBackOnBadEnum(t *testing.T) {
	s := New(WithDrawMode("xray"), WithRenderMode(RenderModeRenderGraph))
	assert.Equal(t, DrawModeShaded, s.DrawMode)
	assert.Equal(t, RenderModeRenderGraph, s.RenderMode)
}
