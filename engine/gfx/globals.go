package gfx

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SpotLightCapacity is the number of spot light slots per frame.
	SpotLightCapacity = 4
	// PointLightCapacity is the number of point light slots per frame.
	PointLightCapacity = 2
	// OtherLightCapacity is the size of the combined spot/point arrays. Spot
	// lights occupy [0, SpotLightCapacity), point lights the rest.
	OtherLightCapacity = SpotLightCapacity + PointLightCapacity
	// CascadeCount is the number of directional shadow cascades.
	CascadeCount = 4
	// SpotPointTileCount is the number of tiles in the spot/point shadow atlas.
	SpotPointTileCount = 16
)

// GlobalsSize is the marshaled size of Globals in bytes: 38 vec4 slots and 24 mat4 slots.
const GlobalsSize = 38*16 + 24*64

// Globals is the per-frame uniform bundle. Each pipeline stage writes the
// fields it owns; the device uploads the whole bundle once when the camera's
// command buffer is submitted.
//
// Layout (std140, every field 16-byte aligned):
//
//	vec4  buffer_size                      (1/w, 1/h, w, h)
//	vec4  directional_light_color
//	vec4  directional_light_direction
//	ivec4 counts                           (spot, point, tone mapping, 0)
//	vec4  light_colors[6]
//	vec4  light_positions[6]
//	vec4  light_directions[6]
//	ivec4 light_shadow_tiles[2]            first tile per light slot, -1 when none
//	mat4  directional_shadow_matrices[4]
//	vec4  culling_spheres[4]
//	mat4  world_to_shadow_map_coord[16]
//	mat4  view, projection, view_projection, previous_view_projection
//	vec4  camera_position
//	vec4  bloom_threshold
//	vec4  bloom_params                     (intensity, 0, 0, 0)
//	vec4  color_adjustments
//	vec4  color_filter
//	vec4  white_balance
//	vec4  color_grading_lut_parameters
//	vec4  lut_scale_offset
//	vec4  fxaa_config
//	vec4  motion_blur_params               (strength, samples, 0, 0)
type Globals struct {
	BufferSize mgl32.Vec4

	DirectionalLightColor     mgl32.Vec4
	DirectionalLightDirection mgl32.Vec4
	SpotLightCount            int32
	PointLightCount           int32
	ToneMapping               int32
	LightColors               [OtherLightCapacity]mgl32.Vec4
	LightPositions            [OtherLightCapacity]mgl32.Vec4
	LightDirections           [OtherLightCapacity]mgl32.Vec4
	LightShadowTiles          [OtherLightCapacity]int32

	DirectionalShadowMatrices     [CascadeCount]mgl32.Mat4
	CullingSpheres                [CascadeCount]mgl32.Vec4
	WorldToShadowMapCoordMatrices [SpotPointTileCount]mgl32.Mat4

	View                   mgl32.Mat4
	Projection             mgl32.Mat4
	ViewProjection         mgl32.Mat4
	PreviousViewProjection mgl32.Mat4
	CameraPosition         mgl32.Vec4

	BloomThreshold            mgl32.Vec4
	BloomIntensity            float32
	ColorAdjustments          mgl32.Vec4
	ColorFilter               mgl32.Vec4
	WhiteBalance              mgl32.Vec4
	ColorGradingLUTParameters mgl32.Vec4
	LUTScaleOffset            mgl32.Vec4
	FXAAConfig                mgl32.Vec4
	MotionBlurStrength        float32
	MotionBlurSamples         int32
}

// Reset zeroes every field. Stages rely on the zero state meaning "absent",
// e.g. all-zero culling spheres mean no directional shadow.
func (g *Globals) Reset() {
	*g = Globals{}
}

// Size returns the marshaled size in bytes.
func (g *Globals) Size() int {
	return GlobalsSize
}

// Marshal serializes the bundle into a little-endian buffer suitable for a
// uniform buffer upload.
//
// Returns:
//   - []byte: GlobalsSize bytes
func (g *Globals) Marshal() []byte {
	w := globalsWriter{buf: make([]byte, GlobalsSize)}

	w.vec4(g.BufferSize)
	w.vec4(g.DirectionalLightColor)
	w.vec4(g.DirectionalLightDirection)
	w.ivec4(g.SpotLightCount, g.PointLightCount, g.ToneMapping, 0)
	for _, v := range g.LightColors {
		w.vec4(v)
	}
	for _, v := range g.LightPositions {
		w.vec4(v)
	}
	for _, v := range g.LightDirections {
		w.vec4(v)
	}
	t := g.LightShadowTiles
	w.ivec4(t[0], t[1], t[2], t[3])
	w.ivec4(t[4], t[5], -1, -1)
	for _, m := range g.DirectionalShadowMatrices {
		w.mat4(m)
	}
	for _, v := range g.CullingSpheres {
		w.vec4(v)
	}
	for _, m := range g.WorldToShadowMapCoordMatrices {
		w.mat4(m)
	}
	w.mat4(g.View)
	w.mat4(g.Projection)
	w.mat4(g.ViewProjection)
	w.mat4(g.PreviousViewProjection)
	w.vec4(g.CameraPosition)
	w.vec4(g.BloomThreshold)
	w.vec4(mgl32.Vec4{g.BloomIntensity})
	w.vec4(g.ColorAdjustments)
	w.vec4(g.ColorFilter)
	w.vec4(g.WhiteBalance)
	w.vec4(g.ColorGradingLUTParameters)
	w.vec4(g.LUTScaleOffset)
	w.vec4(g.FXAAConfig)
	w.vec4(mgl32.Vec4{g.MotionBlurStrength, float32(g.MotionBlurSamples)})
	return w.buf
}

type globalsWriter struct {
	buf []byte
	off int
}

func (w *globalsWriter) f32(v float32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:w.off+4], math.Float32bits(v))
	w.off += 4
}

func (w *globalsWriter) vec4(v mgl32.Vec4) {
	for _, c := range v {
		w.f32(c)
	}
}

func (w *globalsWriter) ivec4(a, b, c, d int32) {
	for _, v := range [4]int32{a, b, c, d} {
		binary.LittleEndian.PutUint32(w.buf[w.off:w.off+4], uint32(v))
		w.off += 4
	}
}

func (w *globalsWriter) mat4(m mgl32.Mat4) {
	for _, c := range m {
		w.f32(c)
	}
}
