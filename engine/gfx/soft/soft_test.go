package soft

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/okzkx/noobrp/engine/postprocess"
	"github.com/okzkx/noobrp/engine/renderer"
	"github.com/okzkx/noobrp/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hdr(w, h int) gfx.TextureDesc {
	return gfx.TextureDesc{Width: w, Height: h, Filter: gfx.FilterBilinear, Format: gfx.FormatDefaultHDR}
}

func TestTextureSampling(t *testing.T) {
	tex := NewTexture(hdr(2, 1))
	tex.Set(0, 0, mgl32.Vec4{0, 0, 0, 1})
	tex.Set(1, 0, mgl32.Vec4{1, 1, 1, 1})

	// texel centers are exact, the midpoint is the average
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, tex.SampleLinear(0.25, 0.5))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, tex.SampleLinear(0.75, 0.5))
	assert.InDelta(t, 0.5, tex.SampleLinear(0.5, 0.5)[0], 1e-6)

	// out of range reads clamp to the edge
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, tex.At(5, 3))

	point := NewTexture(gfx.TextureDesc{Width: 2, Height: 1, Filter: gfx.FilterPoint})
	point.Set(1, 0, mgl32.Vec4{1, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, point.Sample(0.6, 0.5))
}

func TestBlitWithPostProcessDisabledIsACopy(t *testing.T) {
	dev := NewDevice(8, 8, WithWorkers(2))
	value := common.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}

	cb := gfx.NewCommandBuffer("copy")
	cb.GetTemporary(gfx.ColorAttachment, hdr(8, 8))
	cb.SetRenderTarget(gfx.ColorAttachment, gfx.ResourceNone)
	cb.Clear(false, true, value)
	cb.Blit(gfx.ColorAttachment, gfx.CameraTarget)
	cb.Release(gfx.ColorAttachment)
	require.NoError(t, dev.Submit(cb, nil))

	target := dev.Target()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			assert.Equal(t, value.Vec4(), target.At(x, y))
		}
	}
	assert.Equal(t, 1, dev.Frames())
}

func TestSubmitReusesPooledTextures(t *testing.T) {
	dev := NewDevice(4, 4)
	record := func() *gfx.CommandBuffer {
		cb := gfx.NewCommandBuffer("pool")
		cb.GetTemporary(gfx.ColorMap, hdr(4, 4))
		cb.Release(gfx.ColorMap)
		return cb
	}
	require.NoError(t, dev.Submit(record(), nil))
	assert.Equal(t, 1, dev.Stats().Allocations)
	require.NoError(t, dev.Submit(record(), nil))
	assert.Equal(t, 0, dev.Stats().Allocations)
}

func TestSubmitErrors(t *testing.T) {
	tests := []struct {
		name   string
		record func(cb *gfx.CommandBuffer)
		want   error
	}{
		{
			name: "copy size mismatch",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.ColorMap, hdr(4, 4))
				cb.GetTemporary(gfx.ColorAttachment, hdr(2, 2))
				cb.Copy(gfx.ColorMap, gfx.ColorAttachment)
				cb.Release(gfx.ColorMap)
				cb.Release(gfx.ColorAttachment)
			},
			want: ErrSizeMismatch,
		},
		{
			name: "unknown kernel",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.FinalTexture, hdr(4, 4))
				cb.Dispatch("Sepia", gfx.FinalTexture, 1, 1, 1)
				cb.Release(gfx.FinalTexture)
			},
			want: ErrUnknownKernel,
		},
		{
			name: "leak",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.FinalTexture, hdr(4, 4))
			},
			want: gfx.ErrLeaked,
		},
		{
			name: "draw without target",
			record: func(cb *gfx.CommandBuffer) {
				cb.DrawRenderers(gfx.DrawRenderers{})
			},
			want: ErrNoTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewDevice(4, 4)
			cb := gfx.NewCommandBuffer(tt.name)
			tt.record(cb)
			assert.ErrorIs(t, dev.Submit(cb, nil), tt.want)
			assert.Zero(t, dev.Frames())
		})
	}
}

func TestDispatchRunsKernelOverGroups(t *testing.T) {
	maxX := -1
	dev := NewDevice(4, 4, WithKernel("Half", func(x, _ int, c mgl32.Vec4) mgl32.Vec4 {
		maxX = max(maxX, x)
		return c.Mul(0.5)
	}))

	cb := gfx.NewCommandBuffer("compute")
	cb.GetTemporary(gfx.FinalTexture, hdr(20, 4))
	cb.SetRenderTarget(gfx.FinalTexture, gfx.ResourceNone)
	cb.Clear(false, true, common.ColorWhite)
	cb.Dispatch("Half", gfx.FinalTexture, 2, 1, 1)
	cb.Blit(gfx.FinalTexture, gfx.CameraTarget)
	cb.Release(gfx.FinalTexture)
	require.NoError(t, dev.Submit(cb, nil))
	assert.Equal(t, 1, dev.Stats().Dispatches)
	// two groups of eight cover the first sixteen columns only
	assert.Equal(t, 15, maxX)
}

func TestGrayscaleKernel(t *testing.T) {
	out := Grayscale(0, 0, mgl32.Vec4{1, 0, 0, 0.5})
	assert.InDelta(t, 0.2126, out[0], 1e-6)
	assert.Equal(t, out[0], out[1])
	assert.Equal(t, float32(0.5), out[3])
	assert.Equal(t, mgl32.Vec4{0, 1, 0.75, 1}, Invert(0, 0, mgl32.Vec4{1, 0, 0.25, 1}))
}

func TestSkyboxFillsOnlyEmptyDepth(t *testing.T) {
	dev := NewDevice(4, 4)
	sky := common.Color{R: 0, G: 0, B: 1, A: 1}

	cb := gfx.NewCommandBuffer("sky")
	cb.GetTemporary(gfx.ColorAttachment, hdr(4, 4))
	cb.GetTemporary(gfx.DepthAttachment, gfx.TextureDesc{Width: 4, Height: 4, DepthBits: 32, Format: gfx.FormatDepth})
	cb.SetRenderTarget(gfx.ColorAttachment, gfx.DepthAttachment)
	cb.Clear(true, true, common.ColorBlack)
	cb.DrawSkybox(sky)
	cb.Blit(gfx.ColorAttachment, gfx.CameraTarget)
	cb.Release(gfx.ColorAttachment)
	cb.Release(gfx.DepthAttachment)
	require.NoError(t, dev.Submit(cb, nil))

	assert.Equal(t, sky.Vec4(), dev.Target().At(2, 2))
}

func TestApplyThreshold(t *testing.T) {
	curve := postprocess.ThresholdCurve(1, 0)
	assert.Equal(t, mgl32.Vec3{}, ApplyThreshold(mgl32.Vec3{0.5, 0.5, 0.5}, curve))

	out := ApplyThreshold(mgl32.Vec3{3, 0, 0}, curve)
	assert.InDelta(t, 2, out[0], 1e-4)

	soft := ApplyThreshold(mgl32.Vec3{0.9, 0, 0}, postprocess.ThresholdCurve(1, 0.5))
	assert.Greater(t, soft[0], float32(0))
	assert.Less(t, soft[0], float32(0.9))
}

func TestBloomCombineScalesByIntensity(t *testing.T) {
	low := common.Color{R: 4, G: 4, B: 4, A: 1}
	high := common.Color{R: 0.25, G: 0.5, B: 0.75, A: 1}

	tests := []struct {
		intensity float32
		want      mgl32.Vec4
	}{
		{0, high.Vec4()},
		{0.5, mgl32.Vec4{2.25, 2.5, 2.75, 1}},
	}
	for _, tt := range tests {
		dev := NewDevice(4, 4)
		cb := gfx.NewCommandBuffer("combine")
		cb.GetTemporary(gfx.BloomPyramidIntermediate(0), hdr(4, 4))
		cb.GetTemporary(gfx.ColorAttachment, hdr(4, 4))
		cb.GetTemporary(gfx.BloomResult, hdr(4, 4))
		cb.SetRenderTarget(gfx.BloomPyramidIntermediate(0), gfx.ResourceNone)
		cb.Clear(false, true, low)
		cb.SetRenderTarget(gfx.ColorAttachment, gfx.ResourceNone)
		cb.Clear(false, true, high)
		cb.DrawFullscreen(gfx.BloomCombinePass, gfx.BloomResult, gfx.BloomPyramidIntermediate(0), gfx.ColorAttachment)
		cb.Copy(gfx.BloomResult, gfx.CameraTarget)
		cb.Release(gfx.BloomPyramidIntermediate(0))
		cb.Release(gfx.ColorAttachment)
		cb.Release(gfx.BloomResult)
		require.NoError(t, dev.Submit(cb, &gfx.Globals{BloomIntensity: tt.intensity}))

		got := dev.Target().At(1, 2)
		for i := range got {
			assert.InDelta(t, tt.want[i], got[i], 1e-5, "intensity=%v channel %d", tt.intensity, i)
		}
	}
}

func TestZeroBloomIntensityLeavesGradedImage(t *testing.T) {
	render := func(b config.Bloom) []float32 {
		dev := NewDevice(48, 32, WithWorkers(2))
		s := scene.NewScene("bloom",
			scene.WithObjects(
				game_object.NewGameObject(game_object.WithScale(8, 0.2, 8)),
				game_object.NewGameObject(game_object.WithPosition(0, 1, 0), game_object.WithColor(common.Color{R: 6, G: 5, B: 2, A: 1})),
			),
			scene.WithLights(light.NewLight(light.LightTypeDirectional, light.WithDirection(0.2, -1, 0.3))),
		)
		r := renderer.NewRenderer(dev, s, renderer.WithSettings(config.New(config.WithBloom(b))))
		cam := camera.NewCamera(camera.WithPosition(0, 3, -6), camera.WithPixelSize(48, 32))
		require.NoError(t, r.Render([]camera.Camera{cam}))
		return append([]float32(nil), dev.Target().Pix...)
	}

	// a threshold no texel reaches makes the prefilter output black, so the
	// combine adds nothing whatever the intensity
	unbloomed := render(config.Bloom{Threshold: 1e4, Intensity: 1})
	zero := render(config.Bloom{Threshold: 0, ThresholdKnee: 0.5, Intensity: 0})
	full := render(config.Bloom{Threshold: 0, ThresholdKnee: 0.5, Intensity: 1})

	assert.Equal(t, unbloomed, zero)
	assert.NotEqual(t, unbloomed, full)
}

func TestNeutralLUTIsIdentity(t *testing.T) {
	g := &gfx.Globals{
		ColorAdjustments: mgl32.Vec4{1, 1, 0, 1},
		ColorFilter:      mgl32.Vec4{1, 1, 1, 1},
		WhiteBalance:     mgl32.Vec4{1, 1, 1, 0},
		ToneMapping:      postprocess.ToneMappingNone,
	}
	lut := NewTexture(hdr(postprocess.LUTWidth, postprocess.LUTHeight))
	p := &passInput{dst: lut, g: g}
	for y := 0; y < lut.Height; y++ {
		for x := 0; x < lut.Width; x++ {
			lut.Set(x, y, bakeLUT(p, x, y))
		}
	}

	for _, v := range []float32{0.05, 0.18, 0.5, 1, 4} {
		c := mgl32.Vec3{v, v * 0.5, v * 0.25}
		got := SampleLUT(lut, postprocess.LUTLookup(c, lut.Height))
		for i := range got {
			assert.InEpsilon(t, c[i], got[i], 0.05, "value %v channel %d", v, i)
		}
	}
}

func TestBoundsPainterDepthTest(t *testing.T) {
	color := NewTexture(hdr(64, 64))
	depth := NewTexture(gfx.TextureDesc{Width: 64, Height: 64, DepthBits: 32, Format: gfx.FormatDepth})
	depth.Fill(mgl32.Vec4{1, 1, 1, 1})

	ctx := &PaintContext{
		Color:      color,
		Depth:      depth,
		Viewport:   common.Rect{Width: 64, Height: 64},
		View:       mgl32.LookAtV(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100),
	}
	red := game_object.NewGameObject(game_object.WithColor(common.Color{R: 1, A: 1}))
	green := game_object.NewGameObject(game_object.WithColor(common.Color{G: 1, A: 1}), game_object.WithPosition(0, 0, 2))
	unlit := gfx.UnlitPass

	p := NewBoundsPainter()
	require.NoError(t, p.DrawRenderers(ctx, gfx.DrawRenderers{Objects: []game_object.GameObject{red, green}, Override: &unlit}))

	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, color.At(32, 32), "nearer object wins")
	assert.Less(t, depth.Depth(32, 32), float32(1))
	assert.Equal(t, mgl32.Vec4{}, color.At(0, 0))
	assert.Equal(t, float32(1), depth.Depth(0, 0))
}

func TestRenderEndToEnd(t *testing.T) {
	for _, mode := range []config.RenderMode{config.RenderModeSteps, config.RenderModeRenderGraph} {
		t.Run(string(mode), func(t *testing.T) {
			dev := NewDevice(64, 36, WithWorkers(3))
			s := scene.NewScene("e2e",
				scene.WithObjects(
					game_object.NewGameObject(game_object.WithScale(8, 0.2, 8)),
					game_object.NewGameObject(game_object.WithPosition(0, 1, 0), game_object.WithColor(common.Color{R: 4, G: 3, B: 1, A: 1})),
				),
				scene.WithLights(light.NewLight(light.LightTypeDirectional, light.WithDirection(0.2, -1, 0.3), light.WithCastsShadows(true))),
			)
			settings := config.New(config.WithRenderMode(mode), config.WithComputeKernel("Grayscale"))
			r := renderer.NewRenderer(dev, s, renderer.WithSettings(settings))

			cam := camera.NewCamera(camera.WithPosition(0, 3, -6), camera.WithPixelSize(64, 36))
			require.NoError(t, r.Render([]camera.Camera{cam}))
			require.NoError(t, r.Render([]camera.Camera{cam}))

			assert.Equal(t, 2, dev.Frames())
			target := dev.Target()
			for _, v := range target.Pix {
				require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
			}
			img := dev.Present(32, 18)
			assert.Equal(t, 32, img.Bounds().Dx())
			assert.Equal(t, 18, img.Bounds().Dy())
		})
	}
}
