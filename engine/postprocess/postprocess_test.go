package postprocess

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record runs the chain between an acquire and release of its inputs, the way
// the frame orchestrator brackets it.
func record(t *testing.T, s *config.Settings, f Frame) (*gfx.CommandBuffer, *gfx.Globals, Result) {
	t.Helper()
	cb := gfx.NewCommandBuffer("post")
	cb.GetTemporary(gfx.ColorAttachment, gfx.TextureDesc{Width: f.Width, Height: f.Height, Format: gfx.FormatDefaultHDR})
	if f.MotionVectors {
		cb.GetTemporary(gfx.MotionVectorMap, gfx.TextureDesc{Width: f.Width, Height: f.Height, DepthBits: 24})
	}
	g := &gfx.Globals{}
	res := NewCompositor(WithSettings(s)).Render(cb, g, f)
	res.Release(cb)
	cb.Release(gfx.ColorAttachment)
	if f.MotionVectors {
		cb.Release(gfx.MotionVectorMap)
	}
	require.NoError(t, gfx.Validate(cb))
	return cb, g, res
}

func indexOf(cb *gfx.CommandBuffer, match func(gfx.Command) bool) int {
	for i, c := range cb.Commands() {
		if match(c) {
			return i
		}
	}
	return -1
}

func TestDisabledIsSingleBlit(t *testing.T) {
	cb := gfx.NewCommandBuffer("post")
	res := NewCompositor(WithSettings(config.New(config.WithPostProcess(false)))).Render(cb, &gfx.Globals{}, Frame{Width: 64, Height: 64})

	require.Equal(t, 1, cb.Len())
	assert.Equal(t, gfx.Blit{Src: gfx.ColorAttachment, Dst: gfx.CameraTarget}, cb.Commands()[0])
	assert.Empty(t, res.Acquired())
}

func TestPyramidLevels(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		levels        int
		top           gfx.ResourceID
	}{
		{"full", 1280, 720, 4, gfx.BloomPyramidIntermediate(0)},
		{"two", 16, 16, 2, gfx.BloomPyramidIntermediate(0)},
		{"one", 8, 8, 1, gfx.BloomPyramidResult(0)},
		{"none", 4, 4, 0, gfx.BloomPrefilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, _, res := record(t, config.Default(), Frame{Width: tt.width, Height: tt.height})
			assert.Equal(t, tt.levels, res.PyramidLevels)

			i := indexOf(cb, func(c gfx.Command) bool {
				d, ok := c.(gfx.DrawFullscreen)
				return ok && d.Target == gfx.BloomResult
			})
			require.GreaterOrEqual(t, i, 0)
			d := cb.Commands()[i].(gfx.DrawFullscreen)
			assert.Equal(t, gfx.BloomCombinePass, d.Pass)
			assert.Equal(t, []gfx.ResourceID{tt.top, gfx.ColorAttachment}, d.Sources)
		})
	}
}

func TestPyramidReleasedWithinBloom(t *testing.T) {
	cb, _, res := record(t, config.Default(), Frame{Width: 1280, Height: 720})
	require.Equal(t, 4, res.PyramidLevels)

	end := indexOf(cb, func(c gfx.Command) bool { return c == gfx.Command(gfx.EndSample{Name: BloomSampleName}) })
	require.GreaterOrEqual(t, end, 0)
	for level := 0; level < 4; level++ {
		for _, id := range []gfx.ResourceID{gfx.BloomPyramidIntermediate(level), gfx.BloomPyramidResult(level)} {
			rel := indexOf(cb, func(c gfx.Command) bool { return c == gfx.Command(gfx.Release{ID: id}) })
			assert.True(t, rel >= 0 && rel < end, "%s released at %d, bloom ends at %d", id, rel, end)
		}
	}
	assert.NotContains(t, res.Acquired(), gfx.BloomPyramid0)
}

func TestChainOrderAndFormats(t *testing.T) {
	cb, g, res := record(t, config.New(config.WithComputeKernel("invert")), Frame{Width: 1280, Height: 721})

	assert.Equal(t, []gfx.ResourceID{
		gfx.BloomPrefilter, gfx.BloomResult, gfx.ColorGradingLUT, gfx.ColorLUTResult,
		gfx.AATexture, gfx.MotionBlurResult, gfx.FinalTexture,
	}, res.Acquired())

	descs := map[gfx.ResourceID]gfx.TextureDesc{}
	for _, c := range cb.Commands() {
		if gt, ok := c.(gfx.GetTemporary); ok {
			descs[gt.ID] = gt.Desc
		}
	}
	assert.Equal(t, 640, descs[gfx.BloomPrefilter].Width)
	assert.Equal(t, 360, descs[gfx.BloomPrefilter].Height)
	assert.Equal(t, gfx.TextureDesc{Width: LUTWidth, Height: LUTHeight, Filter: gfx.FilterBilinear, Format: gfx.FormatDefaultHDR}, descs[gfx.ColorGradingLUT])
	assert.Equal(t, gfx.FormatDefault, descs[gfx.ColorLUTResult].Format)
	assert.True(t, descs[gfx.FinalTexture].RandomWrite)

	dispatch := indexOf(cb, func(c gfx.Command) bool { return c.Op() == gfx.OpDispatch })
	require.GreaterOrEqual(t, dispatch, 0)
	assert.Equal(t, gfx.Dispatch{Kernel: "invert", Target: gfx.FinalTexture, GroupsX: 160, GroupsY: 91, GroupsZ: 1}, cb.Commands()[dispatch])

	last := indexOf(cb, func(c gfx.Command) bool {
		d, ok := c.(gfx.DrawFullscreen)
		return ok && d.Target == gfx.CameraTarget
	})
	assert.Greater(t, last, dispatch)
	assert.Equal(t, gfx.CopyPass, cb.Commands()[last].(gfx.DrawFullscreen).Pass)

	assert.Equal(t, mgl32.Vec4{0.04, 0.07, 0.25, 0}, g.FXAAConfig)
	assert.Equal(t, LUTScaleOffset(LUTWidth, LUTHeight), g.LUTScaleOffset)
	assert.Equal(t, ToneMappingACES, g.ToneMapping)
}

func TestNoComputeKernelNoDispatch(t *testing.T) {
	cb, _, _ := record(t, config.Default(), Frame{Width: 64, Height: 64})
	assert.Zero(t, cb.Count(gfx.OpDispatch))
}

func TestMotionBlurNeedsVectors(t *testing.T) {
	s := config.New(config.WithMotionBlur(true))

	cb, _, _ := record(t, s, Frame{Width: 64, Height: 64})
	assert.GreaterOrEqual(t, indexOf(cb, func(c gfx.Command) bool {
		return c == gfx.Command(gfx.Blit{Src: gfx.AATexture, Dst: gfx.MotionBlurResult})
	}), 0)

	cb, g, _ := record(t, s, Frame{Width: 64, Height: 64, MotionVectors: true})
	i := indexOf(cb, func(c gfx.Command) bool {
		d, ok := c.(gfx.DrawFullscreen)
		return ok && d.Pass == gfx.MotionBlurPass
	})
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, []gfx.ResourceID{gfx.AATexture, gfx.MotionVectorMap}, cb.Commands()[i].(gfx.DrawFullscreen).Sources)
	assert.Equal(t, int32(8), g.MotionBlurSamples)
}

func TestThresholdCurve(t *testing.T) {
	v := ThresholdCurve(0.5, 0.5)
	lin := common.GammaToLinear(0.5)
	knee := lin * 0.5
	assert.InDelta(t, lin, v[0], 1e-6)
	assert.InDelta(t, knee-lin, v[1], 1e-6)
	assert.InDelta(t, 2*knee, v[2], 1e-6)
	assert.InDelta(t, 0.25/(knee+0.00001), v[3], 1e-3)
}

func TestColorAdjustmentsVector(t *testing.T) {
	v := ColorAdjustmentsVector(config.Default().ColorAdjustments)
	assert.InDelta(t, math.Sqrt2, v[0], 1e-5)
	assert.InDelta(t, 1.17, v[1], 1e-6)
	assert.InDelta(t, 0, v[2], 1e-6)
	assert.InDelta(t, 1.23, v[3], 1e-6)
}

func TestLUTVectors(t *testing.T) {
	assert.Equal(t, mgl32.Vec4{32, 0.5 / 1024, 0.5 / 32, 32.0 / 31.0}, LUTParameters(LUTWidth, LUTHeight))
	assert.Equal(t, mgl32.Vec4{1.0 / 1024, 1.0 / 32, 31, 0}, LUTScaleOffset(LUTWidth, LUTHeight))
}

func TestNeutralWhiteBalance(t *testing.T) {
	wb := ColorBalanceToLMSCoeffs(0, 0)
	for i := range wb {
		assert.InDelta(t, 1, wb[i], 1e-3)
	}
	warm := ColorBalanceToLMSCoeffs(50, 0)
	assert.Greater(t, warm[0]/warm[2], wb[0]/wb[2])
}

func neutralGlobals() *gfx.Globals {
	return &gfx.Globals{
		ColorAdjustments: mgl32.Vec4{1, 1, 0, 1},
		ColorFilter:      mgl32.Vec4{1, 1, 1, 1},
		WhiteBalance:     mgl32.Vec4{1, 1, 1, 0},
		ToneMapping:      ToneMappingNone,
	}
}

func TestNeutralGradeIsIdentity(t *testing.T) {
	g := neutralGlobals()
	for _, c := range []mgl32.Vec3{{0, 0, 0}, {0.18, 0.18, 0.18}, {1, 0.5, 0.25}, {4, 2, 0.1}} {
		out := Grade(c, g)
		for i := range c {
			assert.InDelta(t, c[i], out[i], float64(1e-3*max(1, c[i])), "color %v", c)
		}
	}
}

func TestNeutralLUTRoundTrips(t *testing.T) {
	// Texels below LogC's black offset decode to negative values that grading clamps.
	g := neutralGlobals()
	for _, texel := range [][2]int{{3*LUTResolution + 5, 7}, {LUTWidth - 1, LUTHeight - 1}, {3*LUTResolution + 10, 20}, {4*LUTResolution + 4, 4}} {
		x, y := texel[0], texel[1]
		lin := BakeLUTTexel(x, y, LUTResolution, g)
		coord := LUTLookup(lin, LUTResolution)
		assert.InDelta(t, float32(x%LUTResolution), coord[0], 1e-2)
		assert.InDelta(t, float32(y), coord[1], 1e-2)
		assert.InDelta(t, float32(x/LUTResolution), coord[2], 1e-2)
	}
}

func TestToneMap(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, ToneMap(mgl32.Vec3{1, 1, 1}, ToneMappingReinhard))
	assert.Equal(t, mgl32.Vec3{2, 3, 4}, ToneMap(mgl32.Vec3{2, 3, 4}, ToneMappingNone))

	aces := ToneMap(mgl32.Vec3{0, 1, 100}, ToneMappingACES)
	assert.InDelta(t, 0, aces[0], 1e-6)
	assert.Less(t, aces[1], float32(1))
	assert.LessOrEqual(t, aces[2], float32(1))
}

func TestHueShiftFullTurnIsIdentity(t *testing.T) {
	g := neutralGlobals()
	g.ColorAdjustments[2] = 1
	c := mgl32.Vec3{0.8, 0.3, 0.1}
	out := Grade(c, g)
	for i := range c {
		assert.InDelta(t, c[i], out[i], 1e-3)
	}
}
