// Package postprocess records the post-process chain of a camera: bloom,
// color grading through a baked LUT, FXAA, motion blur, an optional compute
// pass and the final blit to the presentation target.
package postprocess

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/rs/zerolog"
)

// Bloom pyramid limits.
const (
	BloomMaxIterations = gfx.MaxBloomPyramidLevels
	BloomScaleLimit    = 2
)

// ComputeGroupSize is the thread group edge of the optional compute kernel.
const ComputeGroupSize = 8

// Sample scope names.
const (
	BloomSampleName      = "Bloom"
	LUTSampleName        = "LUT"
	ApplyLUTSampleName   = "Apply color LUT"
	FXAASampleName       = "FXAA"
	MotionBlurSampleName = "Motion Blur"
	FinalCopySampleName  = "Final Copy"
	ComputeSampleName    = "Execute compute shader"
	FinalBlitSampleName  = "Final Blit"
)

// Frame describes the camera frame the chain runs on.
type Frame struct {
	// Width and Height are the scaled buffer size.
	Width  int
	Height int
	// MotionVectors reports that MotionVectorMap was rendered this frame.
	MotionVectors bool
}

// Result lists the temporaries a Render call acquired that are still live.
type Result struct {
	// PyramidLevels is the number of bloom pyramid levels built.
	PyramidLevels int
	acquired      []gfx.ResourceID
}

// Acquired returns the live temporaries in acquisition order.
func (r *Result) Acquired() []gfx.ResourceID {
	return r.acquired
}

// Release records the release of every live temporary.
//
// Parameters:
//   - cb: the camera's command buffer
func (r *Result) Release(cb *gfx.CommandBuffer) {
	for _, id := range r.acquired {
		cb.Release(id)
	}
	r.acquired = nil
}

// Compositor records the post-process chain.
type Compositor struct {
	settings *config.Settings
	logger   zerolog.Logger
}

// NewCompositor creates a Compositor.
//
// Parameters:
//   - opts: variadic list of CompositorOption functions
//
// Returns:
//   - *Compositor: the compositor
func NewCompositor(opts ...CompositorOption) *Compositor {
	c := &Compositor{
		settings: config.Default(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render records the chain reading ColorAttachment and ending in CameraTarget.
// With post-processing disabled it records a single blit and acquires nothing.
//
// Parameters:
//   - cb: the camera's command buffer
//   - g: the camera's uniform bundle
//   - f: the frame size and inputs
//
// Returns:
//   - Result: the live temporaries to release at end of frame
func (c *Compositor) Render(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame) Result {
	var res Result
	if !c.settings.PostProcess.Enabled {
		cb.Blit(gfx.ColorAttachment, gfx.CameraTarget)
		return res
	}

	res.PyramidLevels = c.bloom(cb, g, f, &res)
	c.colorGrading(cb, g, f, &res)
	c.fxaa(cb, g, f, &res)
	c.motionBlur(cb, g, f, &res)
	c.final(cb, f, &res)

	c.logger.Debug().
		Int("width", f.Width).
		Int("height", f.Height).
		Int("pyramid_levels", res.PyramidLevels).
		Msg("post process recorded")
	return res
}

func (c *Compositor) acquire(cb *gfx.CommandBuffer, res *Result, id gfx.ResourceID, desc gfx.TextureDesc) {
	cb.GetTemporary(id, desc)
	res.acquired = append(res.acquired, id)
}

func colorDesc(w, h int, format gfx.Format) gfx.TextureDesc {
	return gfx.TextureDesc{Width: max(w, 1), Height: max(h, 1), Filter: gfx.FilterBilinear, Format: format}
}

// bloom builds the pyramid and returns the number of levels it used.
func (c *Compositor) bloom(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame, res *Result) int {
	cb.BeginSample(BloomSampleName)
	defer cb.EndSample(BloomSampleName)

	b := c.settings.Bloom
	g.BloomThreshold = ThresholdCurve(b.Threshold, b.ThresholdKnee)
	g.BloomIntensity = b.Intensity

	width, height := f.Width/2, f.Height/2
	c.acquire(cb, res, gfx.BloomPrefilter, colorDesc(width, height, gfx.FormatDefaultHDR))
	cb.DrawFullscreen(gfx.BloomPrefilterPass, gfx.BloomPrefilter, gfx.ColorAttachment)

	width /= 2
	height /= 2
	var pyramid []gfx.ResourceID
	from := gfx.BloomPrefilter
	levels := 0
	for ; levels < BloomMaxIterations; levels++ {
		if width < BloomScaleLimit || height < BloomScaleLimit {
			break
		}
		mid := gfx.BloomPyramidIntermediate(levels)
		to := gfx.BloomPyramidResult(levels)
		desc := colorDesc(width, height, gfx.FormatDefaultHDR)
		cb.GetTemporary(mid, desc)
		cb.GetTemporary(to, desc)
		pyramid = append(pyramid, mid, to)

		cb.DrawFullscreen(gfx.BloomHorizontalPass, mid, from)
		cb.DrawFullscreen(gfx.BloomVerticalPass, to, mid)

		from = to
		width /= 2
		height /= 2
	}

	// Walk back up the pyramid: each level's blurred result is combined with
	// the upsampled coarser level into that level's intermediate.
	for i := levels - 1; i >= 1; i-- {
		coarse := gfx.BloomPyramidIntermediate(i)
		if i == levels-1 {
			coarse = gfx.BloomPyramidResult(i)
		}
		cb.DrawFullscreen(gfx.BloomCombinePass, gfx.BloomPyramidIntermediate(i-1), coarse, gfx.BloomPyramidResult(i-1))
	}

	top := gfx.BloomPrefilter
	switch {
	case levels > 1:
		top = gfx.BloomPyramidIntermediate(0)
	case levels == 1:
		top = gfx.BloomPyramidResult(0)
	}
	c.acquire(cb, res, gfx.BloomResult, colorDesc(f.Width, f.Height, gfx.FormatDefaultHDR))
	cb.DrawFullscreen(gfx.BloomCombinePass, gfx.BloomResult, top, gfx.ColorAttachment)

	for _, id := range pyramid {
		cb.Release(id)
	}
	return levels
}

func (c *Compositor) colorGrading(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame, res *Result) {
	cb.BeginSample(LUTSampleName)
	adj := c.settings.ColorAdjustments
	g.ColorAdjustments = ColorAdjustmentsVector(adj)
	g.ColorFilter = adj.ColorFilter.Linear().Vec4()
	wb := c.settings.WhiteBalance
	g.WhiteBalance = ColorBalanceToLMSCoeffs(wb.Temperature, wb.Tint).Vec4(0)
	g.ToneMapping = c.settings.ToneMapping.Index()
	g.ColorGradingLUTParameters = LUTParameters(LUTWidth, LUTHeight)

	c.acquire(cb, res, gfx.ColorGradingLUT, colorDesc(LUTWidth, LUTHeight, gfx.FormatDefaultHDR))
	// The bake pass ignores its input and writes the full LUT.
	cb.DrawFullscreen(gfx.ToneMappingPass, gfx.ColorGradingLUT, gfx.BloomResult)
	cb.EndSample(LUTSampleName)

	cb.BeginSample(ApplyLUTSampleName)
	g.LUTScaleOffset = LUTScaleOffset(LUTWidth, LUTHeight)
	c.acquire(cb, res, gfx.ColorLUTResult, colorDesc(f.Width, f.Height, gfx.FormatDefault))
	cb.DrawFullscreen(gfx.FinalPass, gfx.ColorLUTResult, gfx.BloomResult, gfx.ColorGradingLUT)
	cb.EndSample(ApplyLUTSampleName)
}

func (c *Compositor) fxaa(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame, res *Result) {
	cb.BeginSample(FXAASampleName)
	defer cb.EndSample(FXAASampleName)

	a := c.settings.FXAA
	g.FXAAConfig = mgl32.Vec4{a.FixedThreshold, a.RelativeThreshold, a.SubpixelBlending, 0}
	c.acquire(cb, res, gfx.AATexture, colorDesc(f.Width, f.Height, gfx.FormatDefault))
	cb.DrawFullscreen(gfx.FXAAPass, gfx.AATexture, gfx.ColorLUTResult)
}

func (c *Compositor) motionBlur(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame, res *Result) {
	cb.BeginSample(MotionBlurSampleName)
	defer cb.EndSample(MotionBlurSampleName)

	mb := c.settings.MotionBlur
	c.acquire(cb, res, gfx.MotionBlurResult, colorDesc(f.Width, f.Height, gfx.FormatDefault))
	if mb.Enabled && f.MotionVectors {
		g.MotionBlurStrength = mb.Strength
		g.MotionBlurSamples = int32(mb.Samples)
		cb.DrawFullscreen(gfx.MotionBlurPass, gfx.MotionBlurResult, gfx.AATexture, gfx.MotionVectorMap)
		return
	}
	cb.Blit(gfx.AATexture, gfx.MotionBlurResult)
}

func (c *Compositor) final(cb *gfx.CommandBuffer, f Frame, res *Result) {
	cb.BeginSample(FinalCopySampleName)
	desc := colorDesc(f.Width, f.Height, gfx.FormatDefault)
	desc.RandomWrite = true
	c.acquire(cb, res, gfx.FinalTexture, desc)
	cb.Blit(gfx.MotionBlurResult, gfx.FinalTexture)
	cb.EndSample(FinalCopySampleName)

	if kernel := c.settings.PostProcess.ComputeKernel; kernel != "" {
		cb.BeginSample(ComputeSampleName)
		cb.Dispatch(kernel, gfx.FinalTexture,
			common.CeilDiv(f.Width, ComputeGroupSize),
			common.CeilDiv(f.Height, ComputeGroupSize),
			1)
		cb.EndSample(ComputeSampleName)
	}

	cb.BeginSample(FinalBlitSampleName)
	cb.DrawFullscreen(gfx.CopyPass, gfx.CameraTarget, gfx.FinalTexture)
	cb.EndSample(FinalBlitSampleName)
}
