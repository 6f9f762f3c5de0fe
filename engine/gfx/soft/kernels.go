package soft

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/postprocess"
)

// passInput is what a full-screen kernel reads.
type passInput struct {
	dst  *Texture
	srcs []*Texture
	g    *gfx.Globals
}

type passFunc func(p *passInput, x, y int) mgl32.Vec4

// minSources is the number of inputs each full-screen pass binds.
var minSources = map[gfx.PassKind]int{
	gfx.PassCopy:            1,
	gfx.PassBloomPrefilter:  1,
	gfx.PassBloomHorizontal: 1,
	gfx.PassBloomVertical:   1,
	gfx.PassBloomCombine:    2,
	gfx.PassToneMapping:     0,
	gfx.PassFinal:           2,
	gfx.PassFXAA:            1,
	gfx.PassMotionBlur:      2,
}

func passKernel(pass gfx.Pass, sources int) (passFunc, error) {
	if _, ok := pass.Index(); !ok {
		return nil, fmt.Errorf("pass %s: not hosted by its material", pass)
	}
	need, ok := minSources[pass.Kind]
	if !ok {
		return nil, fmt.Errorf("pass %s: not a full-screen pass", pass)
	}
	if sources < need {
		return nil, fmt.Errorf("pass %s: %d sources bound, %d needed", pass, sources, need)
	}

	switch pass.Kind {
	case gfx.PassCopy:
		return copyPass, nil
	case gfx.PassBloomPrefilter:
		return bloomPrefilter, nil
	case gfx.PassBloomHorizontal:
		return bloomHorizontal, nil
	case gfx.PassBloomVertical:
		return bloomVertical, nil
	case gfx.PassBloomCombine:
		return bloomCombine, nil
	case gfx.PassToneMapping:
		return bakeLUT, nil
	case gfx.PassFinal:
		return applyLUT, nil
	case gfx.PassFXAA:
		return fxaa, nil
	default:
		return motionBlur, nil
	}
}

func copyPass(p *passInput, x, y int) mgl32.Vec4 {
	u, v := p.dst.UV(x, y)
	return p.srcs[0].SampleLinear(u, v)
}

// bloomPrefilter downsamples and keeps the part of each texel above the
// soft-knee threshold curve.
func bloomPrefilter(p *passInput, x, y int) mgl32.Vec4 {
	u, v := p.dst.UV(x, y)
	c := p.srcs[0].SampleLinear(u, v)
	rgb := ApplyThreshold(c.Vec3(), p.g.BloomThreshold)
	return rgb.Vec4(1)
}

// ApplyThreshold scales c by its contribution under the packed threshold
// curve (t, knee-t, 2*knee, 0.25/knee).
func ApplyThreshold(c mgl32.Vec3, curve mgl32.Vec4) mgl32.Vec3 {
	brightness := max(c[0], c[1], c[2])
	soft := common.Clamp(brightness+curve[1], 0, curve[2])
	soft = soft * soft * curve[3]
	contribution := max(soft, brightness-curve[0]) / max(brightness, 0.00001)
	return c.Mul(contribution)
}

var (
	horizontalOffsets = [9]float32{-4, -3, -2, -1, 0, 1, 2, 3, 4}
	horizontalWeights = [9]float32{
		0.01621622, 0.05405405, 0.12162162, 0.19459459,
		0.22702703,
		0.19459459, 0.12162162, 0.05405405, 0.01621622,
	}
	verticalOffsets = [5]float32{-3.23076923, -1.38461538, 0, 1.38461538, 3.23076923}
	verticalWeights = [5]float32{0.07027027, 0.31621622, 0.22702703, 0.31621622, 0.07027027}
)

// bloomHorizontal downsamples by two while blurring with a 9-tap gaussian.
func bloomHorizontal(p *passInput, x, y int) mgl32.Vec4 {
	src := p.srcs[0]
	u, v := p.dst.UV(x, y)
	texel := 2 / float32(src.Width)
	var sum mgl32.Vec4
	for i, o := range horizontalOffsets {
		sum = sum.Add(src.SampleLinear(u+o*texel, v).Mul(horizontalWeights[i]))
	}
	return sum
}

// bloomVertical blurs with a 5-tap gaussian using bilinear tap merging.
func bloomVertical(p *passInput, x, y int) mgl32.Vec4 {
	src := p.srcs[0]
	u, v := p.dst.UV(x, y)
	texel := 1 / float32(src.Height)
	var sum mgl32.Vec4
	for i, o := range verticalOffsets {
		sum = sum.Add(src.SampleLinear(u, v+o*texel).Mul(verticalWeights[i]))
	}
	return sum
}

// bloomCombine adds the upsampled low resolution source, scaled by the bloom
// intensity, to the high resolution source.
func bloomCombine(p *passInput, x, y int) mgl32.Vec4 {
	u, v := p.dst.UV(x, y)
	low := p.srcs[0].SampleLinear(u, v)
	high := p.srcs[1].SampleLinear(u, v)
	rgb := low.Vec3().Mul(p.g.BloomIntensity).Add(high.Vec3())
	return rgb.Vec4(high[3])
}

func bakeLUT(p *passInput, x, y int) mgl32.Vec4 {
	return postprocess.BakeLUTTexel(x, y, p.dst.Height, p.g).Vec4(1)
}

func applyLUT(p *passInput, x, y int) mgl32.Vec4 {
	u, v := p.dst.UV(x, y)
	c := p.srcs[0].SampleLinear(u, v)
	lut := p.srcs[1]
	return SampleLUT(lut, postprocess.LUTLookup(c.Vec3(), lut.Height)).Vec4(1)
}

// SampleLUT reads a strip LUT at grid coordinates in [0, h-1], interpolating
// between the two nearest blue slices.
func SampleLUT(lut *Texture, coord mgl32.Vec3) mgl32.Vec3 {
	h := lut.Height
	z0 := float32(math.Floor(float64(coord[2])))
	t := coord[2] - z0
	s0 := int(z0)
	s1 := min(s0+1, h-1)

	// clamp inside the slice so filtering never reads the neighbouring slice
	x := common.Clamp(coord[0], 0, float32(h-1))
	y := common.Clamp(coord[1], 0, float32(h-1))
	a := lut.bilinear(float32(s0*h)+x, y).Vec3()
	b := lut.bilinear(float32(s1*h)+x, y).Vec3()
	return a.Mul(1 - t).Add(b.Mul(t))
}

func luma(c mgl32.Vec4) float32 {
	return postprocess.Luminance(mgl32.Vec3{common.Saturate(c[0]), common.Saturate(c[1]), common.Saturate(c[2])})
}

// fxaa blends each edge texel toward its highest-contrast neighbour. The
// config is (fixed threshold, relative threshold, subpixel blending).
func fxaa(p *passInput, x, y int) mgl32.Vec4 {
	src := p.srcs[0]
	cfg := p.g.FXAAConfig
	m := src.At(x, y)

	lm := luma(m)
	ln := luma(src.At(x, y-1))
	ls := luma(src.At(x, y+1))
	le := luma(src.At(x+1, y))
	lw := luma(src.At(x-1, y))

	hi := max(lm, ln, ls, le, lw)
	lo := min(lm, ln, ls, le, lw)
	contrast := hi - lo
	if contrast < max(cfg[0], cfg[1]*hi) {
		return m
	}

	lne := luma(src.At(x+1, y-1))
	lnw := luma(src.At(x-1, y-1))
	lse := luma(src.At(x+1, y+1))
	lsw := luma(src.At(x-1, y+1))

	filter := 2*(ln+ls+le+lw) + lne + lnw + lse + lsw
	filter = common.Saturate(abs(filter/12-lm) / contrast)
	blend := filter * filter * (3 - 2*filter)
	blend = blend * blend * cfg[2]

	horizontal := 2*abs(ln+ls-2*lm)+abs(lne+lse-2*le)+abs(lnw+lsw-2*lw) >=
		2*abs(le+lw-2*lm)+abs(lne+lnw-2*ln)+abs(lse+lsw-2*ls)

	dx, dy := 0, 0
	if horizontal {
		dy = 1
		if abs(ln-lm) >= abs(ls-lm) {
			dy = -1
		}
	} else {
		dx = 1
		if abs(lw-lm) >= abs(le-lm) {
			dx = -1
		}
	}
	n := src.At(x+dx, y+dy)
	return m.Mul(1 - blend).Add(n.Mul(blend))
}

// motionBlur averages samples of the color along the texel's velocity.
func motionBlur(p *passInput, x, y int) mgl32.Vec4 {
	color, vectors := p.srcs[0], p.srcs[1]
	u, v := p.dst.UV(x, y)
	n := int(p.g.MotionBlurSamples)
	if n <= 1 {
		return color.SampleLinear(u, v)
	}

	vel := vectors.SampleLinear(u, v).Vec2().Mul(p.g.MotionBlurStrength)
	var sum mgl32.Vec4
	for i := 0; i < n; i++ {
		t := float32(i)/float32(n-1) - 0.5
		sum = sum.Add(color.SampleLinear(u-vel[0]*t, v-vel[1]*t))
	}
	return sum.Mul(1 / float32(n))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
