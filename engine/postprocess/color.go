package postprocess

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/gfx"
)

// LUT dimensions: LUTResolution slices of LUTResolution x LUTResolution laid
// side by side, blue selecting the slice.
const (
	LUTResolution = 32
	LUTHeight     = LUTResolution
	LUTWidth      = LUTResolution * LUTResolution
)

// Tone mapping operator ids as uploaded in Globals.ToneMapping.
const (
	ToneMappingNone int32 = iota
	ToneMappingReinhard
	ToneMappingACES
)

// ThresholdCurve packs the bloom prefilter soft-knee curve as
// (t, knee-t, 2*knee, 0.25/(knee+1e-5)) where t is the linear threshold and
// knee = t*thresholdKnee.
//
// Parameters:
//   - threshold: the gamma-space brightness threshold
//   - thresholdKnee: the soft knee in [0, 1]
//
// Returns:
//   - mgl32.Vec4: the packed curve
func ThresholdCurve(threshold, thresholdKnee float32) mgl32.Vec4 {
	t := common.GammaToLinear(threshold)
	knee := t * thresholdKnee
	return mgl32.Vec4{t, knee - t, 2 * knee, 0.25 / (knee + 0.00001)}
}

// ColorAdjustmentsVector packs (2^exposure, contrast*0.01+1, hue/360, saturation*0.01+1).
func ColorAdjustmentsVector(c config.ColorAdjustments) mgl32.Vec4 {
	return mgl32.Vec4{
		float32(math.Pow(2, float64(c.PostExposure))),
		c.Contrast*0.01 + 1,
		c.HueShift * (1.0 / 360.0),
		c.Saturation*0.01 + 1,
	}
}

// LUTParameters returns (h, 0.5/w, 0.5/h, h/(h-1)) for the LUT bake pass.
func LUTParameters(width, height int) mgl32.Vec4 {
	h := float32(height)
	return mgl32.Vec4{h, 0.5 / float32(width), 0.5 / h, h / (h - 1)}
}

// LUTScaleOffset returns (1/w, 1/h, h-1) for the LUT apply pass.
func LUTScaleOffset(width, height int) mgl32.Vec4 {
	return mgl32.Vec4{1 / float32(width), 1 / float32(height), float32(height) - 1, 0}
}

var (
	// xyzToLMS is the CAT02 chromatic adaptation matrix (column-major).
	xyzToLMS = mgl32.Mat3{
		0.7328, -0.7036, 0.0030,
		0.4296, 1.6975, 0.0136,
		-0.1624, 0.0061, 0.9834,
	}
	// linearToXYZ converts linear sRGB (D65) to CIE XYZ (column-major).
	linearToXYZ = mgl32.Mat3{
		0.4124564, 0.2126729, 0.0193339,
		0.3575761, 0.7151522, 0.1191920,
		0.1804375, 0.0721750, 0.9503041,
	}
	linearToLMS = xyzToLMS.Mul3(linearToXYZ)
	lmsToLinear = linearToLMS.Inv()
)

// cieXYToLMS converts a CIE xy chromaticity at Y=1 to LMS.
func cieXYToLMS(x, y float32) mgl32.Vec3 {
	X := x / y
	Z := (1 - x - y) / y
	return xyzToLMS.Mul3x1(mgl32.Vec3{X, 1, Z})
}

// ColorBalanceToLMSCoeffs returns the LMS multipliers that shift the D65
// white point by temperature and tint, both in [-100, 100]. (0, 0) yields
// approximately (1, 1, 1).
//
// Parameters:
//   - temperature: cool (negative) to warm (positive)
//   - tint: green (negative) to magenta (positive)
//
// Returns:
//   - mgl32.Vec3: the per-channel LMS coefficients
func ColorBalanceToLMSCoeffs(temperature, tint float32) mgl32.Vec3 {
	t1 := temperature / 65
	t2 := tint / 65

	k := float32(0.05)
	if t1 < 0 {
		k = 0.1
	}
	x := 0.31271 - t1*k
	y := standardIlluminantY(x) + t2*0.05

	w1 := mgl32.Vec3{0.949237, 1.03542, 1.08728}
	w2 := cieXYToLMS(x, y)
	return mgl32.Vec3{w1[0] / w2[0], w1[1] / w2[1], w1[2] / w2[2]}
}

func standardIlluminantY(x float32) float32 {
	return 2.87*x - 3*x*x - 0.27509507
}

// LogC curve constants. The LUT stores grading for LogC-encoded input so
// that HDR values above 1 fit the unit cube.
const (
	logCCut = 0.011361
	logCA   = 5.555556
	logCB   = 0.047996
	logCC   = 0.244161
	logCD   = 0.386036
	logCE   = 5.301883
	logCF   = 0.092819
)

// LinearToLogC encodes a linear value into LogC.
func LinearToLogC(x float32) float32 {
	if x > logCCut {
		return logCC*float32(math.Log10(float64(logCA*x+logCB))) + logCD
	}
	return logCE*x + logCF
}

// LogCToLinear decodes a LogC value.
func LogCToLinear(x float32) float32 {
	if x > logCE*logCCut+logCF {
		return (float32(math.Pow(10, float64((x-logCD)/logCC))) - logCB) / logCA
	}
	return (x - logCF) / logCE
}

// Luminance returns the Rec.709 luminance of a linear color.
func Luminance(c mgl32.Vec3) float32 {
	return c.Dot(mgl32.Vec3{0.2126, 0.7152, 0.0722})
}

const midGray = 0.18

// Grade applies exposure, white balance, contrast, color filter, hue shift,
// saturation and tone mapping to a linear color, reading every parameter
// from the uploaded uniforms.
//
// Parameters:
//   - c: the linear input color
//   - g: the frame uniforms
//
// Returns:
//   - mgl32.Vec3: the graded color
func Grade(c mgl32.Vec3, g *gfx.Globals) mgl32.Vec3 {
	adj := g.ColorAdjustments
	c = c.Mul(adj[0])

	lms := linearToLMS.Mul3x1(c)
	wb := g.WhiteBalance
	lms = mgl32.Vec3{lms[0] * wb[0], lms[1] * wb[1], lms[2] * wb[2]}
	c = lmsToLinear.Mul3x1(lms)

	if adj[1] != 1 {
		for i := range c {
			if c[i] > 0 {
				c[i] = midGray * float32(math.Pow(float64(c[i]/midGray), float64(adj[1])))
			}
		}
	}

	f := g.ColorFilter
	c = mgl32.Vec3{max(c[0]*f[0], 0), max(c[1]*f[1], 0), max(c[2]*f[2], 0)}

	if adj[2] != 0 {
		h, s, v := rgbToHSV(c)
		h += adj[2]
		h -= float32(math.Floor(float64(h)))
		c = hsvToRGB(h, s, v)
	}

	if adj[3] != 1 {
		l := Luminance(c)
		c = mgl32.Vec3{
			max(l+(c[0]-l)*adj[3], 0),
			max(l+(c[1]-l)*adj[3], 0),
			max(l+(c[2]-l)*adj[3], 0),
		}
	}

	return ToneMap(c, g.ToneMapping)
}

// ToneMap applies the selected operator per channel.
func ToneMap(c mgl32.Vec3, op int32) mgl32.Vec3 {
	switch op {
	case ToneMappingReinhard:
		return mgl32.Vec3{reinhard(c[0]), reinhard(c[1]), reinhard(c[2])}
	case ToneMappingACES:
		return mgl32.Vec3{aces(c[0]), aces(c[1]), aces(c[2])}
	default:
		return c
	}
}

func reinhard(x float32) float32 {
	return x / (1 + x)
}

// aces is the Narkowicz fit of the ACES filmic curve.
func aces(x float32) float32 {
	return common.Saturate((x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14))
}

// LUTTexel returns the LogC-encoded input color a LUT texel grades.
//
// Parameters:
//   - x, y: the texel in a (h*h) x h LUT
//   - h: the LUT resolution
//
// Returns:
//   - mgl32.Vec3: the encoded input
func LUTTexel(x, y, h int) mgl32.Vec3 {
	scale := 1 / float32(h-1)
	return mgl32.Vec3{float32(x%h) * scale, float32(y) * scale, float32(x/h) * scale}
}

// BakeLUTTexel grades the color a LUT texel stands for.
func BakeLUTTexel(x, y, h int, g *gfx.Globals) mgl32.Vec3 {
	enc := LUTTexel(x, y, h)
	lin := mgl32.Vec3{LogCToLinear(enc[0]), LogCToLinear(enc[1]), LogCToLinear(enc[2])}
	return Grade(lin, g)
}

// LUTLookup returns the LUT coordinates of a linear color: the LogC-encoded
// color scaled to the (h-1) grid, as the apply pass computes them with
// LUTScaleOffset.
func LUTLookup(c mgl32.Vec3, h int) mgl32.Vec3 {
	s := float32(h - 1)
	return mgl32.Vec3{
		common.Saturate(LinearToLogC(c[0])) * s,
		common.Saturate(LinearToLogC(c[1])) * s,
		common.Saturate(LinearToLogC(c[2])) * s,
	}
}

func rgbToHSV(c mgl32.Vec3) (h, s, v float32) {
	r, g, b := c[0], c[1], c[2]
	mx := max(r, g, b)
	mn := min(r, g, b)
	v = mx
	d := mx - mn
	if mx <= 0 || d == 0 {
		return 0, 0, v
	}
	s = d / mx
	switch mx {
	case r:
		h = (g - b) / d
		if h < 0 {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, v
}

func hsvToRGB(h, s, v float32) mgl32.Vec3 {
	h6 := h * 6
	i := int(math.Floor(float64(h6))) % 6
	f := h6 - float32(math.Floor(float64(h6)))
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i {
	case 0:
		return mgl32.Vec3{v, t, p}
	case 1:
		return mgl32.Vec3{q, v, p}
	case 2:
		return mgl32.Vec3{p, v, t}
	case 3:
		return mgl32.Vec3{p, q, v}
	case 4:
		return mgl32.Vec3{t, p, v}
	default:
		return mgl32.Vec3{v, p, q}
	}
}
