package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
)

// Texture is a float RGBA image. Depth formats keep depth in the red channel.
// Row 0 is the top of the image.
type Texture struct {
	Desc   gfx.TextureDesc
	Width  int
	Height int
	Pix    []float32
}

// NewTexture allocates a zeroed texture.
func NewTexture(desc gfx.TextureDesc) *Texture {
	return &Texture{
		Desc:   desc,
		Width:  desc.Width,
		Height: desc.Height,
		Pix:    make([]float32, desc.Width*desc.Height*4),
	}
}

// At returns the texel at (x, y), clamping coordinates to the edge.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	x = common.Clamp(x, 0, t.Width-1)
	y = common.Clamp(y, 0, t.Height-1)
	i := (y*t.Width + x) * 4
	p := t.Pix[i : i+4 : i+4]
	return mgl32.Vec4{p[0], p[1], p[2], p[3]}
}

// Set writes the texel at (x, y). Out of range writes are dropped.
func (t *Texture) Set(x, y int, c mgl32.Vec4) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return
	}
	i := (y*t.Width + x) * 4
	copy(t.Pix[i:i+4], c[:])
}

// Depth returns the depth stored at (x, y).
func (t *Texture) Depth(x, y int) float32 {
	return t.At(x, y)[0]
}

// SetDepth writes depth at (x, y).
func (t *Texture) SetDepth(x, y int, d float32) {
	t.Set(x, y, mgl32.Vec4{d, d, d, 1})
}

// Fill sets every texel to c.
func (t *Texture) Fill(c mgl32.Vec4) {
	for i := 0; i < len(t.Pix); i += 4 {
		copy(t.Pix[i:i+4], c[:])
	}
}

// Sample reads the texture at normalized coordinates with the texture's
// filter mode and clamp addressing. (0, 0) is the top-left corner.
func (t *Texture) Sample(u, v float32) mgl32.Vec4 {
	x := u*float32(t.Width) - 0.5
	y := v*float32(t.Height) - 0.5
	if t.Desc.Filter == gfx.FilterPoint {
		return t.At(int(math.Floor(float64(x+0.5))), int(math.Floor(float64(y+0.5))))
	}
	return t.bilinear(x, y)
}

// SampleLinear reads with bilinear filtering regardless of the filter mode.
func (t *Texture) SampleLinear(u, v float32) mgl32.Vec4 {
	return t.bilinear(u*float32(t.Width)-0.5, v*float32(t.Height)-0.5)
}

func (t *Texture) bilinear(x, y float32) mgl32.Vec4 {
	x0 := float32(math.Floor(float64(x)))
	y0 := float32(math.Floor(float64(y)))
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	a := t.At(ix, iy)
	b := t.At(ix+1, iy)
	c := t.At(ix, iy+1)
	d := t.At(ix+1, iy+1)
	top := a.Mul(1 - fx).Add(b.Mul(fx))
	bottom := c.Mul(1 - fx).Add(d.Mul(fx))
	return top.Mul(1 - fy).Add(bottom.Mul(fy))
}

// UV returns the normalized coordinates of the center of texel (x, y).
func (t *Texture) UV(x, y int) (u, v float32) {
	return (float32(x) + 0.5) / float32(t.Width), (float32(y) + 0.5) / float32(t.Height)
}

// CopyFrom copies src texel for texel. Sizes must match.
func (t *Texture) CopyFrom(src *Texture) bool {
	if src.Width != t.Width || src.Height != t.Height {
		return false
	}
	copy(t.Pix, src.Pix)
	return true
}
