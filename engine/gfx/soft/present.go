package soft

import (
	"image"
	"image/color"

	"github.com/okzkx/noobrp/common"
	xdraw "golang.org/x/image/draw"
)

// Image converts t to 8-bit sRGB.
func (t *Texture) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			c := t.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: to8(common.LinearToGamma(common.Saturate(c[0]))),
				G: to8(common.LinearToGamma(common.Saturate(c[1]))),
				B: to8(common.LinearToGamma(common.Saturate(c[2]))),
				A: 255,
			})
		}
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

// Present returns the camera target as an sRGB image of the given size,
// resampled bilinearly when the size differs from the target.
//
// Parameters:
//   - width, height: the output size; zero keeps the target size
//
// Returns:
//   - *image.RGBA: the presented image
func (d *Device) Present(width, height int) *image.RGBA {
	d.mu.Lock()
	src := d.target.Image()
	d.mu.Unlock()

	if width <= 0 || height <= 0 || (width == src.Bounds().Dx() && height == src.Bounds().Dy()) {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
