package soft

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
)

// PaintContext is the bound state a Painter draws with. Color or Depth may be
// nil when the pass binds only one of them.
type PaintContext struct {
	Color      *Texture
	Depth      *Texture
	Viewport   common.Rect
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Globals    *gfx.Globals
	ReversedZ  bool
}

// Painter rasterizes geometry commands.
type Painter interface {
	// DrawRenderers draws an already filtered and sorted object list.
	DrawRenderers(ctx *PaintContext, d gfx.DrawRenderers) error

	// DrawShadows writes shadow caster depth into ctx.Depth.
	DrawShadows(ctx *PaintContext, d gfx.DrawShadows) error
}

// BoundsPainter draws every object as the screen rectangle covering its
// world bounds at the depth of its nearest corner. It is enough to exercise
// depth testing, shadow atlases and motion vectors without meshes.
type BoundsPainter struct {
	// Ambient scales the object color before the directional light term.
	Ambient float32
}

// NewBoundsPainter creates a BoundsPainter with a 0.25 ambient term.
func NewBoundsPainter() *BoundsPainter {
	return &BoundsPainter{Ambient: 0.25}
}

// screenRect is a projected object: a pixel rectangle in the viewport and the
// device depth of its nearest point.
type screenRect struct {
	x0, y0, x1, y1 int
	depth          float32
	center         mgl32.Vec2
}

// project maps b through vp into the viewport. It reports false when any
// corner lies behind the eye or the rectangle misses the viewport.
func project(b common.Bounds, vp mgl32.Mat4, r common.Rect, reversedZ bool) (screenRect, bool) {
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	near := float32(math.MaxFloat32)

	for _, c := range b.Corners() {
		clip := vp.Mul4x1(c.Vec4(1))
		if clip[3] <= 0 {
			return screenRect{}, false
		}
		ndc := clip.Vec3().Mul(1 / clip[3])
		minX, maxX = min(minX, ndc[0]), max(maxX, ndc[0])
		minY, maxY = min(minY, ndc[1]), max(maxY, ndc[1])
		near = min(near, ndc[2]*0.5+0.5)
	}

	center := vp.Mul4x1(b.Center().Vec4(1))
	s := screenRect{
		x0:     r.X + int(math.Floor(float64((minX*0.5+0.5)*float32(r.Width)))),
		x1:     r.X + int(math.Ceil(float64((maxX*0.5+0.5)*float32(r.Width)))),
		y0:     r.Y + int(math.Floor(float64((0.5-maxY*0.5)*float32(r.Height)))),
		y1:     r.Y + int(math.Ceil(float64((0.5-minY*0.5)*float32(r.Height)))),
		depth:  common.Saturate(near),
		center: mgl32.Vec2{center[0] / center[3], center[1] / center[3]},
	}
	if reversedZ {
		s.depth = 1 - s.depth
	}
	s.x0, s.x1 = max(s.x0, r.X), min(s.x1, r.X+r.Width)
	s.y0, s.y1 = max(s.y0, r.Y), min(s.y1, r.Y+r.Height)
	return s, s.x0 < s.x1 && s.y0 < s.y1
}

func depthPasses(ctx *PaintContext, x, y int, d float32) bool {
	if ctx.Depth == nil {
		return true
	}
	stored := ctx.Depth.Depth(x, y)
	if ctx.ReversedZ {
		return d >= stored
	}
	return d <= stored
}

func (p *BoundsPainter) DrawRenderers(ctx *PaintContext, d gfx.DrawRenderers) error {
	vp := ctx.Projection.Mul4(ctx.View)
	for _, o := range d.Objects {
		s, ok := project(o.WorldBounds(), vp, ctx.Viewport, ctx.ReversedZ)
		if !ok {
			continue
		}

		var color mgl32.Vec4
		outline := false
		switch {
		case d.Override != nil && d.Override.Kind == gfx.PassMotionVector:
			color = p.velocity(ctx, o, s)
		case d.Override != nil && d.Override.Kind == gfx.PassWireframe:
			color = o.Color().Linear().Vec4()
			outline = true
		case d.Override != nil && d.Override.Kind == gfx.PassUnlit:
			color = o.Color().Linear().Vec4()
		default:
			color = p.shade(ctx, o)
		}
		transparent := game_object.QueueTransparent.Contains(o.RenderQueue())

		for y := s.y0; y < s.y1; y++ {
			for x := s.x0; x < s.x1; x++ {
				if outline && x != s.x0 && x != s.x1-1 && y != s.y0 && y != s.y1-1 {
					continue
				}
				if !depthPasses(ctx, x, y, s.depth) {
					continue
				}
				if ctx.Color != nil {
					out := color
					if transparent {
						dst := ctx.Color.At(x, y)
						a := color[3]
						out = color.Mul(a).Add(dst.Mul(1 - a))
						out[3] = dst[3]
					}
					ctx.Color.Set(x, y, out)
				}
				if ctx.Depth != nil && !transparent {
					ctx.Depth.SetDepth(x, y, s.depth)
				}
			}
		}
	}
	return nil
}

// shade lights the object color with the packed directional light, facing
// the light as if the visible face pointed at the camera.
func (p *BoundsPainter) shade(ctx *PaintContext, o game_object.GameObject) mgl32.Vec4 {
	base := o.Color().Linear().Vec4()
	g := ctx.Globals
	lit := base.Vec3().Mul(p.Ambient)
	if g != nil {
		toCamera := g.CameraPosition.Vec3().Sub(o.WorldBounds().Center())
		if toCamera.Len() > 0 {
			toCamera = toCamera.Normalize()
		}
		ndotl := max(toCamera.Dot(g.DirectionalLightDirection.Vec3()), 0)
		l := g.DirectionalLightColor.Vec3().Mul(ndotl)
		lit = lit.Add(mgl32.Vec3{base[0] * l[0], base[1] * l[1], base[2] * l[2]})
	}
	return lit.Vec4(base[3])
}

// velocity returns the screen motion of the object center since the previous
// frame in normalized texture units.
func (p *BoundsPainter) velocity(ctx *PaintContext, o game_object.GameObject, s screenRect) mgl32.Vec4 {
	if ctx.Globals == nil || !o.MotionVectors() {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	prevCenter := o.PreviousLocalToWorld().Mul4x1(o.LocalBounds().Center().Vec4(1))
	// the stored matrix has the view's second column negated
	prevCenter[1] = -prevCenter[1]
	clip := ctx.Globals.PreviousViewProjection.Mul4x1(prevCenter)
	if clip[3] <= 0 {
		return mgl32.Vec4{0, 0, 0, 1}
	}
	prev := mgl32.Vec2{clip[0] / clip[3], clip[1] / clip[3]}
	d := s.center.Sub(prev)
	return mgl32.Vec4{d[0] * 0.5, -d[1] * 0.5, 0, 1}
}

func (p *BoundsPainter) DrawShadows(ctx *PaintContext, d gfx.DrawShadows) error {
	if ctx.Depth == nil {
		return ErrNoTarget
	}
	vp := ctx.Projection.Mul4(ctx.View)
	for _, o := range d.Casters {
		s, ok := project(o.WorldBounds(), vp, ctx.Viewport, ctx.ReversedZ)
		if !ok {
			continue
		}
		for y := s.y0; y < s.y1; y++ {
			for x := s.x0; x < s.x1; x++ {
				if depthPasses(ctx, x, y, s.depth) {
					ctx.Depth.SetDepth(x, y, s.depth)
				}
			}
		}
	}
	return nil
}
