// Package forward records the geometry passes of a camera: the motion vector
// pass, opaque objects front to back, the skybox, color and depth snapshots
// and transparent objects back to front.
package forward

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/rs/zerolog"
)

// Pass tags beyond the primary one.
const (
	PassTagDefaultUnlit = "SRPDefaultUnlit"
	MultiPassCount      = 10
)

// Sample scope names.
const (
	MotionVectorSampleName = "Rendering motion vectors"
	RendererSampleName     = "RendererStep"
)

// multiPassTags holds the primary tag followed by MultiPass0..MultiPass9.
var multiPassTags = func() []string {
	tags := []string{game_object.PassTagPrimary}
	for i := 0; i < MultiPassCount; i++ {
		tags = append(tags, fmt.Sprintf("MultiPass%d", i))
	}
	return tags
}()

// TransparentPassTags returns the pass tags the transparent draw visits, in order.
func TransparentPassTags() []string {
	return slices.Clone(multiPassTags)
}

// Frame is one camera's input to the renderer.
type Frame struct {
	Params     culling.Parameters
	Cull       *culling.Result
	Background common.Color
	Width      int
	Height     int
}

// Result lists what a Render call produced.
type Result struct {
	// MotionVectors reports that MotionVectorMap holds this frame's vectors.
	MotionVectors bool
	acquired      []gfx.ResourceID

	camera  uuid.UUID
	next    mgl32.Mat4
	hasNext bool
}

// Acquired returns the live temporaries in acquisition order.
func (r *Result) Acquired() []gfx.ResourceID {
	return r.acquired
}

// Release records the release of every live temporary.
func (r *Result) Release(cb *gfx.CommandBuffer) {
	for _, id := range r.acquired {
		cb.Release(id)
	}
	r.acquired = nil
}

// Renderer records the geometry passes. The previous view-projection of every
// camera lives in its History, so one Renderer serves many cameras.
type Renderer struct {
	settings *config.Settings
	history  *History
	logger   zerolog.Logger
}

// NewRenderer creates a Renderer.
//
// Parameters:
//   - opts: variadic list of RendererOption functions
//
// Returns:
//   - *Renderer: the renderer
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		settings: config.Default(),
		history:  NewHistory(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// History returns the per-camera previous view-projection store.
func (r *Renderer) History() *History {
	return r.history
}

// Commit stores the view-projection the camera's next frame reads. Call it
// once the frame's buffer was submitted; a frame that never reached the
// device leaves the history untouched.
//
// Parameters:
//   - res: the Result of this frame's Render call
func (r *Renderer) Commit(res Result) {
	if !res.hasNext {
		return
	}
	r.history.Store(res.camera, res.next)
}

// Render records the camera setup and every geometry pass into cb and writes
// the camera matrices into g.
//
// Parameters:
//   - cb: the camera's command buffer
//   - g: the camera's uniform bundle
//   - f: the camera frame
//
// Returns:
//   - Result: the live temporaries to release at end of frame
func (r *Renderer) Render(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame) Result {
	var res Result
	p := f.Params

	cb.SetupCamera(gfx.SetupCamera{
		View:       p.View,
		Projection: p.Projection,
		Position:   p.Position,
		Skybox:     f.Background,
	})
	g.View = p.View
	g.Projection = p.Projection
	g.ViewProjection = p.ViewProjection
	g.CameraPosition = p.Position.Vec4(1)

	var objects []game_object.GameObject
	if f.Cull != nil {
		objects = f.Cull.Objects
	}
	opaque := Filter(objects, game_object.QueueOpaque, nil)
	SortOpaque(opaque, p.Position)

	if r.settings.MotionVectors {
		r.motionVectors(cb, g, f, opaque, &res)
	}

	cb.BeginSample(RendererSampleName)
	r.acquire(cb, &res, gfx.ColorAttachment, gfx.TextureDesc{
		Width: f.Width, Height: f.Height, Filter: gfx.FilterBilinear, Format: gfx.FormatDefaultHDR,
	})
	r.acquire(cb, &res, gfx.DepthAttachment, gfx.TextureDesc{
		Width: f.Width, Height: f.Height, DepthBits: 32, Filter: gfx.FilterPoint, Format: gfx.FormatDepth,
	})
	cb.SetRenderTarget(gfx.ColorAttachment, gfx.DepthAttachment)
	cb.Clear(true, true, common.ColorClear)

	if r.settings.DrawMode == config.DrawModeShaded || r.settings.DrawMode == "" {
		r.shaded(cb, f, objects, opaque, &res)
	} else {
		r.debug(cb, f, objects)
	}
	cb.EndSample(RendererSampleName)

	r.logger.Debug().
		Int("objects", len(objects)).
		Int("opaque", len(opaque)).
		Bool("motion_vectors", res.MotionVectors).
		Msg("geometry recorded")
	return res
}

func (r *Renderer) acquire(cb *gfx.CommandBuffer, res *Result, id gfx.ResourceID, desc gfx.TextureDesc) {
	cb.GetTemporary(id, desc)
	res.acquired = append(res.acquired, id)
}

func (r *Renderer) motionVectors(cb *gfx.CommandBuffer, g *gfx.Globals, f Frame, opaque []game_object.GameObject, res *Result) {
	cb.BeginSample(MotionVectorSampleName)
	defer cb.EndSample(MotionVectorSampleName)

	p := f.Params
	r.acquire(cb, res, gfx.MotionVectorMap, gfx.TextureDesc{
		Width: f.Width, Height: f.Height, DepthBits: 24, Filter: gfx.FilterBilinear, Format: gfx.FormatDefault,
	})
	cb.SetRenderTarget(gfx.MotionVectorMap, gfx.ResourceNone)
	cb.Clear(true, true, common.ColorBlack)
	g.PreviousViewProjection = r.history.Previous(p.CameraID)

	override := gfx.MotionVectorPass
	cb.DrawRenderers(gfx.DrawRenderers{
		Objects:  opaque,
		Queue:    game_object.QueueOpaque,
		Sort:     gfx.SortCommonOpaque,
		Override: &override,
	})
	res.MotionVectors = true

	res.camera = p.CameraID
	res.next = PreviousViewProjection(p.View, p.Projection)
	res.hasNext = true
}

// PreviousViewProjection returns the matrix the next frame's motion vector
// pass reads: projection times the view with its second column negated.
func PreviousViewProjection(view, proj mgl32.Mat4) mgl32.Mat4 {
	return proj.Mul4(common.NegateColumn(view, 1))
}

func (r *Renderer) shaded(cb *gfx.CommandBuffer, f Frame, objects, opaque []game_object.GameObject, res *Result) {
	primary := []string{game_object.PassTagPrimary}
	cb.DrawRenderers(gfx.DrawRenderers{
		Objects:  Filter(opaque, game_object.QueueOpaque, primary),
		Queue:    game_object.QueueOpaque,
		Sort:     gfx.SortCommonOpaque,
		PassTags: primary,
	})
	cb.DrawSkybox(f.Background)

	r.acquire(cb, res, gfx.ColorMap, gfx.TextureDesc{
		Width: f.Width, Height: f.Height, Filter: gfx.FilterBilinear, Format: gfx.FormatDefaultHDR,
	})
	r.acquire(cb, res, gfx.DepthMap, gfx.TextureDesc{
		Width: f.Width, Height: f.Height, DepthBits: 32, Filter: gfx.FilterPoint, Format: gfx.FormatDepth,
	})
	cb.Copy(gfx.ColorAttachment, gfx.ColorMap)
	cb.Copy(gfx.DepthAttachment, gfx.DepthMap)

	tags := TransparentPassTags()
	transparent := Filter(objects, game_object.QueueTransparent, tags)
	SortTransparent(transparent, f.Params.Position)
	cb.DrawRenderers(gfx.DrawRenderers{
		Objects:  transparent,
		Queue:    game_object.QueueTransparent,
		Sort:     gfx.SortCommonTransparent,
		PassTags: tags,
	})

	if r.settings.EnableDefaultPass {
		unlit := []string{PassTagDefaultUnlit}
		defaults := Filter(objects, game_object.QueueTransparent, unlit)
		SortTransparent(defaults, f.Params.Position)
		cb.DrawRenderers(gfx.DrawRenderers{
			Objects:  defaults,
			Queue:    game_object.QueueTransparent,
			Sort:     gfx.SortCommonTransparent,
			PassTags: unlit,
		})
	}
}

// debug draws every visible object with one override pass.
func (r *Renderer) debug(cb *gfx.CommandBuffer, f Frame, objects []game_object.GameObject) {
	pass := gfx.UnlitPass
	if r.settings.DrawMode == config.DrawModeWireframe {
		pass = gfx.WireframePass
	}
	all := Filter(objects, game_object.QueueAll, nil)
	SortOpaque(all, f.Params.Position)
	cb.DrawRenderers(gfx.DrawRenderers{
		Objects:  all,
		Queue:    game_object.QueueAll,
		Sort:     gfx.SortCommonOpaque,
		Override: &pass,
	})
	cb.DrawSkybox(f.Background)
}

// Filter returns the objects in queue that implement at least one of tags.
// A nil tags slice accepts every object. Input order is kept.
//
// Parameters:
//   - objects: the candidates
//   - queue: the render queue range
//   - tags: the accepted pass tags
//
// Returns:
//   - []game_object.GameObject: a new slice
func Filter(objects []game_object.GameObject, queue game_object.QueueRange, tags []string) []game_object.GameObject {
	out := make([]game_object.GameObject, 0, len(objects))
	for _, o := range objects {
		if !queue.Contains(o.RenderQueue()) {
			continue
		}
		if tags != nil && !slices.ContainsFunc(tags, o.HasPassTag) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func distanceSq(o game_object.GameObject, eye mgl32.Vec3) float32 {
	d := o.WorldBounds().Center().Sub(eye)
	return d.Dot(d)
}

// SortOpaque orders objects by render queue, then front to back from eye.
// Equal keys keep their input order.
func SortOpaque(objects []game_object.GameObject, eye mgl32.Vec3) {
	slices.SortStableFunc(objects, func(a, b game_object.GameObject) int {
		if c := cmp.Compare(a.RenderQueue(), b.RenderQueue()); c != 0 {
			return c
		}
		return cmp.Compare(distanceSq(a, eye), distanceSq(b, eye))
	})
}

// SortTransparent orders objects by render queue, then back to front from eye.
// Equal keys keep their input order.
func SortTransparent(objects []game_object.GameObject, eye mgl32.Vec3) {
	slices.SortStableFunc(objects, func(a, b game_object.GameObject) int {
		if c := cmp.Compare(a.RenderQueue(), b.RenderQueue()); c != 0 {
			return c
		}
		return cmp.Compare(distanceSq(b, eye), distanceSq(a, eye))
	})
}
