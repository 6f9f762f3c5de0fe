package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/forward"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/okzkx/noobrp/engine/postprocess"
	"github.com/okzkx/noobrp/engine/rendergraph"
	"github.com/okzkx/noobrp/engine/shadow"
)

// ExecutorType selects how a camera frame is recorded.
type ExecutorType int

const (
	// ExecutorSteps runs lights, shadows, geometry and post-processing as
	// fixed steps.
	ExecutorSteps ExecutorType = iota
	// ExecutorRenderGraph records opaque geometry and a final blit through a
	// render graph that owns the texture lifetimes.
	ExecutorRenderGraph
)

func executorTypeFor(mode config.RenderMode) ExecutorType {
	if mode == config.RenderModeRenderGraph {
		return ExecutorRenderGraph
	}
	return ExecutorSteps
}

// Frame is the per-camera state an executor works on.
type Frame struct {
	Camera  camera.Camera
	Params  culling.Parameters
	Cull    *culling.Result
	Lights  light.PackedLightBuffer
	Width   int
	Height  int
	Buffer  *gfx.CommandBuffer
	Globals *gfx.Globals
	advance func(FrameState) error
	commits []func()
}

// Advance moves the frame to the next state.
func (f *Frame) Advance(s FrameState) error {
	if f.advance == nil {
		return nil
	}
	return f.advance(s)
}

// OnSubmit registers fn to run once the frame's buffer was accepted by the
// device. Cross-frame state is committed there.
func (f *Frame) OnSubmit(fn func()) {
	f.commits = append(f.commits, fn)
}

// FrameExecutor records the stages that follow light collection.
type FrameExecutor interface {
	// Execute records shadows, geometry and post-processing into f.Buffer,
	// followed by every release, advancing f through the frame states up to
	// PostProcessed.
	Execute(f *Frame) error
}

// stepsExecutor is the fixed-step pipeline.
type stepsExecutor struct {
	shadows   *shadow.Builder
	forward   *forward.Renderer
	post      *postprocess.Compositor
	reversedZ bool
}

func (e *stepsExecutor) Execute(f *Frame) error {
	sh := e.shadows.Build(f.Buffer, f.Globals, f.Cull, f.Params, e.reversedZ)
	sh.ApplyLightTiles(f.Globals, &f.Lights)
	if err := f.Advance(StateShadowsRendered); err != nil {
		return err
	}

	geo := e.forward.Render(f.Buffer, f.Globals, forward.Frame{
		Params:     f.Params,
		Cull:       f.Cull,
		Background: f.Camera.Background(),
		Width:      f.Width,
		Height:     f.Height,
	})
	if err := f.Advance(StateGeometryRendered); err != nil {
		return err
	}

	post := e.post.Render(f.Buffer, f.Globals, postprocess.Frame{
		Width:         f.Width,
		Height:        f.Height,
		MotionVectors: geo.MotionVectors,
	})
	if err := f.Advance(StatePostProcessed); err != nil {
		return err
	}

	e.shadows.Release(f.Buffer)
	geo.Release(f.Buffer)
	post.Release(f.Buffer)
	f.OnSubmit(func() { e.forward.Commit(geo) })
	return nil
}

// Render graph pass names.
const (
	RenderersPassName   = "Renderers Step"
	PostProcessPassName = "PostProcess Step"
)

// renderGraphExecutor draws opaque geometry and the skybox into graph-owned
// textures and blits the color to the camera target.
type renderGraphExecutor struct {
	graph *rendergraph.Graph
}

func (e *renderGraphExecutor) Execute(f *Frame) error {
	g := e.graph
	g.Reset()

	p := f.Params
	f.Globals.View = p.View
	f.Globals.Projection = p.Projection
	f.Globals.ViewProjection = p.ViewProjection
	f.Globals.CameraPosition = p.Position.Vec4(1)
	shadow.ClearShadows(f.Globals)

	if err := g.CreateTexture(gfx.GraphColor, rendergraph.TextureDesc{
		TextureDesc: gfx.TextureDesc{Width: f.Width, Height: f.Height, Filter: gfx.FilterBilinear, Format: gfx.FormatDefault},
		Clear:       true,
		ClearColor:  common.ColorBlack,
	}); err != nil {
		return err
	}
	if err := g.CreateTexture(gfx.GraphDepth, rendergraph.TextureDesc{
		TextureDesc: gfx.TextureDesc{Width: f.Width, Height: f.Height, DepthBits: 24, Filter: gfx.FilterPoint, Format: gfx.FormatDepth},
		Clear:       true,
		ClearColor:  common.ColorBlack,
	}); err != nil {
		return err
	}

	primary := []string{game_object.PassTagPrimary}
	opaque := forward.Filter(f.Cull.Objects, game_object.QueueOpaque, primary)
	forward.SortOpaque(opaque, p.Position)

	g.AddPass(RenderersPassName).Write(gfx.GraphColor).Write(gfx.GraphDepth).SetRenderFunc(func(cb *gfx.CommandBuffer) {
		cb.SetupCamera(gfx.SetupCamera{View: p.View, Projection: p.Projection, Position: p.Position, Skybox: f.Camera.Background()})
		cb.SetRenderTarget(gfx.GraphColor, gfx.GraphDepth)
		cb.DrawSkybox(f.Camera.Background())
		cb.DrawRenderers(gfx.DrawRenderers{
			Objects:  opaque,
			Queue:    game_object.QueueOpaque,
			Sort:     gfx.SortCommonOpaque,
			PassTags: primary,
		})
	})
	g.AddPass(PostProcessPassName).Read(gfx.GraphColor).SetRenderFunc(func(cb *gfx.CommandBuffer) {
		cb.Blit(gfx.GraphColor, gfx.CameraTarget)
	})

	if err := f.Advance(StateGeometryRendered); err != nil {
		return err
	}
	if err := g.Execute(f.Buffer); err != nil {
		return fmt.Errorf("render graph: %w", err)
	}
	return f.Advance(StatePostProcessed)
}

// BufferSizeVector packs (1/w, 1/h, w, h).
func BufferSizeVector(w, h int) mgl32.Vec4 {
	return mgl32.Vec4{1 / float32(w), 1 / float32(h), float32(w), float32(h)}
}
