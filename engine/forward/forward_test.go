package forward

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, cam camera.Camera, objects ...game_object.GameObject) Frame {
	t.Helper()
	p, ok := cam.CullingParameters()
	require.True(t, ok)
	return Frame{
		Params:     p,
		Cull:       culling.NewResult(objects, nil),
		Background: cam.Background(),
		Width:      320,
		Height:     180,
	}
}

func draws(cb *gfx.CommandBuffer) []gfx.DrawRenderers {
	var out []gfx.DrawRenderers
	for _, c := range cb.Commands() {
		if d, ok := c.(gfx.DrawRenderers); ok {
			out = append(out, d)
		}
	}
	return out
}

func names(objects []game_object.GameObject) []string {
	out := make([]string, len(objects))
	for i, o := range objects {
		out[i] = o.Name()
	}
	return out
}

func TestRenderShadedSequence(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, -10), camera.WithTarget(0, 0, 0))
	near := game_object.NewGameObject(game_object.WithName("near"), game_object.WithPosition(0, 0, -5))
	far := game_object.NewGameObject(game_object.WithName("far"), game_object.WithPosition(0, 0, 5))
	glassNear := game_object.NewGameObject(game_object.WithName("glass-near"), game_object.WithPosition(0, 0, -4),
		game_object.WithRenderQueue(game_object.RenderQueueTransparent))
	glassFar := game_object.NewGameObject(game_object.WithName("glass-far"), game_object.WithPosition(0, 0, 4),
		game_object.WithRenderQueue(game_object.RenderQueueTransparent), game_object.WithPassTags("MultiPass3"))
	untagged := game_object.NewGameObject(game_object.WithName("untagged"), game_object.WithPassTags("Other"))

	r := NewRenderer()
	cb := gfx.NewCommandBuffer("forward")
	var g gfx.Globals
	res := r.Render(cb, &g, frame(t, cam, far, glassNear, near, glassFar, untagged))

	require.IsType(t, gfx.SetupCamera{}, cb.Commands()[0])
	assert.True(t, res.MotionVectors)
	assert.Equal(t, []gfx.ResourceID{
		gfx.MotionVectorMap, gfx.ColorAttachment, gfx.DepthAttachment, gfx.ColorMap, gfx.DepthMap,
	}, res.Acquired())

	d := draws(cb)
	require.Len(t, d, 3)

	assert.Equal(t, gfx.MotionVectorPass, *d[0].Override)
	assert.Equal(t, []string{"near", "untagged", "far"}, names(d[0].Objects))

	assert.Equal(t, gfx.SortCommonOpaque, d[1].Sort)
	assert.Equal(t, []string{game_object.PassTagPrimary}, d[1].PassTags)
	assert.Equal(t, []string{"near", "far"}, names(d[1].Objects))

	assert.Equal(t, gfx.SortCommonTransparent, d[2].Sort)
	assert.Len(t, d[2].PassTags, 1+MultiPassCount)
	assert.Equal(t, "MultiPass9", d[2].PassTags[MultiPassCount])
	assert.Equal(t, []string{"glass-far", "glass-near"}, names(d[2].Objects))

	skybox := -1
	copies := 0
	for i, c := range cb.Commands() {
		switch c.(type) {
		case gfx.DrawSkybox:
			skybox = i
		case gfx.Copy:
			assert.Greater(t, i, skybox)
			copies++
		}
	}
	assert.Equal(t, 2, copies)

	assert.Equal(t, g.View, frame(t, cam).Params.View)

	res.Release(cb)
	assert.NoError(t, gfx.Validate(cb))
}

func TestDefaultPass(t *testing.T) {
	cam := camera.NewCamera()
	glass := game_object.NewGameObject(game_object.WithRenderQueue(game_object.RenderQueueTransparent),
		game_object.WithPassTags(PassTagDefaultUnlit))

	cb := gfx.NewCommandBuffer("forward")
	r := NewRenderer(WithSettings(config.New(config.WithDefaultPass(true), config.WithMotionVectors(false))))
	res := r.Render(cb, &gfx.Globals{}, frame(t, cam, glass))

	d := draws(cb)
	require.Len(t, d, 3)
	assert.Empty(t, d[1].Objects)
	assert.Equal(t, []string{PassTagDefaultUnlit}, d[2].PassTags)
	assert.Len(t, d[2].Objects, 1)
	assert.False(t, res.MotionVectors)
	assert.NotContains(t, res.Acquired(), gfx.MotionVectorMap)
}

func TestDebugDrawModes(t *testing.T) {
	tests := []struct {
		mode config.DrawMode
		pass gfx.Pass
	}{
		{config.DrawModeWireframe, gfx.WireframePass},
		{config.DrawModeUnlit, gfx.UnlitPass},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cam := camera.NewCamera()
			objs := []game_object.GameObject{
				game_object.NewGameObject(),
				game_object.NewGameObject(game_object.WithRenderQueue(game_object.RenderQueueTransparent)),
			}
			cb := gfx.NewCommandBuffer("forward")
			r := NewRenderer(WithSettings(config.New(config.WithDrawMode(tt.mode), config.WithMotionVectors(false))))
			res := r.Render(cb, &gfx.Globals{}, frame(t, cam, objs...))

			d := draws(cb)
			require.Len(t, d, 1)
			assert.Equal(t, tt.pass, *d[0].Override)
			assert.Len(t, d[0].Objects, 2)
			assert.Zero(t, cb.Count(gfx.OpCopy))
			assert.Equal(t, []gfx.ResourceID{gfx.ColorAttachment, gfx.DepthAttachment}, res.Acquired())
		})
	}
}

func TestPreviousViewProjectionPerCamera(t *testing.T) {
	a := camera.NewCamera(camera.WithPosition(0, 0, -10))
	b := camera.NewCamera(camera.WithPosition(5, 0, -10))
	r := NewRenderer()

	var g gfx.Globals
	fa := frame(t, a)
	r.Commit(r.Render(gfx.NewCommandBuffer("a"), &g, fa))
	assert.Equal(t, mgl32.Ident4(), g.PreviousViewProjection)

	fb := frame(t, b)
	r.Commit(r.Render(gfx.NewCommandBuffer("b"), &g, fb))
	assert.Equal(t, mgl32.Ident4(), g.PreviousViewProjection)

	r.Commit(r.Render(gfx.NewCommandBuffer("a"), &g, fa))
	assert.Equal(t, PreviousViewProjection(fa.Params.View, fa.Params.Projection), g.PreviousViewProjection)
	assert.Equal(t, 2, r.History().Len())

	r.History().Forget(a.ID())
	assert.Equal(t, mgl32.Ident4(), r.History().Previous(a.ID()))
}

func TestUncommittedFrameKeepsHistory(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, -10))
	r := NewRenderer()
	var g gfx.Globals

	first := frame(t, cam)
	r.Commit(r.Render(gfx.NewCommandBuffer("first"), &g, first))
	want := PreviousViewProjection(first.Params.View, first.Params.Projection)

	cam.SetPosition(4, 0, -10)
	moved := frame(t, cam)
	res := r.Render(gfx.NewCommandBuffer("dropped"), &g, moved)
	assert.True(t, res.MotionVectors)
	assert.Equal(t, want, r.History().Previous(cam.ID()))

	r.Render(gfx.NewCommandBuffer("retry"), &g, moved)
	assert.Equal(t, want, g.PreviousViewProjection)

	r.Commit(Result{})
	assert.Equal(t, 1, r.History().Len())
}

func TestPreviousViewProjectionNegatesViewColumn(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	got := PreviousViewProjection(view, mgl32.Ident4())
	assert.Equal(t, view.Col(1).Mul(-1), got.Col(1))
	assert.Equal(t, view.Col(0), got.Col(0))
}

func TestFilterAndSortKeepTies(t *testing.T) {
	a := game_object.NewGameObject(game_object.WithName("a"), game_object.WithBounds(common.NewBounds(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})))
	b := game_object.NewGameObject(game_object.WithName("b"), game_object.WithBounds(common.NewBounds(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})))
	bg := game_object.NewGameObject(game_object.WithName("bg"), game_object.WithPosition(0, 0, 100),
		game_object.WithRenderQueue(game_object.RenderQueueBackground))

	objs := Filter([]game_object.GameObject{a, b, bg}, game_object.QueueOpaque, nil)
	SortOpaque(objs, mgl32.Vec3{0, 0, -10})
	assert.Equal(t, []string{"bg", "a", "b"}, names(objs))

	SortTransparent(objs, mgl32.Vec3{0, 0, -10})
	assert.Equal(t, []string{"bg", "a", "b"}, names(objs))

	assert.Empty(t, Filter(objs, game_object.QueueTransparent, nil))
	assert.Empty(t, Filter(objs, game_object.QueueAll, []string{"missing"}))
}
