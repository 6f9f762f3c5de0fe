package shadow

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cameraParams(t *testing.T) culling.Parameters {
	t.Helper()
	cam := camera.NewCamera(camera.WithPosition(0, 2, -10), camera.WithTarget(0, 0, 0))
	p, ok := cam.CullingParameters()
	require.True(t, ok)
	p.ShadowDistance = 50
	return p
}

func TestTileRectPartitionsAtlas(t *testing.T) {
	tests := []struct {
		side, width int
	}{
		{DirectionalSideSplit, DefaultDirectionalResolution / DirectionalSideSplit},
		{SpotPointSideSplit, DefaultSpotPointResolution / SpotPointSideSplit},
	}
	for _, tt := range tests {
		covered := 0
		n := tt.side * tt.side
		for i := 0; i < n; i++ {
			r := TileRect(i, tt.side, tt.width)
			covered += r.Area()
			assert.LessOrEqual(t, r.X+r.Width, tt.side*tt.width)
			assert.LessOrEqual(t, r.Y+r.Height, tt.side*tt.width)
			for j := 0; j < i; j++ {
				assert.False(t, r.Overlaps(TileRect(j, tt.side, tt.width)), "tiles %d and %d overlap", i, j)
			}
		}
		assert.Equal(t, tt.side*tt.width*tt.side*tt.width, covered)
	}

	assert.Equal(t, common.Rect{X: 0, Y: 512, Width: 512, Height: 512}, TileRect(2, 2, 512))
	assert.Equal(t, common.Rect{X: 256, Y: 256, Width: 256, Height: 256}, TileRect(5, 4, 256))
}

func TestAtlasMatrixMapsClipSquareToTile(t *testing.T) {
	m := AtlasMatrix(mgl32.Ident4(), mgl32.Ident4(), 1, 0, DirectionalSideSplit, false)

	lo := m.Mul4x1(mgl32.Vec4{-1, -1, -1, 1})
	hi := m.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.InDelta(t, 0.5, lo.X(), 1e-6)
	assert.InDelta(t, 0.0, lo.Y(), 1e-6)
	assert.InDelta(t, 0.0, lo.Z(), 1e-6)
	assert.InDelta(t, 1.0, hi.X(), 1e-6)
	assert.InDelta(t, 0.5, hi.Y(), 1e-6)
	assert.InDelta(t, 1.0, hi.Z(), 1e-6)
}

func TestWorldToShadowMatrixReversedZ(t *testing.T) {
	view := mgl32.Translate3D(1, 2, 3)
	proj := mgl32.Perspective(1, 1, 0.1, 10)

	plain := WorldToShadowMatrix(view, proj, false)
	reversed := WorldToShadowMatrix(view, proj, true)
	assert.Equal(t, plain.Row(0), reversed.Row(0))
	assert.Equal(t, plain.Row(3), reversed.Row(3))
	assert.Equal(t, plain.Row(2).Mul(-1), reversed.Row(2))
}

func TestSplitDistances(t *testing.T) {
	s := SplitDistances(0.3, 100, DefaultSplitRatios)
	assert.Equal(t, [2]float32{0.3, 25}, s[0])
	assert.Equal(t, [2]float32{25, 50}, s[1])
	assert.Equal(t, [2]float32{50, 75}, s[2])
	assert.Equal(t, [2]float32{75, 100}, s[3])

	short := SplitDistances(1, 2, DefaultSplitRatios)
	for i := 1; i < CascadeCount; i++ {
		assert.GreaterOrEqual(t, short[i][0], short[i-1][1])
		assert.GreaterOrEqual(t, short[i][1], short[i][0])
	}
}

func TestBoundingSphereRadiusRoundsUp(t *testing.T) {
	s := BoundingSphere([]mgl32.Vec3{{-1, 0, 0}, {1.01, 0, 0}})
	assert.InDelta(t, 0.005, s.Center.X(), 1e-6)
	assert.Equal(t, float32(1.0625), s.Radius)
}

func TestBuildDirectionalCascades(t *testing.T) {
	p := cameraParams(t)
	sun := light.NewLight(light.LightTypeDirectional, light.WithDirection(0.3, -1, 0.2), light.WithCastsShadows(true))
	caster := game_object.NewGameObject(game_object.WithPosition(0, 0, 0))
	res := culling.NewResult([]game_object.GameObject{caster}, []light.Light{sun})
	res.SetShadowCasters(0, []game_object.GameObject{caster})

	cb := gfx.NewCommandBuffer("shadows")
	var g gfx.Globals
	b := NewBuilder()
	out := b.Build(cb, &g, res, p, false)

	require.True(t, out.HasDirectional())
	assert.Equal(t, 0, out.DirectionalLightIndex)
	assert.Equal(t, CascadeCount, cb.Count(gfx.OpDrawShadows))

	for i := 0; i < CascadeCount; i++ {
		c := out.Cascades[i]
		assert.Greater(t, c.Sphere.Radius, float32(0))
		assert.Equal(t, c.Sphere.Vec4(), g.CullingSpheres[i])

		x, y := TileOffset(i, DirectionalSideSplit)
		m := g.DirectionalShadowMatrices[i]

		center := m.Mul4x1(c.Sphere.Center.Vec4(1))
		assert.InDelta(t, 0.25+0.5*float32(x), center.X(), 1e-3)
		assert.InDelta(t, 0.25+0.5*float32(y), center.Y(), 1e-3)
		assert.True(t, center.Z() >= 0 && center.Z() <= 1, "depth %v", center.Z())

		right := c.View.Row(0).Vec3()
		up := c.View.Row(1).Vec3()
		for _, dir := range []mgl32.Vec3{right, right.Mul(-1), up, up.Mul(-1)} {
			edge := c.Sphere.Center.Add(dir.Mul(c.Sphere.Radius * 0.99))
			uv := m.Mul4x1(edge.Vec4(1))
			assert.True(t, uv.X() >= 0.5*float32(x) && uv.X() <= 0.5*float32(x)+0.5, "cascade %d u %v", i, uv.X())
			assert.True(t, uv.Y() >= 0.5*float32(y) && uv.Y() <= 0.5*float32(y)+0.5, "cascade %d v %v", i, uv.Y())
		}
	}

	b.Release(cb)
	assert.NoError(t, gfx.Validate(cb))
}

func TestCascadeSphereBoundaryStaysInQuadrant(t *testing.T) {
	p := cameraParams(t)
	sun := light.NewLight(light.LightTypeDirectional, light.WithDirection(-0.4, -1, 0.6), light.WithCastsShadows(true))
	casters := []game_object.GameObject{
		game_object.NewGameObject(game_object.WithScale(20, 0.2, 20)),
		game_object.NewGameObject(game_object.WithPosition(3, 4, 10)),
	}

	build := func(reversedZ bool) (Result, gfx.Globals) {
		res := culling.NewResult(casters, []light.Light{sun})
		res.SetShadowCasters(0, casters)
		var g gfx.Globals
		out := NewBuilder().Build(gfx.NewCommandBuffer("shadows"), &g, res, p, reversedZ)
		require.True(t, out.HasDirectional())
		return out, g
	}
	_, plain := build(false)

	for _, reversedZ := range []bool{false, true} {
		out, g := build(reversedZ)
		for i := 0; i < CascadeCount; i++ {
			x, y := TileOffset(i, DirectionalSideSplit)
			lo := mgl32.Vec2{0.5 * float32(x), 0.5 * float32(y)}
			hi := lo.Add(mgl32.Vec2{0.5, 0.5})

			c := out.Cascades[i]
			m := g.DirectionalShadowMatrices[i]
			for axis := 0; axis < 3; axis++ {
				dir := c.View.Row(axis).Vec3()
				for _, sign := range []float32{1, -1} {
					edge := c.Sphere.Center.Add(dir.Mul(sign * c.Sphere.Radius * 0.999))
					uv := m.Mul4x1(edge.Vec4(1))
					assert.True(t, uv.X() >= lo.X() && uv.X() <= hi.X(),
						"reversed=%v cascade %d axis %d u=%v", reversedZ, i, axis, uv.X())
					assert.True(t, uv.Y() >= lo.Y() && uv.Y() <= hi.Y(),
						"reversed=%v cascade %d axis %d v=%v", reversedZ, i, axis, uv.Y())
					assert.True(t, uv.Z() >= 0 && uv.Z() <= 1,
						"reversed=%v cascade %d axis %d depth=%v", reversedZ, i, axis, uv.Z())

					if reversedZ {
						flat := plain.DirectionalShadowMatrices[i].Mul4x1(edge.Vec4(1))
						assert.InDelta(t, 1-flat.Z(), uv.Z(), 1e-4)
					}
				}
			}
		}
	}
}

func TestBuildWithoutDirectionalLeavesZeroCascades(t *testing.T) {
	p := cameraParams(t)
	res := culling.NewResult(nil, nil)

	cb := gfx.NewCommandBuffer("shadows")
	g := gfx.Globals{CullingSpheres: [CascadeCount]mgl32.Vec4{{1, 2, 3, 4}}}
	b := NewBuilder()
	out := b.Build(cb, &g, res, p, false)

	assert.False(t, out.HasDirectional())
	assert.Equal(t, [CascadeCount]mgl32.Vec4{}, g.CullingSpheres)
	assert.Equal(t, [CascadeCount]mgl32.Mat4{}, g.DirectionalShadowMatrices)
	assert.Zero(t, cb.Count(gfx.OpDrawShadows))
	assert.Equal(t, 2, cb.Count(gfx.OpGetTemporary))

	b.Release(cb)
	assert.NoError(t, gfx.Validate(cb))
}

func TestBuildSpotAndPointTiles(t *testing.T) {
	p := cameraParams(t)
	caster := game_object.NewGameObject()
	spotA := light.NewLight(light.LightTypeSpot, light.WithPosition(0, 3, 0), light.WithCastsShadows(true))
	unshadowed := light.NewLight(light.LightTypeSpot, light.WithPosition(2, 3, 0))
	spotB := light.NewLight(light.LightTypeSpot, light.WithPosition(-2, 3, 0), light.WithCastsShadows(true))
	lamp := light.NewLight(light.LightTypePoint, light.WithPosition(0, 2, 2), light.WithCastsShadows(true))

	res := culling.NewResult([]game_object.GameObject{caster}, []light.Light{spotA, unshadowed, spotB, lamp})
	res.SetShadowCasters(0, []game_object.GameObject{caster})
	res.SetShadowCasters(2, []game_object.GameObject{caster})
	res.SetShadowCasters(3, []game_object.GameObject{caster})

	cb := gfx.NewCommandBuffer("shadows")
	var g gfx.Globals
	out := NewBuilder().Build(cb, &g, res, p, true)

	assert.Equal(t, 0, out.TileLights[0])
	assert.Equal(t, 2, out.TileLights[1])
	assert.Equal(t, -1, out.TileLights[2])
	assert.Equal(t, -1, out.TileLights[3])
	for face := 0; face < PointFaceCount; face++ {
		assert.Equal(t, 3, out.TileLights[4+face])
		assert.NotEqual(t, mgl32.Mat4{}, g.WorldToShadowMapCoordMatrices[4+face])
	}
	assert.Equal(t, -1, out.TileLights[10])
	assert.Equal(t, 2+PointFaceCount, cb.Count(gfx.OpDrawShadows))

	_, ok := out.LightTile(1)
	assert.False(t, ok)
	tile, ok := out.LightTile(3)
	require.True(t, ok)
	assert.Equal(t, 4, tile)

	view, proj := SpotMatrices(spotB.Position(), spotB.Forward(), spotB.SpotAngle(), spotB.ShadowNearPlane(), spotB.Range())
	assert.Equal(t, WorldToShadowMatrix(view, proj, true), g.WorldToShadowMapCoordMatrices[1])

	packed := light.NewCollector().Collect(res.Lights)
	out.ApplyLightTiles(&g, &packed)
	assert.Equal(t, [gfx.OtherLightCapacity]int32{0, -1, 1, -1, 4, -1}, g.LightShadowTiles)
}

func TestPointFaceMatricesLookAlongAxes(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	for face, cf := range cubeFaces {
		view, proj := PointFaceMatrices(pos, face, 0.1, 10)
		ahead := pos.Add(cf.dir.Mul(5))
		clip := proj.Mul4(view).Mul4x1(ahead.Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip.W())
		assert.InDelta(t, 0, ndc.X(), 1e-4, "face %d", face)
		assert.InDelta(t, 0, ndc.Y(), 1e-4, "face %d", face)
	}
}
