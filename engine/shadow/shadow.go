package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/rs/zerolog"
)

const spotShadowCapacity = gfx.SpotLightCapacity

// pointShadowCapacity is the number of point lights whose six faces fit after
// the spot tiles.
const pointShadowCapacity = (SpotPointTileCount - spotShadowCapacity) / PointFaceCount

// Sample scope names recorded around each atlas.
const (
	DirectionalSampleName = "Directional Shadows"
	SpotPointSampleName   = "Spot and Point Shadows"
)

// Result describes the shadow work recorded for one camera.
type Result struct {
	// DirectionalLightIndex is the visible-list index of the shadowed
	// directional light, or -1.
	DirectionalLightIndex int
	// Cascades is meaningful only when DirectionalLightIndex >= 0.
	Cascades [CascadeCount]Cascade

	// TileLights maps each spot/point atlas tile to its visible-list light
	// index, -1 for unused tiles.
	TileLights [SpotPointTileCount]int

	lightTiles map[int]int
}

// HasDirectional reports whether directional cascades were rendered.
func (r *Result) HasDirectional() bool {
	return r.DirectionalLightIndex >= 0
}

// LightTile returns the first atlas tile of a visible spot or point light.
//
// Parameters:
//   - lightIndex: the visible-list light index
//
// Returns:
//   - int: the tile index
//   - bool: false when the light has no shadow tile
func (r *Result) LightTile(lightIndex int) (int, bool) {
	t, ok := r.lightTiles[lightIndex]
	return t, ok
}

// ApplyLightTiles writes the shadow tile of every packed spot and point light
// slot into the bundle. Slots without a shadow get -1.
//
// Parameters:
//   - g: the bundle to update
//   - packed: the collector output for the same camera
func (r *Result) ApplyLightTiles(g *gfx.Globals, packed *light.PackedLightBuffer) {
	for i := range g.LightShadowTiles {
		g.LightShadowTiles[i] = -1
	}
	for n := 0; n < packed.SpotCount; n++ {
		if t, ok := r.LightTile(packed.SpotIndices[n]); ok {
			g.LightShadowTiles[light.SpotSlot(n)] = int32(t)
		}
	}
	for n := 0; n < packed.PointCount; n++ {
		if t, ok := r.LightTile(packed.PointIndices[n]); ok {
			g.LightShadowTiles[light.PointSlot(n)] = int32(t)
		}
	}
}

// Builder records the shadow atlases of a camera.
type Builder struct {
	directionalResolution int
	spotPointResolution   int
	splitRatios           [CascadeCount - 1]float32
	nearPlaneOffset       float32
	logger                zerolog.Logger
}

// NewBuilder creates a shadow atlas builder.
//
// Parameters:
//   - opts: variadic list of BuilderOption functions
//
// Returns:
//   - *Builder: the builder
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		directionalResolution: DefaultDirectionalResolution,
		spotPointResolution:   DefaultSpotPointResolution,
		splitRatios:           DefaultSplitRatios,
		nearPlaneOffset:       DefaultNearPlaneOffset,
		logger:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DirectionalAtlasDesc returns the directional atlas texture request.
func (b *Builder) DirectionalAtlasDesc() gfx.TextureDesc {
	return gfx.TextureDesc{
		Width:     b.directionalResolution,
		Height:    b.directionalResolution,
		DepthBits: ShadowDepthBits,
		Filter:    gfx.FilterPoint,
		Format:    gfx.FormatShadowmap,
	}
}

// SpotPointAtlasDesc returns the spot/point atlas texture request.
func (b *Builder) SpotPointAtlasDesc() gfx.TextureDesc {
	return gfx.TextureDesc{
		Width:     b.spotPointResolution,
		Height:    b.spotPointResolution,
		DepthBits: ShadowDepthBits,
		Filter:    gfx.FilterBilinear,
		Format:    gfx.FormatShadowmap,
	}
}

// ClearShadows writes the "no shadow" state into g: zero cascade matrices
// and culling spheres, zero tile matrices and -1 for every light slot tile.
func ClearShadows(g *gfx.Globals) {
	g.DirectionalShadowMatrices = [CascadeCount]mgl32.Mat4{}
	g.CullingSpheres = [CascadeCount]mgl32.Vec4{}
	g.WorldToShadowMapCoordMatrices = [SpotPointTileCount]mgl32.Mat4{}
	for i := range g.LightShadowTiles {
		g.LightShadowTiles[i] = -1
	}
}

// Build acquires and clears both atlases, records one shadow draw per tile and
// writes the shadow matrices and culling spheres into g. The shadow fields of g
// are zeroed first, so a camera without a directional light leaves all
// cascade data zero.
//
// Parameters:
//   - cb: the camera's command buffer
//   - g: the camera's uniform bundle
//   - cull: the culling result, which supplies caster bounds
//   - p: the camera culling parameters
//   - reversedZ: the device depth convention
//
// Returns:
//   - Result: what was rendered
func (b *Builder) Build(cb *gfx.CommandBuffer, g *gfx.Globals, cull *culling.Result, p culling.Parameters, reversedZ bool) Result {
	res := Result{DirectionalLightIndex: -1, lightTiles: make(map[int]int)}
	for i := range res.TileLights {
		res.TileLights[i] = -1
	}
	ClearShadows(g)

	b.buildDirectional(cb, g, cull, p, reversedZ, &res)
	b.buildSpotPoint(cb, g, cull, reversedZ, &res)
	return res
}

func (b *Builder) buildDirectional(cb *gfx.CommandBuffer, g *gfx.Globals, cull *culling.Result, p culling.Parameters, reversedZ bool, res *Result) {
	cb.BeginSample(DirectionalSampleName)
	defer cb.EndSample(DirectionalSampleName)

	cb.GetTemporary(gfx.DirectionalShadowAtlas, b.DirectionalAtlasDesc())
	cb.SetRenderTarget(gfx.ResourceNone, gfx.DirectionalShadowAtlas)
	cb.Clear(true, false, common.ColorClear)

	index := -1
	for i, l := range cull.Lights {
		if l.Type() == light.LightTypeDirectional {
			index = i
			break
		}
	}
	if index < 0 {
		return
	}
	casterBounds, ok := cull.ShadowCasterBounds(index)
	if !ok {
		b.logger.Debug().Int("light", index).Msg("directional light has no shadow casters")
		return
	}

	res.DirectionalLightIndex = index
	forward := cull.Lights[index].Forward()
	casters := cull.ShadowCasters(index)
	tileWidth := b.directionalResolution / DirectionalSideSplit
	cam := CameraFrustum{
		View:           p.View,
		Fov:            p.Fov,
		Aspect:         p.Aspect,
		Near:           p.Near,
		ShadowDistance: p.ShadowDistance,
	}
	splits := SplitDistances(p.Near, p.ShadowDistance, b.splitRatios)

	for i := 0; i < CascadeCount; i++ {
		c := ComputeCascade(cam, splits[i][0], splits[i][1], forward, casterBounds, tileWidth, b.nearPlaneOffset)
		res.Cascades[i] = c

		cb.SetViewport(TileRect(i, DirectionalSideSplit, tileWidth))
		cb.SetViewProjection(c.View, c.Projection)
		cb.DrawShadows(index, i, casters)

		x, y := TileOffset(i, DirectionalSideSplit)
		g.DirectionalShadowMatrices[i] = AtlasMatrix(c.View, c.Projection, x, y, DirectionalSideSplit, reversedZ)
		g.CullingSpheres[i] = c.Sphere.Vec4()
	}
}

func (b *Builder) buildSpotPoint(cb *gfx.CommandBuffer, g *gfx.Globals, cull *culling.Result, reversedZ bool, res *Result) {
	cb.BeginSample(SpotPointSampleName)
	defer cb.EndSample(SpotPointSampleName)

	cb.GetTemporary(gfx.SpotPointShadowAtlas, b.SpotPointAtlasDesc())
	cb.SetRenderTarget(gfx.ResourceNone, gfx.SpotPointShadowAtlas)
	cb.Clear(true, false, common.ColorClear)

	tileWidth := b.spotPointResolution / SpotPointSideSplit
	draw := func(tile, lightIndex, split int, view, proj mgl32.Mat4) {
		cb.SetViewport(TileRect(tile, SpotPointSideSplit, tileWidth))
		cb.SetViewProjection(view, proj)
		cb.DrawShadows(lightIndex, split, cull.ShadowCasters(lightIndex))
		g.WorldToShadowMapCoordMatrices[tile] = WorldToShadowMatrix(view, proj, reversedZ)
		res.TileLights[tile] = lightIndex
	}

	spots, points := 0, 0
	for i, l := range cull.Lights {
		if _, ok := cull.ShadowCasterBounds(i); !ok {
			continue
		}
		switch l.Type() {
		case light.LightTypeSpot:
			if spots >= spotShadowCapacity {
				continue
			}
			view, proj := SpotMatrices(l.Position(), l.Forward(), l.SpotAngle(), l.ShadowNearPlane(), l.Range())
			res.lightTiles[i] = spots
			draw(spots, i, 0, view, proj)
			spots++
		case light.LightTypePoint:
			if points >= pointShadowCapacity {
				continue
			}
			res.lightTiles[i] = PointTile(points, 0)
			for face := 0; face < PointFaceCount; face++ {
				view, proj := PointFaceMatrices(l.Position(), face, l.ShadowNearPlane(), l.Range())
				draw(PointTile(points, face), i, face, view, proj)
			}
			points++
		}
	}
	b.logger.Debug().Int("spot", spots).Int("point", points).Msg("spot and point shadows recorded")
}

// Release records the release of both atlases.
//
// Parameters:
//   - cb: the camera's command buffer
func (b *Builder) Release(cb *gfx.CommandBuffer) {
	cb.Release(gfx.DirectionalShadowAtlas)
	cb.Release(gfx.SpotPointShadowAtlas)
}
