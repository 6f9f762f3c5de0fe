// Package shadow renders shadow maps for directional, spot and point lights
// into two shared atlases and derives the matrices shaders use to sample them.
package shadow

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
)

const (
	// DefaultDirectionalResolution is the default directional atlas size in texels.
	DefaultDirectionalResolution = 1024
	// DefaultSpotPointResolution is the default spot/point atlas size in texels.
	DefaultSpotPointResolution = 1024

	// DirectionalSideSplit is the directional atlas grid side: 2x2 cascades.
	DirectionalSideSplit = 2
	// SpotPointSideSplit is the spot/point atlas grid side: 4x4 tiles.
	SpotPointSideSplit = 4

	// CascadeCount is the number of directional cascades.
	CascadeCount = DirectionalSideSplit * DirectionalSideSplit
	// SpotPointTileCount is the number of tiles in the spot/point atlas.
	SpotPointTileCount = SpotPointSideSplit * SpotPointSideSplit

	// PointFaceCount is the number of cube faces rendered per point light.
	PointFaceCount = 6

	// DefaultNearPlaneOffset pulls the cascade near plane toward the light so
	// casters just outside the culling sphere still land in the map.
	DefaultNearPlaneOffset = 0.003

	// ShadowDepthBits is the depth precision of both atlases.
	ShadowDepthBits = 32
)

// DefaultSplitRatios are the cascade boundaries as fractions of the shadow distance.
var DefaultSplitRatios = [CascadeCount - 1]float32{0.25, 0.5, 0.75}

// TileOffset returns the grid column and row of tile i.
//
// Parameters:
//   - i: tile index
//   - side: tiles per atlas row
//
// Returns:
//   - x, y: column and row
func TileOffset(i, side int) (x, y int) {
	return i % side, i / side
}

// TileRect returns the pixel rectangle of tile i.
//
// Parameters:
//   - i: tile index in [0, side*side)
//   - side: tiles per atlas row
//   - tileWidth: tile edge length in texels
//
// Returns:
//   - common.Rect: (i%side*tileWidth, i/side*tileWidth, tileWidth, tileWidth)
func TileRect(i, side, tileWidth int) common.Rect {
	x, y := TileOffset(i, side)
	return common.Rect{X: x * tileWidth, Y: y * tileWidth, Width: tileWidth, Height: tileWidth}
}

// PointTile returns the spot/point atlas tile of a point light cube face.
// The first SpotLightCapacity tiles belong to spot lights.
//
// Parameters:
//   - ordinal: the point light's shadow ordinal
//   - face: the cube face in [0, PointFaceCount)
//
// Returns:
//   - int: the tile index
func PointTile(ordinal, face int) int {
	return spotShadowCapacity + ordinal*PointFaceCount + face
}

// WorldToShadowMatrix returns proj * view, with the depth row negated when the
// device uses a reversed depth buffer.
//
// Parameters:
//   - view, proj: the light's view and projection
//   - reversedZ: the device depth convention
//
// Returns:
//   - mgl32.Mat4: world to shadow clip space
func WorldToShadowMatrix(view, proj mgl32.Mat4, reversedZ bool) mgl32.Mat4 {
	m := proj.Mul4(view)
	if reversedZ {
		m = common.NegateRow(m, 2)
	}
	return m
}

// AtlasMatrix maps world space straight into the atlas UV and depth range of
// one tile: the clip-space square [-1,1] is scaled by 0.5/side in X and Y and
// 0.5 in Z, then offset to the tile's center and depth 0.5. For the 2x2
// directional atlas that is a scale of (0.25, 0.25, 0.5) and a translation of
// (0.25 + 0.5*x, 0.25 + 0.5*y, 0.5).
//
// Parameters:
//   - view, proj: the cascade's view and projection
//   - tileX, tileY: the tile column and row
//   - side: tiles per atlas row
//   - reversedZ: the device depth convention
//
// Returns:
//   - mgl32.Mat4: world to atlas coordinates
func AtlasMatrix(view, proj mgl32.Mat4, tileX, tileY, side int, reversedZ bool) mgl32.Mat4 {
	m := WorldToShadowMatrix(view, proj, reversedZ)
	width := 1 / float32(side)
	scale := mgl32.Scale3D(0.5*width, 0.5*width, 0.5)
	translate := mgl32.Translate3D(width*(0.5+float32(tileX)), width*(0.5+float32(tileY)), 0.5)
	return translate.Mul4(scale).Mul4(m)
}
