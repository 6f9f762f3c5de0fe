package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/engine/gfx"
)

const (
	// SpotLightCapacity is the number of spot lights shaded per camera.
	SpotLightCapacity = gfx.SpotLightCapacity
	// PointLightCapacity is the number of point lights shaded per camera.
	PointLightCapacity = gfx.PointLightCapacity
	// DirectionalLightCapacity is the number of directional lights shaded per camera.
	DirectionalLightCapacity = 1
)

// DroppedLights counts lights the collector could not place.
type DroppedLights struct {
	Directional int
	Spot        int
	Point       int
	Unsupported int
}

// Total returns the number of lights dropped for lack of capacity. Unsupported
// types are not counted.
func (d DroppedLights) Total() int {
	return d.Directional + d.Spot + d.Point
}

// PackedLightBuffer is the shader-facing light data of one camera.
//
// Spot lights occupy slots [0, SpotLightCapacity) of the combined arrays and
// point lights occupy [SpotLightCapacity, SpotLightCapacity+PointLightCapacity).
// Unused slots are zero.
//
// Layout of the combined arrays:
//
//	Colors[i]     final (intensity scaled) color
//	Positions[i]  (position.xyz, range)
//	Directions[i] (forward.xyz, spot angle in radians), spot slots only
type PackedLightBuffer struct {
	// DirectionalIndex is the visible-list index of the packed directional
	// light, or -1 when there is none.
	DirectionalIndex     int
	DirectionalColor     mgl32.Vec4
	DirectionalDirection mgl32.Vec4

	SpotCount  int
	PointCount int
	Colors     [gfx.OtherLightCapacity]mgl32.Vec4
	Positions  [gfx.OtherLightCapacity]mgl32.Vec4
	Directions [gfx.OtherLightCapacity]mgl32.Vec4

	// SpotIndices and PointIndices map each used slot back to the visible-list index.
	SpotIndices  [SpotLightCapacity]int
	PointIndices [PointLightCapacity]int

	Dropped DroppedLights
}

// SpotSlot returns the combined-array index of the n-th spot light.
func SpotSlot(n int) int {
	return n
}

// PointSlot returns the combined-array index of the n-th point light.
func PointSlot(n int) int {
	return SpotLightCapacity + n
}

// HasDirectional reports whether a directional light was packed.
func (b *PackedLightBuffer) HasDirectional() bool {
	return b.DirectionalIndex >= 0
}

// Apply writes the buffer into the frame uniform bundle.
//
// Parameters:
//   - g: the bundle to update
func (b *PackedLightBuffer) Apply(g *gfx.Globals) {
	g.DirectionalLightColor = b.DirectionalColor
	g.DirectionalLightDirection = b.DirectionalDirection
	g.SpotLightCount = int32(b.SpotCount)
	g.PointLightCount = int32(b.PointCount)
	g.LightColors = b.Colors
	g.LightPositions = b.Positions
	g.LightDirections = b.Directions
}
