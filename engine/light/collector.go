package light

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/rs/zerolog"
)

// Collector packs a camera's visible lights into a PackedLightBuffer.
// It holds no per-frame state, so one Collector serves every camera.
type Collector struct {
	logger zerolog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithCollectorLogger sets the logger used for capacity diagnostics.
//
// Parameters:
//   - logger: the zerolog logger
//
// Returns:
//   - CollectorOption: a function that applies the logger option
func WithCollectorLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a Collector.
//
// Parameters:
//   - opts: variadic list of CollectorOption functions
//
// Returns:
//   - *Collector: the collector
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect walks the visible lights once, in list order, and packs the first
// directional light, the first SpotLightCapacity spot lights and the first
// PointLightCapacity point lights. Later lights of a full category are dropped
// without affecting other slots. Area and disc lights are ignored.
//
// Parameters:
//   - lights: the visible lights, in the order the culling service returned them
//
// Returns:
//   - PackedLightBuffer: the packed data
func (c *Collector) Collect(lights []Light) PackedLightBuffer {
	buf := PackedLightBuffer{DirectionalIndex: -1}
	for i := range buf.SpotIndices {
		buf.SpotIndices[i] = -1
	}
	for i := range buf.PointIndices {
		buf.PointIndices[i] = -1
	}

	for i, l := range lights {
		if l == nil {
			continue
		}
		switch l.Type() {
		case LightTypeDirectional:
			if buf.DirectionalIndex >= 0 {
				buf.Dropped.Directional++
				continue
			}
			m := l.LocalToWorld()
			buf.DirectionalIndex = i
			buf.DirectionalColor = colorVec(l.FinalColor())
			buf.DirectionalDirection = m.Col(2).Mul(-1)

		case LightTypeSpot:
			if buf.SpotCount >= SpotLightCapacity {
				buf.Dropped.Spot++
				continue
			}
			m := l.LocalToWorld()
			slot := SpotSlot(buf.SpotCount)
			buf.Colors[slot] = colorVec(l.FinalColor())
			dir := m.Col(2)
			dir[3] = mgl32.DegToRad(l.SpotAngle())
			buf.Directions[slot] = dir
			pos := m.Col(3)
			pos[3] = l.Range()
			buf.Positions[slot] = pos
			buf.SpotIndices[buf.SpotCount] = i
			buf.SpotCount++

		case LightTypePoint:
			if buf.PointCount >= PointLightCapacity {
				buf.Dropped.Point++
				continue
			}
			m := l.LocalToWorld()
			slot := PointSlot(buf.PointCount)
			buf.Colors[slot] = colorVec(l.FinalColor())
			pos := m.Col(3)
			pos[3] = l.Range()
			buf.Positions[slot] = pos
			buf.PointIndices[buf.PointCount] = i
			buf.PointCount++

		default:
			buf.Dropped.Unsupported++
		}
	}

	if buf.Dropped.Total() > 0 {
		c.logger.Warn().
			Int("directional", buf.Dropped.Directional).
			Int("spot", buf.Dropped.Spot).
			Int("point", buf.Dropped.Point).
			Msg("lights dropped over capacity")
	}
	return buf
}

func colorVec(c common.Color) mgl32.Vec4 {
	return c.Vec4()
}
