package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCullingParametersValid(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, -5), WithTarget(0, 0, 0), WithPixelSize(640, 480))

	p, ok := c.CullingParameters()
	require.True(t, ok)
	assert.Equal(t, c.ID(), p.CameraID)
	assert.InDelta(t, 640.0/480.0, p.Aspect, 1e-6)
	assert.InDelta(t, mgl32.DegToRad(60), p.Fov, 1e-6)

	near := p.Frustum.Planes[4]
	assert.Greater(t, near.SignedDistance(mgl32.Vec3{0, 0, 0}), float32(0), "origin is in front of the near plane")
}

func TestCullingParametersDegenerate(t *testing.T) {
	tests := []struct {
		name string
		opts []CameraBuilderOption
	}{
		{"zero width", []CameraBuilderOption{WithPixelSize(0, 480)}},
		{"zero height", []CameraBuilderOption{WithPixelSize(640, 0)}},
		{"near beyond far", []CameraBuilderOption{WithClipPlanes(10, 1)}},
		{"zero near", []CameraBuilderOption{WithClipPlanes(0, 100)}},
		{"zero fov", []CameraBuilderOption{WithFov(0)}},
		{"eye on target", []CameraBuilderOption{WithPosition(1, 1, 1), WithTarget(1, 1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := NewCamera(tt.opts...).CullingParameters()
			assert.False(t, ok)
		})
	}
}

func TestCamerasHaveDistinctIDs(t *testing.T) {
	assert.NotEqual(t, NewCamera().ID(), NewCamera().ID())
}

func TestOrbitControllerDrivesCamera(t *testing.T) {
	oc := NewOrbitController(WithOrbitRadius(5), WithOrbitAngles(0, 0), WithOrbitSpeed(1))
	c := NewCamera(WithController(oc))

	assert.InDelta(t, 5, c.Position().Z(), 1e-5)

	oc.Advance(float32(3.14159265 / 2))
	c.Update()
	assert.InDelta(t, 5, c.Position().X(), 1e-4)
	assert.InDelta(t, 0, c.Position().Z(), 1e-4)
}
