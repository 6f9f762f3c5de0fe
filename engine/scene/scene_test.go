package scene

import (
	"testing"

	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(t *testing.T, shadowDistance float32) culling.Parameters {
	t.Helper()
	cam := camera.NewCamera(camera.WithPosition(0, 0, -10), camera.WithTarget(0, 0, 0))
	p, ok := cam.CullingParameters()
	require.True(t, ok)
	p.ShadowDistance = shadowDistance
	return p
}

func TestCullKeepsVisibleObjectsInOrder(t *testing.T) {
	front := game_object.NewGameObject(game_object.WithName("front"))
	behind := game_object.NewGameObject(game_object.WithName("behind"), game_object.WithPosition(0, 0, -30))
	side := game_object.NewGameObject(game_object.WithName("side"), game_object.WithPosition(1, 0, 2))
	hidden := game_object.NewGameObject(game_object.WithEnabled(false))

	s := NewScene("test", WithObjects(front, behind, side, hidden))
	res, err := s.Cull(params(t, 50))
	require.NoError(t, err)

	require.Len(t, res.Objects, 2)
	assert.Equal(t, "front", res.Objects[0].Name())
	assert.Equal(t, "side", res.Objects[1].Name())
}

func TestCullChunkedMatchesSerial(t *testing.T) {
	var objs []game_object.GameObject
	for i := 0; i < 100; i++ {
		objs = append(objs, game_object.NewGameObject(game_object.WithPosition(float32(i%10)-5, 0, float32(i/10)*4-20)))
	}

	serial, err := NewScene("serial", WithObjects(objs...)).Cull(params(t, 50))
	require.NoError(t, err)
	chunked, err := NewScene("chunked", WithObjects(objs...), WithCullChunkSize(7), WithComputeWorkers(4)).Cull(params(t, 50))
	require.NoError(t, err)

	require.Equal(t, len(serial.Objects), len(chunked.Objects))
	for i := range serial.Objects {
		assert.Equal(t, serial.Objects[i].ID(), chunked.Objects[i].ID())
	}
}

func TestCullLightsAndCasters(t *testing.T) {
	caster := game_object.NewGameObject(game_object.WithPosition(0, 0, 0))
	far := game_object.NewGameObject(game_object.WithPosition(0, 0, 500))
	sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))
	lamp := light.NewLight(light.LightTypePoint, light.WithPosition(0, 2, 0), light.WithRange(3), light.WithCastsShadows(true))
	distant := light.NewLight(light.LightTypePoint, light.WithPosition(0, 0, -500), light.WithRange(1))
	off := light.NewLight(light.LightTypeSpot, light.WithEnabled(false))

	s := NewScene("lights", WithObjects(caster, far), WithLights(sun, lamp, distant, off))
	res, err := s.Cull(params(t, 50))
	require.NoError(t, err)

	require.Len(t, res.Lights, 2)
	assert.Same(t, sun, res.Lights[0])

	b, ok := res.ShadowCasterBounds(0)
	require.True(t, ok)
	assert.InDelta(t, 0, b.Center().Z(), 1e-5, "distant object is beyond shadow distance")
	assert.Len(t, res.ShadowCasters(1), 1)
}

func TestCullNoShadowDistanceMeansNoDirectionalCasters(t *testing.T) {
	s := NewScene("noshadow",
		WithObjects(game_object.NewGameObject()),
		WithLights(light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))),
	)
	res, err := s.Cull(params(t, 0))
	require.NoError(t, err)
	_, ok := res.ShadowCasterBounds(0)
	assert.False(t, ok)
}

func TestCullRejectsBadClipPlanes(t *testing.T) {
	p := params(t, 10)
	p.Far = p.Near
	_, err := NewScene("bad").Cull(p)
	assert.ErrorIs(t, err, culling.ErrInvalidParameters)
}

func TestEndFrameCommitsMotion(t *testing.T) {
	o := game_object.NewGameObject()
	s := NewScene("motion", WithObjects(o))
	o.SetPosition(1, 0, 0)
	assert.NotEqual(t, o.LocalToWorld(), o.PreviousLocalToWorld())
	s.EndFrame()
	assert.Equal(t, o.LocalToWorld(), o.PreviousLocalToWorld())
}
