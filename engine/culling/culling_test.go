package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/stretchr/testify/assert"
)

func TestShadowCasterBounds(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional)
	lamp := light.NewLight(light.LightTypeSpot)
	a := game_object.NewGameObject()
	b := game_object.NewGameObject(game_object.WithPosition(3, 0, 0))

	r := NewResult([]game_object.GameObject{a, b}, []light.Light{sun, lamp})
	_, ok := r.ShadowCasterBounds(0)
	assert.False(t, ok)

	r.SetShadowCasters(0, []game_object.GameObject{a, b})
	bounds, ok := r.ShadowCasterBounds(0)
	assert.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, bounds.Min)
	assert.Equal(t, mgl32.Vec3{3.5, 0.5, 0.5}, bounds.Max)
	assert.Len(t, r.ShadowCasters(0), 2)

	r.SetShadowCasters(1, nil)
	_, ok = r.ShadowCasterBounds(1)
	assert.False(t, ok)

	r.SetShadowCasters(5, []game_object.GameObject{a})
	_, ok = r.ShadowCasterBounds(5)
	assert.False(t, ok)
	assert.Nil(t, r.ShadowCasters(-1))
}
