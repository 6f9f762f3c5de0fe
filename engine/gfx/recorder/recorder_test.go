package recorder

import (
	"testing"

	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func desc() gfx.TextureDesc {
	return gfx.TextureDesc{Width: 4, Height: 4, Format: gfx.FormatDefaultHDR}
}

func TestSubmitKeepsBalancedBuffer(t *testing.T) {
	d := New(WithReversedZ(true))
	assert.True(t, d.UsesReversedZ())

	cb := gfx.NewCommandBuffer("cam")
	cb.GetTemporary(gfx.ColorAttachment, desc())
	cb.SetRenderTarget(gfx.ColorAttachment, gfx.ResourceNone)
	cb.Clear(true, true, common.ColorBlack)
	cb.Blit(gfx.ColorAttachment, gfx.CameraTarget)
	cb.Release(gfx.ColorAttachment)

	g := &gfx.Globals{BloomIntensity: 2}
	require.NoError(t, d.Submit(cb, g))

	// later changes to the caller's buffer and globals do not leak in
	cb.Reset()
	g.BloomIntensity = 0

	s, ok := d.Last()
	require.True(t, ok)
	assert.Equal(t, "cam", s.Name)
	assert.Len(t, s.Commands, 5)
	assert.Equal(t, 1, s.Count(gfx.OpBlit))
	assert.Equal(t, float32(2), s.Globals.BloomIntensity)
	assert.Equal(t, gfx.OpGetTemporary, s.Ops()[0])
}

func TestSubmitRejectsMisuse(t *testing.T) {
	tests := []struct {
		name   string
		record func(cb *gfx.CommandBuffer)
		want   error
	}{
		{
			name: "leak",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.ColorAttachment, desc())
			},
			want: gfx.ErrLeaked,
		},
		{
			name: "use before acquire",
			record: func(cb *gfx.CommandBuffer) {
				cb.Blit(gfx.ColorMap, gfx.CameraTarget)
			},
			want: gfx.ErrNotAcquired,
		},
		{
			name: "bind before acquire",
			record: func(cb *gfx.CommandBuffer) {
				cb.SetRenderTarget(gfx.ColorAttachment, gfx.DepthAttachment)
				cb.Clear(true, true, common.ColorBlack)
			},
			want: gfx.ErrNotAcquired,
		},
		{
			name: "double acquire",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.ColorMap, desc())
				cb.GetTemporary(gfx.ColorMap, desc())
			},
			want: gfx.ErrAlreadyAcquired,
		},
		{
			name: "release twice",
			record: func(cb *gfx.CommandBuffer) {
				cb.GetTemporary(gfx.ColorMap, desc())
				cb.Release(gfx.ColorMap)
				cb.Release(gfx.ColorMap)
			},
			want: gfx.ErrNotAcquired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			cb := gfx.NewCommandBuffer(tt.name)
			tt.record(cb)
			err := d.Submit(cb, &gfx.Globals{})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, d.Submissions())
			assert.Equal(t, 1, d.Rejected())
		})
	}
}
