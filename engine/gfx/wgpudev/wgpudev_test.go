package wgpudev

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureFormat(t *testing.T) {
	tests := []struct {
		name string
		desc gfx.TextureDesc
		want wgpu.TextureFormat
	}{
		{"default", gfx.TextureDesc{Format: gfx.FormatDefault}, wgpu.TextureFormatRGBA8Unorm},
		{"hdr", gfx.TextureDesc{Format: gfx.FormatDefaultHDR}, wgpu.TextureFormatRGBA16Float},
		{"depth 24", gfx.TextureDesc{Format: gfx.FormatDepth, DepthBits: 24}, wgpu.TextureFormatDepth24Plus},
		{"depth 32", gfx.TextureDesc{Format: gfx.FormatDepth, DepthBits: 32}, wgpu.TextureFormatDepth32Float},
		{"shadowmap", gfx.TextureDesc{Format: gfx.FormatShadowmap, DepthBits: 32}, wgpu.TextureFormatDepth32Float},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextureFormat(tt.desc))
		})
	}
}

func TestTextureUsage(t *testing.T) {
	plain := TextureUsage(gfx.TextureDesc{})
	assert.NotZero(t, plain&wgpu.TextureUsageRenderAttachment)
	assert.NotZero(t, plain&wgpu.TextureUsageCopyDst)
	assert.Zero(t, plain&wgpu.TextureUsageStorageBinding)

	storage := TextureUsage(gfx.TextureDesc{RandomWrite: true})
	assert.NotZero(t, storage&wgpu.TextureUsageStorageBinding)
}

func TestClearDepth(t *testing.T) {
	assert.Equal(t, float32(1), ClearDepth(false))
	assert.Equal(t, float32(0), ClearDepth(true))
}

func TestDeviceReportsDepthConvention(t *testing.T) {
	d := NewDevice(nil, nil, WithReversedZ(true))
	assert.True(t, d.UsesReversedZ())
	assert.False(t, NewDevice(nil, nil).UsesReversedZ())
}

func newSubmission(d *Device) *submission {
	return &submission{
		dev:      d,
		lifetime: gfx.NewLifetime(),
		ctx:      &FrameContext{views: make(map[gfx.ResourceID]*wgpu.TextureView)},
	}
}

func TestFailedRecordReturnsTexturesToPool(t *testing.T) {
	desc := gfx.TextureDesc{Width: 8, Height: 8, Format: gfx.FormatDefaultHDR}
	pooled := &texture{desc: desc}
	d := NewDevice(nil, nil)
	d.pool[desc] = []*texture{pooled}

	record := func() *gfx.CommandBuffer {
		cb := gfx.NewCommandBuffer("no runner")
		cb.GetTemporary(gfx.ColorAttachment, desc)
		cb.SetRenderTarget(gfx.ColorAttachment, gfx.ResourceNone)
		cb.DrawRenderers(gfx.DrawRenderers{})
		cb.Release(gfx.ColorAttachment)
		return cb
	}

	for i := 0; i < 2; i++ {
		err := d.record(newSubmission(d), record())
		require.ErrorIs(t, err, ErrNoRunner)
		assert.Empty(t, d.live)
		require.Len(t, d.pool[desc], 1)
		assert.Same(t, pooled, d.pool[desc][0])
	}
	assert.Zero(t, d.createdTex)
}

func TestLeakedRecordReturnsTexturesToPool(t *testing.T) {
	desc := gfx.TextureDesc{Width: 4, Height: 4, Format: gfx.FormatDefault}
	d := NewDevice(nil, nil)
	d.pool[desc] = []*texture{{desc: desc}}

	cb := gfx.NewCommandBuffer("leak")
	cb.GetTemporary(gfx.FinalTexture, desc)
	assert.ErrorIs(t, d.record(newSubmission(d), cb), gfx.ErrLeaked)
	assert.Empty(t, d.live)
	assert.Len(t, d.pool[desc], 1)
}
