package wgpudev

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
)

// submission walks one command buffer, opening a render pass lazily for the
// bound target and closing it before any encoder-level operation.
type submission struct {
	dev      *Device
	encoder  *wgpu.CommandEncoder
	lifetime *gfx.Lifetime
	ctx      *FrameContext

	color gfx.ResourceID
	depth gfx.ResourceID
	pass  *wgpu.RenderPassEncoder
}

func (s *submission) exec(c gfx.Command) error {
	switch c := c.(type) {
	case gfx.GetTemporary:
		t, err := s.dev.acquire(c.ID, c.Desc)
		if err != nil {
			return err
		}
		s.ctx.views[c.ID] = t.view
	case gfx.Release:
		if c.ID == s.color || c.ID == s.depth {
			s.endPass()
		}
		s.dev.release(c.ID)
		delete(s.ctx.views, c.ID)
	case gfx.SetRenderTarget:
		s.endPass()
		s.color, s.depth = c.Color, c.Depth
	case gfx.Clear:
		s.endPass()
		return s.open(c.Color, c.Depth, c.Value)
	case gfx.SetViewport:
		if err := s.ensurePass(); err != nil {
			return err
		}
		r := c.Rect
		s.ctx.Viewport = r
		s.pass.SetViewport(float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 0, 1)
	case gfx.SetViewProjection:
		s.ctx.View, s.ctx.Projection = c.View, c.Projection
	case gfx.SetupCamera:
		s.ctx.View, s.ctx.Projection = c.View, c.Projection
	case gfx.DrawRenderers, gfx.DrawShadows, gfx.DrawSkybox:
		if s.dev.runner == nil {
			return ErrNoRunner
		}
		if err := s.ensurePass(); err != nil {
			return err
		}
		return s.runRender(c)
	case gfx.DrawFullscreen:
		if s.dev.runner == nil {
			return ErrNoRunner
		}
		s.endPass()
		s.color, s.depth = c.Target, gfx.ResourceNone
		if err := s.ensurePass(); err != nil {
			return err
		}
		err := s.runRender(c)
		s.endPass()
		return err
	case gfx.Copy:
		s.endPass()
		return s.copy(c.Src, c.Dst)
	case gfx.Blit:
		s.endPass()
		src, err := s.texture(c.Src)
		if err != nil {
			return err
		}
		dst, err := s.texture(c.Dst)
		if err != nil {
			return err
		}
		if sameSize(src.desc, dst.desc) && TextureFormat(src.desc) == TextureFormat(dst.desc) {
			return s.copy(c.Src, c.Dst)
		}
		return s.exec(gfx.DrawFullscreen{Pass: gfx.CopyPass, Sources: []gfx.ResourceID{c.Src}, Target: c.Dst})
	case gfx.Dispatch:
		s.endPass()
		if s.dev.runner == nil {
			return ErrNoRunner
		}
		pass := s.encoder.BeginComputePass(nil)
		err := s.dev.runner.RunComputePass(pass, s.ctx, c)
		pass.End()
		return err
	case gfx.BeginSample:
		s.endPass()
		s.encoder.PushDebugGroup(c.Name)
	case gfx.EndSample:
		s.endPass()
		s.encoder.PopDebugGroup()
	default:
		return fmt.Errorf("unsupported command %s", c.Op())
	}
	return nil
}

func (s *submission) runRender(c gfx.Command) error {
	return s.dev.runner.RunRenderPass(s.pass, s.ctx, c)
}

func (s *submission) texture(id gfx.ResourceID) (*texture, error) {
	if id == gfx.CameraTarget {
		if s.dev.target == nil {
			return nil, ErrNoTarget
		}
		return s.dev.target, nil
	}
	t, ok := s.dev.live[id]
	if !ok {
		return nil, fmt.Errorf("texture %s: %w", id, gfx.ErrNotAcquired)
	}
	return t, nil
}

func (s *submission) copy(srcID, dstID gfx.ResourceID) error {
	src, err := s.texture(srcID)
	if err != nil {
		return err
	}
	dst, err := s.texture(dstID)
	if err != nil {
		return err
	}
	w := min(src.desc.Width, dst.desc.Width)
	h := min(src.desc.Height, dst.desc.Height)
	s.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: src.tex, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyTexture{Texture: dst.tex, MipLevel: 0, Origin: wgpu.Origin3D{}, Aspect: wgpu.TextureAspectAll},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	return nil
}

// ensurePass opens a loading pass on the bound target if none is open.
func (s *submission) ensurePass() error {
	if s.pass != nil {
		return nil
	}
	return s.open(false, false, common.ColorBlack)
}

func (s *submission) open(clearColor, clearDepth bool, value common.Color) error {
	desc := &wgpu.RenderPassDescriptor{}

	if s.color != gfx.ResourceNone {
		t, err := s.texture(s.color)
		if err != nil {
			return err
		}
		if t.desc.Format.IsDepth() {
			desc.DepthStencilAttachment = s.depthAttachment(t, clearDepth)
		} else {
			load := wgpu.LoadOpLoad
			if clearColor {
				load = wgpu.LoadOpClear
			}
			desc.ColorAttachments = []wgpu.RenderPassColorAttachment{{
				View:    t.view,
				LoadOp:  load,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(value.R), G: float64(value.G), B: float64(value.B), A: float64(value.A),
				},
			}}
		}
	}
	if s.depth != gfx.ResourceNone {
		t, err := s.texture(s.depth)
		if err != nil {
			return err
		}
		desc.DepthStencilAttachment = s.depthAttachment(t, clearDepth)
	}
	if desc.ColorAttachments == nil && desc.DepthStencilAttachment == nil {
		return fmt.Errorf("no render target bound")
	}

	s.pass = s.encoder.BeginRenderPass(desc)
	return nil
}

func (s *submission) depthAttachment(t *texture, clear bool) *wgpu.RenderPassDepthStencilAttachment {
	load := wgpu.LoadOpLoad
	if clear {
		load = wgpu.LoadOpClear
	}
	return &wgpu.RenderPassDepthStencilAttachment{
		View:            t.view,
		DepthLoadOp:     load,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: ClearDepth(s.dev.reversedZ),
	}
}

func (s *submission) endPass() {
	if s.pass == nil {
		return
	}
	s.pass.End()
	s.pass.Release()
	s.pass = nil
}

func sameSize(a, b gfx.TextureDesc) bool {
	return a.Width == b.Width && a.Height == b.Height
}
