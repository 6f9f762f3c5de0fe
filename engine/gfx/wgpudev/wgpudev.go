// Package wgpudev executes command buffers on a WebGPU device.
//
// Temporaries become pooled wgpu textures, clears become render pass load
// operations and copies become encoder copies. Geometry draws, full-screen
// material passes and compute kernels need application shaders, so they are
// handed to a PassRunner with the render or compute pass already open.
package wgpudev

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/rs/zerolog"
)

// ErrNoTarget is returned when a buffer writes to the camera target before
// SetTarget was called.
var ErrNoTarget = errors.New("camera target not set")

// ErrNoRunner is returned when a buffer contains draw work and no PassRunner
// was configured.
var ErrNoRunner = errors.New("no pass runner")

// FrameContext is the per-submission state a PassRunner sees.
type FrameContext struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Globals *wgpu.Buffer

	// View and Projection are the matrices most recently set by SetupCamera
	// or SetViewProjection.
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Viewport   common.Rect

	views map[gfx.ResourceID]*wgpu.TextureView
}

// TextureView returns the view of a live temporary or of the camera target.
func (c *FrameContext) TextureView(id gfx.ResourceID) (*wgpu.TextureView, bool) {
	v, ok := c.views[id]
	return v, ok
}

// PassRunner records the work that depends on application shaders.
type PassRunner interface {
	// RunRenderPass records c into pass. c is a DrawRenderers, DrawShadows,
	// DrawSkybox or DrawFullscreen command; for DrawFullscreen the pass is
	// bound to the command's target.
	RunRenderPass(pass *wgpu.RenderPassEncoder, ctx *FrameContext, c gfx.Command) error

	// RunComputePass records d into pass.
	RunComputePass(pass *wgpu.ComputePassEncoder, ctx *FrameContext, d gfx.Dispatch) error
}

type texture struct {
	desc gfx.TextureDesc
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *texture) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.tex != nil {
		t.tex.Release()
	}
}

// Device is a gfx.Device backed by WebGPU.
type Device struct {
	mu *sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue
	runner PassRunner
	logger zerolog.Logger

	reversedZ bool

	target     *texture
	globals    *wgpu.Buffer
	live       map[gfx.ResourceID]*texture
	pool       map[gfx.TextureDesc][]*texture
	createdTex int
}

var _ gfx.Device = &Device{}

// NewDevice wraps an existing WebGPU device and queue.
//
// Parameters:
//   - device: the wgpu device
//   - queue: the device queue
//   - opts: variadic list of DeviceOption functions
//
// Returns:
//   - *Device: the device
func NewDevice(device *wgpu.Device, queue *wgpu.Queue, opts ...DeviceOption) *Device {
	d := &Device{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
		logger: zerolog.Nop(),
		live:   make(map[gfx.ResourceID]*texture),
		pool:   make(map[gfx.TextureDesc][]*texture),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open requests a headless adapter and device.
//
// Parameters:
//   - forceFallbackAdapter: request the software adapter
//   - opts: variadic list of DeviceOption functions
//
// Returns:
//   - *Device: the device
//   - error: adapter or device creation failure
func Open(forceFallbackAdapter bool, opts ...DeviceOption) (*Device, error) {
	runtime.LockOSThread()
	instance := wgpu.CreateInstance(nil)

	a, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "noobrp device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	return NewDevice(dev, dev.GetQueue(), opts...), nil
}

func (d *Device) UsesReversedZ() bool {
	return d.reversedZ
}

// SetTarget sets the presentation texture that CameraTarget refers to. The
// texture must allow render attachment and copy destination usage.
//
// Parameters:
//   - tex: the target texture
//   - width, height: its size in pixels
//
// Returns:
//   - error: view creation failure
func (d *Device) SetTarget(tex *wgpu.Texture, width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("camera target view: %w", err)
	}
	if d.target != nil && d.target.view != nil {
		d.target.view.Release()
	}
	d.target = &texture{
		desc: gfx.TextureDesc{Width: width, Height: height, Format: gfx.FormatDefault},
		tex:  tex,
		view: view,
	}
	return nil
}

// CreateOffscreenTarget allocates a texture for headless rendering and makes
// it the camera target.
//
// Parameters:
//   - width, height: target size in pixels
//
// Returns:
//   - *wgpu.Texture: the texture, owned by the caller
//   - error: texture creation failure
func (d *Device) CreateOffscreenTarget(width, height int) (*wgpu.Texture, error) {
	desc := gfx.TextureDesc{Width: width, Height: height, Format: gfx.FormatDefault}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: gfx.CameraTarget.String(),
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        TextureFormat(desc),
		Usage:         TextureUsage(desc),
	})
	if err != nil {
		return nil, fmt.Errorf("create offscreen target: %w", err)
	}
	if err := d.SetTarget(tex, width, height); err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}

// Release frees every pooled texture and the globals buffer. Live temporaries
// are freed too.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, t := range d.live {
		t.release()
		delete(d.live, id)
	}
	for key, list := range d.pool {
		for _, t := range list {
			t.release()
		}
		delete(d.pool, key)
	}
	if d.globals != nil {
		d.globals.Release()
		d.globals = nil
	}
	if d.target != nil && d.target.view != nil {
		d.target.view.Release()
	}
	d.target = nil
}

// Submit records cb into one command encoder and submits it after uploading
// globals.
//
// Parameters:
//   - cb: the command buffer
//   - globals: the uniform bundle
//
// Returns:
//   - error: a resource misuse or a wgpu failure
func (d *Device) Submit(cb *gfx.CommandBuffer, globals *gfx.Globals) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.uploadGlobals(globals); err != nil {
		return err
	}

	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: cb.Name()})
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}
	defer encoder.Release()

	s := &submission{
		dev:      d,
		encoder:  encoder,
		lifetime: gfx.NewLifetime(),
		ctx: &FrameContext{
			Device:  d.device,
			Queue:   d.queue,
			Globals: d.globals,
			views:   make(map[gfx.ResourceID]*wgpu.TextureView),
		},
	}
	if d.target != nil {
		s.ctx.views[gfx.CameraTarget] = d.target.view
	}

	if err := d.record(s, cb); err != nil {
		return err
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		d.reclaim()
		return fmt.Errorf("finish encoder: %w", err)
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()

	d.logger.Debug().
		Str("buffer", cb.Name()).
		Int("commands", cb.Len()).
		Int("textures", d.createdTex).
		Msg("submitted")
	return nil
}

// record walks cb through s. On failure every texture still live is returned
// to the pool so the next submission can reuse it.
func (d *Device) record(s *submission, cb *gfx.CommandBuffer) (err error) {
	defer func() {
		s.endPass()
		if err != nil {
			d.reclaim()
		}
	}()

	for i, c := range cb.Commands() {
		if err := s.lifetime.Apply(c); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Op(), err)
		}
		if err := s.exec(c); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Op(), err)
		}
	}
	if out := s.lifetime.Outstanding(); len(out) > 0 {
		return fmt.Errorf("%w: %v", gfx.ErrLeaked, out)
	}
	return nil
}

// reclaim returns live textures to the pool after a failed submission.
func (d *Device) reclaim() {
	for id, t := range d.live {
		d.pool[t.desc] = append(d.pool[t.desc], t)
		delete(d.live, id)
	}
}

func (d *Device) uploadGlobals(g *gfx.Globals) error {
	if d.globals == nil {
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "Globals Uniform Buffer",
			Size:             gfx.GlobalsSize,
			Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("create globals buffer: %w", err)
		}
		d.globals = buf
	}
	if g == nil {
		g = &gfx.Globals{}
	}
	d.queue.WriteBuffer(d.globals, 0, g.Marshal())
	return nil
}

// acquire takes a texture matching desc from the pool or creates one.
func (d *Device) acquire(id gfx.ResourceID, desc gfx.TextureDesc) (*texture, error) {
	if list := d.pool[desc]; len(list) > 0 {
		t := list[len(list)-1]
		d.pool[desc] = list[:len(list)-1]
		d.live[id] = t
		return t, nil
	}

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: id.String(),
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        TextureFormat(desc),
		Usage:         TextureUsage(desc),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", id, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create %s view: %w", id, err)
	}
	t := &texture{desc: desc, tex: tex, view: view}
	d.live[id] = t
	d.createdTex++
	return t, nil
}

// release returns a live texture to the pool.
func (d *Device) release(id gfx.ResourceID) {
	t, ok := d.live[id]
	if !ok {
		return
	}
	delete(d.live, id)
	d.pool[t.desc] = append(d.pool[t.desc], t)
}

// TextureFormat maps a texture description to its wgpu format.
func TextureFormat(desc gfx.TextureDesc) wgpu.TextureFormat {
	switch desc.Format {
	case gfx.FormatDefaultHDR:
		return wgpu.TextureFormatRGBA16Float
	case gfx.FormatDepth, gfx.FormatShadowmap:
		if desc.DepthBits > 24 {
			return wgpu.TextureFormatDepth32Float
		}
		return wgpu.TextureFormatDepth24Plus
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

// TextureUsage maps a texture description to the usages the pipeline needs.
func TextureUsage(desc gfx.TextureDesc) wgpu.TextureUsage {
	usage := wgpu.TextureUsageRenderAttachment |
		wgpu.TextureUsageTextureBinding |
		wgpu.TextureUsageCopySrc |
		wgpu.TextureUsageCopyDst
	if desc.RandomWrite {
		usage |= wgpu.TextureUsageStorageBinding
	}
	return usage
}

// ClearDepth returns the depth clear value for the device convention.
func ClearDepth(reversedZ bool) float32 {
	if reversedZ {
		return 0
	}
	return 1
}
