// Package soft is a CPU reference implementation of gfx.Device.
//
// It executes clears, copies, blits and every full-screen post-processing
// pass on float RGBA textures, splitting each pass into row bands that run on
// a worker pool. Geometry draws are forwarded to a Painter.
package soft

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/postprocess"
	"github.com/rs/zerolog"
)

var (
	// ErrUnknownKernel is returned for a dispatch of an unregistered compute kernel.
	ErrUnknownKernel = errors.New("unknown compute kernel")
	// ErrSizeMismatch is returned by Copy between textures of different sizes.
	ErrSizeMismatch = errors.New("texture size mismatch")
	// ErrNoTarget is returned when nothing is bound for a draw.
	ErrNoTarget = errors.New("no render target bound")
)

// Kernel computes one texel of a compute dispatch in place.
type Kernel func(x, y int, c mgl32.Vec4) mgl32.Vec4

// Stats counts the work of the last submission.
type Stats struct {
	Commands    int
	Draws       int
	Fullscreen  int
	Dispatches  int
	Allocations int
}

// Device executes command buffers on the CPU.
type Device struct {
	mu *sync.Mutex

	workers   int
	pool      worker.DynamicWorkerPool
	painter   Painter
	kernels   map[string]Kernel
	reversedZ bool
	logger    zerolog.Logger

	target   *Texture
	textures map[gfx.ResourceID]*Texture
	free     map[gfx.TextureDesc][]*Texture
	stats    Stats
	frames   int
}

var _ gfx.Device = &Device{}

// NewDevice creates a CPU device presenting into a width x height target.
//
// Parameters:
//   - width, height: the camera target size
//   - opts: variadic list of DeviceOption functions
//
// Returns:
//   - *Device: the device
func NewDevice(width, height int, opts ...DeviceOption) *Device {
	d := &Device{
		mu:       &sync.Mutex{},
		workers:  max(runtime.NumCPU()-1, 1),
		painter:  NewBoundsPainter(),
		kernels:  map[string]Kernel{"Grayscale": Grayscale, "Invert": Invert},
		logger:   zerolog.Nop(),
		textures: make(map[gfx.ResourceID]*Texture),
		free:     make(map[gfx.TextureDesc][]*Texture),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.target = NewTexture(gfx.TextureDesc{
		Width:  max(width, 1),
		Height: max(height, 1),
		Filter: gfx.FilterBilinear,
		Format: gfx.FormatDefault,
	})
	d.pool = worker.NewDynamicWorkerPool(d.workers, 256, 1*time.Second)
	return d
}

func (d *Device) UsesReversedZ() bool {
	return d.reversedZ
}

// Target returns the camera target. It holds the last presented frame.
func (d *Device) Target() *Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target
}

// Stats returns the counters of the last submission.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Frames returns the number of accepted submissions.
func (d *Device) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Submit executes cb. Temporaries live in a pool keyed by their description
// and are reused across submissions.
//
// Parameters:
//   - cb: the command buffer
//   - globals: the uniform bundle
//
// Returns:
//   - error: the first failing command
func (d *Device) Submit(cb *gfx.CommandBuffer, globals *gfx.Globals) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if globals == nil {
		globals = &gfx.Globals{}
	}
	e := &executor{
		dev:      d,
		globals:  globals,
		lifetime: gfx.NewLifetime(),
	}
	d.stats = Stats{Commands: cb.Len()}

	for i, c := range cb.Commands() {
		if err := e.lifetime.Apply(c); err != nil {
			d.reclaim()
			return fmt.Errorf("command %d (%s): %w", i, c.Op(), err)
		}
		if err := e.exec(c); err != nil {
			d.reclaim()
			return fmt.Errorf("command %d (%s): %w", i, c.Op(), err)
		}
	}
	if out := e.lifetime.Outstanding(); len(out) > 0 {
		d.reclaim()
		return fmt.Errorf("%w: %v", gfx.ErrLeaked, out)
	}

	d.frames++
	d.logger.Debug().
		Str("buffer", cb.Name()).
		Int("commands", d.stats.Commands).
		Int("draws", d.stats.Draws).
		Int("fullscreen", d.stats.Fullscreen).
		Int("allocations", d.stats.Allocations).
		Msg("submitted")
	return nil
}

// reclaim returns live textures to the pool after a failed submission.
func (d *Device) reclaim() {
	for id, t := range d.textures {
		d.free[t.Desc] = append(d.free[t.Desc], t)
		delete(d.textures, id)
	}
}

func (d *Device) acquire(id gfx.ResourceID, desc gfx.TextureDesc) *Texture {
	if list := d.free[desc]; len(list) > 0 {
		t := list[len(list)-1]
		d.free[desc] = list[:len(list)-1]
		d.textures[id] = t
		return t
	}
	t := NewTexture(desc)
	d.textures[id] = t
	d.stats.Allocations++
	return t
}

func (d *Device) release(id gfx.ResourceID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	d.free[t.Desc] = append(d.free[t.Desc], t)
}

func (d *Device) texture(id gfx.ResourceID) (*Texture, error) {
	if id == gfx.CameraTarget {
		return d.target, nil
	}
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %s: %w", id, gfx.ErrNotAcquired)
	}
	return t, nil
}

// rows runs fn over [0, height) split into one band per worker.
func (d *Device) rows(height int, fn func(y int)) {
	bands := min(d.workers, height)
	if bands <= 1 || height < 16 {
		for y := 0; y < height; y++ {
			fn(y)
		}
		return
	}

	size := common.CeilDiv(height, bands)
	var wg sync.WaitGroup
	for b := 0; b < bands; b++ {
		lo := b * size
		hi := min(lo+size, height)
		if lo >= hi {
			break
		}
		wg.Add(1)
		d.pool.SubmitTask(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				for y := lo; y < hi; y++ {
					fn(y)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// clearDepth is the depth value of an empty depth buffer.
func (d *Device) clearDepth() float32 {
	if d.reversedZ {
		return 0
	}
	return 1
}

// executor holds the bound state while one buffer runs.
type executor struct {
	dev      *Device
	globals  *gfx.Globals
	lifetime *gfx.Lifetime

	color    gfx.ResourceID
	depth    gfx.ResourceID
	viewport *common.Rect

	view       mgl32.Mat4
	projection mgl32.Mat4
}

func (e *executor) exec(c gfx.Command) error {
	d := e.dev
	switch c := c.(type) {
	case gfx.GetTemporary:
		d.acquire(c.ID, c.Desc)
	case gfx.Release:
		d.release(c.ID)
		if c.ID == e.color {
			e.color = gfx.ResourceNone
		}
		if c.ID == e.depth {
			e.depth = gfx.ResourceNone
		}
	case gfx.SetRenderTarget:
		e.color, e.depth = c.Color, c.Depth
		e.viewport = nil
	case gfx.Clear:
		return e.clear(c)
	case gfx.SetViewport:
		r := c.Rect
		e.viewport = &r
	case gfx.SetViewProjection:
		e.view, e.projection = c.View, c.Projection
	case gfx.SetupCamera:
		e.view, e.projection = c.View, c.Projection
	case gfx.DrawRenderers:
		d.stats.Draws++
		ctx, err := e.paintContext()
		if err != nil {
			return err
		}
		return d.painter.DrawRenderers(ctx, c)
	case gfx.DrawShadows:
		d.stats.Draws++
		ctx, err := e.paintContext()
		if err != nil {
			return err
		}
		return d.painter.DrawShadows(ctx, c)
	case gfx.DrawSkybox:
		d.stats.Draws++
		return e.skybox(c.Color)
	case gfx.DrawFullscreen:
		d.stats.Fullscreen++
		return e.fullscreen(c)
	case gfx.Copy:
		src, err := d.texture(c.Src)
		if err != nil {
			return err
		}
		dst, err := d.texture(c.Dst)
		if err != nil {
			return err
		}
		if !dst.CopyFrom(src) {
			return fmt.Errorf("copy %s to %s: %w", c.Src, c.Dst, ErrSizeMismatch)
		}
	case gfx.Blit:
		return e.fullscreen(gfx.DrawFullscreen{Pass: gfx.CopyPass, Sources: []gfx.ResourceID{c.Src}, Target: c.Dst})
	case gfx.Dispatch:
		d.stats.Dispatches++
		return e.dispatch(c)
	case gfx.BeginSample, gfx.EndSample:
	default:
		return fmt.Errorf("unsupported command %s", c.Op())
	}
	return nil
}

func (e *executor) clear(c gfx.Clear) error {
	d := e.dev
	if e.color != gfx.ResourceNone {
		t, err := d.texture(e.color)
		if err != nil {
			return err
		}
		switch {
		case t.Desc.Format.IsDepth() && c.Depth:
			t.Fill(mgl32.Vec4{d.clearDepth(), d.clearDepth(), d.clearDepth(), 1})
		case !t.Desc.Format.IsDepth() && c.Color:
			t.Fill(c.Value.Vec4())
		}
	}
	if e.depth != gfx.ResourceNone && c.Depth {
		t, err := d.texture(e.depth)
		if err != nil {
			return err
		}
		t.Fill(mgl32.Vec4{d.clearDepth(), d.clearDepth(), d.clearDepth(), 1})
	}
	return nil
}

func (e *executor) paintContext() (*PaintContext, error) {
	d := e.dev
	ctx := &PaintContext{
		View:       e.view,
		Projection: e.projection,
		Globals:    e.globals,
		ReversedZ:  d.reversedZ,
	}
	if e.color != gfx.ResourceNone {
		t, err := d.texture(e.color)
		if err != nil {
			return nil, err
		}
		if t.Desc.Format.IsDepth() {
			ctx.Depth = t
		} else {
			ctx.Color = t
		}
	}
	if e.depth != gfx.ResourceNone {
		t, err := d.texture(e.depth)
		if err != nil {
			return nil, err
		}
		ctx.Depth = t
	}
	bound := ctx.Color
	if bound == nil {
		bound = ctx.Depth
	}
	if bound == nil {
		return nil, ErrNoTarget
	}
	ctx.Viewport = common.Rect{Width: bound.Width, Height: bound.Height}
	if e.viewport != nil {
		ctx.Viewport = *e.viewport
	}
	return ctx, nil
}

// skybox fills every color texel whose depth is still the clear value.
func (e *executor) skybox(c common.Color) error {
	ctx, err := e.paintContext()
	if err != nil {
		return err
	}
	if ctx.Color == nil {
		return nil
	}
	sky := c.Vec4()
	empty := e.dev.clearDepth()
	r := ctx.Viewport
	e.dev.rows(r.Height, func(row int) {
		y := r.Y + row
		for x := r.X; x < r.X+r.Width; x++ {
			if ctx.Depth != nil && ctx.Depth.Depth(x, y) != empty {
				continue
			}
			ctx.Color.Set(x, y, sky)
		}
	})
	return nil
}

func (e *executor) fullscreen(c gfx.DrawFullscreen) error {
	d := e.dev
	dst, err := d.texture(c.Target)
	if err != nil {
		return err
	}
	srcs := make([]*Texture, len(c.Sources))
	for i, id := range c.Sources {
		if srcs[i], err = d.texture(id); err != nil {
			return err
		}
	}
	k, err := passKernel(c.Pass, len(srcs))
	if err != nil {
		return err
	}

	// Passes that read their own target would see partially written rows.
	for i, s := range srcs {
		if s == dst {
			cp := NewTexture(s.Desc)
			cp.CopyFrom(s)
			srcs[i] = cp
		}
	}

	p := &passInput{dst: dst, srcs: srcs, g: e.globals}
	d.rows(dst.Height, func(y int) {
		for x := 0; x < dst.Width; x++ {
			dst.Set(x, y, k(p, x, y))
		}
	})
	return nil
}

func (e *executor) dispatch(c gfx.Dispatch) error {
	d := e.dev
	k, ok := d.kernels[c.Kernel]
	if !ok {
		return fmt.Errorf("%q: %w", c.Kernel, ErrUnknownKernel)
	}
	t, err := d.texture(c.Target)
	if err != nil {
		return err
	}
	w := min(c.GroupsX*postprocess.ComputeGroupSize, t.Width)
	h := min(c.GroupsY*postprocess.ComputeGroupSize, t.Height)
	d.rows(h, func(y int) {
		for x := 0; x < w; x++ {
			t.Set(x, y, k(x, y, t.At(x, y)))
		}
	})
	return nil
}

// Grayscale replaces a texel with its Rec.709 luminance.
func Grayscale(_, _ int, c mgl32.Vec4) mgl32.Vec4 {
	l := postprocess.Luminance(c.Vec3())
	return mgl32.Vec4{l, l, l, c[3]}
}

// Invert inverts the color channels of a texel.
func Invert(_, _ int, c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{1 - c[0], 1 - c[1], 1 - c[2], c[3]}
}
