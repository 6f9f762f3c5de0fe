// Package renderer orchestrates a frame: for each camera, in order, it culls,
// collects lights, records shadows, geometry and post-processing into one
// command buffer and submits it with the camera's uniform bundle.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/forward"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/okzkx/noobrp/engine/postprocess"
	"github.com/okzkx/noobrp/engine/profiler"
	"github.com/okzkx/noobrp/engine/rendergraph"
	"github.com/okzkx/noobrp/engine/shadow"
	"github.com/rs/zerolog"
)

// ErrInvalidFrustum is returned for a camera whose culling parameters are
// degenerate. The camera is skipped before anything is recorded.
var ErrInvalidFrustum = errors.New("invalid camera frustum")

// StateHook observes frame state changes.
type StateHook func(cam camera.Camera, state FrameState)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device   gfx.Device
	culler   culling.Service
	settings *config.Settings
	logger   zerolog.Logger
	hook     StateHook

	profiler     *profiler.Profiler
	// set when no profiler was supplied; Render then ticks it
	ownsProfiler bool

	executorType    ExecutorType
	executorPinned  bool
	executors       map[ExecutorType]FrameExecutor
	collector       *light.Collector
	forwardRenderer *forward.Renderer

	state FrameState
}

// Renderer defines the interface for the frame orchestrator.
//
// A Renderer owns the pipeline stages and the per-camera history they keep
// between frames. It renders cameras strictly one after another; a camera
// that fails is skipped and the remaining cameras still render.
type Renderer interface {
	// Render renders every camera in order.
	//
	// Parameters:
	//   - cameras: the cameras to render
	//
	// Returns:
	//   - error: the joined per-camera errors, nil when every camera submitted
	Render(cameras []camera.Camera) error

	// State returns the current frame state. Idle between cameras.
	//
	// Returns:
	//   - FrameState: the state
	State() FrameState

	// Settings returns the pipeline settings.
	//
	// Returns:
	//   - *config.Settings: the settings in use
	Settings() *config.Settings

	// Device returns the device command buffers are submitted to.
	//
	// Returns:
	//   - gfx.Device: the device
	Device() gfx.Device

	// History returns the per-camera previous view-projection store.
	//
	// Returns:
	//   - *forward.History: the store
	History() *forward.History
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that submits to device and culls with culler.
//
// Parameters:
//   - device: the graphics device
//   - culler: the culling service
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(device gfx.Device, culler culling.Service, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:       &sync.Mutex{},
		device:   device,
		culler:   culler,
		settings: config.Default(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.profiler == nil {
		r.profiler = profiler.NewProfiler(profiler.WithLogger(r.logger))
		r.ownsProfiler = true
	}
	if !r.executorPinned {
		r.executorType = executorTypeFor(r.settings.RenderMode)
	}

	s := r.settings
	r.collector = light.NewCollector(light.WithCollectorLogger(r.logger))
	r.forwardRenderer = forward.NewRenderer(forward.WithSettings(s), forward.WithLogger(r.logger))
	r.executors = map[ExecutorType]FrameExecutor{
		ExecutorSteps: &stepsExecutor{
			shadows: shadow.NewBuilder(
				shadow.WithDirectionalResolution(s.Shadows.DirectionalResolution),
				shadow.WithSpotPointResolution(s.Shadows.SpotPointResolution),
				shadow.WithLogger(r.logger),
			),
			forward:   r.forwardRenderer,
			post:      postprocess.NewCompositor(postprocess.WithSettings(s), postprocess.WithLogger(r.logger)),
			reversedZ: device.UsesReversedZ(),
		},
		ExecutorRenderGraph: &renderGraphExecutor{graph: rendergraph.New()},
	}
	return r
}

func (r *renderer) State() FrameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *renderer) Settings() *config.Settings {
	return r.settings
}

func (r *renderer) Device() gfx.Device {
	return r.device
}

func (r *renderer) History() *forward.History {
	return r.forwardRenderer.History()
}

func (r *renderer) Render(cameras []camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, cam := range cameras {
		if err := r.renderCamera(cam); err != nil {
			if errors.Is(err, ErrInvalidFrustum) {
				r.logger.Warn().Err(err).Str("camera", cam.Name()).Msg("camera skipped")
			} else {
				r.logger.Error().Err(err).Str("camera", cam.Name()).Msg("camera failed")
			}
			r.profiler.RecordCamera(profiler.FrameStats{Skipped: true})
			errs = append(errs, err)
		}
	}
	if r.ownsProfiler {
		r.profiler.Tick()
	}
	return errors.Join(errs...)
}

// transition moves the state machine, notifying the hook.
func (r *renderer) transition(cam camera.Camera, to FrameState) error {
	if !CanTransition(r.state, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.state, to)
	}
	r.state = to
	if r.hook != nil {
		r.hook(cam, to)
	}
	return nil
}

func (r *renderer) renderCamera(cam camera.Camera) error {
	defer func() {
		_ = r.transition(cam, StateIdle)
	}()

	params, ok := cam.CullingParameters()
	if !ok {
		return fmt.Errorf("camera %q: %w", cam.Name(), ErrInvalidFrustum)
	}
	params.ShadowDistance = r.settings.ShadowDistance(params.Far)

	cull, err := r.culler.Cull(params)
	if err != nil {
		if errors.Is(err, culling.ErrInvalidParameters) {
			return fmt.Errorf("camera %q: %w: %w", cam.Name(), ErrInvalidFrustum, err)
		}
		return fmt.Errorf("camera %q: cull: %w", cam.Name(), err)
	}
	if err := r.transition(cam, StateCulled); err != nil {
		return err
	}

	cb := gfx.NewCommandBuffer(cam.Name())
	g := &gfx.Globals{}

	packed := r.collector.Collect(cull.Lights)
	packed.Apply(g)
	if err := r.transition(cam, StateLightsCollected); err != nil {
		return err
	}

	w, h := r.settings.BufferSize(cam.PixelSize())
	g.BufferSize = BufferSizeVector(w, h)

	f := &Frame{
		Camera:  cam,
		Params:  params,
		Cull:    cull,
		Lights:  packed,
		Width:   w,
		Height:  h,
		Buffer:  cb,
		Globals: g,
		advance: func(s FrameState) error { return r.transition(cam, s) },
	}
	if err := r.executors[r.executorType].Execute(f); err != nil {
		return fmt.Errorf("camera %q: %w", cam.Name(), err)
	}

	if err := r.device.Submit(cb, g); err != nil {
		return fmt.Errorf("camera %q: submit: %w", cam.Name(), err)
	}
	for _, commit := range f.commits {
		commit()
	}
	if err := r.transition(cam, StateSubmitted); err != nil {
		return err
	}

	r.profiler.RecordCamera(profiler.FrameStats{
		Commands:      cb.Len(),
		DrawCalls:     drawCalls(cb),
		Acquires:      cb.Count(gfx.OpGetTemporary),
		DroppedLights: packed.Dropped.Total(),
	})
	r.logger.Debug().
		Str("camera", cam.Name()).
		Int("width", w).
		Int("height", h).
		Int("commands", cb.Len()).
		Msg("camera submitted")
	return nil
}

func drawCalls(cb *gfx.CommandBuffer) int {
	return cb.Count(gfx.OpDrawRenderers) +
		cb.Count(gfx.OpDrawShadows) +
		cb.Count(gfx.OpDrawSkybox) +
		cb.Count(gfx.OpDrawFullscreen)
}
