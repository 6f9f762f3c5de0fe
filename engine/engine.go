package engine

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/okzkx/noobrp/engine/profiler"
	"github.com/okzkx/noobrp/engine/renderer"
	"github.com/okzkx/noobrp/engine/scene"
	"github.com/rs/zerolog"
)

// layer is one registered scene together with the cameras that view it and
// the renderer bound to it.
type layer struct {
	scene    scene.Scene
	cameras  []camera.Camera
	renderer renderer.Renderer
	active   bool
}

// engine implements the Engine interface.
// Coordinates the fixed-rate tick loop and the render loop.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	device   gfx.Device
	settings *config.Settings
	logger   zerolog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(frame int, deltaTime float32)

	scenes map[int]*layer

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        int           // 0 = run until Quit
	frames           int
	lastErr          error
}

// Engine drives frames: a fixed-rate tick loop for scene updates and a render
// loop that renders every active scene through its cameras in ascending
// z-index order and submits the results to one graphics device.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: receives the zero-based frame number and the delta time in seconds
	SetRenderCallback(callback func(frame int, deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key and binds a renderer to it.
	// Scenes are rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the scene, which is also the culling service for its cameras
	//   - cameras: the cameras rendered for this scene, in order
	AddScene(key int, s scene.Scene, cameras ...camera.Camera)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// SetSceneActive toggles whether the scene at key is rendered.
	SetSceneActive(key int, active bool)

	// Scene retrieves the scene registered at the given z-index key.
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Renderer returns the renderer bound to the scene at key, or nil.
	Renderer(key int) renderer.Renderer

	// RenderFrame renders one frame synchronously: every active scene in key
	// order, then commits object motion for the next frame.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame in seconds
	//
	// Returns:
	//   - error: the joined per-camera failures, nil if every camera submitted
	RenderFrame(dt float32) error

	// Frames returns the number of frames rendered so far.
	Frames() int

	// Run starts the tick and render loops and blocks until Quit is called or
	// the frame budget is exhausted.
	//
	// Returns:
	//   - error: the failures of the last frame that had any
	Run() error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine that submits to device.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - device: the graphics device every scene renders to
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(device gfx.Device, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		device:          device,
		settings:        config.Default(),
		logger:          zerolog.Nop(),
		scenes:          make(map[int]*layer),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	for _, l := range e.scenes {
		l.renderer = e.newRenderer(l.scene)
	}

	return e
}

func (e *engine) newRenderer(s scene.Scene) renderer.Renderer {
	return renderer.NewRenderer(e.device, s,
		renderer.WithSettings(e.settings),
		renderer.WithLogger(e.logger.With().Str("scene", s.Name()).Logger()),
		renderer.WithProfiler(e.profiler),
	)
}

func (e *engine) Run() error {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.lastErr
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel and exits when the quit
// channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("render loop recovered from panic")
			e.Quit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if err := e.RenderFrame(dt); err != nil {
			e.mu.Lock()
			e.lastErr = err
			e.mu.Unlock()
		}

		if e.maxFrames > 0 && e.Frames() >= e.maxFrames {
			e.Quit()
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastRender); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) RenderFrame(dt float32) error {
	e.mu.Lock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	layers := make([]*layer, 0, len(keys))
	for _, k := range keys {
		if l := e.scenes[k]; l.active {
			layers = append(layers, l)
		}
	}
	frame := e.frames
	e.mu.Unlock()

	var errs []error
	for _, l := range layers {
		if err := l.renderer.Render(l.cameras); err != nil {
			e.logger.Error().Err(err).Str("scene", l.scene.Name()).Int("frame", frame).Msg("frame had failed cameras")
			errs = append(errs, err)
		}
	}
	for _, l := range layers {
		l.scene.EndFrame()
	}

	e.mu.Lock()
	e.frames++
	e.mu.Unlock()

	if e.renderCallback != nil {
		e.renderCallback(frame, dt)
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	} else {
		e.profiler.Reset()
	}
	return errors.Join(errs...)
}

func (e *engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if !running {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(frame int, deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene, cameras ...camera.Camera) {
	l := &layer{scene: s, cameras: cameras, active: true, renderer: e.newRenderer(s)}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = l
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) SetSceneActive(key int, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.scenes[key]; ok {
		l.active = active
	}
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.scenes[key]; ok {
		return l.scene
	}
	return nil
}

func (e *engine) Renderer(key int) renderer.Renderer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.scenes[key]; ok {
		return l.renderer
	}
	return nil
}
