// Package profiler aggregates per-frame render statistics and logs them
// together with memory statistics at a fixed interval.
package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FrameStats describes one camera frame.
type FrameStats struct {
	Commands      int
	DrawCalls     int
	Acquires      int
	DroppedLights int
	Skipped       bool
}

// Totals is the running sum since the last logged interval.
type Totals struct {
	Frames        int
	Cameras       int
	Skipped       int
	Commands      int
	DrawCalls     int
	Acquires      int
	DroppedLights int
}

// Profiler tracks frame rate, render statistics and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	logger         zerolog.Logger
	updateInterval time.Duration
	now            func() time.Time

	totals         Totals
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithLogger sets the logger the stats are written to.
func WithLogger(logger zerolog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// WithInterval sets how often stats are logged.
//
// Parameters:
//   - d: the interval, ignored when not positive
//
// Returns:
//   - ProfilerOption: a function that applies the interval option
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - opts: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         zerolog.Nop(),
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// RecordCamera adds one camera's statistics to the current interval.
func (p *Profiler) RecordCamera(s FrameStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals.Cameras++
	if s.Skipped {
		p.totals.Skipped++
		return
	}
	p.totals.Commands += s.Commands
	p.totals.DrawCalls += s.DrawCalls
	p.totals.Acquires += s.Acquires
	p.totals.DroppedLights += s.DroppedLights
}

// Totals returns the statistics gathered since the last logged interval.
func (p *Profiler) Totals() Totals {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totals
}

// Reset discards the statistics of the current interval and restarts it.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totals = Totals{}
	p.lastTime = p.now()
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, cameras, commands, draw calls, dropped lights,
// heap usage, allocation rate and GC count/pause times.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totals.Frames++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.totals.Frames) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info().
		Float64("fps", fps).
		Int("frames", p.totals.Frames).
		Int("cameras", p.totals.Cameras).
		Int("skipped", p.totals.Skipped).
		Int("commands", p.totals.Commands).
		Int("draw_calls", p.totals.DrawCalls).
		Int("acquires", p.totals.Acquires).
		Int("dropped_lights", p.totals.DroppedLights).
		Float64("heap_mb", allocMB).
		Float64("alloc_rate_mb_s", allocRateMB).
		Uint32("gc", gcCount).
		Uint64("gc_last_us", lastPauseUs).
		Uint64("gc_max_us", maxPauseUs).
		Float64("sys_mb", sysMB).
		Msg("profiler")

	p.totals = Totals{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
