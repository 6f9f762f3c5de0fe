package renderer

import (
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/profiler"
	"github.com/rs/zerolog"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSettings sets the pipeline settings. A nil value keeps the defaults.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - RendererBuilderOption: a function that applies the settings option to a renderer
func WithSettings(s *config.Settings) RendererBuilderOption {
	return func(r *renderer) {
		if s != nil {
			r.settings = s
		}
	}
}

// WithLogger sets the logger shared by every stage.
//
// Parameters:
//   - logger: the zerolog logger
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger zerolog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}

// WithExecutor forces the frame executor regardless of the settings' render mode.
//
// Parameters:
//   - t: the executor type
//
// Returns:
//   - RendererBuilderOption: a function that applies the executor option to a renderer
func WithExecutor(t ExecutorType) RendererBuilderOption {
	return func(r *renderer) {
		r.executorType = t
		r.executorPinned = true
	}
}

// WithStateHook registers a function called on every frame state change.
func WithStateHook(hook StateHook) RendererBuilderOption {
	return func(r *renderer) {
		r.hook = hook
	}
}

// WithProfiler sets the profiler that receives per-camera statistics. The
// caller owns the profiler and calls Tick once per frame.
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}
