package forward

import (
	"github.com/okzkx/noobrp/engine/config"
	"github.com/rs/zerolog"
)

// RendererOption is a function that configures a Renderer during construction.
type RendererOption func(*Renderer)

// WithSettings sets the pipeline settings. A nil value keeps the defaults.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - RendererOption: a function that applies the settings option
func WithSettings(s *config.Settings) RendererOption {
	return func(r *Renderer) {
		if s != nil {
			r.settings = s
		}
	}
}

// WithHistory shares a previous view-projection store between renderers.
func WithHistory(h *History) RendererOption {
	return func(r *Renderer) {
		if h != nil {
			r.history = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}
