package postprocess

import (
	"github.com/okzkx/noobrp/engine/config"
	"github.com/rs/zerolog"
)

// CompositorOption is a function that configures a Compositor during construction.
type CompositorOption func(*Compositor)

// WithSettings sets the pipeline settings the chain reads. A nil value keeps
// the defaults.
//
// Parameters:
//   - s: the settings
//
// Returns:
//   - CompositorOption: a function that applies the settings option
func WithSettings(s *config.Settings) CompositorOption {
	return func(c *Compositor) {
		if s != nil {
			c.settings = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) CompositorOption {
	return func(c *Compositor) {
		c.logger = logger
	}
}
