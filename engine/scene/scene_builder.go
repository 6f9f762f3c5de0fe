package scene

import (
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/rs/zerolog"
)

// SceneBuilderOption is a function that configures a scene during construction.
type SceneBuilderOption func(*scene)

// WithObjects adds initial objects to the scene.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: a function that applies the objects option
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		s.objects = append(s.objects, objects...)
	}
}

// WithLights adds initial lights to the scene.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: a function that applies the lights option
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}

// WithComputeWorkers sets the maximum number of culling workers.
//
// Parameters:
//   - n: worker count, values below 1 are raised to 1
//
// Returns:
//   - SceneBuilderOption: a function that applies the worker option
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(n, 1)
	}
}

// WithCullChunkSize sets how many objects one culling task tests.
//
// Parameters:
//   - n: chunk size, values below 1 are raised to 1
//
// Returns:
//   - SceneBuilderOption: a function that applies the chunk option
func WithCullChunkSize(n int) SceneBuilderOption {
	return func(s *scene) {
		s.cullChunkSize = max(n, 1)
	}
}

// WithLogger sets the scene logger.
func WithLogger(logger zerolog.Logger) SceneBuilderOption {
	return func(s *scene) {
		s.logger = logger
	}
}
