package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine/culling"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/rs/zerolog"
)

// Scene is a flat container of renderable objects and lights that also acts as
// the reference culling service.
//
// Culling tests each enabled object's bounding sphere against the camera
// frustum. Large object sets are split into chunks and tested on a bounded
// worker pool; results are merged back in insertion order so the visible list
// is deterministic regardless of worker scheduling.
type Scene interface {
	culling.Service

	// Name returns the scene name.
	Name() string

	// Add appends objects to the scene.
	//
	// Parameters:
	//   - objects: the objects to add
	Add(objects ...game_object.GameObject)

	// Remove deletes the object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true if an object was removed
	Remove(id uint64) bool

	// Objects returns a snapshot of the scene objects in insertion order.
	Objects() []game_object.GameObject

	// AddLight appends lights to the scene. Light order is the order the
	// culling service reports visible lights in.
	//
	// Parameters:
	//   - lights: the lights to add
	AddLight(lights ...light.Light)

	// Lights returns a snapshot of the scene lights in insertion order.
	Lights() []light.Light

	// EndFrame commits every object's current transform as its previous-frame
	// transform. Call once per frame after all cameras have rendered.
	EndFrame()
}

type scene struct {
	mu *sync.RWMutex

	name    string
	objects []game_object.GameObject
	lights  []light.Light

	// computePool runs chunked frustum tests when the object count exceeds
	// cullChunkSize.
	computeWorkers int
	computePool    worker.DynamicWorkerPool
	cullChunkSize  int

	logger zerolog.Logger
}

var _ Scene = &scene{}

// NewScene creates a scene with the provided options.
//
// Parameters:
//   - name: the scene name
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		computeWorkers: max(runtime.NumCPU()-1, 1),
		cullChunkSize:  256,
		logger:         zerolog.Nop(),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Add(objects ...game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, objects...)
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.objects {
		if o.ID() == id {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]game_object.GameObject(nil), s.objects...)
}

func (s *scene) AddLight(lights ...light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, lights...)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) EndFrame() {
	for _, o := range s.Objects() {
		o.CommitMotion()
	}
}

// Cull returns the visible objects and lights for p and records shadow casters
// for every visible shadow-casting light.
//
// Parameters:
//   - p: the camera culling parameters
//
// Returns:
//   - *culling.Result: the visible sets
//   - error: culling.ErrInvalidParameters for an unusable frustum
func (s *scene) Cull(p culling.Parameters) (*culling.Result, error) {
	if p.Near <= 0 || p.Far <= p.Near {
		return nil, fmt.Errorf("scene %q: near %.3f far %.3f: %w", s.name, p.Near, p.Far, culling.ErrInvalidParameters)
	}

	objects := s.Objects()
	allLights := s.Lights()

	visible := s.cullObjects(objects, &p.Frustum)

	lights := make([]light.Light, 0, len(allLights))
	for _, l := range allLights {
		if l.Enabled() && lightVisible(l, &p.Frustum) {
			lights = append(lights, l)
		}
	}

	result := culling.NewResult(visible, lights)
	for i, l := range lights {
		if !l.CastsShadows() {
			continue
		}
		if casters := shadowCasters(l, objects, p); len(casters) > 0 {
			result.SetShadowCasters(i, casters)
		}
	}

	s.logger.Debug().
		Str("scene", s.name).
		Int("objects", len(visible)).
		Int("lights", len(lights)).
		Msg("culled")
	return result, nil
}

// cullObjects frustum-tests objects, fanning out to the compute pool in
// chunks when the set is large.
func (s *scene) cullObjects(objects []game_object.GameObject, f *common.Frustum) []game_object.GameObject {
	if len(objects) <= s.cullChunkSize {
		return appendVisible(nil, objects, f)
	}

	chunks := common.CeilDiv(len(objects), s.cullChunkSize)
	parts := make([][]game_object.GameObject, chunks)

	// A WaitGroup provides the per-cull barrier; the pool itself only idles
	// out after its timeout.
	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		lo := c * s.cullChunkSize
		hi := min(lo+s.cullChunkSize, len(objects))
		idx := c
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				parts[idx] = appendVisible(nil, objects[lo:hi], f)
				return nil, nil
			},
		})
	}
	wg.Wait()

	out := make([]game_object.GameObject, 0, len(objects))
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func appendVisible(dst, objects []game_object.GameObject, f *common.Frustum) []game_object.GameObject {
	for _, o := range objects {
		if o.Enabled() && f.ContainsSphere(o.WorldBounds().Sphere()) {
			dst = append(dst, o)
		}
	}
	return dst
}

// lightVisible reports whether a light can affect anything inside the frustum.
// Directional lights always can.
func lightVisible(l light.Light, f *common.Frustum) bool {
	if l.Type() == light.LightTypeDirectional {
		return true
	}
	return f.ContainsSphere(common.Sphere{Center: l.Position(), Radius: l.Range()})
}

// shadowCasters returns the shadow-casting objects a light can shade.
// Directional lights take every caster within shadow distance of the camera;
// local lights take casters that overlap their range sphere.
func shadowCasters(l light.Light, objects []game_object.GameObject, p culling.Parameters) []game_object.GameObject {
	var out []game_object.GameObject
	for _, o := range objects {
		if !o.Enabled() || !o.CastsShadows() {
			continue
		}
		sphere := o.WorldBounds().Sphere()
		switch l.Type() {
		case light.LightTypeDirectional:
			if p.ShadowDistance <= 0 {
				continue
			}
			if sphere.Center.Sub(p.Position).Len()-sphere.Radius > p.ShadowDistance {
				continue
			}
		case light.LightTypeSpot, light.LightTypePoint:
			if sphere.Center.Sub(l.Position()).Len()-sphere.Radius > l.Range() {
				continue
			}
		default:
			continue
		}
		out = append(out, o)
	}
	return out
}
