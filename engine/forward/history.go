package forward

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// History keeps each camera's view-projection from its previous frame, the
// input of the motion vector pass. Cameras never seen before read identity.
type History struct {
	mu      *sync.RWMutex
	entries map[uuid.UUID]mgl32.Mat4
}

// NewHistory creates an empty History.
//
// Returns:
//   - *History: the store
func NewHistory() *History {
	return &History{
		mu:      &sync.RWMutex{},
		entries: make(map[uuid.UUID]mgl32.Mat4),
	}
}

// Previous returns the stored matrix of a camera.
//
// Parameters:
//   - id: the camera ID
//
// Returns:
//   - mgl32.Mat4: the previous view-projection, identity when none is stored
func (h *History) Previous(id uuid.UUID) mgl32.Mat4 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if m, ok := h.entries[id]; ok {
		return m
	}
	return mgl32.Ident4()
}

// Store records the matrix a camera's next frame will read.
func (h *History) Store(id uuid.UUID, vp mgl32.Mat4) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[id] = vp
}

// Forget drops a camera's entry.
func (h *History) Forget(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entries, id)
}

// Len returns the number of cameras tracked.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
