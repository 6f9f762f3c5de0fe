package gfx

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotAcquired is returned when a command uses or releases a texture that
	// is not currently acquired.
	ErrNotAcquired = errors.New("resource not acquired")
	// ErrAlreadyAcquired is returned when a texture is acquired twice without a
	// release in between.
	ErrAlreadyAcquired = errors.New("resource already acquired")
	// ErrNotTemporary is returned when the presentation target or an unknown ID
	// is passed to acquire or release.
	ErrNotTemporary = errors.New("resource is not a temporary")
	// ErrLeaked is returned when a command buffer ends with acquired textures.
	ErrLeaked = errors.New("resources leaked at end of frame")
)

// Device is the graphics capability the pipeline records against.
type Device interface {
	// UsesReversedZ reports whether the device depth buffer stores 1 at the near
	// plane and 0 at the far plane.
	UsesReversedZ() bool

	// Submit executes one camera's command buffer with its uniform bundle. The
	// bundle is uploaded once before the first command runs.
	Submit(cb *CommandBuffer, globals *Globals) error
}

// Lifetime tracks which temporaries are acquired while a buffer is replayed.
type Lifetime struct {
	acquired map[ResourceID]TextureDesc
	acquires map[ResourceID]int
	releases map[ResourceID]int
}

// NewLifetime creates an empty tracker.
func NewLifetime() *Lifetime {
	return &Lifetime{
		acquired: make(map[ResourceID]TextureDesc),
		acquires: make(map[ResourceID]int),
		releases: make(map[ResourceID]int),
	}
}

// Acquire marks id as live with the given description.
func (l *Lifetime) Acquire(id ResourceID, desc TextureDesc) error {
	if !id.Temporary() {
		return fmt.Errorf("acquire %s: %w", id, ErrNotTemporary)
	}
	if _, ok := l.acquired[id]; ok {
		return fmt.Errorf("acquire %s: %w", id, ErrAlreadyAcquired)
	}
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("acquire %s: %w", id, err)
	}
	l.acquired[id] = desc
	l.acquires[id]++
	return nil
}

// Release marks id as no longer live.
func (l *Lifetime) Release(id ResourceID) error {
	if !id.Temporary() {
		return fmt.Errorf("release %s: %w", id, ErrNotTemporary)
	}
	if _, ok := l.acquired[id]; !ok {
		return fmt.Errorf("release %s: %w", id, ErrNotAcquired)
	}
	delete(l.acquired, id)
	l.releases[id]++
	return nil
}

// Check reports an error if id is a temporary that is not live. The camera
// target and ResourceNone are always usable.
func (l *Lifetime) Check(id ResourceID) error {
	if id == ResourceNone || id == CameraTarget {
		return nil
	}
	if _, ok := l.acquired[id]; !ok {
		return fmt.Errorf("use of %s: %w", id, ErrNotAcquired)
	}
	return nil
}

// Desc returns the description a live texture was acquired with.
func (l *Lifetime) Desc(id ResourceID) (TextureDesc, bool) {
	d, ok := l.acquired[id]
	return d, ok
}

// Outstanding returns the live textures in ID order.
func (l *Lifetime) Outstanding() []ResourceID {
	out := make([]ResourceID, 0, len(l.acquired))
	for id := range l.acquired {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Acquires returns how many times id has been acquired.
func (l *Lifetime) Acquires(id ResourceID) int { return l.acquires[id] }

// Releases returns how many times id has been released.
func (l *Lifetime) Releases(id ResourceID) int { return l.releases[id] }

// Apply updates the tracker for one command and checks the resources it touches.
func (l *Lifetime) Apply(c Command) error {
	switch c := c.(type) {
	case GetTemporary:
		return l.Acquire(c.ID, c.Desc)
	case Release:
		return l.Release(c.ID)
	}
	reads, writes := Access(c)
	for _, id := range reads {
		if err := l.Check(id); err != nil {
			return err
		}
	}
	for _, id := range writes {
		if err := l.Check(id); err != nil {
			return err
		}
	}
	return nil
}

// Validate replays cb against a fresh tracker. It fails on the first misuse
// and when any texture is still live after the last command.
//
// Parameters:
//   - cb: the buffer to check
//
// Returns:
//   - error: nil if every acquire is matched by exactly one release
func Validate(cb *CommandBuffer) error {
	l := NewLifetime()
	for i, c := range cb.Commands() {
		if err := l.Apply(c); err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Op(), err)
		}
	}
	if out := l.Outstanding(); len(out) > 0 {
		return fmt.Errorf("%w: %v", ErrLeaked, out)
	}
	return nil
}
