// Package recorder provides a Device that validates and keeps every submitted
// command buffer instead of executing it.
package recorder

import (
	"fmt"
	"slices"
	"sync"

	"github.com/okzkx/noobrp/engine/gfx"
	"github.com/rs/zerolog"
)

// Submission is one accepted command buffer with a copy of its globals.
type Submission struct {
	Name     string
	Commands []gfx.Command
	Globals  gfx.Globals
}

// Count returns how many commands in the submission have the given op.
func (s Submission) Count(op gfx.Op) int {
	n := 0
	for _, c := range s.Commands {
		if c.Op() == op {
			n++
		}
	}
	return n
}

// Ops returns the op of every command in order.
func (s Submission) Ops() []gfx.Op {
	ops := make([]gfx.Op, len(s.Commands))
	for i, c := range s.Commands {
		ops[i] = c.Op()
	}
	return ops
}

// Device records submissions. It rejects buffers that misuse temporaries.
type Device struct {
	mu *sync.Mutex

	reversedZ   bool
	logger      zerolog.Logger
	submissions []Submission
	rejected    int
}

var _ gfx.Device = &Device{}

// Option configures a Device.
type Option func(*Device)

// WithReversedZ makes the device report a reversed depth buffer.
func WithReversedZ(reversed bool) Option {
	return func(d *Device) {
		d.reversedZ = reversed
	}
}

// WithLogger sets the logger used for rejected submissions.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Device) {
		d.logger = logger
	}
}

// New creates a recording device.
//
// Parameters:
//   - opts: variadic list of Option functions
//
// Returns:
//   - *Device: the device
func New(opts ...Option) *Device {
	d := &Device{
		mu:     &sync.Mutex{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) UsesReversedZ() bool {
	return d.reversedZ
}

// Submit validates cb and keeps a copy of it and of globals.
//
// Parameters:
//   - cb: the command buffer
//   - globals: the uniform bundle
//
// Returns:
//   - error: the first misuse found in cb
func (d *Device) Submit(cb *gfx.CommandBuffer, globals *gfx.Globals) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := gfx.Validate(cb); err != nil {
		d.rejected++
		d.logger.Error().Err(err).Str("buffer", cb.Name()).Msg("submission rejected")
		return fmt.Errorf("submit %q: %w", cb.Name(), err)
	}

	s := Submission{Name: cb.Name(), Commands: slices.Clone(cb.Commands())}
	if globals != nil {
		s.Globals = *globals
	}
	d.submissions = append(d.submissions, s)
	return nil
}

// Submissions returns the accepted submissions in order.
func (d *Device) Submissions() []Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.submissions)
}

// Last returns the most recent submission.
func (d *Device) Last() (Submission, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.submissions) == 0 {
		return Submission{}, false
	}
	return d.submissions[len(d.submissions)-1], true
}

// Rejected returns how many submissions failed validation.
func (d *Device) Rejected() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rejected
}

// Reset forgets every submission.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submissions = nil
	d.rejected = 0
}
