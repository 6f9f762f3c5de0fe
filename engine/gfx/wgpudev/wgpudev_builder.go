package wgpudev

import "github.com/rs/zerolog"

// DeviceOption is a functional option applied to a Device during construction.
type DeviceOption func(*Device)

// WithPassRunner sets the runner that records draws, full-screen passes and
// compute kernels.
//
// Parameters:
//   - r: the pass runner
//
// Returns:
//   - DeviceOption: a function that applies the runner option to a Device
func WithPassRunner(r PassRunner) DeviceOption {
	return func(d *Device) {
		d.runner = r
	}
}

// WithReversedZ makes the device clear depth to 0 and report reversed depth.
func WithReversedZ(reversed bool) DeviceOption {
	return func(d *Device) {
		d.reversedZ = reversed
	}
}

// WithLogger sets the device logger.
func WithLogger(logger zerolog.Logger) DeviceOption {
	return func(d *Device) {
		d.logger = logger
	}
}
