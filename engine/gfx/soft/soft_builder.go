package soft

import "github.com/rs/zerolog"

// DeviceOption is a functional option applied to a Device during construction via NewDevice.
type DeviceOption func(*Device)

// WithWorkers sets how many row bands a pass is split into.
//
// Parameters:
//   - n: the worker count, ignored when not positive
//
// Returns:
//   - DeviceOption: a function that applies the workers option to a Device
func WithWorkers(n int) DeviceOption {
	return func(d *Device) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithPainter replaces the BoundsPainter.
func WithPainter(p Painter) DeviceOption {
	return func(d *Device) {
		if p != nil {
			d.painter = p
		}
	}
}

// WithKernel registers a compute kernel under name.
//
// Parameters:
//   - name: the kernel name dispatches refer to
//   - k: the per-texel kernel
//
// Returns:
//   - DeviceOption: a function that registers the kernel on a Device
func WithKernel(name string, k Kernel) DeviceOption {
	return func(d *Device) {
		d.kernels[name] = k
	}
}

// WithReversedZ makes the device clear depth to 0 and test with greater-equal.
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
