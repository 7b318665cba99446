package device

import "github.com/gogpu/gputypes"

// InitializerBuilderOption is a functional option for configuring an Initializer.
type InitializerBuilderOption func(*Initializer)

// WithPresentMode sets the present mode used when configuring the surface.
//
// Parameters:
//   - mode: the present mode (default gputypes.PresentModeFifo)
//
// Returns:
//   - InitializerBuilderOption: option function to apply
func WithPresentMode(mode gputypes.PresentMode) InitializerBuilderOption {
	return func(i *Initializer) {
		i.presentMode = mode
	}
}

// WithForceSoftwareRenderer requests a CPU/software fallback adapter instead of hardware acceleration.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - InitializerBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) InitializerBuilderOption {
	return func(i *Initializer) {
		i.forceFallback = force
	}
}
