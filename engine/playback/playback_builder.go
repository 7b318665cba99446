package playback

import "time"

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*Controller)

// WithArmer sets the scheduler armed on every Stopped to Running transition.
//
// Parameters:
//   - a: the scheduler
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithArmer(a Armer) ControllerBuilderOption {
	return func(c *Controller) {
		c.armer = a
	}
}

// WithOnPlay registers a hook fired after each Stopped to Running transition.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithOnPlay(fn func()) ControllerBuilderOption {
	return func(c *Controller) {
		c.onPlay = fn
	}
}

// WithOnPause registers a hook fired after each Running to Stopped transition.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithOnPause(fn func()) ControllerBuilderOption {
	return func(c *Controller) {
		c.onPause = fn
	}
}

// WithNow overrides the time source used to reset the clock.
//
// Parameters:
//   - now: the time source
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithNow(now func() time.Time) ControllerBuilderOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
