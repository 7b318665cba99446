package headless

import "time"

// HostOption is a functional option for configuring a headless Host.
type HostOption func(*Host)

// WithSize sets the initial reported size.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - HostOption: option function to apply
func WithSize(width, height int) HostOption {
	return func(h *Host) {
		h.width, h.height = width, height
	}
}

// WithInterval sets the tick interval of the message loop.
//
// Parameters:
//   - d: time between ticks (default 1/60 s); non-positive values keep the default
//
// Returns:
//   - HostOption: option function to apply
func WithInterval(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.interval = d
		}
	}
}
