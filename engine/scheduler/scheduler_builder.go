package scheduler

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*Scheduler)

// WithFPSCallback registers a function called each time the clock publishes a new FPS value.
//
// Parameters:
//   - fn: receives the published frames per second
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithFPSCallback(fn func(fps int)) SchedulerBuilderOption {
	return func(s *Scheduler) {
		s.onFPS = fn
	}
}

// WithFrameCallback registers a function called after every drawn frame.
//
// Parameters:
//   - fn: receives the frame index just drawn
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithFrameCallback(fn func(frameIndex uint64)) SchedulerBuilderOption {
	return func(s *Scheduler) {
		s.onFrame = fn
	}
}
