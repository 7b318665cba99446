package clock

import (
	"sync"
	"time"
)

// Tick is the result of a single FrameClock.Tick.
type Tick struct {
	// Delta is the time since the previous tick, or since Reset for the first tick.
	Delta time.Duration
	// FPS is the last published frames-per-second value.
	FPS int
	// Published is true when this tick closed a one-second window and updated FPS.
	Published bool
}

// FrameClock measures per-frame delta and derives a rolling frames-per-second value.
// The value is published once per accumulated second of frame time; the accumulator
// carries the remainder over instead of dropping it.
type FrameClock struct {
	mu       sync.Mutex
	last     time.Time
	acc      time.Duration
	count    int
	fps      int
	baseline bool
	window   time.Duration
}

// NewFrameClock creates a clock with a one-second publish window.
// The clock must be Reset before the first Tick.
func NewFrameClock() *FrameClock {
	return &FrameClock{
		window:   time.Second,
		baseline: true,
	}
}

// Reset rebases the clock at now and zeroes the accumulator and frame count.
// The published FPS value is left alone.
//
// Parameters:
//   - now: the timestamp subsequent deltas are measured from
func (c *FrameClock) Reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = now
	c.acc = 0
	c.count = 0
	c.baseline = true
}

// Tick advances the clock to now.
// The first tick after Reset only establishes the baseline: its delta is reported but it is
// neither counted nor accumulated. Every later tick counts one frame and accumulates its delta;
// once the accumulator exceeds one second the count is published as FPS and one second is
// subtracted from the accumulator.
//
// Parameters:
//   - now: the frame timestamp
//
// Returns:
//   - Tick: delta, current FPS and whether FPS was published by this call
func (c *FrameClock) Tick(now time.Time) Tick {
	c.mu.Lock()
	defer c.mu.Unlock()

	delta := now.Sub(c.last)
	c.last = now

	if c.baseline {
		c.baseline = false
		return Tick{Delta: delta, FPS: c.fps}
	}

	c.count++
	c.acc += delta

	published := false
	if c.acc > c.window {
		c.acc -= c.window
		c.fps = c.count
		c.count = 0
		published = true
	}

	return Tick{Delta: delta, FPS: c.fps, Published: published}
}

// FPS returns the last published frames-per-second value.
func (c *FrameClock) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// ClearFPS sets the published value to zero, as shown while playback is paused.
func (c *FrameClock) ClearFPS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = 0
}

// Accumulated returns the frame time accumulated toward the next publish.
func (c *FrameClock) Accumulated() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acc
}

// Pending returns the number of frames counted toward the next publish.
func (c *FrameClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
