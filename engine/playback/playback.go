package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/apiary/engine/clock"
	"github.com/charmbracelet/log"
)

// State is the playback state. There is no terminal state.
type State int32

const (
	// StateStopped is the initial state: no frames are drawn.
	StateStopped State = iota

	// StateRunning means the scheduler is drawing frames.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Armer schedules the next frame callback. The frame scheduler implements it.
type Armer interface {
	Arm()
}

// Controller owns the single running flag that gates the frame loop.
// The flag is read by the scheduler before every iteration, so a transition is
// observed no later than the next frame.
type Controller struct {
	mu      sync.Mutex
	state   atomic.Int32
	clock   *clock.FrameClock
	armer   Armer
	onPlay  func()
	onPause func()
	now     func() time.Time
}

// NewController creates a stopped Controller.
//
// Parameters:
//   - clk: the frame clock reset on every Stopped to Running transition
//   - options: functional options applied in order
//
// Returns:
//   - *Controller: the new controller
func NewController(clk *clock.FrameClock, options ...ControllerBuilderOption) *Controller {
	c := &Controller{
		clock: clk,
		now:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SetArmer attaches the scheduler after construction, since the scheduler itself reads the controller.
func (c *Controller) SetArmer(a Armer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armer = a
}

// Play starts playback. It is a no-op while already running: the clock, the
// published FPS and the scheduled callback are all left untouched.
//
// Returns:
//   - bool: true if this call transitioned Stopped to Running
func (c *Controller) Play() bool {
	c.mu.Lock()
	if !c.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		c.mu.Unlock()
		return false
	}
	c.clock.Reset(c.now())
	onPlay, armer := c.onPlay, c.armer
	c.mu.Unlock()

	log.Info("playback started")
	if onPlay != nil {
		onPlay()
	}
	if armer != nil {
		armer.Arm()
	}
	return true
}

// Pause stops playback and zeroes the displayed FPS. It is a no-op while stopped.
// A frame callback that is already scheduled sees the flag and does not draw.
//
// Returns:
//   - bool: true if this call transitioned Running to Stopped
func (c *Controller) Pause() bool {
	c.mu.Lock()
	if !c.state.CompareAndSwap(int32(StateRunning), int32(StateStopped)) {
		c.mu.Unlock()
		return false
	}
	c.clock.ClearFPS()
	onPause := c.onPause
	c.mu.Unlock()

	log.Info("playback paused")
	if onPause != nil {
		onPause()
	}
	return true
}

// Toggle pauses when running and plays when stopped.
//
// Returns:
//   - State: the state after the call
func (c *Controller) Toggle() State {
	if c.Running() {
		c.Pause()
	} else {
		c.Play()
	}
	return c.State()
}

// Running reports whether playback is running.
func (c *Controller) Running() bool {
	return c.State() == StateRunning
}

// State returns the current playback state.
func (c *Controller) State() State {
	return State(c.state.Load())
}
