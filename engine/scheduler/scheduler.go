package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/apiary/engine/clock"
	"github.com/Carmen-Shannon/apiary/engine/renderer"
	"github.com/charmbracelet/log"
)

// drawFailureLogEvery rate-limits repeated draw failure warnings.
const drawFailureLogEvery = 60

// Host delivers a display-refresh-aligned callback, at most once per request.
type Host interface {
	RequestAnimationFrame(cb func(now time.Time))
}

// Playback is the running flag the scheduler checks before every iteration.
type Playback interface {
	Running() bool
}

// Scheduler drives the frame loop cooperatively: each callback draws one frame and
// requests the next. Cancellation is the playback flag; a callback that finds playback
// stopped returns without re-arming, and the loop ends.
type Scheduler struct {
	host     Host
	playback Playback
	clock    *clock.FrameClock
	renderer renderer.Renderer

	frameIndex atomic.Uint64
	armed      atomic.Bool
	failures   atomic.Uint64

	onFPS   func(fps int)
	onFrame func(frameIndex uint64)
}

// NewScheduler creates an idle Scheduler. Nothing is drawn until Arm.
//
// Parameters:
//   - host: source of animation-frame callbacks
//   - playback: the running flag
//   - clk: the frame clock ticked once per iteration, before drawing
//   - r: the frame renderer
//   - options: functional options applied in order
//
// Returns:
//   - *Scheduler: the new scheduler
func NewScheduler(host Host, playback Playback, clk *clock.FrameClock, r renderer.Renderer, options ...SchedulerBuilderOption) *Scheduler {
	s := &Scheduler{
		host:     host,
		playback: playback,
		clock:    clk,
		renderer: r,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Arm requests the next frame callback unless one is already pending, so rapid
// play/pause/play never starts a second loop.
func (s *Scheduler) Arm() {
	if !s.armed.CompareAndSwap(false, true) {
		return
	}
	s.host.RequestAnimationFrame(s.tick)
}

// Armed reports whether a frame callback is pending.
func (s *Scheduler) Armed() bool {
	return s.armed.Load()
}

// FrameIndex returns the number of iterations run since construction. It is never reset.
func (s *Scheduler) FrameIndex() uint64 {
	return s.frameIndex.Load()
}

// Failures returns the number of frames whose draw failed.
func (s *Scheduler) Failures() uint64 {
	return s.failures.Load()
}

func (s *Scheduler) tick(now time.Time) {
	s.armed.Store(false)
	if !s.playback.Running() {
		return
	}

	t := s.clock.Tick(now)
	idx := s.frameIndex.Add(1)

	if err := s.renderer.Draw(t.Delta, idx); err != nil {
		n := s.failures.Add(1)
		if n == 1 || n%drawFailureLogEvery == 0 {
			log.Warnf("frame %d skipped (%d failures): %v", idx, n, err)
		}
	}

	if t.Published && s.onFPS != nil {
		s.onFPS(t.FPS)
	}
	if s.onFrame != nil {
		s.onFrame(idx)
	}

	s.Arm()
}
