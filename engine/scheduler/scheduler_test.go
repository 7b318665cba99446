package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/apiary/engine/clock"
	"github.com/Carmen-Shannon/apiary/engine/gpu/gputest"
	"github.com/Carmen-Shannon/apiary/engine/playback"
	"github.com/Carmen-Shannon/apiary/engine/renderer"
)

type harness struct {
	queue    *FrameQueue
	backend  *gputest.Backend
	clock    *clock.FrameClock
	control  *playback.Controller
	sched    *Scheduler
	base     time.Time
	fpsSeen  []int
	rendered renderer.Renderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		queue:   &FrameQueue{},
		backend: gputest.New(),
		clock:   clock.NewFrameClock(),
		base:    time.Unix(1_000, 0),
	}
	h.rendered = renderer.NewRenderer(h.backend)
	h.control = playback.NewController(h.clock, playback.WithNow(func() time.Time { return h.base }))
	h.sched = NewScheduler(h.queue, h.control, h.clock, h.rendered, WithFPSCallback(func(fps int) {
		h.fpsSeen = append(h.fpsSeen, fps)
	}))
	h.control.SetArmer(h.sched)
	return h
}

func (h *harness) flushAt(ms int) int {
	return h.queue.Flush(h.base.Add(time.Duration(ms) * time.Millisecond))
}

func TestSchedulerIdleUntilPlay(t *testing.T) {
	h := newHarness(t)
	if h.flushAt(16) != 0 {
		t.Error("callback ran before Play")
	}
	if n := len(h.backend.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}
}

func TestSchedulerDrawsEachFrame(t *testing.T) {
	h := newHarness(t)
	h.control.Play()

	for i := 1; i <= 5; i++ {
		if h.flushAt(i*16) != 1 {
			t.Fatalf("flush %d ran no callback", i)
		}
	}

	frames := h.backend.Frames()
	if len(frames) != 5 {
		t.Fatalf("frames = %d, want 5", len(frames))
	}
	for i, f := range frames {
		if f.Clear != renderer.ClearColor(uint64(i+1)) {
			t.Errorf("frame %d clear = %+v, want ClearColor(%d)", i, f.Clear, i+1)
		}
	}
	if h.sched.FrameIndex() != 5 {
		t.Errorf("FrameIndex() = %d, want 5", h.sched.FrameIndex())
	}
	if !h.sched.Armed() {
		t.Error("loop did not re-arm while running")
	}
}

func TestPlayThenImmediatePauseNeverRenders(t *testing.T) {
	h := newHarness(t)
	h.control.Play()
	h.control.Pause()

	h.flushAt(16)
	if n := len(h.backend.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}
	if h.clock.FPS() != 0 {
		t.Errorf("FPS() = %d, want 0", h.clock.FPS())
	}
	if h.sched.Armed() || h.queue.Len() != 0 {
		t.Error("loop re-armed after pause")
	}
}

func TestRapidToggleDoesNotDoubleArm(t *testing.T) {
	h := newHarness(t)
	h.control.Play()
	h.control.Pause()
	h.control.Play()
	h.control.Pause()
	h.control.Play()

	if h.queue.Len() != 1 {
		t.Fatalf("queued callbacks = %d, want 1", h.queue.Len())
	}
	h.flushAt(16)
	if h.queue.Len() != 1 {
		t.Errorf("queued callbacks after frame = %d, want 1", h.queue.Len())
	}
}

func TestFrameIndexSurvivesPause(t *testing.T) {
	h := newHarness(t)
	h.control.Play()
	h.flushAt(16)
	h.flushAt(32)
	h.control.Pause()
	h.flushAt(48)

	h.control.Play()
	h.flushAt(64)

	if h.sched.FrameIndex() != 3 {
		t.Errorf("FrameIndex() = %d, want 3", h.sched.FrameIndex())
	}
	frames := h.backend.Frames()
	if got := frames[len(frames)-1].Clear; got != renderer.ClearColor(3) {
		t.Errorf("last clear = %+v, want ClearColor(3)", got)
	}
}

func TestFPSPublishedThroughCallback(t *testing.T) {
	h := newHarness(t)
	h.control.Play()

	for _, ms := range []int{0, 400, 800, 1200} {
		h.flushAt(ms)
	}
	if len(h.fpsSeen) != 1 || h.fpsSeen[0] != 3 {
		t.Errorf("published = %v, want [3]", h.fpsSeen)
	}
	if h.clock.Accumulated() != 200*time.Millisecond {
		t.Errorf("Accumulated() = %v, want 200ms", h.clock.Accumulated())
	}
}

func TestDrawFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.backend.BeginErr = errors.New("surface lost")
	h.control.Play()

	h.flushAt(16)
	h.flushAt(32)
	if h.sched.Failures() != 2 {
		t.Errorf("Failures() = %d, want 2", h.sched.Failures())
	}
	if !h.sched.Armed() {
		t.Fatal("loop stopped after draw failure")
	}

	h.backend.BeginErr = nil
	h.flushAt(48)
	if n := len(h.backend.Frames()); n != 1 {
		t.Errorf("frames after recovery = %d, want 1", n)
	}
	if h.sched.FrameIndex() != 3 {
		t.Errorf("FrameIndex() = %d, want 3", h.sched.FrameIndex())
	}
}

func TestFrameQueueDefersNestedRequests(t *testing.T) {
	q := &FrameQueue{}
	runs := 0
	var cb func(time.Time)
	cb = func(time.Time) {
		runs++
		q.RequestAnimationFrame(cb)
	}
	q.RequestAnimationFrame(cb)

	if n := q.Flush(time.Now()); n != 1 {
		t.Errorf("Flush() = %d, want 1", n)
	}
	if runs != 1 || q.Len() != 1 {
		t.Errorf("runs=%d pending=%d, want 1 and 1", runs, q.Len())
	}
}
