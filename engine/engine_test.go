package engine

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/apiary/common"
	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/gpu/gputest"
	"github.com/Carmen-Shannon/apiary/engine/lifecycle"
	"github.com/Carmen-Shannon/apiary/engine/scheduler"
	"github.com/gogpu/gputypes"
)

type fakeHost struct {
	scheduler.FrameQueue

	width, height int
	onResize      func(int, int)
	onUpdate      func()
	onKey         func(uint32)
	onDrop        func([]string)
	titles        []string
	now           time.Time
	loops         int
}

func newFakeHost(width, height int) *fakeHost {
	return &fakeHost{width: width, height: height, now: time.Unix(5_000, 0)}
}

func (h *fakeHost) SetResizeCallback(cb func(int, int)) { h.onResize = cb }
func (h *fakeHost) Width() int { return h.width }
func (h *fakeHost) Height() int { return h.height }
func (h *fakeHost) SetUpdateCallback(cb func()) { h.onUpdate = cb }
func (h *fakeHost) SetKeyDownCallback(cb func(uint32)) { h.onKey = cb }
func (h *fakeHost) SetDropCallback(cb func([]string)) { h.onDrop = cb }
func (h *fakeHost) SetTitle(title string) { h.titles = append(h.titles, title) }
func (h *fakeHost) clock() time.Time { return h.now }
func (h *fakeHost) lastTitle() string { return h.titles[len(h.titles)-1] }
func (h *fakeHost) ProcessMessages() { h.loops++; h.step() }

func (h *fakeHost) step() {
	if h.onUpdate != nil {
		h.onUpdate()
	}
	h.now = h.now.Add(16 * time.Millisecond)
	h.Flush(h.now)
}

func (h *fakeHost) resize(width, height int) {
	h.width, h.height = width, height
	if h.onResize != nil {
		h.onResize(width, height)
	}
}

func mount(t *testing.T, h *fakeHost, b gpu.Backend, opts ...EngineBuilderOption) Engine {
	t.Helper()
	opts = append([]EngineBuilderOption{WithNow(h.clock)}, opts...)
	e := NewEngine(h, b, opts...)
	if err := e.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(e.Unmount)
	return e
}

// settle steps the host until initialization leaves Loading.
func settle(t *testing.T, h *fakeHost, e Engine) Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for e.Status().State == lifecycle.Loading {
		if time.Now().After(deadline) {
			t.Fatal("engine still loading after 2s")
		}
		h.step()
		time.Sleep(time.Millisecond)
	}
	return e.Status()
}

func steps(h *fakeHost, n int) {
	for range n {
		h.step()
	}
}

func TestEngineRendersAfterInit(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := mount(t, h, b)

	st := settle(t, h, e)
	if st.State != lifecycle.Ready {
		t.Fatalf("State = %v (%s), want Ready", st.State, st.Error)
	}
	if !st.Running {
		t.Error("autoplay did not start playback")
	}

	steps(h, 5)

	frames := b.Frames()
	if len(frames) < 5 {
		t.Fatalf("frames = %d, want at least 5", len(frames))
	}
	for i, f := range frames {
		if f.Pipeline == nil {
			t.Errorf("frame %d has no pipeline", i)
		}
		if len(f.Draws) != 1 || f.Draws[0] != (gputest.DrawCall{VertexCount: 3, InstanceCount: 1}) {
			t.Errorf("frame %d draws = %+v, want one 3-vertex draw", i, f.Draws)
		}
		if !f.Submitted {
			t.Errorf("frame %d not submitted", i)
		}
	}

	cfgs := b.Configs()
	if len(cfgs) != 1 {
		t.Fatalf("configs = %d, want 1", len(cfgs))
	}
	if cfgs[0].Width != 800 || cfgs[0].Height != 600 {
		t.Errorf("configured %dx%d, want 800x600", cfgs[0].Width, cfgs[0].Height)
	}
	if cfgs[0].PresentMode != gputypes.PresentModeFifo {
		t.Errorf("PresentMode = %v, want Fifo", cfgs[0].PresentMode)
	}
	if cfgs[0].Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format = %v, want BGRA8Unorm", cfgs[0].Format)
	}

	st = e.Status()
	if st.FrameIndex != uint64(len(frames)) {
		t.Errorf("FrameIndex = %d, want %d", st.FrameIndex, len(frames))
	}
	if st.Format == "" {
		t.Error("Format empty after Ready")
	}
	if title := h.lastTitle(); !strings.Contains(title, "800x600") || !strings.HasSuffix(title, "Playing") {
		t.Errorf("title = %q", title)
	}
}

func TestEngineAdapterFailure(t *testing.T) {
	h := newFakeHost(640, 480)
	b := gputest.New()
	b.NilAdapter = true
	e := mount(t, h, b)

	st := settle(t, h, e)
	if st.State != lifecycle.Error {
		t.Fatalf("State = %v, want Error", st.State)
	}
	if st.Error != gpu.ErrNoAdapter.Error() {
		t.Errorf("Error = %q, want %q", st.Error, gpu.ErrNoAdapter.Error())
	}

	e.Play()
	steps(h, 5)

	if n := b.Count("ConfigureSurface"); n != 0 {
		t.Errorf("ConfigureSurface called %d times", n)
	}
	if n := b.Count("CreateRenderPipeline"); n != 0 {
		t.Errorf("CreateRenderPipeline called %d times", n)
	}
	if n := len(b.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}
	if e.Status().Running {
		t.Error("Play took effect in Error state")
	}
	if title := h.lastTitle(); !strings.HasPrefix(title, "Apiary | error: ") {
		t.Errorf("title = %q", title)
	}
}

func TestEngineShaderFailure(t *testing.T) {
	h := newFakeHost(640, 480)
	b := gputest.New()
	e := mount(t, h, b, WithShaderSources("fn nothing() {}", ""))

	st := settle(t, h, e)
	if st.State != lifecycle.Error {
		t.Fatalf("State = %v, want Error", st.State)
	}
	if !strings.Contains(st.Error, "vertex shader") {
		t.Errorf("Error = %q, want vertex stage", st.Error)
	}
	steps(h, 3)
	if n := len(b.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}
}

func TestEngineResize(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := mount(t, h, b)
	settle(t, h, e)

	h.resize(1024, 0)
	steps(h, 2)

	st := e.Status()
	if st.Width != 1024 || st.Height != 0 || !math.IsNaN(st.AspectRatio) {
		t.Errorf("status dims = %dx%d %v, want 1024x0 NaN", st.Width, st.Height, st.AspectRatio)
	}
	if n := len(b.Configs()); n != 1 {
		t.Errorf("configs after zero-height resize = %d, want 1", n)
	}
	before := len(b.Frames())
	steps(h, 3)
	if len(b.Frames()) <= before {
		t.Error("frames stopped after zero-height resize")
	}

	h.resize(1024, 512)
	h.step()

	cfgs := b.Configs()
	if len(cfgs) != 2 {
		t.Fatalf("configs = %d, want 2", len(cfgs))
	}
	if cfgs[1].Width != 1024 || cfgs[1].Height != 512 {
		t.Errorf("reconfigured %dx%d, want 1024x512", cfgs[1].Width, cfgs[1].Height)
	}
	if ar := e.Status().AspectRatio; ar != 2 {
		t.Errorf("AspectRatio = %v, want 2", ar)
	}
}

func TestEngineResizeWithoutReconfigure(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := mount(t, h, b, WithReconfigureOnResize(false))
	settle(t, h, e)

	h.resize(400, 300)
	steps(h, 2)

	if n := len(b.Configs()); n != 1 {
		t.Errorf("configs = %d, want 1", n)
	}
	if st := e.Status(); st.Width != 400 || st.Height != 300 {
		t.Errorf("status dims = %dx%d, want 400x300", st.Width, st.Height)
	}
}

func TestEngineKeyToggle(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := mount(t, h, b)
	settle(t, h, e)

	h.onKey(common.KeySpace)
	steps(h, 2)

	st := e.Status()
	if st.Running {
		t.Fatal("space did not pause")
	}
	if st.FPS != 0 {
		t.Errorf("FPS = %d after pause, want 0", st.FPS)
	}
	paused := len(b.Frames())
	steps(h, 5)
	if n := len(b.Frames()); n != paused {
		t.Errorf("frames while paused grew from %d to %d", paused, n)
	}
	if !strings.HasSuffix(h.lastTitle(), "Paused") {
		t.Errorf("title = %q", h.lastTitle())
	}

	h.onKey(common.KeyP)
	steps(h, 2)
	if !e.Status().Running {
		t.Error("P did not resume")
	}
	if n := len(b.Frames()); n <= paused {
		t.Error("no frames after resume")
	}
}

func TestEnginePlaybackHooks(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	var plays, pauses int
	e := mount(t, h, b,
		WithOnPlay(func() { plays++ }),
		WithOnPause(func() { pauses++ }),
	)
	settle(t, h, e)

	if plays != 1 || pauses != 0 {
		t.Fatalf("after autoplay plays = %d, pauses = %d, want 1, 0", plays, pauses)
	}

	e.Pause()
	steps(h, 1)
	e.Pause()
	steps(h, 1)
	e.Toggle()
	steps(h, 1)
	e.Play()
	steps(h, 1)

	if plays != 2 || pauses != 1 {
		t.Errorf("plays = %d, pauses = %d, want 2, 1", plays, pauses)
	}
}

func TestEngineAutoplayDisabled(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := mount(t, h, b, WithAutoplay(false))

	st := settle(t, h, e)
	if st.State != lifecycle.Ready || st.Running {
		t.Fatalf("status = %+v, want Ready and paused", st)
	}
	steps(h, 3)
	if n := len(b.Frames()); n != 0 {
		t.Errorf("frames = %d, want 0", n)
	}

	e.Play()
	steps(h, 2)
	if !e.Status().Running {
		t.Error("Play did not start playback")
	}
}

func TestEnginePlayIgnoredWhileLoading(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	b.AdapterGate = make(chan struct{})
	e := mount(t, h, b, WithAutoplay(false))

	e.Play()
	steps(h, 3)
	if st := e.Status(); st.State != lifecycle.Loading || st.Running {
		t.Fatalf("status = %+v, want Loading and paused", st)
	}
	if !strings.HasSuffix(h.lastTitle(), "loading") {
		t.Errorf("title = %q", h.lastTitle())
	}

	close(b.AdapterGate)
	if st := settle(t, h, e); st.Running {
		t.Error("Play queued while loading took effect after Ready")
	}
}

func TestEngineDrawPanicPauses(t *testing.T) {
	h := newFakeHost(800, 600)
	b := panicBackend{gputest.New()}
	e := mount(t, h, b)
	settle(t, h, e)
	steps(h, 2)

	if e.Status().Running {
		t.Error("panic in frame did not pause playback")
	}
}

type panicBackend struct{ *gputest.Backend }

func (panicBackend) BeginFrame(gputypes.Color) (gpu.Frame, error) { panic("boom") }

func TestEngineDropHandler(t *testing.T) {
	h := newFakeHost(800, 600)
	var got []string
	mount(t, h, gputest.New(), WithDropHandler(func(paths []string) { got = paths }))

	h.onDrop([]string{"shader.wgsl"})
	if len(got) != 1 || got[0] != "shader.wgsl" {
		t.Errorf("dropped = %v", got)
	}
}

func TestEngineFrameCallback(t *testing.T) {
	h := newFakeHost(800, 600)
	var last uint64
	e := mount(t, h, gputest.New(), WithFrameCallback(func(idx uint64) { last = idx }))
	settle(t, h, e)
	steps(h, 3)

	if last == 0 || last != e.Status().FrameIndex {
		t.Errorf("last frame callback = %d, FrameIndex = %d", last, e.Status().FrameIndex)
	}
}

func TestEngineMountTwice(t *testing.T) {
	h := newFakeHost(800, 600)
	e := mount(t, h, gputest.New())
	if err := e.Mount(context.Background()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount() error = %v, want ErrAlreadyMounted", err)
	}
}

func TestEngineRunBeforeMount(t *testing.T) {
	h := newFakeHost(800, 600)
	NewEngine(h, gputest.New()).Run()
	if h.loops != 0 {
		t.Error("Run entered the message loop before Mount")
	}
}

func TestEngineUnmount(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	e := NewEngine(h, b, WithNow(h.clock))
	if err := e.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	settle(t, h, e)

	e.Unmount()
	e.Unmount()

	if n := b.Released(); n != 1 {
		t.Errorf("backend released %d times, want 1", n)
	}
	ps := b.Pipelines()
	if len(ps) != 1 || !ps[0].Released {
		t.Error("pipeline not released")
	}
	if h.onUpdate != nil || h.onResize != nil || h.onKey != nil || h.onDrop != nil {
		t.Error("callbacks still attached after Unmount")
	}
	if e.Status().Running {
		t.Error("still running after Unmount")
	}
}

func TestEngineUnmountWhileLoading(t *testing.T) {
	h := newFakeHost(800, 600)
	b := gputest.New()
	b.AdapterGate = make(chan struct{})
	e := NewEngine(h, b)
	if err := e.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		e.Unmount()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unmount blocked on pending initialization")
	}
	if n := b.Count("RequestDevice"); n != 0 {
		t.Errorf("RequestDevice called %d times after cancel", n)
	}
}

func TestParseCommand(t *testing.T) {
	for in, want := range map[string]Command{"play": CommandPlay, " Pause ": CommandPause, "TOGGLE": CommandToggle} {
		got, err := ParseCommand(in)
		if err != nil || got != want {
			t.Errorf("ParseCommand(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseCommand("stop"); err == nil {
		t.Error("ParseCommand(stop) succeeded")
	}
}
