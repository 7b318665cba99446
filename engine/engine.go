package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/apiary/common"
	"github.com/Carmen-Shannon/apiary/engine/clock"
	"github.com/Carmen-Shannon/apiary/engine/device"
	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/lifecycle"
	"github.com/Carmen-Shannon/apiary/engine/playback"
	"github.com/Carmen-Shannon/apiary/engine/profiler"
	"github.com/Carmen-Shannon/apiary/engine/renderer"
	"github.com/Carmen-Shannon/apiary/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/Carmen-Shannon/apiary/engine/scheduler"
	"github.com/Carmen-Shannon/apiary/engine/surface"
	"github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
)

// ErrAlreadyMounted is returned by a second Mount.
var ErrAlreadyMounted = errors.New("engine already mounted")

// unmountWait bounds how long Unmount waits for an in-flight initialization to notice cancellation.
const unmountWait = 2 * time.Second

// Command is a playback request that may come from any goroutine.
type Command int

const (
	CommandPlay Command = iota
	CommandPause
	CommandToggle
)

func (c Command) String() string {
	switch c {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandToggle:
		return "toggle"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand maps "play", "pause" or "toggle" onto a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "play":
		return CommandPlay, nil
	case "pause":
		return CommandPause, nil
	case "toggle":
		return CommandToggle, nil
	default:
		return 0, fmt.Errorf("unknown command %q", s)
	}
}

// Host is the drawable surface the engine is mounted on. It runs the message loop,
// reports its size, delivers input and hands out animation-frame callbacks.
type Host interface {
	surface.Observable
	scheduler.Host

	// SetUpdateCallback sets the function called once per message loop iteration, before frame callbacks run.
	SetUpdateCallback(callback func())

	// SetKeyDownCallback sets the callback for key press events.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetDropCallback sets the callback for files dropped onto the surface.
	SetDropCallback(callback func(paths []string))

	// SetTitle updates the user-visible title.
	SetTitle(title string)

	// ProcessMessages runs the message loop until the host closes.
	ProcessMessages()
}

// engine implements the Engine interface.
// All fields without their own synchronization are owned by the loop goroutine.
type engine struct {
	host    Host
	backend gpu.Backend

	monitor     *surface.Monitor
	dims        <-chan surface.Dimensions
	initializer *device.Initializer
	outcome     <-chan device.Outcome
	cancel      context.CancelFunc
	builder     *pipeline.Builder
	lifecycle   *lifecycle.Machine
	clock       *clock.FrameClock
	controller  *playback.Controller
	renderer    renderer.Renderer
	scheduler   *scheduler.Scheduler

	profiler         *profiler.Profiler
	profilingEnabled bool

	result   device.Result
	pipeline pipeline.Pipeline

	commands chan Command
	status   atomic.Pointer[Status]
	shown    string

	name                string
	vertexSource        string
	fragmentSource      string
	validateShaders     bool
	autoplay            bool
	reconfigureOnResize bool
	presentMode         gputypes.PresentMode
	forceFallback       bool
	onDrop              func(paths []string)
	onFrame             func(frameIndex uint64)
	onPlay              func()
	onPause             func()
	now                 func() time.Time

	mounted     atomic.Bool
	unmountOnce sync.Once
}

// Engine is the animated triangle component. Mount starts initialization, Run drives the
// message loop, and Unmount tears everything down.
type Engine interface {
	// Mount observes the host surface and starts asynchronous GPU initialization.
	//
	// Parameters:
	//   - ctx: cancels initialization
	//
	// Returns:
	//   - error: ErrAlreadyMounted or a surface observation error
	Mount(ctx context.Context) error

	// Run blocks in the host message loop until the host closes.
	Run()

	// Unmount stops playback, detaches from the surface and releases GPU resources.
	// Safe to call multiple times; subsequent calls are no-ops.
	Unmount()

	// Play requests playback. Ignored until the lifecycle is Ready.
	Play()

	// Pause requests a pause.
	Pause()

	// Toggle requests play when paused and pause when playing.
	Toggle()

	// Enqueue queues a command for the loop goroutine.
	//
	// Parameters:
	//   - cmd: the command
	//
	// Returns:
	//   - bool: false if the queue is full and the command was dropped
	Enqueue(cmd Command) bool

	// Status returns the latest snapshot. Safe from any goroutine.
	//
	// Returns:
	//   - Status: the snapshot
	Status() Status
}

var _ Engine = &engine{}

// NewEngine creates a new Engine on host and backend with the provided options.
//
// Parameters:
//   - host: the drawable surface and message loop
//   - backend: the GPU backend
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(host Host, backend gpu.Backend, options ...EngineBuilderOption) Engine {
	e := &engine{
		host:                host,
		backend:             backend,
		monitor:             surface.NewMonitor(),
		clock:               clock.NewFrameClock(),
		profiler:            profiler.NewProfiler(),
		commands:            make(chan Command, 16),
		name:                "Apiary",
		vertexSource:        shader.TriangleVertexWGSL,
		fragmentSource:      shader.RedFragmentWGSL,
		autoplay:            true,
		reconfigureOnResize: true,
		presentMode:         gputypes.PresentModeFifo,
		onDrop:              func([]string) {},
		now:                 time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	e.lifecycle = lifecycle.NewMachine(func(s lifecycle.State, msg string) {
		if s == lifecycle.Error {
			log.Errorf("initialization failed: %s", msg)
			return
		}
		log.Infof("lifecycle: %s", s)
	})
	e.initializer = device.NewInitializer(backend, e.monitor.Latest,
		device.WithPresentMode(e.presentMode),
		device.WithForceSoftwareRenderer(e.forceFallback),
	)
	e.builder = pipeline.NewBuilder(backend, pipeline.WithValidation(e.validateShaders))
	e.renderer = renderer.NewRenderer(backend)
	e.controller = playback.NewController(e.clock,
		playback.WithNow(e.now),
		playback.WithOnPlay(e.onPlay),
		playback.WithOnPause(e.onPause),
	)
	e.scheduler = scheduler.NewScheduler(host, e.controller, e.clock, &guardedRenderer{Renderer: e.renderer, onPanic: e.recoverFrame},
		scheduler.WithFPSCallback(e.handleFPS),
		scheduler.WithFrameCallback(func(idx uint64) {
			if e.onFrame != nil {
				e.onFrame(idx)
			}
		}),
	)
	e.controller.SetArmer(e.scheduler)

	return e
}

func (e *engine) Mount(ctx context.Context) error {
	if !e.mounted.CompareAndSwap(false, true) {
		return ErrAlreadyMounted
	}

	dims, err := e.monitor.Observe(e.host)
	if err != nil {
		return fmt.Errorf("failed to observe surface: %w", err)
	}
	e.dims = dims

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.outcome = e.initializer.Start(ctx)

	e.host.SetDropCallback(e.handleDrop)
	e.host.SetKeyDownCallback(e.handleKey)
	e.host.SetUpdateCallback(e.update)
	e.publishStatus()
	return nil
}

func (e *engine) Run() {
	if !e.mounted.Load() {
		log.Warn("Run called before Mount")
		return
	}
	e.host.ProcessMessages()
}

func (e *engine) Unmount() {
	e.unmountOnce.Do(func() {
		e.controller.Pause()
		if e.cancel != nil {
			e.cancel()
		}
		if e.outcome != nil {
			select {
			case <-e.outcome:
			case <-time.After(unmountWait):
				log.Warn("initialization did not stop before unmount")
			}
			e.outcome = nil
		}
		e.monitor.Close()
		e.host.SetUpdateCallback(nil)
		e.host.SetKeyDownCallback(nil)
		e.host.SetDropCallback(nil)

		if e.pipeline != nil {
			e.renderer.SetPipeline(nil)
			e.pipeline.Release()
			e.pipeline = nil
		}
		e.backend.Release()
		log.Info("unmounted")
	})
}

func (e *engine) Play()   { e.Enqueue(CommandPlay) }
func (e *engine) Pause()  { e.Enqueue(CommandPause) }
func (e *engine) Toggle() { e.Enqueue(CommandToggle) }

func (e *engine) Enqueue(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		log.Warnf("command queue full, dropping %s", cmd)
		return false
	}
}

func (e *engine) Status() Status {
	s := Status{State: lifecycle.Loading, AspectRatio: math.NaN()}
	if p := e.status.Load(); p != nil {
		s = *p
	}
	s.Running = e.controller.Running()
	s.FrameIndex = e.scheduler.FrameIndex()
	return s
}

// update runs once per message loop iteration on the loop goroutine.
func (e *engine) update() {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("update recovered from panic: %v", r)
			e.controller.Pause()
		}
	}()

	e.drainCommands()
	e.applyDimensions()
	e.collectOutcome()
	e.publishStatus()
}

func (e *engine) drainCommands() {
	for {
		select {
		case cmd := <-e.commands:
			e.apply(cmd)
		default:
			return
		}
	}
}

func (e *engine) apply(cmd Command) {
	if cmd != CommandPause && e.lifecycle.State() != lifecycle.Ready {
		log.Debugf("ignoring %s while %s", cmd, e.lifecycle.State())
		return
	}
	switch cmd {
	case CommandPlay:
		e.controller.Play()
	case CommandPause:
		e.controller.Pause()
	case CommandToggle:
		e.controller.Toggle()
	}
}

func (e *engine) applyDimensions() {
	if e.dims == nil {
		return
	}
	select {
	case d, ok := <-e.dims:
		if !ok {
			e.dims = nil
			return
		}
		e.resize(d)
	default:
	}
}

// resize reconfigures the presentation context for d. A zero-area surface is not an
// error: the old configuration stays and frames keep being scheduled.
func (e *engine) resize(d surface.Dimensions) {
	if e.lifecycle.State() != lifecycle.Ready || !e.reconfigureOnResize {
		return
	}
	if !d.Valid() {
		log.Debugf("skipping reconfigure for %s", d)
		return
	}
	pc := e.result.Context
	if pc.Width == d.Width && pc.Height == d.Height {
		return
	}

	next, err := e.initializer.Configure(e.result.Device, e.result.Format(), d)
	if err != nil {
		log.Warnf("reconfigure to %s failed: %v", d, err)
		return
	}
	e.result.Context = next
	log.Debugf("surface reconfigured to %s", d)
}

func (e *engine) collectOutcome() {
	if e.outcome == nil {
		return
	}
	select {
	case o, ok := <-e.outcome:
		e.outcome = nil
		if ok {
			e.finishInit(o)
		}
	default:
	}
}

func (e *engine) finishInit(o device.Outcome) {
	if o.Err != nil {
		_ = e.lifecycle.Fail(o.Err)
		return
	}

	p, err := e.builder.Build(o.Result.Device, o.Result.Format(), e.vertexSource, e.fragmentSource)
	if err != nil {
		_ = e.lifecycle.Fail(err)
		return
	}

	e.result = o.Result
	e.pipeline = p
	e.renderer.SetPipeline(p)
	_ = e.lifecycle.Ready()

	e.resize(e.monitor.Latest())

	if e.autoplay {
		e.controller.Play()
	}
}

func (e *engine) handleFPS(fps int) {
	if e.profilingEnabled {
		e.profiler.Report(fps)
	}
}

func (e *engine) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeySpace, common.KeyP:
		e.Toggle()
	}
}

func (e *engine) handleDrop(paths []string) {
	log.Debugf("dropped %d file(s)", len(paths))
	e.onDrop(paths)
}

func (e *engine) recoverFrame(r any) {
	log.Errorf("frame recovered from panic: %v", r)
	e.controller.Pause()
}

func (e *engine) publishStatus() {
	d := e.monitor.Latest()
	s := &Status{
		State:       e.lifecycle.State(),
		Error:       e.lifecycle.Message(),
		Running:     e.controller.Running(),
		FPS:         e.clock.FPS(),
		Width:       d.Width,
		Height:      d.Height,
		AspectRatio: d.AspectRatio,
		FrameIndex:  e.scheduler.FrameIndex(),
	}
	if e.pipeline != nil {
		s.Format = e.pipeline.Format().String()
	}
	e.status.Store(s)

	if title := s.Title(e.name); title != e.shown {
		e.shown = title
		e.host.SetTitle(title)
	}
}

// guardedRenderer turns a panic inside a frame into a skipped frame.
type guardedRenderer struct {
	renderer.Renderer
	onPanic func(any)
}

func (g *guardedRenderer) Draw(delta time.Duration, frameIndex uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			g.onPanic(r)
			err = fmt.Errorf("frame %d panicked: %v", frameIndex, r)
		}
	}()
	return g.Renderer.Draw(delta, frameIndex)
}
