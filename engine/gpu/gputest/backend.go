// Package gputest provides an in-memory gpu.Backend that records every call.
package gputest

import (
	"context"
	"errors"
	"sync"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/gogpu/gputypes"
)

// Adapter is the fake adapter handed out by Backend.
type Adapter struct{ name string }

func (a *Adapter) Name() string { return a.name }

// Device is the fake device handed out by Backend.
type Device struct{ label string }

func (d *Device) Label() string { return d.label }

// Pipeline is the fake pipeline handle handed out by Backend.
type Pipeline struct {
	Desc     gpu.RenderPipelineDescriptor
	Released bool
}

func (p *Pipeline) Release() { p.Released = true }

// DrawCall is one recorded Frame.Draw.
type DrawCall struct {
	VertexCount, InstanceCount, FirstVertex, FirstInstance uint32
}

// Frame records what was recorded into a single frame.
type Frame struct {
	Clear     gputypes.Color
	Pipeline  gpu.PipelineHandle
	Draws     []DrawCall
	Submitted bool
}

func (f *Frame) SetPipeline(p gpu.PipelineHandle) { f.Pipeline = p }

func (f *Frame) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.Draws = append(f.Draws, DrawCall{vertexCount, instanceCount, firstVertex, firstInstance})
}

// Backend is a scriptable gpu.Backend. The zero value succeeds at every step and
// reports TextureFormatBGRA8Unorm as the preferred format.
type Backend struct {
	mu sync.Mutex

	Unsupported  bool
	NilAdapter   bool
	AdapterErr   error
	NilDevice    bool
	DeviceErr    error
	Format       gputypes.TextureFormat
	ConfigureErr error
	PipelineErr  error
	BeginErr     error
	SubmitErr    error

	// AdapterGate, when set, holds RequestAdapter until it is closed or ctx is done.
	AdapterGate chan struct{}

	calls     []string
	configs   []gpu.SurfaceConfiguration
	frames    []*Frame
	pipelines []*Pipeline
	released  int
}

var _ gpu.Backend = &Backend{}

// New returns a Backend that succeeds at every step.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) record(call string) {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

func (b *Backend) Supported() bool {
	b.record("Supported")
	return !b.Unsupported
}

func (b *Backend) RequestAdapter(ctx context.Context, _ gpu.AdapterOptions) (gpu.Adapter, error) {
	b.record("RequestAdapter")
	if b.AdapterGate != nil {
		select {
		case <-b.AdapterGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if b.AdapterErr != nil {
		return nil, b.AdapterErr
	}
	if b.NilAdapter {
		return nil, nil
	}
	return &Adapter{name: "fake adapter"}, nil
}

func (b *Backend) RequestDevice(_ context.Context, adapter gpu.Adapter) (gpu.Device, error) {
	b.record("RequestDevice")
	if adapter == nil {
		return nil, errors.New("nil adapter")
	}
	if b.DeviceErr != nil {
		return nil, b.DeviceErr
	}
	if b.NilDevice {
		return nil, nil
	}
	return &Device{label: "fake device"}, nil
}

func (b *Backend) PreferredFormat(_ gpu.Adapter) gputypes.TextureFormat {
	b.record("PreferredFormat")
	if b.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return b.Format
}

func (b *Backend) ConfigureSurface(_ gpu.Device, config gpu.SurfaceConfiguration) error {
	b.record("ConfigureSurface")
	if b.ConfigureErr != nil {
		return b.ConfigureErr
	}
	b.mu.Lock()
	b.configs = append(b.configs, config)
	b.mu.Unlock()
	return nil
}

func (b *Backend) CreateRenderPipeline(_ gpu.Device, desc gpu.RenderPipelineDescriptor) (gpu.PipelineHandle, error) {
	b.record("CreateRenderPipeline")
	if b.PipelineErr != nil {
		return nil, b.PipelineErr
	}
	p := &Pipeline{Desc: desc}
	b.mu.Lock()
	b.pipelines = append(b.pipelines, p)
	b.mu.Unlock()
	return p, nil
}

func (b *Backend) BeginFrame(clear gputypes.Color) (gpu.Frame, error) {
	b.record("BeginFrame")
	if b.BeginErr != nil {
		return nil, b.BeginErr
	}
	f := &Frame{Clear: clear}
	b.mu.Lock()
	b.frames = append(b.frames, f)
	b.mu.Unlock()
	return f, nil
}

func (b *Backend) Submit(frame gpu.Frame) error {
	b.record("Submit")
	if b.SubmitErr != nil {
		return b.SubmitErr
	}
	if f, ok := frame.(*Frame); ok {
		f.Submitted = true
	}
	return nil
}

func (b *Backend) Release() {
	b.record("Release")
	b.mu.Lock()
	b.released++
	b.mu.Unlock()
}

// Calls returns the ordered list of backend methods invoked so far.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

// Count returns how many times the named method was invoked.
func (b *Backend) Count(call string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Configs returns every successful surface configuration in order.
func (b *Backend) Configs() []gpu.SurfaceConfiguration {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]gpu.SurfaceConfiguration, len(b.configs))
	copy(out, b.configs)
	return out
}

// Frames returns every frame begun so far.
func (b *Backend) Frames() []*Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Pipelines returns every pipeline created so far.
func (b *Backend) Pipelines() []*Pipeline {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Pipeline, len(b.pipelines))
	copy(out, b.pipelines)
	return out
}

// Released reports how many times Release was called.
func (b *Backend) Released() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
