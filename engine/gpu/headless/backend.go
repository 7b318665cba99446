// Package headless renders into an offscreen texture with the pure Go WebGPU
// implementation, for machines without a display and for smoke runs.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	_ "github.com/gogpu/wgpu/hal/allbackends"
)

var errNotConfigured = errors.New("render target is not configured")

type adapter struct {
	a    *wgpu.Adapter
	name string
}

func (a *adapter) Name() string { return a.name }

type device struct{ d *wgpu.Device }

func (d *device) Label() string { return "headless device" }

type pipelineHandle struct{ p *wgpu.RenderPipeline }

func (h *pipelineHandle) Release() {
	if h.p != nil {
		h.p.Release()
		h.p = nil
	}
}

type frame struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

func (f *frame) SetPipeline(p gpu.PipelineHandle) {
	if h, ok := p.(*pipelineHandle); ok && h.p != nil {
		f.pass.SetPipeline(h.p)
	}
}

func (f *frame) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	f.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// Backend renders every frame into a single offscreen texture that is reallocated on configure.
type Backend struct {
	mu sync.Mutex

	backends wgpu.Backends
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device

	target *wgpu.Texture
	view   *wgpu.TextureView
	config gpu.SurfaceConfiguration
}

var _ gpu.Backend = &Backend{}

// New creates a headless backend.
//
// Parameters:
//   - options: functional options for backend configuration
//
// Returns:
//   - *Backend: the backend, not yet holding any GPU objects
func New(options ...BackendOption) *Backend {
	b := &Backend{backends: wgpu.BackendsAll}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Supported is always true: the software rasterizer is available everywhere.
func (b *Backend) Supported() bool {
	return true
}

func (b *Backend) RequestAdapter(ctx context.Context, opts gpu.AdapterOptions) (gpu.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.instance == nil {
		instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: b.backends})
		if err != nil {
			return nil, fmt.Errorf("create instance: %w", err)
		}
		b.instance = instance
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	b.adapter = a
	info := a.Info()
	return &adapter{a: a, name: fmt.Sprintf("%s (%v)", info.Name, info.Backend)}, nil
}

func (b *Backend) RequestDevice(ctx context.Context, ad gpu.Adapter) (gpu.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, ok := ad.(*adapter)
	if !ok || a.a == nil {
		return nil, fmt.Errorf("adapter %v was not created by this backend", ad)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := a.a.RequestDevice(nil)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	b.device = d
	return &device{d: d}, nil
}

// PreferredFormat is RGBA8Unorm so snapshots need no channel swizzle.
func (b *Backend) PreferredFormat(_ gpu.Adapter) gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// ConfigureSurface reallocates the offscreen target at the configured size.
// Present and alpha modes have no meaning offscreen and are only recorded.
func (b *Backend) ConfigureSurface(dev gpu.Device, config gpu.SurfaceConfiguration) error {
	d, ok := dev.(*device)
	if !ok || d.d == nil {
		return fmt.Errorf("device %v was not created by this backend", dev)
	}
	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("invalid target size %dx%d", config.Width, config.Height)
	}
	if config.Format != gputypes.TextureFormatRGBA8Unorm && config.Format != gputypes.TextureFormatBGRA8Unorm {
		return fmt.Errorf("unsupported target format %s", config.Format)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	target, err := d.d.CreateTexture(&wgpu.TextureDescriptor{
		Label: "offscreen target",
		Size: wgpu.Extent3D{
			Width:              uint32(config.Width),
			Height:             uint32(config.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	view, err := d.d.CreateTextureView(target, nil)
	if err != nil {
		target.Release()
		return fmt.Errorf("create target view: %w", err)
	}

	b.releaseTargetLocked()
	b.target = target
	b.view = view
	b.config = config
	log.Debugf("headless target %dx%d %s", config.Width, config.Height, config.Format)
	return nil
}

func (b *Backend) CreateRenderPipeline(dev gpu.Device, desc gpu.RenderPipelineDescriptor) (gpu.PipelineHandle, error) {
	d, ok := dev.(*device)
	if !ok || d.d == nil {
		return nil, fmt.Errorf("device %v was not created by this backend", dev)
	}

	vs, err := d.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{Label: desc.Vertex.Label, WGSL: desc.Vertex.Code})
	if err != nil {
		return nil, fmt.Errorf("vertex module: %w", err)
	}
	defer vs.Release()

	fs, err := d.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{Label: desc.Fragment.Label, WGSL: desc.Fragment.Code})
	if err != nil {
		return nil, fmt.Errorf("fragment module: %w", err)
	}
	defer fs.Release()

	layout, err := d.d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{Label: desc.Label + "-layout"})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}
	defer layout.Release()

	created, err := d.d.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Primitive: desc.Primitive,
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.Format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &pipelineHandle{p: created}, nil
}

func (b *Backend) BeginFrame(clear gputypes.Color) (gpu.Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.view == nil {
		return nil, errNotConfigured
	}

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "frame"})
	if err != nil {
		return nil, err
	}
	pass, err := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.view,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return &frame{encoder: encoder, pass: pass}, nil
}

func (b *Backend) Submit(fr gpu.Frame) error {
	f, ok := fr.(*frame)
	if !ok {
		return fmt.Errorf("frame %v was not begun by this backend", fr)
	}
	if err := f.pass.End(); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	cmd, err := f.encoder.Finish()
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.device.Queue().Submit(cmd); err != nil {
		return err
	}
	return nil
}

func (b *Backend) releaseTargetLocked() {
	if b.view != nil {
		b.view.Release()
		b.view = nil
	}
	if b.target != nil {
		b.target.Release()
		b.target = nil
	}
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTargetLocked()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	log.Debug("headless backend released")
}
