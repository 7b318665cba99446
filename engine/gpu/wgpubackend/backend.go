// Package wgpubackend implements gpu.Backend on wgpu-native through the cogentcore bindings,
// presenting to a window surface.
package wgpubackend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

var errNotConfigured = errors.New("surface is not configured")

type adapter struct{ a *wgpu.Adapter }

func (a *adapter) Name() string { return "wgpu-native" }

type device struct {
	d     *wgpu.Device
	label string
}

func (d *device) Label() string { return d.label }

type pipelineHandle struct{ p *wgpu.RenderPipeline }

func (h *pipelineHandle) Release() {
	if h.p != nil {
		h.p.Release()
		h.p = nil
	}
}

// frame holds the native objects acquired by BeginFrame until Submit releases them.
type frame struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
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

func (f *frame) release() {
	if f.pass != nil {
		f.pass.Release()
	}
	if f.encoder != nil {
		f.encoder.Release()
	}
	if f.view != nil {
		f.view.Release()
	}
	if f.texture != nil {
		f.texture.Release()
	}
}

// Backend presents to a native window surface.
type Backend struct {
	mu sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	configured bool
}

var _ gpu.Backend = &Backend{}

// New creates the instance and the surface for descriptor.
// Call it on the goroutine that owns the window.
//
// Parameters:
//   - descriptor: the platform surface descriptor, typically from window.SurfaceDescriptor
//
// Returns:
//   - *Backend: the backend; Supported reports false if descriptor is nil
func New(descriptor *wgpu.SurfaceDescriptor) *Backend {
	b := &Backend{}
	if descriptor == nil {
		return b
	}
	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(descriptor)
	return b
}

func (b *Backend) Supported() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instance != nil && b.surface != nil
}

func (b *Backend) RequestAdapter(ctx context.Context, opts gpu.AdapterOptions) (gpu.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	b.adapter = a
	return &adapter{a: a}, nil
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

	d, err := a.a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	b.device = d
	b.queue = d.GetQueue()
	return &device{d: d, label: "Main Device"}, nil
}

func (b *Backend) PreferredFormat(ad gpu.Adapter) gputypes.TextureFormat {
	a, ok := ad.(*adapter)
	if !ok || a.a == nil {
		return gputypes.TextureFormatUndefined
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(a.a)
	return preferredFormat(capabilities.Formats)
}

func (b *Backend) ConfigureSurface(dev gpu.Device, config gpu.SurfaceConfiguration) error {
	d, ok := dev.(*device)
	if !ok || d.d == nil {
		return fmt.Errorf("device %v was not created by this backend", dev)
	}
	format, err := toFormat(config.Format)
	if err != nil {
		return err
	}
	if config.Width <= 0 || config.Height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", config.Width, config.Height)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	presentMode := pickPresentMode(toPresentMode(config.PresentMode), capabilities.PresentModes)
	alphaMode := pickAlphaMode(toAlphaMode(config.AlphaMode), capabilities.AlphaModes)

	b.surface.Configure(b.adapter, d.d, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(config.Width),
		Height:      uint32(config.Height),
		PresentMode: presentMode,
		AlphaMode:   alphaMode,
	})
	b.configured = true
	return nil
}

func (b *Backend) CreateRenderPipeline(dev gpu.Device, desc gpu.RenderPipelineDescriptor) (gpu.PipelineHandle, error) {
	d, ok := dev.(*device)
	if !ok || d.d == nil {
		return nil, fmt.Errorf("device %v was not created by this backend", dev)
	}
	format, err := toFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	primitive, err := toPrimitive(desc.Primitive)
	if err != nil {
		return nil, err
	}

	vs, err := d.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Vertex.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Vertex.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vertex module: %w", err)
	}
	defer vs.Release()

	fs, err := d.d.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Fragment.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Fragment.Code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fragment module: %w", err)
	}
	defer fs.Release()

	layout, err := d.d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: desc.Label,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline layout: %w", err)
	}
	defer layout.Release()

	created, err := d.d.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: primitive,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
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

	if !b.configured {
		return nil, errNotConfigured
	}

	f := &frame{}
	var err error
	if f.texture, err = b.surface.GetCurrentTexture(); err != nil {
		return nil, err
	}
	if f.view, err = f.texture.CreateView(nil); err != nil {
		f.release()
		return nil, err
	}
	if f.encoder, err = b.device.CreateCommandEncoder(nil); err != nil {
		f.release()
		return nil, err
	}

	f.pass = f.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       f.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: toColor(clear),
			},
		},
	})
	return f, nil
}

func (b *Backend) Submit(fr gpu.Frame) error {
	f, ok := fr.(*frame)
	if !ok {
		return fmt.Errorf("frame %v was not begun by this backend", fr)
	}
	defer f.release()

	b.mu.Lock()
	defer b.mu.Unlock()

	f.pass.End()

	commandBuffer, err := f.encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.configured = false
	log.Debug("wgpu backend released")
}
