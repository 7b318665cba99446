package device

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/surface"
	"github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
)

// ErrAlreadyInitialized is returned by a second Initialize or Start.
var ErrAlreadyInitialized = errors.New("device already initialized")

// Result is everything initialization produces.
type Result struct {
	Adapter gpu.Adapter
	Device  gpu.Device
	Context gpu.PresentationContext
}

// Format is the presentation format chosen for the surface.
func (r Result) Format() gputypes.TextureFormat {
	return r.Context.Format
}

// Outcome is the single value delivered by Start.
type Outcome struct {
	Result Result
	Err    error
}

// Initializer acquires an adapter and device, picks the presentation format and
// configures the surface. It runs once per mount.
type Initializer struct {
	backend       gpu.Backend
	dimensions    func() surface.Dimensions
	presentMode   gputypes.PresentMode
	alphaMode     gputypes.CompositeAlphaMode
	forceFallback bool
	started       atomic.Bool
}

// NewInitializer creates an Initializer.
//
// Parameters:
//   - backend: the GPU backend
//   - dimensions: source of the latest surface size, read when configuring
//   - options: functional options applied in order
//
// Returns:
//   - *Initializer: the new initializer
func NewInitializer(backend gpu.Backend, dimensions func() surface.Dimensions, options ...InitializerBuilderOption) *Initializer {
	i := &Initializer{
		backend:     backend,
		dimensions:  dimensions,
		presentMode: gputypes.PresentModeFifo,
		alphaMode:   gputypes.CompositeAlphaModePremultiplied,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Start runs Initialize on its own goroutine and delivers exactly one Outcome.
//
// Parameters:
//   - ctx: cancels acquisition between steps
//
// Returns:
//   - <-chan Outcome: buffered channel receiving the single outcome
func (i *Initializer) Start(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		res, err := i.Initialize(ctx)
		out <- Outcome{Result: res, Err: err}
		close(out)
	}()
	return out
}

// Initialize runs the full sequence. Each failure is terminal; nothing is retried.
//
// Parameters:
//   - ctx: cancels acquisition between steps
//
// Returns:
//   - Result: adapter, device and presentation context
//   - error: gpu.ErrUnsupportedPlatform, gpu.ErrNoAdapter, gpu.ErrNoDevice,
//     gpu.ErrSurfaceConfigure, ErrAlreadyInitialized or the context error
func (i *Initializer) Initialize(ctx context.Context) (Result, error) {
	if !i.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyInitialized
	}

	if !i.backend.Supported() {
		return Result{}, gpu.ErrUnsupportedPlatform
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	adapter, err := i.backend.RequestAdapter(ctx, gpu.AdapterOptions{ForceFallbackAdapter: i.forceFallback})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %w", gpu.ErrNoAdapter, err)
	}
	if adapter == nil {
		return Result{}, gpu.ErrNoAdapter
	}
	log.Infof("using adapter: %s", adapter.Name())
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	dev, err := i.backend.RequestDevice(ctx, adapter)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %w", gpu.ErrNoDevice, err)
	}
	if dev == nil {
		return Result{}, gpu.ErrNoDevice
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	format := i.backend.PreferredFormat(adapter)
	pc, err := i.Configure(dev, format, i.dimensions())
	if err != nil {
		return Result{}, err
	}

	log.Infof("surface configured: %dx%d %s %s", pc.Width, pc.Height, pc.Format, pc.AlphaMode)
	return Result{Adapter: adapter, Device: dev, Context: pc}, nil
}

// Configure (re)configures the surface for dev at the given size. Sides are clamped to at
// least one pixel, since a zero-sized swapchain cannot be created.
//
// Parameters:
//   - dev: the device
//   - format: the presentation format
//   - dims: the surface size
//
// Returns:
//   - gpu.PresentationContext: the configured context
//   - error: gpu.ErrSurfaceConfigure wrapping the backend failure
func (i *Initializer) Configure(dev gpu.Device, format gputypes.TextureFormat, dims surface.Dimensions) (gpu.PresentationContext, error) {
	pc := gpu.PresentationContext{
		Device:      dev,
		Format:      format,
		AlphaMode:   i.alphaMode,
		PresentMode: i.presentMode,
		Width:       max(dims.Width, 1),
		Height:      max(dims.Height, 1),
	}
	if err := i.backend.ConfigureSurface(dev, pc.Configuration()); err != nil {
		return gpu.PresentationContext{}, fmt.Errorf("%w: %w", gpu.ErrSurfaceConfigure, err)
	}
	return pc, nil
}
