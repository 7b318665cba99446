package gpu

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Adapter is an opaque handle to a physical or software GPU selected by a Backend.
type Adapter interface {
	// Name returns a human readable adapter description for logs.
	Name() string
}

// Device is an opaque handle to a logical GPU device created from an Adapter.
type Device interface {
	// Label returns the debug label the device was created with.
	Label() string
}

// PipelineHandle is an opaque, backend-owned render pipeline.
type PipelineHandle interface {
	// Release frees the backend resources held by the pipeline.
	Release()
}

// Frame is a single in-flight frame: an acquired presentable view with an open,
// clearing render pass. It is only valid between Backend.BeginFrame and Backend.Submit.
type Frame interface {
	// SetPipeline binds the pipeline for subsequent draws.
	//
	// Parameters:
	//   - pipeline: the backend pipeline handle to bind
	SetPipeline(pipeline PipelineHandle)

	// Draw records a non-indexed draw call.
	//
	// Parameters:
	//   - vertexCount: number of vertices to draw
	//   - instanceCount: number of instances to draw
	//   - firstVertex: offset into the vertex range
	//   - firstInstance: offset into the instance range
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// AdapterOptions controls adapter selection.
type AdapterOptions struct {
	// ForceFallbackAdapter requests a software adapter when available.
	ForceFallbackAdapter bool
}

// SurfaceConfiguration describes how the presentable surface is configured.
type SurfaceConfiguration struct {
	Format      gputypes.TextureFormat
	AlphaMode   gputypes.CompositeAlphaMode
	PresentMode gputypes.PresentMode
	Width       int
	Height      int
}

// ShaderStage is a single compiled-from-source shader stage handed to a Backend.
type ShaderStage struct {
	Label      string
	Code       string
	EntryPoint string
}

// RenderPipelineDescriptor describes the fixed-function and shader state of a render pipeline.
// There are no vertex buffers: vertex positions are produced by the vertex shader.
type RenderPipelineDescriptor struct {
	Label     string
	Vertex    ShaderStage
	Fragment  ShaderStage
	Format    gputypes.TextureFormat
	Primitive gputypes.PrimitiveState
}

// Backend is the capability interface every GPU implementation satisfies.
// All methods other than the frame pair may be called from any goroutine once;
// BeginFrame and Submit are only called from the frame loop.
type Backend interface {
	// Supported reports whether the platform exposes a usable GPU API at all.
	//
	// Returns:
	//   - bool: false if no GPU API is available on this platform
	Supported() bool

	// RequestAdapter selects an adapter.
	//
	// Parameters:
	//   - ctx: cancellation for the request
	//   - opts: adapter selection options
	//
	// Returns:
	//   - Adapter: the selected adapter, or nil if none is available
	//   - error: error if the request fails
	RequestAdapter(ctx context.Context, opts AdapterOptions) (Adapter, error)

	// RequestDevice creates a logical device on the adapter.
	//
	// Parameters:
	//   - ctx: cancellation for the request
	//   - adapter: the adapter returned by RequestAdapter
	//
	// Returns:
	//   - Device: the created device, or nil if the adapter refused
	//   - error: error if the request fails
	RequestDevice(ctx context.Context, adapter Adapter) (Device, error)

	// PreferredFormat returns the platform-preferred presentation texture format.
	//
	// Parameters:
	//   - adapter: the adapter the surface will be presented with
	//
	// Returns:
	//   - gputypes.TextureFormat: the preferred format
	PreferredFormat(adapter Adapter) gputypes.TextureFormat

	// ConfigureSurface (re)configures the presentable surface for the device.
	//
	// Parameters:
	//   - device: the device returned by RequestDevice
	//   - config: format, alpha mode, present mode and size
	//
	// Returns:
	//   - error: error if configuration fails
	ConfigureSurface(device Device, config SurfaceConfiguration) error

	// CreateRenderPipeline builds a render pipeline from WGSL stages.
	//
	// Parameters:
	//   - device: the device returned by RequestDevice
	//   - desc: the pipeline descriptor
	//
	// Returns:
	//   - PipelineHandle: the created pipeline
	//   - error: error if shader module or pipeline creation fails
	CreateRenderPipeline(device Device, desc RenderPipelineDescriptor) (PipelineHandle, error)

	// BeginFrame acquires the current presentable view and opens a render pass
	// that clears it to the given color.
	//
	// Parameters:
	//   - clear: the clear color for this frame
	//
	// Returns:
	//   - Frame: the open frame
	//   - error: error if the view could not be acquired
	BeginFrame(clear gputypes.Color) (Frame, error)

	// Submit ends the pass, submits the recorded commands and presents the frame.
	//
	// Parameters:
	//   - frame: the frame returned by BeginFrame
	//
	// Returns:
	//   - error: error if encoding or submission fails
	Submit(frame Frame) error

	// Release frees the surface, device, adapter and instance. Safe to call more than once.
	Release()
}

// PresentationContext is the configured binding between a device and the surface.
type PresentationContext struct {
	Device      Device
	Format      gputypes.TextureFormat
	AlphaMode   gputypes.CompositeAlphaMode
	PresentMode gputypes.PresentMode
	Width       int
	Height      int
}

// Configuration returns the SurfaceConfiguration the context was configured with.
func (p PresentationContext) Configuration() SurfaceConfiguration {
	return SurfaceConfiguration{
		Format:      p.Format,
		AlphaMode:   p.AlphaMode,
		PresentMode: p.PresentMode,
		Width:       p.Width,
		Height:      p.Height,
	}
}

// ParsePresentMode maps a configuration string onto a present mode.
// "vsync" and "fifo" select FIFO presentation, "uncapped" and "immediate" select immediate,
// "relaxed" selects FIFO relaxed.
//
// Parameters:
//   - s: the configured value (case-insensitive)
//
// Returns:
//   - gputypes.PresentMode: the matching present mode
//   - error: error if the value is not recognized
func ParsePresentMode(s string) (gputypes.PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vsync", "fifo":
		return gputypes.PresentModeFifo, nil
	case "relaxed", "fifo-relaxed":
		return gputypes.PresentModeFifoRelaxed, nil
	case "uncapped", "immediate":
		return gputypes.PresentModeImmediate, nil
	case "mailbox":
		return gputypes.PresentModeMailbox, nil
	default:
		return gputypes.PresentModeUndefined, fmt.Errorf("unknown present mode %q", s)
	}
}
