package renderer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/renderer/pipeline"
	"github.com/gogpu/gputypes"
)

// triangleVertexCount is the number of vertices produced by the vertex shader.
const triangleVertexCount = 3

// renderer implements the Renderer interface on top of a gpu.Backend.
type renderer struct {
	mu       sync.RWMutex
	backend  gpu.Backend
	pipeline pipeline.Pipeline
	rendered uint64
}

// Renderer records and submits one frame per call: a clear to an animated color and,
// once a pipeline is bound, a single non-indexed three-vertex draw.
type Renderer interface {
	// Draw renders a single frame.
	// Without a bound pipeline the frame is cleared only; that is not an error.
	//
	// Parameters:
	//   - delta: time since the previous frame
	//   - frameIndex: the scheduler's monotonic frame counter, drives the clear color
	//
	// Returns:
	//   - error: gpu.ErrFrameAcquire or gpu.ErrSubmit wrapping the backend failure
	Draw(delta time.Duration, frameIndex uint64) error

	// SetPipeline binds the pipeline used by subsequent frames. Nil unbinds it.
	//
	// Parameters:
	//   - p: the pipeline to bind
	SetPipeline(p pipeline.Pipeline)

	// Pipeline returns the bound pipeline, or nil.
	//
	// Returns:
	//   - pipeline.Pipeline: the bound pipeline
	Pipeline() pipeline.Pipeline

	// Rendered returns the number of frames successfully submitted.
	//
	// Returns:
	//   - uint64: submitted frame count
	Rendered() uint64
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer that records frames on backend.
//
// Parameters:
//   - backend: the GPU backend to record and submit frames with
//   - options: functional options applied in order
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(backend gpu.Backend, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backend: backend,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// ClearColor is the animated background for a frame index: each channel is the absolute
// sine of the index over 180, with the green and blue phases shifted by 120 and 240 frames.
//
// Parameters:
//   - frameIndex: the frame counter
//
// Returns:
//   - gputypes.Color: opaque RGBA clear color with channels in [0, 1]
func ClearColor(frameIndex uint64) gputypes.Color {
	f := float64(frameIndex)
	return gputypes.Color{
		R: math.Abs(math.Sin(f / 180)),
		G: math.Abs(math.Sin((f + 120) / 180)),
		B: math.Abs(math.Sin((f + 240) / 180)),
		A: 1,
	}
}

func (r *renderer) Draw(_ time.Duration, frameIndex uint64) error {
	r.mu.RLock()
	p := r.pipeline
	r.mu.RUnlock()

	frame, err := r.backend.BeginFrame(ClearColor(frameIndex))
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrFrameAcquire, err)
	}

	if p != nil && p.Handle() != nil {
		frame.SetPipeline(p.Handle())
		frame.Draw(triangleVertexCount, 1, 0, 0)
	}

	if err := r.backend.Submit(frame); err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrSubmit, err)
	}

	r.mu.Lock()
	r.rendered++
	r.mu.Unlock()
	return nil
}

func (r *renderer) SetPipeline(p pipeline.Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipeline = p
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pipeline
}

func (r *renderer) Rendered() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rendered
}
