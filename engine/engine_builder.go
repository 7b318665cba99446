package engine

import (
	"time"

	"github.com/gogpu/gputypes"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables memory profiling output each time the frame rate is published.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTitle sets the application name shown at the start of the host title.
//
// Parameters:
//   - name: the application name (default "Apiary")
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTitle(name string) EngineBuilderOption {
	return func(e *engine) {
		if name != "" {
			e.name = name
		}
	}
}

// WithAutoplay controls whether playback starts as soon as the pipeline is ready.
//
// Parameters:
//   - enabled: start playing on Ready (default true)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAutoplay(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.autoplay = enabled
	}
}

// WithReconfigureOnResize controls whether the presentation context follows surface resizes.
// When disabled the context keeps its initial size and the compositor scales the output.
//
// Parameters:
//   - enabled: reconfigure on resize (default true)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithReconfigureOnResize(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.reconfigureOnResize = enabled
	}
}

// WithShaderSources replaces the built-in triangle shaders. Empty strings keep the built-in stage.
//
// Parameters:
//   - vertex: WGSL source for the vertex stage
//   - fragment: WGSL source for the fragment stage
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderSources(vertex, fragment string) EngineBuilderOption {
	return func(e *engine) {
		if vertex != "" {
			e.vertexSource = vertex
		}
		if fragment != "" {
			e.fragmentSource = fragment
		}
	}
}

// WithShaderValidation runs the WGSL validator during pipeline builds and logs its findings.
//
// Parameters:
//   - enabled: run validation
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithShaderValidation(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.validateShaders = enabled
	}
}

// WithPresentMode sets the present mode requested when the surface is configured.
//
// Parameters:
//   - mode: the present mode (default Fifo)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPresentMode(mode gputypes.PresentMode) EngineBuilderOption {
	return func(e *engine) {
		e.presentMode = mode
	}
}

// WithForceSoftwareRenderer requests a fallback adapter during initialization.
//
// Parameters:
//   - force: request a software adapter
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) EngineBuilderOption {
	return func(e *engine) {
		e.forceFallback = force
	}
}

// WithDropHandler sets the function called with the paths of files dropped onto the surface.
//
// Parameters:
//   - fn: the drop handler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDropHandler(fn func(paths []string)) EngineBuilderOption {
	return func(e *engine) {
		if fn != nil {
			e.onDrop = fn
		}
	}
}

// WithFrameCallback sets a function called after every rendered frame with its index.
//
// Parameters:
//   - fn: the frame callback
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(fn func(frameIndex uint64)) EngineBuilderOption {
	return func(e *engine) {
		e.onFrame = fn
	}
}

// WithOnPlay sets a hook called on the loop goroutine each time playback starts.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOnPlay(fn func()) EngineBuilderOption {
	return func(e *engine) {
		e.onPlay = fn
	}
}

// WithOnPause sets a hook called each time playback pauses, including the pause done by Unmount.
//
// Parameters:
//   - fn: the hook
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithOnPause(fn func()) EngineBuilderOption {
	return func(e *engine) {
		e.onPause = fn
	}
}

// WithNow sets the time source used when playback starts.
//
// Parameters:
//   - now: the time source (default time.Now)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithNow(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
