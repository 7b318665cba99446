package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/charmbracelet/log"
	"github.com/gogpu/gputypes"
)

// ErrNotReady is returned by Build when the device or the presentation format is missing.
var ErrNotReady = errors.New("pipeline requires a device and a presentation format")

// Builder compiles WGSL stages and creates render pipelines on a backend.
type Builder struct {
	backend   gpu.Backend
	label     string
	validate  bool
	cullMode  gputypes.CullMode
	frontFace gputypes.FrontFace
}

// BuilderOption is a functional option used to configure a Builder during construction.
type BuilderOption func(*Builder)

// NewBuilder creates a Builder that targets backend.
//
// Parameters:
//   - backend: the GPU backend pipelines are created on
//   - opts: a variadic list of BuilderOption functions
//
// Returns:
//   - *Builder: the configured builder
func NewBuilder(backend gpu.Backend, opts ...BuilderOption) *Builder {
	b := &Builder{
		backend:   backend,
		label:     "triangle",
		cullMode:  gputypes.CullModeNone,
		frontFace: gputypes.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithLabel sets the debug label used for the pipeline and its shader stages.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - BuilderOption: a function that sets the label
func WithLabel(label string) BuilderOption {
	return func(b *Builder) {
		b.label = label
	}
}

// WithValidation enables full IR validation of each stage. Findings are logged, not fatal.
//
// Parameters:
//   - enabled: whether to run the validator
//
// Returns:
//   - BuilderOption: a function that sets the validation flag
func WithValidation(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.validate = enabled
	}
}

// WithCullMode sets the cull mode for built pipelines.
//
// Parameters:
//   - mode: the cull mode (gputypes.CullModeNone, gputypes.CullModeFront, gputypes.CullModeBack)
//
// Returns:
//   - BuilderOption: a function that sets the cull mode
func WithCullMode(mode gputypes.CullMode) BuilderOption {
	return func(b *Builder) {
		b.cullMode = mode
	}
}

// Build compiles both stages and creates a triangle-list render pipeline that writes to format.
//
// Parameters:
//   - device: the device from the initializer
//   - format: the presentation format from the initializer
//   - vertexSource: WGSL vertex stage source
//   - fragmentSource: WGSL fragment stage source
//
// Returns:
//   - Pipeline: the built pipeline
//   - error: ErrNotReady, or a *gpu.CompilationError naming the failing stage
func (b *Builder) Build(device gpu.Device, format gputypes.TextureFormat, vertexSource, fragmentSource string) (Pipeline, error) {
	if device == nil || format == gputypes.TextureFormatUndefined {
		return nil, ErrNotReady
	}

	vs, err := b.stage(b.label+".vert", shader.ShaderTypeVertex, vertexSource)
	if err != nil {
		return nil, err
	}
	fs, err := b.stage(b.label+".frag", shader.ShaderTypeFragment, fragmentSource)
	if err != nil {
		return nil, err
	}

	primitive := gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: b.frontFace,
		CullMode:  b.cullMode,
	}

	handle, err := b.backend.CreateRenderPipeline(device, gpu.RenderPipelineDescriptor{
		Label:     b.label,
		Vertex:    gpu.ShaderStage{Label: vs.Key(), Code: vs.Source(), EntryPoint: vs.EntryPoint()},
		Fragment:  gpu.ShaderStage{Label: fs.Key(), Code: fs.Source(), EntryPoint: fs.EntryPoint()},
		Format:    format,
		Primitive: primitive,
	})
	if err != nil {
		return nil, &gpu.CompilationError{Stage: "link", Label: b.label, Err: err}
	}
	if handle == nil {
		return nil, &gpu.CompilationError{Stage: "link", Label: b.label, Err: fmt.Errorf("backend returned no pipeline")}
	}

	log.Debugf("built pipeline %q (vertex %s, fragment %s, format %s)", b.label, vs.EntryPoint(), fs.EntryPoint(), format)

	return &pipeline{
		pipelineKey:    b.label,
		vertexShader:   vs,
		fragmentShader: fs,
		format:         format,
		primitive:      primitive,
		handle:         handle,
	}, nil
}

// stage parses a single WGSL stage and runs it through the front end.
func (b *Builder) stage(key string, shaderType shader.ShaderType, source string) (shader.Shader, error) {
	s, err := shader.NewShader(key, shaderType, source)
	if err != nil {
		return nil, &gpu.CompilationError{Stage: shaderType.String(), Label: key, Err: err}
	}
	if err := compileWGSL(s, b.validate); err != nil {
		return nil, &gpu.CompilationError{Stage: shaderType.String(), Label: key, Err: err}
	}
	return s, nil
}
