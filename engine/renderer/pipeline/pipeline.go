package pipeline

import (
	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/gogpu/gputypes"
)

// pipeline is the implementation of the Pipeline interface.
// It is immutable once built; only Release mutates it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used as its debug label
	pipelineKey string

	vertexShader, fragmentShader shader.Shader

	format    gputypes.TextureFormat
	primitive gputypes.PrimitiveState

	// handle is the backend render pipeline
	handle gpu.PipelineHandle
}

// Pipeline is a built render pipeline: a vertex and fragment stage bound to one output format.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader for the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Format returns the color target format the pipeline renders into.
	//
	// Returns:
	//   - gputypes.TextureFormat: the presentation format
	Format() gputypes.TextureFormat

	// Topology returns the primitive topology. Always a triangle list.
	//
	// Returns:
	//   - gputypes.PrimitiveTopology: the primitive topology for this pipeline
	Topology() gputypes.PrimitiveTopology

	// CullMode returns the configured cull mode.
	//
	// Returns:
	//   - gputypes.CullMode: the cull mode for this pipeline
	CullMode() gputypes.CullMode

	// Handle returns the backend pipeline to bind during a frame.
	//
	// Returns:
	//   - gpu.PipelineHandle: the backend handle
	Handle() gpu.PipelineHandle

	// Release frees the backend pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Format() gputypes.TextureFormat {
	return p.format
}

func (p *pipeline) Topology() gputypes.PrimitiveTopology {
	return p.primitive.Topology
}

func (p *pipeline) CullMode() gputypes.CullMode {
	return p.primitive.CullMode
}

func (p *pipeline) Handle() gpu.PipelineHandle {
	return p.handle
}

func (p *pipeline) Release() {
	if p.handle != nil {
		p.handle.Release()
		p.handle = nil
	}
}
