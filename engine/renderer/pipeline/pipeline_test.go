package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/gpu/gputest"
	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/gogpu/gputypes"
)

func readyDevice(t *testing.T, backend *gputest.Backend) gpu.Device {
	t.Helper()
	adapter, err := backend.RequestAdapter(t.Context(), gpu.AdapterOptions{})
	if err != nil {
		t.Fatal(err)
	}
	device, err := backend.RequestDevice(t.Context(), adapter)
	if err != nil {
		t.Fatal(err)
	}
	return device
}

func TestBuildTriangle(t *testing.T) {
	backend := gputest.New()
	device := readyDevice(t, backend)

	p, err := NewBuilder(backend).Build(device, gputypes.TextureFormatBGRA8Unorm, shader.TriangleVertexWGSL, shader.RedFragmentWGSL)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(p.Release)

	if p.Topology() != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %v, want TriangleList", p.Topology())
	}
	if p.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v, want BGRA8Unorm", p.Format())
	}
	if p.Handle() == nil {
		t.Fatal("Handle() = nil")
	}

	created := backend.Pipelines()
	if len(created) != 1 {
		t.Fatalf("backend created %d pipelines, want 1", len(created))
	}
	desc := created[0].Desc
	if desc.Vertex.EntryPoint != "main" || desc.Fragment.EntryPoint != "main" {
		t.Errorf("entry points = %q/%q, want main/main", desc.Vertex.EntryPoint, desc.Fragment.EntryPoint)
	}
	if desc.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("descriptor format = %v, want BGRA8Unorm", desc.Format)
	}
	if desc.Primitive.Topology != gputypes.PrimitiveTopologyTriangleList {
		t.Errorf("descriptor topology = %v, want TriangleList", desc.Primitive.Topology)
	}
}

func TestBuildRequiresDeviceAndFormat(t *testing.T) {
	backend := gputest.New()
	device := readyDevice(t, backend)

	tests := []struct {
		name   string
		device gpu.Device
		format gputypes.TextureFormat
		want   bool
	}{
		{"neither", nil, gputypes.TextureFormatUndefined, false},
		{"device only", device, gputypes.TextureFormatUndefined, false},
		{"format only", nil, gputypes.TextureFormatBGRA8Unorm, false},
		{"both", device, gputypes.TextureFormatBGRA8Unorm, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := backend.Count("CreateRenderPipeline")
			p, err := NewBuilder(backend).Build(tt.device, tt.format, shader.TriangleVertexWGSL, shader.RedFragmentWGSL)
			if got := p != nil; got != tt.want {
				t.Errorf("pipeline exists = %v, want %v (err %v)", got, tt.want, err)
			}
			if !tt.want {
				if !errors.Is(err, ErrNotReady) {
					t.Errorf("Build() error = %v, want %v", err, ErrNotReady)
				}
				if backend.Count("CreateRenderPipeline") != before {
					t.Error("backend pipeline created without device and format")
				}
			}
		})
	}
}

func TestBuildCompilationErrors(t *testing.T) {
	backend := gputest.New()
	device := readyDevice(t, backend)

	tests := []struct {
		name      string
		vertex    string
		fragment  string
		wantStage string
	}{
		{"missing vertex entry", shader.RedFragmentWGSL, shader.RedFragmentWGSL, "vertex"},
		{"fragment syntax error", shader.TriangleVertexWGSL, "@fragment fn main( -> @location(0) vec4<f32> {", "fragment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewBuilder(backend).Build(device, gputypes.TextureFormatBGRA8Unorm, tt.vertex, tt.fragment)
			if p != nil {
				t.Error("Build() returned a pipeline for invalid source")
			}
			var ce *gpu.CompilationError
			if !errors.As(err, &ce) {
				t.Fatalf("Build() error = %v, want *gpu.CompilationError", err)
			}
			if ce.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", ce.Stage, tt.wantStage)
			}
			if !errors.Is(err, gpu.ErrCompilation) {
				t.Error("errors.Is(err, gpu.ErrCompilation) = false")
			}
		})
	}
	if n := backend.Count("CreateRenderPipeline"); n != 0 {
		t.Errorf("backend pipeline created %d times for invalid sources, want 0", n)
	}
}

func TestBuildBackendFailureIsLinkError(t *testing.T) {
	backend := gputest.New()
	backend.PipelineErr = errors.New("device lost")
	device := readyDevice(t, backend)

	_, err := NewBuilder(backend, WithLabel("tri")).Build(device, gputypes.TextureFormatRGBA8Unorm, shader.TriangleVertexWGSL, shader.RedFragmentWGSL)
	var ce *gpu.CompilationError
	if !errors.As(err, &ce) {
		t.Fatalf("Build() error = %v, want *gpu.CompilationError", err)
	}
	if ce.Stage != "link" || ce.Label != "tri" {
		t.Errorf("CompilationError = {%q %q}, want {link tri}", ce.Stage, ce.Label)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	backend := gputest.New()
	device := readyDevice(t, backend)

	p, err := NewBuilder(backend).Build(device, gputypes.TextureFormatBGRA8Unorm, shader.TriangleVertexWGSL, shader.RedFragmentWGSL)
	if err != nil {
		t.Fatal(err)
	}
	p.Release()
	p.Release()

	if !backend.Pipelines()[0].Released {
		t.Error("backend pipeline not released")
	}
	if p.Handle() != nil {
		t.Error("Handle() != nil after Release")
	}
}
