package shader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedShaders(t *testing.T) {
	tests := []struct {
		name       string
		shaderType ShaderType
		source     string
	}{
		{"triangle.vert", ShaderTypeVertex, TriangleVertexWGSL},
		{"red.frag", ShaderTypeFragment, RedFragmentWGSL},
	}

	for _, tt := range tests {
		s, err := NewShader(tt.name, tt.shaderType, tt.source)
		if err != nil {
			t.Fatalf("NewShader(%s) error = %v", tt.name, err)
		}
		if s.EntryPoint() != "main" {
			t.Errorf("%s EntryPoint() = %q, want %q", tt.name, s.EntryPoint(), "main")
		}
		if s.ShaderType() != tt.shaderType {
			t.Errorf("%s ShaderType() = %v, want %v", tt.name, s.ShaderType(), tt.shaderType)
		}
		if s.Key() != tt.name {
			t.Errorf("Key() = %q, want %q", s.Key(), tt.name)
		}
	}
}

func TestParseEntryPoint(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		shaderType ShaderType
		want       string
	}{
		{
			name:       "vertex",
			source:     "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }",
			shaderType: ShaderTypeVertex,
			want:       "vs_main",
		},
		{
			name:       "fragment on next line",
			source:     "@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(); }",
			shaderType: ShaderTypeFragment,
			want:       "fs_main",
		},
		{
			name:       "line comment ignored",
			source:     "// @vertex fn old()\n@vertex fn current() {}",
			shaderType: ShaderTypeVertex,
			want:       "current",
		},
		{
			name:       "nested block comment ignored",
			source:     "/* outer /* @fragment fn old() */ */ @fragment fn current() {}",
			shaderType: ShaderTypeFragment,
			want:       "current",
		},
		{
			name:       "wrong stage",
			source:     "@fragment fn fs_main() {}",
			shaderType: ShaderTypeVertex,
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseEntryPoint(tt.source, tt.shaderType); got != tt.want {
				t.Errorf("parseEntryPoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewShaderErrors(t *testing.T) {
	if _, err := NewShader("empty", ShaderTypeVertex, ""); err == nil {
		t.Error("NewShader(empty source) error = nil, want error")
	}
	if _, err := NewShader("frag-as-vert", ShaderTypeVertex, RedFragmentWGSL); err == nil {
		t.Error("NewShader(fragment source as vertex) error = nil, want error")
	}
}

func TestLoadAndSourceOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.frag.wgsl")
	if err := os.WriteFile(path, []byte(RedFragmentWGSL), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load("custom", ShaderTypeFragment, path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Source() != RedFragmentWGSL {
		t.Error("Load() source mismatch")
	}

	if _, err := Load("missing", ShaderTypeFragment, filepath.Join(dir, "missing.wgsl")); err == nil {
		t.Error("Load(missing) error = nil, want error")
	}

	got, err := SourceOrDefault("", "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("SourceOrDefault(\"\") = %q, %v, want fallback", got, err)
	}
	got, err = SourceOrDefault(path, "fallback")
	if err != nil || got != RedFragmentWGSL {
		t.Errorf("SourceOrDefault(path) = %q, %v, want file contents", got, err)
	}
}
