package headless

import (
	"strings"

	"github.com/gogpu/wgpu"
)

// BackendOption is a functional option for configuring a headless Backend.
type BackendOption func(*Backend)

// WithBackends restricts which native APIs the instance may use.
//
// Parameters:
//   - backends: the allowed APIs (default wgpu.BackendsAll)
//
// Returns:
//   - BackendOption: option function to apply
func WithBackends(backends wgpu.Backends) BackendOption {
	return func(b *Backend) {
		b.backends = backends
	}
}

// ParseBackends maps a graphics API name onto the matching backend set.
// Unknown or empty names select every backend.
//
// Parameters:
//   - name: "vulkan", "metal", "dx12", "gl" or empty
//
// Returns:
//   - wgpu.Backends: the backend set
func ParseBackends(name string) wgpu.Backends {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vulkan", "vk":
		return wgpu.BackendsVulkan
	case "metal":
		return wgpu.BackendsMetal
	case "dx12", "d3d12":
		return wgpu.BackendsDX12
	case "gl", "gles":
		return wgpu.BackendsGL
	default:
		return wgpu.BackendsAll
	}
}
