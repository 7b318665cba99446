package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// toFormat maps a presentation format onto the native enum.
func toFormat(f gputypes.TextureFormat) (wgpu.TextureFormat, error) {
	switch f {
	case gputypes.TextureFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm, nil
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return wgpu.TextureFormatBGRA8UnormSrgb, nil
	case gputypes.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb, nil
	default:
		return 0, fmt.Errorf("unsupported presentation format %s", f)
	}
}

// fromFormat is the inverse of toFormat. Unknown formats map to Undefined.
func fromFormat(f wgpu.TextureFormat) gputypes.TextureFormat {
	switch f {
	case wgpu.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case wgpu.TextureFormatBGRA8UnormSrgb:
		return gputypes.TextureFormatBGRA8UnormSrgb
	case wgpu.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case wgpu.TextureFormatRGBA8UnormSrgb:
		return gputypes.TextureFormatRGBA8UnormSrgb
	default:
		return gputypes.TextureFormatUndefined
	}
}

// preferredFormat picks the first surface format the engine can present with.
func preferredFormat(formats []wgpu.TextureFormat) gputypes.TextureFormat {
	for _, f := range formats {
		if g := fromFormat(f); g != gputypes.TextureFormatUndefined {
			return g
		}
	}
	return gputypes.TextureFormatUndefined
}

func toPresentMode(m gputypes.PresentMode) wgpu.PresentMode {
	switch m {
	case gputypes.PresentModeImmediate:
		return wgpu.PresentModeImmediate
	case gputypes.PresentModeMailbox:
		return wgpu.PresentModeMailbox
	default:
		return wgpu.PresentModeFifo
	}
}

func toAlphaMode(m gputypes.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	switch m {
	case gputypes.CompositeAlphaModeOpaque:
		return wgpu.CompositeAlphaModeOpaque
	case gputypes.CompositeAlphaModePremultiplied:
		return wgpu.CompositeAlphaModePremultiplied
	default:
		return wgpu.CompositeAlphaModeAuto
	}
}

// pickPresentMode returns want if the surface supports it, otherwise FIFO which every surface supports.
func pickPresentMode(want wgpu.PresentMode, supported []wgpu.PresentMode) wgpu.PresentMode {
	for _, m := range supported {
		if m == want {
			return want
		}
	}
	return wgpu.PresentModeFifo
}

// pickAlphaMode returns want if the surface supports it, otherwise the surface's first mode.
func pickAlphaMode(want wgpu.CompositeAlphaMode, supported []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	for _, m := range supported {
		if m == want {
			return want
		}
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return wgpu.CompositeAlphaModeAuto
}

func toPrimitive(p gputypes.PrimitiveState) (wgpu.PrimitiveState, error) {
	if p.Topology != gputypes.PrimitiveTopologyTriangleList {
		return wgpu.PrimitiveState{}, fmt.Errorf("unsupported primitive topology %v", p.Topology)
	}
	out := wgpu.PrimitiveState{
		Topology:  wgpu.PrimitiveTopologyTriangleList,
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	}
	if p.FrontFace != gputypes.FrontFaceCCW {
		out.FrontFace = wgpu.FrontFaceCW
	}
	switch p.CullMode {
	case gputypes.CullModeNone:
	case gputypes.CullModeBack:
		out.CullMode = wgpu.CullModeBack
	default:
		out.CullMode = wgpu.CullModeFront
	}
	return out, nil
}

func toColor(c gputypes.Color) wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
