package headless

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

const bytesPerPixel = 4

// Snapshot copies the current contents of the offscreen target back to the CPU.
//
// Parameters:
//   - ctx: bounds the wait for the readback mapping
//
// Returns:
//   - *image.NRGBA: the last rendered frame
//   - error: error if nothing is configured or the readback fails
func (b *Backend) Snapshot(ctx context.Context) (*image.NRGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.target == nil {
		return nil, errNotConfigured
	}

	width, height := uint32(b.config.Width), uint32(b.config.Height)
	// copy rows must be 256-byte aligned
	bytesPerRow := align(width*bytesPerPixel, 256)
	size := uint64(bytesPerRow) * uint64(height)

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "readback"})
	if err != nil {
		return nil, err
	}
	encoder.CopyTextureToBuffer(b.target, staging, []wgpu.BufferTextureCopy{
		{
			BufferLayout: wgpu.ImageDataLayout{
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
			TextureBase: wgpu.ImageCopyTexture{Texture: b.target},
			Size:        wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		},
	})
	cmd, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()
	if _, err := b.device.Queue().Submit(cmd); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	if err := staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map staging: %w", err)
	}
	rng, err := staging.MappedRange(0, size)
	if err != nil {
		_ = staging.Unmap()
		return nil, fmt.Errorf("mapped range: %w", err)
	}
	img := toImage(rng.Bytes(), int(width), int(height), int(bytesPerRow), b.config.Format == gputypes.TextureFormatBGRA8Unorm)
	if err := staging.Unmap(); err != nil {
		return nil, fmt.Errorf("unmap: %w", err)
	}
	return img, nil
}

// WriteSnapshot reads back the last frame and writes it to path as a PNG.
//
// Parameters:
//   - ctx: bounds the readback
//   - path: destination file
//
// Returns:
//   - error: error if the readback or the write fails
func (b *Backend) WriteSnapshot(ctx context.Context, path string) error {
	img, err := b.Snapshot(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}

// toImage copies padded rows into an image, swapping red and blue when bgra is set.
func toImage(pixels []byte, width, height, stride int, bgra bool) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		row := pixels[y*stride : y*stride+width*bytesPerPixel]
		dst := img.Pix[y*img.Stride : y*img.Stride+width*bytesPerPixel]
		copy(dst, row)
		if bgra {
			for x := 0; x < len(dst); x += bytesPerPixel {
				dst[x], dst[x+2] = dst[x+2], dst[x]
			}
		}
	}
	return img
}

func align(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}
