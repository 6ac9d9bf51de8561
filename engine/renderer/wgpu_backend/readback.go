package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// copyRowAlignment is the required bytesPerRow alignment of texture to buffer copies.
const copyRowAlignment = 256

// readbackLayout returns the unpadded and padded row sizes of a width x bytesPerPixel image.
func readbackLayout(width, bytesPerPixel int) (rowBytes, paddedRowBytes int) {
	rowBytes = width * bytesPerPixel
	paddedRowBytes = (rowBytes + copyRowAlignment - 1) / copyRowAlignment * copyRowAlignment
	return rowBytes, paddedRowBytes
}

// unpadRows strips the row padding of a mapped readback buffer.
func unpadRows(mapped []byte, rowBytes, paddedRowBytes, height int) []byte {
	out := make([]byte, rowBytes*height)
	for y := range height {
		copy(out[y*rowBytes:(y+1)*rowBytes], mapped[y*paddedRowBytes:y*paddedRowBytes+rowBytes])
	}
	return out
}

func (b *backend) ReadTexture(t renderer.Texture) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := textureOf(t)
	if err != nil {
		return nil, err
	}
	if tex.texture == nil {
		return nil, fmt.Errorf("texture %q is a borrowed view and cannot be read", tex.label)
	}
	bpp := tex.format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("texture %q has format %v without a CPU layout", tex.label, tex.format)
	}

	rowBytes, paddedRowBytes := readbackLayout(tex.width, bpp)
	size := uint64(paddedRowBytes * tex.height)

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: tex.label + " readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readback buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	defer encoder.Release()

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: tex.texture, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{
				BytesPerRow:  uint32(paddedRowBytes),
				RowsPerImage: uint32(tex.height),
			},
		},
		&wgpu.Extent3D{Width: uint32(tex.width), Height: uint32(tex.height), DepthOrArrayLayers: 1},
	)
	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finish readback: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	done := false
	var status wgpu.BufferMapAsyncStatus
	if err := staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	}); err != nil {
		return nil, fmt.Errorf("failed to map readback buffer: %w", err)
	}
	for !done {
		b.device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, errors.New("readback buffer mapping failed")
	}
	defer staging.Unmap()

	mapped := staging.GetMappedRange(0, uint(size))
	return unpadRows(mapped, rowBytes, paddedRowBytes, tex.height), nil
}
