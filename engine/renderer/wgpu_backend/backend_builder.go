package wgpu_backend

import "github.com/cogentcore/webgpu/wgpu"

// BackendBuilderOption configures a Backend created by NewBackend.
type BackendBuilderOption func(*backend)

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *backend) {
		b.forceFallbackAdapter = force
	}
}

// WithPresentMode sets the initial present mode.
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(b *backend) {
		b.presentMode = wgpu.PresentModeFifo
		if mode == PresentModeUncapped {
			b.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithHeadlessFormat sets the offscreen color format of a headless backend.
//
// Parameters:
//   - format: the wgpu format of the offscreen target
//
// Returns:
//   - BackendBuilderOption: a function that sets the format
func WithHeadlessFormat(format wgpu.TextureFormat) BackendBuilderOption {
	return func(b *backend) {
		b.surfaceFormat = format
	}
}

// WithUniformChunkSize sets the size of the uniform buffers that parameter blocks are sub-allocated from.
func WithUniformChunkSize(size uint64) BackendBuilderOption {
	return func(b *backend) {
		if size >= uniformAlignment {
			b.uniformChunkSize = size
		}
	}
}
