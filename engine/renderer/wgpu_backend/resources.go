package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// texture is a wgpu texture together with the default view used for binding and rendering.
type texture struct {
	label  string
	width  int
	height int
	format renderer.PixelFormat

	texture *wgpu.Texture
	view    *wgpu.TextureView
	owned   bool
}

var _ renderer.Texture = &texture{}

// WrapTextureView exposes a view owned elsewhere, such as a swap chain image, as a renderer.Texture.
// Releasing the wrapper does not release the view.
//
// Parameters:
//   - view: the texture view
//   - width: the width of the viewed texture
//   - height: the height of the viewed texture
//   - format: the format of the view
//   - label: a debug label
//
// Returns:
//   - renderer.Texture: the wrapper
func WrapTextureView(view *wgpu.TextureView, width, height int, format wgpu.TextureFormat, label string) renderer.Texture {
	return &texture{
		label:  label,
		width:  width,
		height: height,
		format: pixelFormat(format),
		view:   view,
	}
}

func (t *texture) Width() int {
	return t.width
}

func (t *texture) Height() int {
	return t.height
}

func (t *texture) Format() renderer.PixelFormat {
	return t.format
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Release() {
	if !t.owned {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// buffer is a wgpu buffer with its size.
type buffer struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
}

var _ renderer.Buffer = &buffer{}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Label() string {
	return b.label
}

func (b *buffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// pipelineState is a compiled render pipeline and the bind group layout of its effect.
type pipelineState struct {
	label       string
	pipeline    *wgpu.RenderPipeline
	layout      *wgpu.BindGroupLayout
	bytecode    *renderer.EffectBytecode
	uniformSize int
}

var _ renderer.PipelineState = &pipelineState{}

func (p *pipelineState) Label() string {
	return p.label
}
