package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// uniformAlignment is the WebGPU default minUniformBufferOffsetAlignment.
	uniformAlignment        = 256
	defaultUniformChunkSize = 64 * 1024
)

// uniformChunk is a uniform buffer that parameter blocks of one frame are sub-allocated from.
// The CPU copy is uploaded in one write when the frame ends.
type uniformChunk struct {
	buffer *wgpu.Buffer
	data   []byte
	used   int
}

type renderTargets struct {
	depth renderer.Texture
	color renderer.Texture
}

// commandList records one frame into a command encoder. Render passes are opened lazily by the
// first draw after a target change and closed when the targets change, a clear or copy is
// recorded, or the frame ends.
type commandList struct {
	b       *backend
	encoder *wgpu.CommandEncoder

	pass        *wgpu.RenderPassEncoder
	passTargets renderTargets
	targets     renderTargets

	pipeline      *pipelineState
	vertexBuffers map[int]renderer.VertexBufferBinding
	indexBuffer   *renderer.IndexBufferBinding

	bindGroup     *wgpu.BindGroup
	dynamicOffset uint32
	bindGroups    []*wgpu.BindGroup
	chunk         int
}

var (
	_ renderer.CommandList   = &commandList{}
	_ renderer.TextureCopier = &commandList{}
)

func newCommandList(b *backend, encoder *wgpu.CommandEncoder) *commandList {
	for _, c := range b.uniformChunks {
		c.used = 0
	}
	return &commandList{
		b:             b,
		encoder:       encoder,
		vertexBuffers: make(map[int]renderer.VertexBufferBinding),
	}
}

func textureOf(t renderer.Texture) (*texture, error) {
	tex, ok := t.(*texture)
	if !ok || tex.view == nil {
		return nil, fmt.Errorf("texture %v was not created by the wgpu backend", t)
	}
	return tex, nil
}

func (c *commandList) endPass() {
	if c.pass == nil {
		return
	}
	c.pass.End()
	c.pass.Release()
	c.pass = nil
}

func (c *commandList) Clear(target renderer.Texture, color renderer.Color4) {
	tex, err := textureOf(target)
	if err != nil {
		c.b.logger.Error("cannot clear texture", "err", err)
		return
	}
	c.endPass()

	desc := &wgpu.RenderPassDescriptor{}
	if tex.format.IsDepth() {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            tex.view,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: float32(color.R),
		}
	} else {
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{
			{
				View:       tex.view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: color.R, G: color.G, B: color.B, A: color.A},
			},
		}
	}
	pass := c.encoder.BeginRenderPass(desc)
	pass.End()
	pass.Release()
}

func (c *commandList) SetRenderTargetAndViewport(depthStencil, target renderer.Texture) {
	next := renderTargets{depth: depthStencil, color: target}
	if c.pass != nil && next != c.passTargets {
		c.endPass()
	}
	c.targets = next
}

func (c *commandList) PushRenderTargets() func() {
	saved := c.targets
	return func() {
		c.SetRenderTargetAndViewport(saved.depth, saved.color)
	}
}

func (c *commandList) RenderTargetFormat() renderer.PixelFormat {
	if c.targets.color == nil {
		return renderer.PixelFormatUndefined
	}
	return c.targets.color.Format()
}

func (c *commandList) SetPipelineState(state renderer.PipelineState) {
	p, ok := state.(*pipelineState)
	if !ok {
		c.b.logger.Error("pipeline state was not compiled by the wgpu backend", "label", state.Label())
		return
	}
	c.pipeline = p
}

func (c *commandList) SetVertexBuffer(slot int, binding renderer.VertexBufferBinding) {
	c.vertexBuffers[slot] = binding
}

func (c *commandList) SetIndexBuffer(binding renderer.IndexBufferBinding) {
	c.indexBuffer = &binding
}

// allocateUniforms reserves size bytes of uniform storage for the current frame.
func (c *commandList) allocateUniforms(size int) (*uniformChunk, int, error) {
	chunkSize := int(c.b.uniformChunkSize)
	if size > chunkSize {
		return nil, 0, fmt.Errorf("uniform block of %d bytes exceeds the chunk size %d", size, chunkSize)
	}

	for ; c.chunk < len(c.b.uniformChunks); c.chunk++ {
		chunk := c.b.uniformChunks[c.chunk]
		offset := (chunk.used + uniformAlignment - 1) / uniformAlignment * uniformAlignment
		if offset+size <= len(chunk.data) {
			chunk.used = offset + size
			return chunk, offset, nil
		}
	}

	buf, err := c.b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("uniform chunk %d", len(c.b.uniformChunks)),
		Size:  uint64(chunkSize),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create uniform chunk: %w", err)
	}
	chunk := &uniformChunk{buffer: buf, data: make([]byte, chunkSize), used: size}
	c.b.uniformChunks = append(c.b.uniformChunks, chunk)
	c.chunk = len(c.b.uniformChunks) - 1
	return chunk, 0, nil
}

func (c *commandList) ApplyParameters(bytecode *renderer.EffectBytecode, params *renderer.ParameterCollection) error {
	if bytecode == nil {
		return errors.New("no effect to apply parameters to")
	}
	if c.pipeline == nil || c.pipeline.bytecode.Identity() != bytecode.Identity() {
		return fmt.Errorf("effect %q applied without a matching pipeline", bytecode.Name)
	}

	entries := make([]wgpu.BindGroupEntry, 0, 1+len(bytecode.Textures))
	var dynamicOffset uint32
	if size := c.pipeline.uniformSize; len(bytecode.Uniforms) > 0 {
		chunk, offset, err := c.allocateUniforms(size)
		if err != nil {
			return err
		}
		if _, err := renderer.PackUniforms(chunk.data[offset:offset+size:offset+size], bytecode.Uniforms, params); err != nil {
			return fmt.Errorf("failed to pack parameters of %q: %w", bytecode.Name, err)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uniformBinding,
			Buffer:  chunk.buffer,
			Offset:  0,
			Size:    uint64(size),
		})
		dynamicOffset = uint32(offset)
	}

	for _, binding := range bytecode.Textures {
		t, ok := params.Texture(binding.Slot)
		if !ok {
			return fmt.Errorf("effect %q has no texture in slot %d", bytecode.Name, binding.Slot)
		}
		tex, err := textureOf(t)
		if err != nil {
			return err
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(textureBindingBase + binding.Slot),
			TextureView: tex.view,
		})
	}

	bindGroup, err := c.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   bytecode.Name + " Bind Group",
		Layout:  c.pipeline.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group for %q: %w", bytecode.Name, err)
	}
	c.bindGroups = append(c.bindGroups, bindGroup)
	c.bindGroup = bindGroup
	c.dynamicOffset = dynamicOffset
	return nil
}

// prepareDraw opens the render pass when needed and binds the current state.
func (c *commandList) prepareDraw() bool {
	if c.pipeline == nil {
		c.b.logger.Error("draw without a pipeline")
		return false
	}
	if c.pass == nil {
		if err := c.beginPass(); err != nil {
			c.b.logger.Error("cannot open render pass", "err", err)
			return false
		}
	}

	c.pass.SetPipeline(c.pipeline.pipeline)
	if c.bindGroup != nil {
		var offsets []uint32
		if len(c.pipeline.bytecode.Uniforms) > 0 {
			offsets = []uint32{c.dynamicOffset}
		}
		c.pass.SetBindGroup(0, c.bindGroup, offsets)
	}
	for slot, vb := range c.vertexBuffers {
		buf, ok := vb.Buffer.(*buffer)
		if !ok {
			continue
		}
		c.pass.SetVertexBuffer(uint32(slot), buf.buffer, vb.Offset, wgpu.WholeSize)
	}
	return true
}

func (c *commandList) beginPass() error {
	desc := &wgpu.RenderPassDescriptor{}
	var width, height int

	if c.targets.color != nil {
		tex, err := textureOf(c.targets.color)
		if err != nil {
			return err
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{
			{
				View:    tex.view,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		}
		width, height = tex.width, tex.height
	}
	if c.targets.depth != nil {
		tex, err := textureOf(c.targets.depth)
		if err != nil {
			return err
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:         tex.view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if width == 0 {
			width, height = tex.width, tex.height
		}
	}
	if width == 0 || height == 0 {
		return errors.New("no render target bound")
	}

	c.pass = c.encoder.BeginRenderPass(desc)
	c.pass.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	c.passTargets = c.targets
	return nil
}

func (c *commandList) Draw(vertexCount, startVertex uint32) {
	if !c.prepareDraw() {
		return
	}
	c.pass.Draw(vertexCount, 1, startVertex, 0)
}

func (c *commandList) DrawIndexed(indexCount, startIndex uint32) {
	if c.indexBuffer == nil {
		c.b.logger.Error("indexed draw without an index buffer")
		return
	}
	ib, ok := c.indexBuffer.Buffer.(*buffer)
	if !ok || !c.prepareDraw() {
		return
	}
	c.pass.SetIndexBuffer(ib.buffer, indexFormat(c.indexBuffer.Format), c.indexBuffer.Offset, wgpu.WholeSize)
	c.pass.DrawIndexed(indexCount, 1, startIndex, 0, 0)
}

func (c *commandList) CopyTexture(src, dst renderer.Texture) error {
	from, err := textureOf(src)
	if err != nil {
		return err
	}
	to, err := textureOf(dst)
	if err != nil {
		return err
	}
	if from.width != to.width || from.height != to.height || from.format != to.format {
		return fmt.Errorf("cannot copy %dx%d %v into %dx%d %v", from.width, from.height, from.format, to.width, to.height, to.format)
	}
	if from.texture == nil || to.texture == nil {
		return errors.New("cannot copy a borrowed texture view")
	}

	c.endPass()
	c.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{Texture: from.texture, Aspect: wgpu.TextureAspectAll},
		&wgpu.ImageCopyTexture{Texture: to.texture, Aspect: wgpu.TextureAspectAll},
		&wgpu.Extent3D{Width: uint32(from.width), Height: uint32(from.height), DepthOrArrayLayers: 1},
	)
	return nil
}

// flushUniforms uploads the parameter blocks written this frame.
func (c *commandList) flushUniforms() {
	for _, chunk := range c.b.uniformChunks {
		if chunk.used == 0 {
			continue
		}
		n := (chunk.used + 3) / 4 * 4
		c.b.queue.WriteBuffer(chunk.buffer, 0, chunk.data[:n])
	}
}

func (c *commandList) release() {
	c.endPass()
	for _, bg := range c.bindGroups {
		bg.Release()
	}
	c.bindGroups = nil
	c.bindGroup = nil
}
