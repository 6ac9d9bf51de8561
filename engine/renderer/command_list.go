package renderer

// Color4 is a linear RGBA color.
type Color4 struct {
	R, G, B, A float64
}

// CommandList records GPU work for one frame on the render thread.
// Render passes are opened and closed by the implementation as targets change.
type CommandList interface {
	// Clear fills target with color. The currently bound render targets are left untouched.
	//
	// Parameters:
	//   - target: the texture to clear
	//   - color: the clear color
	Clear(target Texture, color Color4)

	// SetRenderTargetAndViewport binds target as the single color output (and depthStencil, which may be nil)
	// and sets the viewport to cover the whole target.
	//
	// Parameters:
	//   - depthStencil: an optional depth buffer
	//   - target: the color target
	SetRenderTargetAndViewport(depthStencil, target Texture)

	// PushRenderTargets saves the current render target binding and returns a function that restores it.
	//
	// Returns:
	//   - func(): restores the saved binding
	PushRenderTargets() func()

	// RenderTargetFormat returns the pixel format of the bound color target, or PixelFormatUndefined.
	RenderTargetFormat() PixelFormat

	// SetPipelineState selects the pipeline used by subsequent draws.
	SetPipelineState(state PipelineState)

	// SetVertexBuffer binds a vertex buffer to slot.
	SetVertexBuffer(slot int, binding VertexBufferBinding)

	// SetIndexBuffer binds the index buffer used by DrawIndexed.
	SetIndexBuffer(binding IndexBufferBinding)

	// ApplyParameters uploads the uniform block and binds the texture inputs declared by bytecode.
	//
	// Parameters:
	//   - bytecode: the effect the parameters belong to
	//   - params: the values to apply
	//
	// Returns:
	//   - error: an error if the parameters cannot be packed or bound
	ApplyParameters(bytecode *EffectBytecode, params *ParameterCollection) error

	// Draw issues a non-indexed draw.
	Draw(vertexCount, startVertex uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, startIndex uint32)
}
