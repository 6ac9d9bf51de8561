package pipeline

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// StateBuilderOption is a functional option used to configure a State during construction.
type StateBuilderOption func(*State)

// NewState creates a State with depth testing enabled, back-face culling, opaque blending and a triangle list
// topology, then applies opts.
//
// Parameters:
//   - opts: a variadic list of StateBuilderOption functions to configure the state
//
// Returns:
//   - State: the configured description
func NewState(opts ...StateBuilderOption) State {
	s := State{
		PrimitiveType:     renderer.PrimitiveTypeTriangleList,
		BlendState:        renderer.BlendStateOpaque,
		RasterizerState:   renderer.RasterizerStateCullBack,
		DepthStencilState: renderer.DepthStencilDefault,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLabel sets the debug label of the pipeline.
func WithLabel(label string) StateBuilderOption {
	return func(s *State) {
		s.Label = label
	}
}

// WithEffect sets the compiled effect the pipeline runs.
//
// Parameters:
//   - effect: the compiled effect bytecode
//
// Returns:
//   - StateBuilderOption: a function that sets the effect for this pipeline
func WithEffect(effect *renderer.EffectBytecode) StateBuilderOption {
	return func(s *State) {
		s.Effect = effect
	}
}

// WithPrimitiveType sets the primitive topology.
func WithPrimitiveType(t renderer.PrimitiveType) StateBuilderOption {
	return func(s *State) {
		s.PrimitiveType = t
	}
}

// WithInputElements sets the vertex layout consumed by the pipeline.
func WithInputElements(layout renderer.VertexLayout) StateBuilderOption {
	return func(s *State) {
		s.InputElements = layout
	}
}

// WithBlendState sets the blend configuration of the color target.
//
// Parameters:
//   - b: the blend state, including its write mask
//
// Returns:
//   - StateBuilderOption: a function that sets the blend state for this pipeline
func WithBlendState(b renderer.BlendState) StateBuilderOption {
	return func(s *State) {
		s.BlendState = b
	}
}

// WithRasterizerState sets culling, winding and depth clipping.
func WithRasterizerState(r renderer.RasterizerState) StateBuilderOption {
	return func(s *State) {
		s.RasterizerState = r
	}
}

// WithCullMode sets only the cull mode of the rasterizer state.
func WithCullMode(mode renderer.CullMode) StateBuilderOption {
	return func(s *State) {
		s.RasterizerState.CullMode = mode
	}
}

// WithDepthStencilState sets depth testing and writing.
//
// Parameters:
//   - d: the depth-stencil configuration
//
// Returns:
//   - StateBuilderOption: a function that sets the depth-stencil state for this pipeline
func WithDepthStencilState(d renderer.DepthStencilState) StateBuilderOption {
	return func(s *State) {
		s.DepthStencilState = d
	}
}

// WithRenderTargetFormat sets the color target format.
func WithRenderTargetFormat(f renderer.PixelFormat) StateBuilderOption {
	return func(s *State) {
		s.RenderTargetFormat = f
	}
}

// WithDepthStencilFormat sets the depth buffer format.
func WithDepthStencilFormat(f renderer.PixelFormat) StateBuilderOption {
	return func(s *State) {
		s.DepthStencilFormat = f
	}
}
