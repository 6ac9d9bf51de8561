package pipeline

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// State describes everything a backend needs to build a render pipeline for one effect draw.
type State struct {
	// Label is a debug label forwarded to the backend.
	Label string

	// Effect is the compiled effect the pipeline runs. A nil effect cannot be compiled.
	Effect *renderer.EffectBytecode

	PrimitiveType renderer.PrimitiveType
	// InputElements is the vertex layout consumed by the pipeline. Empty for full-screen draws.
	InputElements renderer.VertexLayout

	BlendState        renderer.BlendState
	RasterizerState   renderer.RasterizerState
	DepthStencilState renderer.DepthStencilState

	// RenderTargetFormat is the format of the single color target.
	RenderTargetFormat renderer.PixelFormat
	// DepthStencilFormat is the format of the depth buffer, or PixelFormatUndefined when none is bound.
	DepthStencilFormat renderer.PixelFormat
}

// Key is the value-comparable identity of a State. Two states with equal keys build identical pipelines.
type Key struct {
	Effect             renderer.EffectIdentity
	PrimitiveType      renderer.PrimitiveType
	LayoutHash         uint64
	BlendState         renderer.BlendState
	RasterizerState    renderer.RasterizerState
	DepthStencilState  renderer.DepthStencilState
	RenderTargetFormat renderer.PixelFormat
	DepthStencilFormat renderer.PixelFormat
}

// Key computes the identity of s.
func (s *State) Key() Key {
	return Key{
		Effect:             s.Effect.Identity(),
		PrimitiveType:      s.PrimitiveType,
		LayoutHash:         s.InputElements.Hash(),
		BlendState:         s.BlendState,
		RasterizerState:    s.RasterizerState,
		DepthStencilState:  s.DepthStencilState,
		RenderTargetFormat: s.RenderTargetFormat,
		DepthStencilFormat: s.DepthStencilFormat,
	}
}

// Compiler turns a State description into a backend pipeline.
type Compiler interface {
	// CompilePipeline builds the backend pipeline described by state.
	//
	// Parameters:
	//   - state: the pipeline description
	//
	// Returns:
	//   - renderer.PipelineState: the compiled pipeline
	//   - error: an error if the effect is missing or the backend rejects the description
	CompilePipeline(state *State) (renderer.PipelineState, error)
}
