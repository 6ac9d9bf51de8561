package effect

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
)

// ImageEffectShader draws a full-screen triangle with a named effect into an output texture.
// The effect's vertex stage is expected to generate the triangle from the vertex index.
type ImageEffectShader struct {
	instance *DynamicEffectInstance
	state    *pipeline.MutableState
	blend    renderer.BlendState
}

// NewImageEffectShader creates a full-screen effect drawer.
//
// Parameters:
//   - name: the registered effect name
//   - library: the library owning the effect
//   - compiler: the backend pipeline compiler
//
// Returns:
//   - *ImageEffectShader: the new drawer, blending opaquely until SetBlendState is called
func NewImageEffectShader(name string, library Library, compiler pipeline.Compiler) *ImageEffectShader {
	return &ImageEffectShader{
		instance: NewDynamicEffectInstance(name, library),
		state: pipeline.NewMutableState(compiler,
			pipeline.WithLabel(name),
			pipeline.WithPrimitiveType(renderer.PrimitiveTypeTriangleList),
			pipeline.WithCullMode(renderer.CullModeNone),
			pipeline.WithDepthStencilState(renderer.DepthStencilNone),
		),
		blend: renderer.BlendStateOpaque,
	}
}

// SetBlendState selects how the effect output is combined with the output texture.
func (s *ImageEffectShader) SetBlendState(b renderer.BlendState) {
	s.blend = b
}

// BlendState returns the blend state used by the next Draw.
func (s *ImageEffectShader) BlendState() renderer.BlendState {
	return s.blend
}

// SetInput binds a texture to an effect input slot.
func (s *ImageEffectShader) SetInput(slot int, t renderer.Texture) {
	s.instance.Parameters().SetTexture(slot, t)
}

// Parameters returns the effect parameters.
func (s *ImageEffectShader) Parameters() *renderer.ParameterCollection {
	return s.instance.Parameters()
}

// Draw renders the effect into output.
// A missing effect or a pipeline that fails to build is not an error; the draw is skipped and Draw
// reports false so that the caller can retry on a later frame.
//
// Parameters:
//   - cl: the command list of the frame
//   - output: the texture to draw into
//
// Returns:
//   - bool: true if a draw was issued
//   - error: an error if the parameters could not be applied
func (s *ImageEffectShader) Draw(cl renderer.CommandList, output renderer.Texture) (bool, error) {
	s.instance.UpdateEffect()
	effect := s.instance.Effect()
	if effect == nil {
		return false, nil
	}

	s.state.State.Effect = effect
	s.state.State.BlendState = s.blend
	s.state.State.RenderTargetFormat = output.Format()
	if err := s.state.Update(); err != nil {
		logging.Named("effect").Warn("image effect pipeline unavailable", "name", s.instance.Name(), "err", err)
		return false, nil
	}

	cl.SetRenderTargetAndViewport(nil, output)
	cl.SetPipelineState(s.state.CurrentState())
	if err := s.instance.Apply(cl); err != nil {
		return false, err
	}
	cl.Draw(3, 0)
	return true, nil
}

// Reset drops compiled pipelines.
func (s *ImageEffectShader) Reset() {
	s.state.Reset()
}
