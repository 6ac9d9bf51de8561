package fog

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
)

const (
	passFrontFaces = iota
	passBackFaces
	passCount
)

var (
	// frontFaceBlend keeps the nearest front-face depth in the red channel.
	frontFaceBlend = renderer.BlendState{
		Enabled:   true,
		Color:     renderer.BlendComponent{SrcFactor: renderer.BlendFactorOne, DstFactor: renderer.BlendFactorOne, Operation: renderer.BlendOperationMin},
		Alpha:     renderer.BlendComponent{SrcFactor: renderer.BlendFactorOne, DstFactor: renderer.BlendFactorOne, Operation: renderer.BlendOperationMin},
		WriteMask: renderer.ColorWriteMaskRed,
	}

	// backFaceBlend keeps the farthest back-face depth in the green channel.
	backFaceBlend = renderer.BlendState{
		Enabled:   true,
		Color:     renderer.BlendComponent{SrcFactor: renderer.BlendFactorOne, DstFactor: renderer.BlendFactorOne, Operation: renderer.BlendOperationMax},
		Alpha:     renderer.BlendComponent{SrcFactor: renderer.BlendFactorOne, DstFactor: renderer.BlendFactorOne, Operation: renderer.BlendOperationMax},
		WriteMask: renderer.ColorWriteMaskGreen,
	}
)

// pipelineStateCache holds the two min/max pass pipelines and tracks when they need rebuilding.
type pipelineStateCache struct {
	passes [passCount]*pipeline.MutableState
	dirty  [passCount]bool

	effect    renderer.EffectIdentity
	format    renderer.PixelFormat
	hasEffect bool
}

func newPipelineStateCache(compiler pipeline.Compiler, label string) *pipelineStateCache {
	c := &pipelineStateCache{}
	c.passes[passFrontFaces] = pipeline.NewMutableState(compiler,
		pipeline.WithLabel(label+"/front"),
		pipeline.WithBlendState(frontFaceBlend),
		pipeline.WithRasterizerState(renderer.RasterizerState{CullMode: renderer.CullModeBack, FrontFace: renderer.FrontFaceCCW}),
		pipeline.WithDepthStencilState(renderer.DepthStencilNone),
	)
	c.passes[passBackFaces] = pipeline.NewMutableState(compiler,
		pipeline.WithLabel(label+"/back"),
		pipeline.WithBlendState(backFaceBlend),
		pipeline.WithRasterizerState(renderer.RasterizerState{CullMode: renderer.CullModeFront, FrontFace: renderer.FrontFaceCCW}),
		pipeline.WithDepthStencilState(renderer.DepthStencilNone),
	)
	c.dirty = [passCount]bool{true, true}
	return c
}

// setEffect points both passes at bytecode and the render target format, dropping pipelines built for
// anything else.
func (c *pipelineStateCache) setEffect(bytecode *renderer.EffectBytecode, format renderer.PixelFormat) {
	id := bytecode.Identity()
	if c.hasEffect && id == c.effect && format == c.format {
		return
	}
	effectChanged := !c.hasEffect || id != c.effect
	for i, p := range c.passes {
		p.State.Effect = bytecode
		p.State.RenderTargetFormat = format
		if effectChanged {
			p.Reset()
		}
		c.dirty[i] = true
	}
	c.effect, c.format, c.hasEffect = id, format, true
}

// bindDraw records the topology and vertex layout of draw on a pass.
func (c *pipelineStateCache) bindDraw(pass int, draw *model.MeshDraw) {
	s := &c.passes[pass].State
	if s.PrimitiveType != draw.PrimitiveType {
		s.PrimitiveType = draw.PrimitiveType
		c.dirty[pass] = true
	}
	if s.InputElements == nil || s.InputElements.Hash() != draw.LayoutHash() {
		s.InputElements = draw.Layout()
		c.dirty[pass] = true
	}
}

// current returns the pipeline of a pass, rebuilding it first when dirty.
func (c *pipelineStateCache) current(pass int) (renderer.PipelineState, error) {
	if c.dirty[pass] {
		if err := c.passes[pass].Update(); err != nil {
			return nil, err
		}
		c.dirty[pass] = false
	}
	return c.passes[pass].CurrentState(), nil
}

// compiles returns the number of pipelines compiled across both passes.
func (c *pipelineStateCache) compiles() int {
	n := 0
	for _, p := range c.passes {
		n += p.Compiles()
	}
	return n
}

func (c *pipelineStateCache) reset() {
	for i, p := range c.passes {
		p.Reset()
		c.dirty[i] = true
	}
	c.hasEffect = false
}
