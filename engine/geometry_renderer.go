package engine

import (
	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// geometryPalette colors visible objects by ID.
var geometryPalette = []mgl32.Vec4{
	{0.55, 0.52, 0.48, 1},
	{0.36, 0.45, 0.52, 1},
	{0.62, 0.42, 0.30, 1},
	{0.40, 0.50, 0.36, 1},
}

// geometryRenderer draws the visible game objects of a scene into the scene color and depth buffers.
// Objects bounding a fog volume only shape the fog and are skipped.
type geometryRenderer struct {
	effect *effect.DynamicEffectInstance
	state  *pipeline.MutableState

	lastDraw uint64
	hasLast  bool

	waiting bool
	logger  *log.Logger
}

func newGeometryRenderer(library effect.Library, compiler pipeline.Compiler) *geometryRenderer {
	return &geometryRenderer{
		effect: effect.NewDynamicEffectInstance(GeometryEffect, library),
		state: pipeline.NewMutableState(compiler,
			pipeline.WithLabel(GeometryEffect),
			pipeline.WithRasterizerState(renderer.RasterizerStateCullBack),
			pipeline.WithDepthStencilState(renderer.DepthStencilDefault),
			pipeline.WithBlendState(renderer.BlendStateOpaque),
		),
		logger: logging.Named("engine"),
	}
}

// isVisibleGeometry reports whether obj is drawn by the geometry pass.
func isVisibleGeometry(obj game_object.GameObject) bool {
	if !obj.Enabled() || obj.Model() == nil {
		return false
	}
	_, bounding := obj.FogVolume()
	return !bounding
}

// Draw records the visible objects.
//
// Parameters:
//   - cl: the command list of the frame
//   - objects: the scene objects
//   - view: the camera of the frame
//   - depth: the scene depth buffer
//   - color: the scene color target
//
// Returns:
//   - int: the number of meshes drawn
func (g *geometryRenderer) Draw(cl renderer.CommandList, objects []game_object.GameObject, view camera.RenderView, depth, color renderer.Texture) int {
	g.effect.UpdateEffect()
	bytecode := g.effect.Effect()
	if bytecode == nil {
		if !g.waiting {
			g.logger.Debug("geometry effect not ready", "name", g.effect.Name())
			g.waiting = true
		}
		return 0
	}
	g.waiting = false

	s := &g.state.State
	s.Effect = bytecode
	s.RenderTargetFormat = color.Format()
	s.DepthStencilFormat = depth.Format()

	cl.SetRenderTargetAndViewport(depth, color)
	viewProjection := view.ViewProjection()
	frustum := common.NewFrustum(viewProjection)
	params := g.effect.Parameters()
	g.hasLast = false
	drawn := 0

	for _, obj := range objects {
		if !isVisibleGeometry(obj) {
			continue
		}
		world := obj.WorldMatrix()
		params.SetMatrix(KeyWorld, world)
		params.SetMatrix(KeyWorldViewProjection, viewProjection.Mul4(world))
		params.SetVector4(KeyColor, geometryPalette[obj.ID()%uint64(len(geometryPalette))])

		for _, mesh := range obj.Model().Meshes() {
			if mesh == nil || mesh.Draw == nil {
				continue
			}
			box := mesh.BoundingBox.Transform(world)
			if !box.IsZeroExtent() && !frustum.IntersectsBox(box) {
				continue
			}
			if g.drawMesh(cl, mesh.Draw) {
				drawn++
			}
		}
	}
	return drawn
}

func (g *geometryRenderer) drawMesh(cl renderer.CommandList, draw *model.MeshDraw) bool {
	s := &g.state.State
	s.PrimitiveType = draw.PrimitiveType
	if s.InputElements == nil || s.InputElements.Hash() != draw.LayoutHash() {
		s.InputElements = draw.Layout()
	}
	if err := g.state.Update(); err != nil {
		g.logger.Warn("geometry pipeline unavailable", "err", err)
		return false
	}

	if !g.hasLast || g.lastDraw != draw.ID {
		for slot, vb := range draw.VertexBuffers {
			cl.SetVertexBuffer(slot, vb)
		}
		if draw.IndexBuffer != nil {
			cl.SetIndexBuffer(*draw.IndexBuffer)
		}
		g.lastDraw, g.hasLast = draw.ID, true
	}

	cl.SetPipelineState(g.state.CurrentState())
	if err := g.effect.Apply(cl); err != nil {
		g.logger.Warn("geometry parameters rejected", "err", err)
		return false
	}
	if draw.IndexBuffer != nil {
		cl.DrawIndexed(draw.DrawCount, draw.StartLocation)
	} else {
		cl.Draw(draw.DrawCount, draw.StartLocation)
	}
	return true
}

// Reset drops compiled pipelines.
func (g *geometryRenderer) Reset() {
	g.state.Reset()
	g.hasLast = false
}
