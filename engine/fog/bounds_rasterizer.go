package fog

import (
	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

// BackSideOrthographicSize is the width and height of the projection used for the back-side raycast.
const BackSideOrthographicSize float32 = 0.0001

// drawKey identifies the buffers and pipeline inputs bound for the last mesh drawn.
type drawKey struct {
	primitiveType renderer.PrimitiveType
	layoutHash    uint64
	effect        renderer.EffectIdentity
	drawID        uint64
}

// BoundsRasterizer renders bounding geometry into a two-channel target: the nearest front-face depth
// into red and the farthest back-face depth into green.
type BoundsRasterizer struct {
	effect *effect.DynamicEffectInstance
	states *pipelineStateCache

	lastKey    drawKey
	hasLastKey bool

	waiting bool
	logger  *log.Logger
}

// NewBoundsRasterizer creates a rasterizer drawing with the min/max effect instance.
//
// Parameters:
//   - instance: the min/max effect
//   - compiler: the backend pipeline compiler
//
// Returns:
//   - *BoundsRasterizer: the new rasterizer
func NewBoundsRasterizer(instance *effect.DynamicEffectInstance, compiler pipeline.Compiler) *BoundsRasterizer {
	return &BoundsRasterizer{
		effect: instance,
		states: newPipelineStateCache(compiler, instance.Name()),
		logger: logging.Named("fog"),
	}
}

// RasterizeBounds draws bounds into the current render target of cl. The target must have been cleared
// to (1, 0, 0, 0).
//
// Parameters:
//   - cl: the command list, targeting the bounding buffer
//   - bounds: the geometry to draw
//   - viewProjection: the projection used for drawing and frustum culling
//
// Returns:
//   - bool: true if any geometry was drawn
func (r *BoundsRasterizer) RasterizeBounds(cl renderer.CommandList, bounds BoundingSet, viewProjection mgl32.Mat4) bool {
	r.effect.UpdateEffect()
	bytecode := r.effect.Effect()
	if bytecode == nil {
		if !r.waiting {
			r.logger.Debug("bounding volume effect not ready", "name", r.effect.Name())
			r.waiting = true
		}
		return false
	}
	r.waiting = false
	r.states.setEffect(bytecode, cl.RenderTargetFormat())

	frustum := common.NewFrustum(viewProjection)
	identity := bytecode.Identity()
	parameters := r.effect.Parameters()
	visible := false

	for pass := range passCount {
		r.hasLastKey = false
		for _, record := range bounds.All() {
			if record.Model == nil {
				continue
			}
			parameters.SetMatrix(KeyWorldViewProjection, viewProjection.Mul4(record.World))

			for _, mesh := range record.Model.Meshes() {
				if mesh == nil || mesh.Draw == nil {
					continue
				}
				box := mesh.BoundingBox.Transform(record.World)
				if !box.IsZeroExtent() && !frustum.IntersectsBox(box) {
					continue
				}
				if r.drawMesh(cl, pass, mesh.Draw, identity) {
					visible = true
				}
			}
		}
	}
	return visible
}

func (r *BoundsRasterizer) drawMesh(cl renderer.CommandList, pass int, draw *model.MeshDraw, identity renderer.EffectIdentity) bool {
	key := drawKey{
		primitiveType: draw.PrimitiveType,
		layoutHash:    draw.LayoutHash(),
		effect:        identity,
		drawID:        draw.ID,
	}
	if !r.hasLastKey || key != r.lastKey {
		r.states.bindDraw(pass, draw)
		for slot, vb := range draw.VertexBuffers {
			cl.SetVertexBuffer(slot, vb)
		}
		if draw.IndexBuffer != nil {
			cl.SetIndexBuffer(*draw.IndexBuffer)
		}
		r.lastKey, r.hasLastKey = key, true
	}

	state, err := r.states.current(pass)
	if err != nil {
		r.logger.Warn("bounding volume pipeline unavailable", "pass", pass, "err", err)
		return false
	}
	cl.SetPipelineState(state)
	if err := r.effect.Apply(cl); err != nil {
		r.logger.Warn("bounding volume parameters rejected", "err", err)
		return false
	}

	if draw.IndexBuffer != nil {
		cl.DrawIndexed(draw.DrawCount, draw.StartLocation)
	} else {
		cl.Draw(draw.DrawCount, draw.StartLocation)
	}
	return true
}

// Compiles returns the number of pipelines built for the min/max passes.
func (r *BoundsRasterizer) Compiles() int {
	return r.states.compiles()
}

// Reset drops every pipeline built by the rasterizer.
func (r *BoundsRasterizer) Reset() {
	r.states.reset()
	r.hasLastKey = false
}

// BackSideProjection returns the projection of the back-side raycast: a tiny orthographic window
// centered on the eye that looks backwards from the near plane to the far plane.
//
// Parameters:
//   - view: the camera of the frame
//
// Returns:
//   - mgl32.Mat4: the view-projection used for the back-side pass
func BackSideProjection(view camera.RenderView) mgl32.Mat4 {
	ortho := common.OrthoRH(BackSideOrthographicSize, BackSideOrthographicSize, -view.NearClipPlane, view.FarClipPlane)
	return ortho.Mul4(mgl32.Scale3D(1, 1, -1)).Mul4(view.View)
}

// ScratchSize returns a scene dimension divided by a downsample level, never less than one.
func ScratchSize(dimension, level int) int {
	if level < 1 {
		level = 1
	}
	return max(1, dimension/level)
}
