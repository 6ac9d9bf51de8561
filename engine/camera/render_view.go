package camera

import (
	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderView is the immutable snapshot of a camera used to render one frame.
type RenderView struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4

	NearClipPlane float32
	FarClipPlane  float32
}

// ViewProjection returns Projection * View.
func (v RenderView) ViewProjection() mgl32.Mat4 {
	return v.Projection.Mul4(v.View)
}

// ViewInverse returns the camera-to-world transform.
func (v RenderView) ViewInverse() mgl32.Mat4 {
	return v.View.Inv()
}

// ProjectionInverse returns the clip-to-view transform.
func (v RenderView) ProjectionInverse() mgl32.Mat4 {
	return v.Projection.Inv()
}

// Eye returns the world-space camera position.
func (v RenderView) Eye() mgl32.Vec3 {
	return common.Translation(v.ViewInverse())
}
