package camera

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitControllerPosition(t *testing.T) {
	tests := []struct {
		name string
		opts []CameraControllerBuilderOption
		want mgl32.Vec3
	}{
		{"default", nil, mgl32.Vec3{0, 0, 10}},
		{"quarter turn", []CameraControllerBuilderOption{WithOrbit(5, math.Pi/2, 0)}, mgl32.Vec3{5, 0, 0}},
		{"offset target", []CameraControllerBuilderOption{WithTarget(mgl32.Vec3{1, 2, 3}), WithOrbit(2, 0, 0)}, mgl32.Vec3{1, 2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewOrbitController(tt.opts...).Position()
			if !vecApproxEqual(got, tt.want, 1e-5) {
				t.Errorf("Position() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrbitControllerClamps(t *testing.T) {
	c := NewOrbitController(WithOrbit(1, 0, 0))
	c.Orbit(0, 10)
	if y := c.Position().Y(); y >= 1 || y < 0.99 {
		t.Errorf("elevation not clamped below the pole: y = %v", y)
	}
	c.Zoom(100)
	if c.Radius() != minRadius {
		t.Errorf("Radius() = %v, want %v", c.Radius(), minRadius)
	}
}

func TestCameraRenderView(t *testing.T) {
	ctrl := NewOrbitController(WithOrbit(10, 0, 0))
	cam := NewCamera(WithController(ctrl), WithClipPlanes(0.5, 250), WithAspect(2))

	view := cam.RenderView()
	if view.NearClipPlane != 0.5 || view.FarClipPlane != 250 {
		t.Fatalf("clip planes = %v, %v", view.NearClipPlane, view.FarClipPlane)
	}
	if eye := view.Eye(); !vecApproxEqual(eye, mgl32.Vec3{0, 0, 10}, 1e-4) {
		t.Errorf("Eye() = %v, want (0, 0, 10)", eye)
	}

	// The target sits in the middle of the screen at depth 10.
	clip := view.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if !approxEqual(ndc.X(), 0, 1e-5) || !approxEqual(ndc.Y(), 0, 1e-5) {
		t.Errorf("target projects to %v, want screen center", ndc)
	}
	if ndc.Z() <= 0 || ndc.Z() >= 1 {
		t.Errorf("target depth = %v, want inside (0, 1)", ndc.Z())
	}

	ctrl.Orbit(math.Pi, 0)
	cam.Update()
	if eye := cam.RenderView().Eye(); !vecApproxEqual(eye, mgl32.Vec3{0, 0, -10}, 1e-4) {
		t.Errorf("Eye() after orbit = %v, want (0, 0, -10)", eye)
	}
}

// approxEqual compares a and b with an absolute tolerance.
func approxEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func vecApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	return approxEqual(a.X(), b.X(), eps) && approxEqual(a.Y(), b.Y(), eps) && approxEqual(a.Z(), b.Z(), eps)
}
