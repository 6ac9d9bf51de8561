package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// approxEqual compares a and b with an absolute tolerance.
func approxEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func vecApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	return approxEqual(a.X(), b.X(), eps) && approxEqual(a.Y(), b.Y(), eps) && approxEqual(a.Z(), b.Z(), eps)
}

func vecNear(a, b mgl32.Vec3) bool {
	return vecApproxEqual(a, b, 1e-4)
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}

	tests := []struct {
		name    string
		m       mgl32.Mat4
		wantMin mgl32.Vec3
		wantMax mgl32.Vec3
	}{
		{"identity", mgl32.Ident4(), mgl32.Vec3{-1, -2, -3}, mgl32.Vec3{1, 2, 3}},
		{"translate", mgl32.Translate3D(10, 0, -5), mgl32.Vec3{9, -2, -8}, mgl32.Vec3{11, 2, -2}},
		{"scale", mgl32.Scale3D(2, 1, 0.5), mgl32.Vec3{-2, -2, -1.5}, mgl32.Vec3{2, 2, 1.5}},
		{"rotate y 90", mgl32.HomogRotate3DY(mgl32.DegToRad(90)), mgl32.Vec3{-3, -2, -1}, mgl32.Vec3{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.Transform(tt.m)
			if !vecNear(got.Min, tt.wantMin) || !vecNear(got.Max, tt.wantMax) {
				t.Errorf("Transform() = %v..%v, want %v..%v", got.Min, got.Max, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestAABBZeroExtent(t *testing.T) {
	if !(AABB{}).IsZeroExtent() {
		t.Error("zero box should report zero extent")
	}
	point := AABB{Min: mgl32.Vec3{1, 2, 3}, Max: mgl32.Vec3{1, 2, 3}}
	if !point.Transform(mgl32.Translate3D(5, 5, 5)).IsZeroExtent() {
		t.Error("translated point box should keep zero extent")
	}
	if (AABB{Max: mgl32.Vec3{0, 0, 1}}).IsZeroExtent() {
		t.Error("box with depth should not report zero extent")
	}
}

func TestNewAABBFromPoints(t *testing.T) {
	box := NewAABBFromPoints([]mgl32.Vec3{{1, -1, 0}, {-2, 3, 4}, {0, 0, -5}})
	if box.Min != (mgl32.Vec3{-2, -1, -5}) || box.Max != (mgl32.Vec3{1, 3, 4}) {
		t.Errorf("NewAABBFromPoints() = %v..%v", box.Min, box.Max)
	}
	merged := box.Merge(AABB{Min: mgl32.Vec3{-10, 0, 0}, Max: mgl32.Vec3{0, 10, 0}})
	if merged.Min.X() != -10 || merged.Max.Y() != 10 {
		t.Errorf("Merge() = %v..%v", merged.Min, merged.Max)
	}
}
