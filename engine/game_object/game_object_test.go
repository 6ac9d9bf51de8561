package game_object

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func TestWorldMatrix(t *testing.T) {
	tests := []struct {
		name  string
		obj   GameObject
		local mgl32.Vec3
		want  mgl32.Vec3
	}{
		{
			name:  "identity",
			obj:   NewGameObject(),
			local: mgl32.Vec3{1, 2, 3},
			want:  mgl32.Vec3{1, 2, 3},
		},
		{
			name:  "scale then translate",
			obj:   NewGameObject(WithPosition(10, 0, -5), WithScale(2, 3, 4)),
			local: mgl32.Vec3{1, 1, 1},
			want:  mgl32.Vec3{12, 3, -1},
		},
		{
			name:  "quarter turn around y",
			obj:   NewGameObject(WithRotation(0, mgl32.DegToRad(90), 0)),
			local: mgl32.Vec3{1, 0, 0},
			want:  mgl32.Vec3{0, 0, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mgl32.TransformCoordinate(tt.local, tt.obj.WorldMatrix())
			if !vecApproxEqual(got, tt.want, 1e-5) {
				t.Errorf("world * %v = %v, want %v", tt.local, got, tt.want)
			}
		})
	}
}

func TestFogVolumeAssignment(t *testing.T) {
	obj := NewGameObject()
	if _, ok := obj.FogVolume(); ok {
		t.Fatal("new object should not bound a fog volume")
	}

	id := uuid.New()
	obj.SetFogVolume(id)
	got, ok := obj.FogVolume()
	if !ok || got != id {
		t.Fatalf("FogVolume() = %v, %v; want %v, true", got, ok, id)
	}

	obj.ClearFogVolume()
	if _, ok := obj.FogVolume(); ok {
		t.Error("ClearFogVolume did not detach the object")
	}

	if _, ok := NewGameObject(WithFogVolume(id)).FogVolume(); !ok {
		t.Error("WithFogVolume did not assign the volume")
	}
}

func TestEnabledDefaultsToTrue(t *testing.T) {
	if !NewGameObject().Enabled() {
		t.Error("objects should be enabled by default")
	}
	if NewGameObject(WithEnabled(false)).Enabled() {
		t.Error("WithEnabled(false) ignored")
	}
}

// approxEqual compares a and b with an absolute tolerance.
func approxEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}

func vecApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	return approxEqual(a.X(), b.X(), eps) && approxEqual(a.Y(), b.Y(), eps) && approxEqual(a.Z(), b.Z(), eps)
}
