package fog

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestRasterizer(t *testing.T, lib effect.Library, compiler *fakeCompiler) (*BoundsRasterizer, *recorder) {
	t.Helper()
	if err := RegisterEffects(lib, DefaultMinMaxEffect, DefaultFogEffect); err != nil {
		t.Fatalf("RegisterEffects() error = %v", err)
	}
	r := NewBoundsRasterizer(effect.NewDynamicEffectInstance(DefaultMinMaxEffect, lib), compiler)
	cl := &recorder{target: &fakeTexture{label: "bounds", w: 240, h: 135, format: BoundingBufferFormat}}
	return r, cl
}

func syncLibrary() effect.Library {
	return effect.NewLibrary(effect.WithCompileFunc(echoCompile), effect.WithSynchronousCompilation())
}

func TestRasterizeBoundsPassStates(t *testing.T) {
	compiler := &fakeCompiler{}
	r, cl := newTestRasterizer(t, syncLibrary(), compiler)
	view := testView()

	set := NewBoundingSet([]BoundingGeometryRecord{{World: mgl32.Ident4(), Model: testModel("box", unitBox)}})
	if !r.RasterizeBounds(cl, set, view.ViewProjection()) {
		t.Fatal("RasterizeBounds() = false for a box in view")
	}

	if len(compiler.compiled) != 2 {
		t.Fatalf("compiled %d pipelines, want 2", len(compiler.compiled))
	}
	front, back := compiler.compiled[0], compiler.compiled[1]

	if front.RasterizerState.CullMode != renderer.CullModeBack || back.RasterizerState.CullMode != renderer.CullModeFront {
		t.Errorf("cull modes = %v/%v, want back/front", front.RasterizerState.CullMode, back.RasterizerState.CullMode)
	}
	if front.BlendState.Color.Operation != renderer.BlendOperationMin || front.BlendState.WriteMask != renderer.ColorWriteMaskRed {
		t.Errorf("front blend = %+v, want min into red", front.BlendState)
	}
	if back.BlendState.Color.Operation != renderer.BlendOperationMax || back.BlendState.WriteMask != renderer.ColorWriteMaskGreen {
		t.Errorf("back blend = %+v, want max into green", back.BlendState)
	}
	for i, s := range compiler.compiled {
		if s.DepthStencilState.DepthTestEnabled || s.DepthStencilState.DepthWriteEnabled || s.RasterizerState.DepthClipEnable {
			t.Errorf("pass %d uses depth: %+v %+v", i, s.DepthStencilState, s.RasterizerState)
		}
		if s.RenderTargetFormat != BoundingBufferFormat || s.Effect == nil || s.Effect.Name != DefaultMinMaxEffect {
			t.Errorf("pass %d target/effect = %v/%v", i, s.RenderTargetFormat, s.Effect)
		}
	}
}

func TestRasterizeBoundsCulling(t *testing.T) {
	zero := common.AABB{}

	tests := []struct {
		name  string
		world mgl32.Mat4
		box   common.AABB
		want  bool
	}{
		{name: "in view", world: mgl32.Ident4(), box: unitBox, want: true},
		{name: "behind the camera", world: behindCamera, box: unitBox, want: false},
		{name: "zero extent is never culled", world: behindCamera, box: zero, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cl := newTestRasterizer(t, syncLibrary(), &fakeCompiler{})
			set := NewBoundingSet([]BoundingGeometryRecord{{World: tt.world, Model: testModel("box", tt.box)}})

			got := r.RasterizeBounds(cl, set, testView().ViewProjection())
			if got != tt.want {
				t.Errorf("RasterizeBounds() = %v, want %v", got, tt.want)
			}
			wantDraws := 0
			if tt.want {
				wantDraws = 2
			}
			if n := cl.count("drawIndexed"); n != wantDraws {
				t.Errorf("indexed draws = %d, want %d", n, wantDraws)
			}
		})
	}
}

func TestRasterizeBoundsRebindsOnDrawChange(t *testing.T) {
	shared := testModel("shared", unitBox)

	tests := []struct {
		name    string
		records []BoundingGeometryRecord
		binds   int
	}{
		{
			name: "same mesh binds once per pass",
			records: []BoundingGeometryRecord{
				{World: visibleAt(-2), Model: shared},
				{World: visibleAt(2), Model: shared},
			},
			binds: 2,
		},
		{
			name: "different meshes rebind",
			records: []BoundingGeometryRecord{
				{World: visibleAt(-2), Model: testModel("a", unitBox)},
				{World: visibleAt(2), Model: testModel("b", unitBox)},
			},
			binds: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cl := newTestRasterizer(t, syncLibrary(), &fakeCompiler{})
			r.RasterizeBounds(cl, NewBoundingSet(tt.records), testView().ViewProjection())

			if n := cl.count("vb"); n != tt.binds {
				t.Errorf("vertex buffer binds = %d, want %d", n, tt.binds)
			}
			if n := cl.count("ib"); n != tt.binds {
				t.Errorf("index buffer binds = %d, want %d", n, tt.binds)
			}
			if n := cl.count("apply"); n != 4 {
				t.Errorf("parameter applications = %d, want 4", n)
			}
		})
	}
}

func TestRasterizeBoundsSkipsMissingGeometry(t *testing.T) {
	r, cl := newTestRasterizer(t, syncLibrary(), &fakeCompiler{})
	set := NewBoundingSet([]BoundingGeometryRecord{{World: mgl32.Ident4()}})

	if r.RasterizeBounds(cl, set, testView().ViewProjection()) {
		t.Error("RasterizeBounds() = true without geometry")
	}
	if len(cl.calls) != 0 {
		t.Errorf("recorded %v without geometry", cl.ops())
	}
}

func TestRasterizeBoundsWaitsForEffect(t *testing.T) {
	var jobs []func()
	lib := effect.NewLibrary(effect.WithCompileFunc(echoCompile), effect.WithScheduler(func(job func()) { jobs = append(jobs, job) }))
	r, cl := newTestRasterizer(t, lib, &fakeCompiler{})
	set := NewBoundingSet([]BoundingGeometryRecord{{World: mgl32.Ident4(), Model: testModel("box", unitBox)}})

	if r.RasterizeBounds(cl, set, testView().ViewProjection()) {
		t.Fatal("RasterizeBounds() = true while the effect compiles")
	}
	if len(cl.calls) != 0 {
		t.Fatalf("recorded %v while the effect compiles", cl.ops())
	}

	for _, job := range jobs {
		job()
	}
	if !r.RasterizeBounds(cl, set, testView().ViewProjection()) {
		t.Error("RasterizeBounds() = false once the effect compiled")
	}
}

func TestRasterizeBoundsPipelineFailure(t *testing.T) {
	r, cl := newTestRasterizer(t, syncLibrary(), &fakeCompiler{fail: true})
	set := NewBoundingSet([]BoundingGeometryRecord{{World: mgl32.Ident4(), Model: testModel("box", unitBox)}})

	if r.RasterizeBounds(cl, set, testView().ViewProjection()) {
		t.Error("RasterizeBounds() = true without a pipeline")
	}
	if n := cl.count("drawIndexed"); n != 0 {
		t.Errorf("indexed draws = %d without a pipeline", n)
	}
}

func TestRasterizeBoundsRebuildsOnlyOnChange(t *testing.T) {
	lib := syncLibrary()
	r, cl := newTestRasterizer(t, lib, &fakeCompiler{})
	set := NewBoundingSet([]BoundingGeometryRecord{{World: mgl32.Ident4(), Model: testModel("box", unitBox)}})
	viewProjection := testView().ViewProjection()

	for range 3 {
		r.RasterizeBounds(cl, set, viewProjection)
	}
	if r.Compiles() != 2 {
		t.Fatalf("Compiles() = %d after three unchanged frames, want 2", r.Compiles())
	}

	if err := lib.Reload(DefaultMinMaxEffect, MinMaxProgram(DefaultMinMaxEffect).Source+"\n// edited\n"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	r.RasterizeBounds(cl, set, viewProjection)
	if r.Compiles() != 4 {
		t.Errorf("Compiles() = %d after reload, want two more pipelines", r.Compiles())
	}

	wantEffect, _ := lib.Effect(DefaultMinMaxEffect)
	last := cl.calls[len(cl.calls)-1]
	if last.pipeline == nil || last.pipeline.state.Effect != wantEffect {
		t.Error("draw after reload does not use the reloaded effect")
	}
}

func TestBackSideProjection(t *testing.T) {
	view := testView()
	m := BackSideProjection(view)

	eye := m.Mul4x1(mgl32.Vec4{0, 0, 10, 1})
	wantDepth := view.NearClipPlane / (view.NearClipPlane + view.FarClipPlane)
	if !approxEqual(eye.X(), 0, 1e-4) || !approxEqual(eye.Y(), 0, 1e-4) {
		t.Errorf("eye projects to (%v, %v), want the center", eye.X(), eye.Y())
	}
	if !approxEqual(eye.Z()/eye.W(), wantDepth, 1e-5) {
		t.Errorf("eye depth = %v, want %v", eye.Z()/eye.W(), wantDepth)
	}

	behind := m.Mul4x1(mgl32.Vec4{0, 0, 20, 1})
	if behind.Z() <= eye.Z() {
		t.Errorf("depth behind the eye %v is not beyond the eye depth %v", behind.Z(), eye.Z())
	}
	ahead := m.Mul4x1(mgl32.Vec4{0, 0, 5, 1})
	if ahead.Z() >= 0 {
		t.Errorf("geometry in front of the near plane has depth %v, want it clipped", ahead.Z())
	}
}

func TestScratchSize(t *testing.T) {
	tests := []struct {
		dimension, level, want int
	}{
		{dimension: 1920, level: 8, want: 240},
		{dimension: 1080, level: 8, want: 135},
		{dimension: 7, level: 2, want: 3},
		{dimension: 4, level: 64, want: 1},
		{dimension: 0, level: 1, want: 1},
	}
	for _, tt := range tests {
		if got := ScratchSize(tt.dimension, tt.level); got != tt.want {
			t.Errorf("ScratchSize(%d, %d) = %d, want %d", tt.dimension, tt.level, got, tt.want)
		}
	}
}

// approxEqual compares a and b with an absolute tolerance.
func approxEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) <= eps
}
