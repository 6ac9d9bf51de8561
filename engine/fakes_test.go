package engine

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fog/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTexture struct {
	label  string
	w, h   int
	format renderer.PixelFormat
}

func (t *fakeTexture) Width() int                   { return t.w }
func (t *fakeTexture) Height() int                  { return t.h }
func (t *fakeTexture) Format() renderer.PixelFormat { return t.format }
func (t *fakeTexture) Label() string                { return t.label }
func (t *fakeTexture) Release()                     {}

type fakeBuffer struct {
	label string
	size  uint64
}

func (b *fakeBuffer) Size() uint64  { return b.size }
func (b *fakeBuffer) Label() string { return b.label }
func (b *fakeBuffer) Release()      {}

type fakePipeline struct {
	state pipeline.State
}

func (p *fakePipeline) Label() string { return p.state.Label }

// call is one recorded CommandList operation.
type call struct {
	op       string
	target   renderer.Texture
	pipeline *fakePipeline
}

// recorder is a CommandList that records every call.
type recorder struct {
	calls    []call
	target   renderer.Texture
	pipeline *fakePipeline
}

func (r *recorder) Clear(target renderer.Texture, _ renderer.Color4) {
	r.calls = append(r.calls, call{op: "clear", target: target})
}

func (r *recorder) SetRenderTargetAndViewport(_, target renderer.Texture) {
	r.target = target
	r.calls = append(r.calls, call{op: "target", target: target})
}

func (r *recorder) PushRenderTargets() func() {
	saved := r.target
	return func() { r.target = saved }
}

func (r *recorder) RenderTargetFormat() renderer.PixelFormat {
	if r.target == nil {
		return renderer.PixelFormatUndefined
	}
	return r.target.Format()
}

func (r *recorder) SetPipelineState(state renderer.PipelineState) {
	r.pipeline = state.(*fakePipeline)
}

func (r *recorder) SetVertexBuffer(int, renderer.VertexBufferBinding) {}
func (r *recorder) SetIndexBuffer(renderer.IndexBufferBinding)        {}

func (r *recorder) ApplyParameters(*renderer.EffectBytecode, *renderer.ParameterCollection) error {
	return nil
}

func (r *recorder) Draw(uint32, uint32) {
	r.calls = append(r.calls, call{op: "draw", target: r.target, pipeline: r.pipeline})
}

func (r *recorder) DrawIndexed(uint32, uint32) {
	r.calls = append(r.calls, call{op: "draw", target: r.target, pipeline: r.pipeline})
}

// draws returns the indices into calls of the draws made with the named effect.
func (r *recorder) draws(effectName string) []int {
	var idx []int
	for i, c := range r.calls {
		if c.op == "draw" && c.pipeline.state.Effect.Name == effectName {
			idx = append(idx, i)
		}
	}
	return idx
}

// fakeBackend is a FrameBackend recording frame boundaries into a recorder.
type fakeBackend struct {
	cl    *recorder
	color *fakeTexture
	depth *fakeTexture

	beginErr  error
	begun     int
	ended     int
	presented int
	compiled  int
}

func newFakeBackend(width, height int) *fakeBackend {
	return &fakeBackend{
		cl:    &recorder{},
		color: &fakeTexture{label: "swap chain", w: width, h: height, format: renderer.PixelFormatBGRA8Unorm},
		depth: &fakeTexture{label: "scene depth", w: width, h: height, format: renderer.PixelFormatDepth32Float},
	}
}

func (b *fakeBackend) CreateRenderTarget(desc renderer.TextureDescription) (renderer.Texture, error) {
	return &fakeTexture{label: desc.Label, w: desc.Width, h: desc.Height, format: desc.Format}, nil
}

func (b *fakeBackend) CreateBuffer(label string, data []byte, _ renderer.BufferUsage) (renderer.Buffer, error) {
	return &fakeBuffer{label: label, size: uint64(len(data))}, nil
}

func (b *fakeBackend) ReadTexture(renderer.Texture) ([]byte, error) {
	return nil, errors.New("readback not supported")
}

func (b *fakeBackend) CompilePipeline(s *pipeline.State) (renderer.PipelineState, error) {
	b.compiled++
	return &fakePipeline{state: *s}, nil
}

func (b *fakeBackend) ConfigureSurface(width, height int) error {
	b.color.w, b.color.h = width, height
	b.depth.w, b.depth.h = width, height
	return nil
}

func (b *fakeBackend) BeginFrame() (renderer.CommandList, renderer.Texture, error) {
	if b.beginErr != nil {
		return nil, nil, b.beginErr
	}
	b.begun++
	return b.cl, b.color, nil
}

func (b *fakeBackend) EndFrame() error {
	b.ended++
	return nil
}

func (b *fakeBackend) Present()                       { b.presented++ }
func (b *fakeBackend) DepthTexture() renderer.Texture { return b.depth }

func echoCompile(source string) ([]byte, error) {
	return []byte(source), nil
}

// newTestEngine creates a headless engine compiling effects synchronously with capturing disabled.
func newTestEngine(t *testing.T, opts ...EngineBuilderOption) (*engine, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend(640, 480)
	lib := effect.NewLibrary(effect.WithCompileFunc(echoCompile), effect.WithSynchronousCompilation())
	opts = append([]EngineBuilderOption{WithEffectLibrary(lib), WithCaptureDir("")}, opts...)
	e, err := NewEngine(backend, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e.(*engine), backend
}

var unitBox = common.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

func testModel(name string) model.Model {
	draw := model.NewMeshDraw(renderer.PrimitiveTypeTriangleList,
		[]renderer.VertexBufferBinding{{Buffer: &fakeBuffer{label: name + "/vertices", size: 96}, Layout: model.PositionLayout}},
		&renderer.IndexBufferBinding{Buffer: &fakeBuffer{label: name + "/indices", size: 144}, Format: renderer.IndexFormatUint32},
		36,
	)
	return model.NewModel(model.WithName(name), model.WithMeshes(&model.Mesh{Name: name, BoundingBox: unitBox, Draw: draw}))
}

// testScene returns an active scene with one visible box and one fog volume bounded by a second box.
func testScene() (scene.Scene, *fog.Definition) {
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController()))
	def := fog.NewDefinition(fog.WithSampleCount(8))
	s := scene.NewScene("test", cam,
		scene.WithActive(true),
		scene.WithFogVolumes(def),
		scene.WithObjects(
			game_object.NewGameObject(game_object.WithModel(testModel("pillar"))),
			game_object.NewGameObject(game_object.WithModel(testModel("fog-bounds")), game_object.WithFogVolume(def.ID)),
		),
	)
	return s, def
}
