package fog

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type fakeTexture struct {
	label    string
	w, h     int
	format   renderer.PixelFormat
	released bool
}

func (t *fakeTexture) Width() int                   { return t.w }
func (t *fakeTexture) Height() int                  { return t.h }
func (t *fakeTexture) Format() renderer.PixelFormat { return t.format }
func (t *fakeTexture) Label() string                { return t.label }
func (t *fakeTexture) Release()                     { t.released = true }

type fakeBuffer struct {
	label string
	size  uint64
}

func (b *fakeBuffer) Size() uint64  { return b.size }
func (b *fakeBuffer) Label() string { return b.label }
func (b *fakeBuffer) Release()      {}

type fakeDevice struct {
	created []*fakeTexture
}

func (d *fakeDevice) CreateRenderTarget(desc renderer.TextureDescription) (renderer.Texture, error) {
	t := &fakeTexture{label: desc.Label, w: desc.Width, h: desc.Height, format: desc.Format}
	d.created = append(d.created, t)
	return t, nil
}

func (d *fakeDevice) CreateBuffer(label string, data []byte, _ renderer.BufferUsage) (renderer.Buffer, error) {
	return &fakeBuffer{label: label, size: uint64(len(data))}, nil
}

type fakePipeline struct {
	state pipeline.State
}

func (p *fakePipeline) Label() string { return p.state.Label }

type fakeCompiler struct {
	compiled []pipeline.State
	fail     bool
}

func (c *fakeCompiler) CompilePipeline(s *pipeline.State) (renderer.PipelineState, error) {
	if c.fail {
		return nil, errors.New("pipeline rejected")
	}
	c.compiled = append(c.compiled, *s)
	return &fakePipeline{state: *s}, nil
}

// call is one recorded CommandList operation.
type call struct {
	op       string
	target   renderer.Texture
	pipeline *fakePipeline
	effect   string
	count    uint32

	sampleCount int32
	density     float32
	boundsInput renderer.Texture
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
	r.calls = append(r.calls, call{op: "push"})
	return func() {
		r.target = saved
		r.calls = append(r.calls, call{op: "restore"})
	}
}

func (r *recorder) RenderTargetFormat() renderer.PixelFormat {
	if r.target == nil {
		return renderer.PixelFormatUndefined
	}
	return r.target.Format()
}

func (r *recorder) SetPipelineState(state renderer.PipelineState) {
	r.pipeline = state.(*fakePipeline)
	r.calls = append(r.calls, call{op: "pipeline", pipeline: r.pipeline})
}

func (r *recorder) SetVertexBuffer(int, renderer.VertexBufferBinding) {
	r.calls = append(r.calls, call{op: "vb"})
}

func (r *recorder) SetIndexBuffer(renderer.IndexBufferBinding) {
	r.calls = append(r.calls, call{op: "ib"})
}

func (r *recorder) ApplyParameters(bytecode *renderer.EffectBytecode, params *renderer.ParameterCollection) error {
	c := call{op: "apply", effect: bytecode.Name}
	c.sampleCount, _ = params.Int(KeySampleCount)
	c.density, _ = params.Float(KeyDensityFactor)
	c.boundsInput, _ = params.Texture(SlotBoundingBuffer)
	r.calls = append(r.calls, c)
	return nil
}

func (r *recorder) Draw(vertexCount, _ uint32) {
	r.calls = append(r.calls, call{op: "draw", target: r.target, pipeline: r.pipeline, count: vertexCount})
}

func (r *recorder) DrawIndexed(indexCount, _ uint32) {
	r.calls = append(r.calls, call{op: "drawIndexed", target: r.target, pipeline: r.pipeline, count: indexCount})
}

func (r *recorder) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (r *recorder) ops() []string {
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.op
	}
	return ops
}

func (r *recorder) reset() {
	r.calls = nil
	r.target = nil
	r.pipeline = nil
}

func echoCompile(source string) ([]byte, error) {
	return []byte(source), nil
}

// failingCompile compiles everything but sources containing marker.
func failingCompile(marker string) effect.CompileFunc {
	return func(source string) ([]byte, error) {
		if strings.Contains(source, marker) {
			return nil, errors.New("unsupported program")
		}
		return []byte(source), nil
	}
}

func testView() camera.RenderView {
	return camera.RenderView{
		View:          mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection:    common.PerspectiveRH(mgl32.DegToRad(60), 1, 0.1, 100),
		NearClipPlane: 0.1,
		FarClipPlane:  100,
	}
}

var unitBox = common.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}

func testModel(name string, box common.AABB) model.Model {
	draw := model.NewMeshDraw(renderer.PrimitiveTypeTriangleList,
		[]renderer.VertexBufferBinding{{Buffer: &fakeBuffer{label: name + "/vertices", size: 96}, Layout: model.PositionLayout}},
		&renderer.IndexBufferBinding{Buffer: &fakeBuffer{label: name + "/indices", size: 144}, Format: renderer.IndexFormatUint32},
		36,
	)
	return model.NewModel(model.WithName(name), model.WithMeshes(&model.Mesh{Name: name, BoundingBox: box, Draw: draw}))
}

// visibleAt is a world transform keeping the unit box inside the test view frustum.
func visibleAt(x float32) mgl32.Mat4 {
	return mgl32.Translate3D(x, 0, 0)
}

// behindCamera is a world transform moving geometry out of the test view frustum.
var behindCamera = mgl32.Translate3D(0, 0, 50)

func volumeOf(sampleCount int, density float32, records ...BoundingGeometryRecord) VolumeRecord {
	return VolumeRecord{SampleCount: sampleCount, DensityFactor: density, Bounds: NewBoundingSet(records)}
}

type fakeComponent struct {
	enabled   bool
	volume    uuid.UUID
	hasVolume bool
	world     mgl32.Mat4
	model     model.Model
}

func (c *fakeComponent) Enabled() bool                { return c.enabled }
func (c *fakeComponent) FogVolume() (uuid.UUID, bool) { return c.volume, c.hasVolume }
func (c *fakeComponent) WorldMatrix() mgl32.Mat4      { return c.world }
func (c *fakeComponent) Model() model.Model           { return c.model }

func boundTo(d *Definition, world mgl32.Mat4, m model.Model) *fakeComponent {
	return &fakeComponent{enabled: true, volume: d.ID, hasVolume: true, world: world, model: m}
}

type fakeSource struct {
	definitions []*Definition
	components  []BoundingComponent
}

func (s *fakeSource) Definitions() []*Definition              { return s.definitions }
func (s *fakeSource) BoundingComponents() []BoundingComponent { return s.components }

// harness wires a compositor to fakes and a synchronously compiling effect library.
type harness struct {
	device   *fakeDevice
	pool     renderer.TargetPool
	compiler *fakeCompiler
	library  effect.Library
	cl       *recorder

	depth  *fakeTexture
	output *fakeTexture
	comp   Compositor
}

func newHarness(t *testing.T, compile effect.CompileFunc, opts ...CompositorBuilderOption) *harness {
	t.Helper()
	h := &harness{
		device:   &fakeDevice{},
		compiler: &fakeCompiler{},
		library:  effect.NewLibrary(effect.WithCompileFunc(compile), effect.WithSynchronousCompilation()),
		cl:       &recorder{},
		depth:    &fakeTexture{label: "depth", w: 1920, h: 1080, format: renderer.PixelFormatDepth32Float},
		output:   &fakeTexture{label: "fog", w: 960, h: 540, format: renderer.PixelFormatRGBA16Float},
	}
	h.pool = renderer.NewTargetPool(h.device)
	h.comp = NewCompositor(h.pool, h.compiler, h.library, opts...)
	return h
}

// frame collects volumes and draws them.
func (h *harness) frame(volumes ...VolumeRecord) error {
	ctx := &FrameContext{View: testView()}
	ctx.PublishFogVolumes(volumes)
	h.comp.Collect(ctx)
	return h.comp.Draw(&DrawContext{CommandList: h.cl, View: ctx.View}, h.depth, h.output)
}

// fogDraws returns the recorded full-screen draws.
func (h *harness) fogDraws() []call {
	var draws []call
	for _, c := range h.cl.calls {
		if c.op == "draw" {
			draws = append(draws, c)
		}
	}
	return draws
}
