package effect

import (
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

const reflectedSource = `
struct Params {
    world_view_projection: mat4x4<f32>,
    eye: vec4<f32>, // camera position
    z_projection: vec2<f32>,
    density_factor: f32,
    sample_count: i32,
};

/* @group(0) @binding(7) var ignored: texture_2d<f32>; */
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(3) var depth_buffer: texture_depth_2d;
@group(0) @binding(1) var bound_buffer: texture_2d<f32>;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) depth: f32,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32, @location(1) normal: vec3<f32>, @location(0) position: vec3<f32>) -> VertexOutput {
    var out: VertexOutput;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.depth);
}
`

func TestReflectSource(t *testing.T) {
	r, err := reflectSource(reflectedSource)
	if err != nil {
		t.Fatalf("reflectSource() error = %v", err)
	}

	if r.vertexEntry != "vs_main" || r.fragmentEntry != "fs_main" {
		t.Errorf("entry points = %q, %q", r.vertexEntry, r.fragmentEntry)
	}

	wantUniforms := []renderer.UniformField{
		{Key: "WorldViewProjection", Type: renderer.UniformTypeMat4},
		{Key: "Eye", Type: renderer.UniformTypeVec4},
		{Key: "ZProjection", Type: renderer.UniformTypeVec2},
		{Key: "DensityFactor", Type: renderer.UniformTypeFloat},
		{Key: "SampleCount", Type: renderer.UniformTypeInt},
	}
	if !slices.Equal(r.uniforms, wantUniforms) {
		t.Errorf("uniforms = %+v, want %+v", r.uniforms, wantUniforms)
	}

	wantTextures := []renderer.TextureBinding{
		{Slot: 0, Kind: renderer.TextureKindUnfilterableFloat},
		{Slot: 2, Kind: renderer.TextureKindDepth},
	}
	if !slices.Equal(r.textures, wantTextures) {
		t.Errorf("textures = %+v, want %+v", r.textures, wantTextures)
	}

	wantInputs := []renderer.VertexInput{
		{Semantic: "POSITION", Location: 0},
		{Semantic: "NORMAL", Location: 1},
	}
	if !slices.Equal(r.vertexInputs, wantInputs) {
		t.Errorf("vertex inputs = %+v, want %+v", r.vertexInputs, wantInputs)
	}
}

func TestReflectVertexInputStruct(t *testing.T) {
	source := `
struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(2) texcoord: vec2<f32>,
};

@vertex
fn main_vs(in: VertexInput) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`
	r, err := reflectSource(source)
	if err != nil {
		t.Fatalf("reflectSource() error = %v", err)
	}
	want := []renderer.VertexInput{{Semantic: "POSITION", Location: 0}, {Semantic: "TEXCOORD", Location: 2}}
	if !slices.Equal(r.vertexInputs, want) {
		t.Errorf("vertex inputs = %+v, want %+v", r.vertexInputs, want)
	}
	if r.fragmentEntry != "" || r.uniforms != nil || r.textures != nil {
		t.Errorf("unexpected declarations %+v", r)
	}
}

func TestReflectSourceErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "group other than zero",
			source: "@group(1) @binding(1) var tex: texture_2d<f32>;",
			want:   "group 0",
		},
		{
			name:   "texture at binding zero",
			source: "@group(0) @binding(0) var tex: texture_2d<f32>;",
			want:   "var<uniform>",
		},
		{
			name:   "unknown uniform struct",
			source: "@group(0) @binding(0) var<uniform> params: Missing;",
			want:   "not a struct",
		},
		{
			name:   "unsupported uniform member",
			source: "struct P { offset: vec3<f32>, };\n@group(0) @binding(0) var<uniform> params: P;",
			want:   "unsupported type vec3<f32>",
		},
		{
			name:   "storage buffer after the uniform block",
			source: "@group(0) @binding(2) var<storage, read> data: array<f32>;",
			want:   "must be a texture",
		},
		{
			name:   "unsupported texture",
			source: "@group(0) @binding(1) var tex: texture_3d<f32>;",
			want:   "unsupported texture type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reflectSource(tt.source)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("reflectSource() error = %v, want one mentioning %q", err, tt.want)
			}
		})
	}
}

func TestPascalCase(t *testing.T) {
	tests := map[string]string{
		"world_view_projection": "WorldViewProjection",
		"z_projection":          "ZProjection",
		"eye":                   "Eye",
		"back__side_":           "BackSide",
	}
	for in, want := range tests {
		if got := pascalCase(in); got != want {
			t.Errorf("pascalCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLibraryReflectsProgram(t *testing.T) {
	lib := NewLibrary(WithCompileFunc(echoCompile), WithSynchronousCompilation())
	lib.RegisterChunk("params", "struct Params { world_view_projection: mat4x4<f32>, };")

	source := "//@oxy:include params\n" + `
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var light_buffer: texture_2d<f32>;

@vertex
fn vs_main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return params.world_view_projection * vec4<f32>(position, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	if err := lib.Register(Program{Name: "reflected", Source: source}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	override := Program{
		Name:     "override",
		Source:   source,
		Textures: []renderer.TextureBinding{{Slot: 0, Kind: renderer.TextureKindFloat}},
	}
	if err := lib.Register(override); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for _, name := range []string{"reflected", "override"} {
		if err := lib.Load(name); err != nil {
			t.Fatalf("Load(%q) error = %v", name, err)
		}
	}

	bc, ok := lib.Effect("reflected")
	if !ok {
		_, err := lib.Status("reflected")
		t.Fatalf("reflected effect not ready: %v", err)
	}
	if bc.VertexEntry != "vs_main" || bc.FragmentEntry != "fs_main" {
		t.Errorf("entry points = %q, %q", bc.VertexEntry, bc.FragmentEntry)
	}
	if len(bc.Uniforms) != 1 || bc.Uniforms[0].Key != "WorldViewProjection" {
		t.Errorf("uniforms = %+v", bc.Uniforms)
	}
	if len(bc.VertexInputs) != 1 || bc.VertexInputs[0].Semantic != "POSITION" {
		t.Errorf("vertex inputs = %+v", bc.VertexInputs)
	}
	if len(bc.Textures) != 1 || bc.Textures[0].Kind != renderer.TextureKindUnfilterableFloat {
		t.Errorf("textures = %+v", bc.Textures)
	}

	bc, ok = lib.Effect("override")
	if !ok {
		t.Fatal("override effect not ready")
	}
	if len(bc.Textures) != 1 || bc.Textures[0].Kind != renderer.TextureKindFloat {
		t.Errorf("explicit textures were replaced: %+v", bc.Textures)
	}
	if len(bc.Uniforms) != 1 {
		t.Errorf("unset uniforms were not reflected: %+v", bc.Uniforms)
	}
}

func TestLibraryRejectsUnbindableProgram(t *testing.T) {
	lib := NewLibrary(WithCompileFunc(echoCompile), WithSynchronousCompilation())
	_ = lib.Register(Program{Name: "bad", Source: "@group(2) @binding(0) var<uniform> p: P;"})
	_ = lib.Load("bad")

	status, err := lib.Status("bad")
	if status != StatusFailed || err == nil {
		t.Fatalf("Status() = %v, %v; want failed", status, err)
	}
}
