package effect

import "github.com/Carmen-Shannon/oxy-fog/engine/renderer"

// shaderStage selects which entry point parseEntryPoint looks for.
type shaderStage int

const (
	stageVertex shaderStage = iota
	stageFragment
)

// parsedField represents a single field or entry point parameter extracted during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

// reflection is the renderer-facing interface of an effect as declared by its WGSL source.
type reflection struct {
	vertexEntry   string
	fragmentEntry string
	vertexInputs  []renderer.VertexInput
	uniforms      []renderer.UniformField
	textures      []renderer.TextureBinding
}

// apply fills every field p leaves empty with the reflected value. Explicit program fields win.
func (r reflection) apply(p Program) Program {
	if p.VertexEntry == "" {
		p.VertexEntry = r.vertexEntry
	}
	if p.FragmentEntry == "" {
		p.FragmentEntry = r.fragmentEntry
	}
	if p.VertexInputs == nil {
		p.VertexInputs = r.vertexInputs
	}
	if p.Uniforms == nil {
		p.Uniforms = r.uniforms
	}
	if p.Textures == nil {
		p.Textures = r.textures
	}
	return p
}
