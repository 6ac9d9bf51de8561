package renderer

// UniformType is the WGSL type of a uniform block member.
type UniformType int

const (
	UniformTypeMat4 UniformType = iota
	UniformTypeVec4
	UniformTypeVec2
	UniformTypeFloat
	UniformTypeInt
)

// UniformField declares one member of an effect's uniform block, in declaration order.
type UniformField struct {
	Key  ParameterKey
	Type UniformType
}

// TextureKind is the sample type a texture binding expects.
type TextureKind int

const (
	// TextureKindUnfilterableFloat is a float texture read with textureLoad, e.g. RGBA16Float targets.
	TextureKindUnfilterableFloat TextureKind = iota
	// TextureKindFloat is a filterable float texture.
	TextureKindFloat
	// TextureKindDepth is a depth texture.
	TextureKindDepth
)

// TextureBinding declares a texture input slot of an effect.
type TextureBinding struct {
	Slot int
	Kind TextureKind
}

// VertexInput maps a vertex element semantic onto a shader input location.
type VertexInput struct {
	Semantic string
	Location uint32
}

// EffectIdentity identifies one compiled version of an effect. It compares with ==.
type EffectIdentity struct {
	ID   uint64
	Hash [32]byte
}

// EffectBytecode is a compiled effect ready to be turned into pipeline state.
//
// Binding convention: group 0, binding 0 is the uniform block (bound with a dynamic offset) and
// binding 1+Slot is each declared texture.
type EffectBytecode struct {
	// ID is unique per compilation within a process.
	ID uint64
	// Name is the name the effect was registered under.
	Name string
	// Hash is the SHA-256 of the compiled SPIR-V.
	Hash [32]byte
	// Source is the WGSL source the bytecode was compiled from.
	Source string
	// SPIRV is the compiled module.
	SPIRV []byte

	VertexEntry   string
	FragmentEntry string

	VertexInputs []VertexInput
	Uniforms     []UniformField
	Textures     []TextureBinding
}

// Identity returns the identity of this compilation.
func (b *EffectBytecode) Identity() EffectIdentity {
	if b == nil {
		return EffectIdentity{}
	}
	return EffectIdentity{ID: b.ID, Hash: b.Hash}
}
