package renderer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ParameterKey names an effect parameter.
type ParameterKey string

type parameterValue struct {
	kind UniformType
	data [16]float32
	i    int32
}

// ParameterCollection holds the uniform values and texture inputs handed to an effect.
// Values are stored by value so that setting a parameter every frame does not allocate.
type ParameterCollection struct {
	values   map[ParameterKey]parameterValue
	textures map[int]Texture
}

// NewParameterCollection creates an empty collection.
func NewParameterCollection() *ParameterCollection {
	return &ParameterCollection{
		values:   make(map[ParameterKey]parameterValue),
		textures: make(map[int]Texture),
	}
}

// SetMatrix stores a 4x4 matrix parameter.
func (p *ParameterCollection) SetMatrix(key ParameterKey, m mgl32.Mat4) {
	v := parameterValue{kind: UniformTypeMat4}
	copy(v.data[:], m[:])
	p.values[key] = v
}

// SetVector4 stores a vec4 parameter.
func (p *ParameterCollection) SetVector4(key ParameterKey, vec mgl32.Vec4) {
	v := parameterValue{kind: UniformTypeVec4}
	copy(v.data[:], vec[:])
	p.values[key] = v
}

// SetVector2 stores a vec2 parameter.
func (p *ParameterCollection) SetVector2(key ParameterKey, vec mgl32.Vec2) {
	v := parameterValue{kind: UniformTypeVec2}
	copy(v.data[:], vec[:])
	p.values[key] = v
}

// SetFloat stores a scalar float parameter.
func (p *ParameterCollection) SetFloat(key ParameterKey, f float32) {
	v := parameterValue{kind: UniformTypeFloat}
	v.data[0] = f
	p.values[key] = v
}

// SetInt stores a scalar integer parameter.
func (p *ParameterCollection) SetInt(key ParameterKey, i int32) {
	p.values[key] = parameterValue{kind: UniformTypeInt, i: i}
}

// Matrix returns a matrix parameter and whether it was set with that type.
func (p *ParameterCollection) Matrix(key ParameterKey) (mgl32.Mat4, bool) {
	v, ok := p.values[key]
	if !ok || v.kind != UniformTypeMat4 {
		return mgl32.Mat4{}, false
	}
	var m mgl32.Mat4
	copy(m[:], v.data[:])
	return m, true
}

// Vector4 returns a vec4 parameter and whether it was set with that type.
func (p *ParameterCollection) Vector4(key ParameterKey) (mgl32.Vec4, bool) {
	v, ok := p.values[key]
	if !ok || v.kind != UniformTypeVec4 {
		return mgl32.Vec4{}, false
	}
	return mgl32.Vec4{v.data[0], v.data[1], v.data[2], v.data[3]}, true
}

// Vector2 returns a vec2 parameter and whether it was set with that type.
func (p *ParameterCollection) Vector2(key ParameterKey) (mgl32.Vec2, bool) {
	v, ok := p.values[key]
	if !ok || v.kind != UniformTypeVec2 {
		return mgl32.Vec2{}, false
	}
	return mgl32.Vec2{v.data[0], v.data[1]}, true
}

// Float returns a float parameter and whether it was set with that type.
func (p *ParameterCollection) Float(key ParameterKey) (float32, bool) {
	v, ok := p.values[key]
	if !ok || v.kind != UniformTypeFloat {
		return 0, false
	}
	return v.data[0], true
}

// Int returns an integer parameter and whether it was set with that type.
func (p *ParameterCollection) Int(key ParameterKey) (int32, bool) {
	v, ok := p.values[key]
	if !ok || v.kind != UniformTypeInt {
		return 0, false
	}
	return v.i, true
}

// SetTexture binds t to a texture input slot. A nil texture clears the slot.
func (p *ParameterCollection) SetTexture(slot int, t Texture) {
	if t == nil {
		delete(p.textures, slot)
		return
	}
	p.textures[slot] = t
}

// Texture returns the texture bound to slot.
func (p *ParameterCollection) Texture(slot int) (Texture, bool) {
	t, ok := p.textures[slot]
	return t, ok
}

// CopyFrom overwrites every value and texture present in other.
func (p *ParameterCollection) CopyFrom(other *ParameterCollection) {
	for k, v := range other.values {
		p.values[k] = v
	}
	for slot, t := range other.textures {
		p.textures[slot] = t
	}
}

func uniformLayout(t UniformType) (align, size int) {
	switch t {
	case UniformTypeMat4:
		return 16, 64
	case UniformTypeVec4:
		return 16, 16
	case UniformTypeVec2:
		return 8, 8
	default:
		return 4, 4
	}
}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

// UniformBlockSize returns the size in bytes of a uniform block following WGSL host-shareable layout rules.
func UniformBlockSize(fields []UniformField) int {
	offset := 0
	for _, f := range fields {
		align, size := uniformLayout(f.Type)
		offset = alignUp(offset, align) + size
	}
	return max(alignUp(offset, 16), 16)
}

// PackUniforms serializes params into dst following the WGSL layout of fields and returns the written slice.
// Parameters that were never set are written as zero. A parameter set with a different type is an error.
//
// Parameters:
//   - dst: a buffer to reuse, grown when too small
//   - fields: the uniform block declaration
//   - params: the values to pack
//
// Returns:
//   - []byte: the packed block, UniformBlockSize(fields) bytes long
//   - error: an error if a parameter type does not match its declaration
func PackUniforms(dst []byte, fields []UniformField, params *ParameterCollection) ([]byte, error) {
	size := UniformBlockSize(fields)
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	clear(dst)

	offset := 0
	for _, f := range fields {
		align, fieldSize := uniformLayout(f.Type)
		offset = alignUp(offset, align)

		v, ok := params.values[f.Key]
		if ok {
			if v.kind != f.Type {
				return nil, fmt.Errorf("uniform %q declared as type %d but set as type %d", f.Key, f.Type, v.kind)
			}
			if f.Type == UniformTypeInt {
				binary.LittleEndian.PutUint32(dst[offset:], uint32(v.i))
			} else {
				for i := range fieldSize / 4 {
					binary.LittleEndian.PutUint32(dst[offset+i*4:], math.Float32bits(v.data[i]))
				}
			}
		}
		offset += fieldSize
	}
	return dst, nil
}
