package renderer

import (
	"encoding/binary"
	"hash/fnv"
)

// VertexElement describes one attribute within an interleaved vertex.
type VertexElement struct {
	Semantic string
	Format   VertexFormat
	Offset   uint32
}

// VertexBufferLayout describes the vertices stored in a single vertex buffer.
type VertexBufferLayout struct {
	Stride   uint32
	Elements []VertexElement
}

// VertexLayout is the complete input layout of a draw, one entry per bound vertex buffer slot.
type VertexLayout []VertexBufferLayout

// Hash returns a stable 64-bit hash of the layout. Equal layouts always hash equally.
func (l VertexLayout) Hash() uint64 {
	h := fnv.New64a()
	var scratch [4]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		h.Write(scratch[:])
	}

	writeU32(uint32(len(l)))
	for _, buf := range l {
		writeU32(buf.Stride)
		writeU32(uint32(len(buf.Elements)))
		for _, e := range buf.Elements {
			h.Write([]byte(e.Semantic))
			h.Write([]byte{0})
			writeU32(uint32(e.Format))
			writeU32(e.Offset)
		}
	}
	return h.Sum64()
}

// Equal reports whether two layouts describe the same vertex input.
func (l VertexLayout) Equal(other VertexLayout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		a, b := l[i], other[i]
		if a.Stride != b.Stride || len(a.Elements) != len(b.Elements) {
			return false
		}
		for j := range a.Elements {
			if a.Elements[j] != b.Elements[j] {
				return false
			}
		}
	}
	return true
}

// LayoutOf collects the layouts of a set of vertex buffer bindings in slot order.
func LayoutOf(bindings []VertexBufferBinding) VertexLayout {
	layout := make(VertexLayout, len(bindings))
	for i, b := range bindings {
		layout[i] = b.Layout
	}
	return layout
}
