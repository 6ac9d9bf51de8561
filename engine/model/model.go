package model

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

var meshDrawCount atomic.Uint64

// MeshDraw is everything needed to issue the draw call of one mesh.
type MeshDraw struct {
	// ID identifies the draw and its buffers. It is unique per process.
	ID uint64

	PrimitiveType renderer.PrimitiveType
	VertexBuffers []renderer.VertexBufferBinding
	// IndexBuffer is nil for non-indexed draws.
	IndexBuffer *renderer.IndexBufferBinding

	// DrawCount is the number of indices, or of vertices for non-indexed draws.
	DrawCount     uint32
	StartLocation uint32

	layout     renderer.VertexLayout
	layoutHash uint64
}

// NewMeshDraw creates a draw and caches its vertex layout and layout hash.
//
// Parameters:
//   - primitiveType: the topology of the draw
//   - vertexBuffers: the bound vertex buffers in slot order
//   - indexBuffer: the index buffer, or nil
//   - drawCount: number of indices (or vertices) to draw
//
// Returns:
//   - *MeshDraw: the new draw
func NewMeshDraw(primitiveType renderer.PrimitiveType, vertexBuffers []renderer.VertexBufferBinding, indexBuffer *renderer.IndexBufferBinding, drawCount uint32) *MeshDraw {
	layout := renderer.LayoutOf(vertexBuffers)
	return &MeshDraw{
		ID:            meshDrawCount.Add(1),
		PrimitiveType: primitiveType,
		VertexBuffers: vertexBuffers,
		IndexBuffer:   indexBuffer,
		DrawCount:     drawCount,
		layout:        layout,
		layoutHash:    layout.Hash(),
	}
}

// Layout returns the vertex layout of the draw.
func (d *MeshDraw) Layout() renderer.VertexLayout {
	return d.layout
}

// LayoutHash returns the cached hash of Layout.
func (d *MeshDraw) LayoutHash() uint64 {
	return d.layoutHash
}

// Mesh is a drawable piece of a model with its object-space bounds.
type Mesh struct {
	Name        string
	BoundingBox common.AABB
	Draw        *MeshDraw
}

type model struct {
	name   string
	meshes []*Mesh
}

// Model is a named collection of meshes sharing one world transform.
type Model interface {
	// Name returns the model name.
	Name() string

	// Meshes returns the meshes of the model in draw order.
	//
	// Returns:
	//   - []*Mesh: the meshes; callers must not modify the slice
	Meshes() []*Mesh

	// BoundingBox returns the union of the mesh bounding boxes.
	BoundingBox() common.AABB

	// AddMesh appends a mesh.
	AddMesh(m *Mesh)
}

var _ Model = &model{}

// NewModel creates a model.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []*Mesh {
	return m.meshes
}

func (m *model) BoundingBox() common.AABB {
	if len(m.meshes) == 0 {
		return common.AABB{}
	}
	box := m.meshes[0].BoundingBox
	for _, mesh := range m.meshes[1:] {
		box = box.Merge(mesh.BoundingBox)
	}
	return box
}

func (m *model) AddMesh(mesh *Mesh) {
	m.meshes = append(m.meshes, mesh)
}
