package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// PositionSemantic is the vertex element semantic of object-space positions.
const PositionSemantic = "POSITION"

// PositionLayout is the layout of a tightly packed float32x3 position stream.
var PositionLayout = renderer.VertexBufferLayout{
	Stride:   12,
	Elements: []renderer.VertexElement{{Semantic: PositionSemantic, Format: renderer.VertexFormatFloat32x3, Offset: 0}},
}

// BoxGeometry returns the corners and triangle indices of an axis-aligned box centered on the origin
// with the given half extents. Triangles wind counter-clockwise when seen from outside.
//
// Parameters:
//   - halfExtent: half the size along each axis
//
// Returns:
//   - []mgl32.Vec3: the eight corners
//   - []uint32: 36 indices, two triangles per face
func BoxGeometry(halfExtent mgl32.Vec3) ([]mgl32.Vec3, []uint32) {
	x, y, z := halfExtent.X(), halfExtent.Y(), halfExtent.Z()
	corners := []mgl32.Vec3{
		{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
	}
	indices := []uint32{
		4, 5, 6, 4, 6, 7, // +z
		1, 0, 3, 1, 3, 2, // -z
		5, 1, 2, 5, 2, 6, // +x
		0, 4, 7, 0, 7, 3, // -x
		7, 6, 2, 7, 2, 3, // +y
		0, 1, 5, 0, 5, 4, // -y
	}
	return corners, indices
}

// NewBoxModel uploads a box to device and wraps it in a single-mesh model.
//
// Parameters:
//   - device: the device creating the vertex and index buffers
//   - name: the model name, also used for buffer labels
//   - halfExtent: half the size of the box along each axis
//
// Returns:
//   - Model: the box model
//   - error: an error if a buffer cannot be created
func NewBoxModel(device renderer.Device, name string, halfExtent mgl32.Vec3) (Model, error) {
	corners, indices := BoxGeometry(halfExtent)

	vb, err := device.CreateBuffer(name+"_vertices", common.SliceToBytes(corners), renderer.BufferUsageVertex)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for %q: %w", name, err)
	}
	ib, err := device.CreateBuffer(name+"_indices", common.SliceToBytes(indices), renderer.BufferUsageIndex)
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("failed to create index buffer for %q: %w", name, err)
	}

	draw := NewMeshDraw(
		renderer.PrimitiveTypeTriangleList,
		[]renderer.VertexBufferBinding{{Buffer: vb, Layout: PositionLayout}},
		&renderer.IndexBufferBinding{Buffer: ib, Format: renderer.IndexFormatUint32},
		uint32(len(indices)),
	)
	mesh := &Mesh{
		Name:        name,
		BoundingBox: common.NewAABBFromPoints(corners),
		Draw:        draw,
	}
	return NewModel(WithName(name), WithMeshes(mesh)), nil
}
