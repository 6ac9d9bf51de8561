package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box described by its minimum and maximum corners.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABBFromPoints returns the smallest box containing every point, or the zero box when points is empty.
//
// Parameters:
//   - points: the points to enclose
//
// Returns:
//   - AABB: the enclosing box
func NewAABBFromPoints(points []mgl32.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for i := range 3 {
			box.Min[i] = math32.Min(box.Min[i], p[i])
			box.Max[i] = math32.Max(box.Max[i], p[i])
		}
	}
	return box
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extent returns the half-size of the box along each axis.
func (b AABB) Extent() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// IsZeroExtent reports whether the box collapses to a single point.
func (b AABB) IsZeroExtent() bool {
	return b.Min == b.Max
}

// Transform returns the axis-aligned box enclosing b after it has been transformed by m.
// The extent is rebuilt from the absolute rotation-scale part of m, so the result stays conservative.
//
// Parameters:
//   - m: an affine column-major transform
//
// Returns:
//   - AABB: the transformed box
func (b AABB) Transform(m mgl32.Mat4) AABB {
	center := m.Mul4x1(b.Center().Vec4(1)).Vec3()
	extent := b.Extent()

	var worldExtent mgl32.Vec3
	for row := range 3 {
		for col := range 3 {
			worldExtent[row] += math32.Abs(m[col*4+row]) * extent[col]
		}
	}
	return AABB{Min: center.Sub(worldExtent), Max: center.Add(worldExtent)}
}

// Merge returns the smallest box enclosing both b and other.
func (b AABB) Merge(other AABB) AABB {
	out := b
	for i := range 3 {
		out.Min[i] = math32.Min(out.Min[i], other.Min[i])
		out.Max[i] = math32.Max(out.Max[i], other.Max[i])
	}
	return out
}
