package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance of p from the plane. Positive values lie on the normal side.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// NewFrustum extracts frustum planes from a view-projection matrix using the Gribb/Hartmann method.
// The projection is expected to produce WebGPU clip space, so the near plane is row 2 on its own
// rather than row 3 + row 2 as in OpenGL.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined Projection * View matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromRow(r2)
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))
	return f
}

// planeFromRow builds a normalized plane from a combined matrix row.
func planeFromRow(row mgl32.Vec4) Plane {
	p := Plane{Normal: row.Vec3(), Distance: row.W()}
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}

// ContainsPoint reports whether point lies inside or on every plane of the frustum.
func (f Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(point) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether box overlaps the frustum.
// For every plane the box corner furthest along the plane normal is tested; when that corner
// is behind any plane the whole box is outside. The test is conservative near frustum corners.
//
// Parameters:
//   - box: the world-space box to test
//
// Returns:
//   - bool: false only when the box is fully outside at least one plane
func (f Frustum) IntersectsBox(box AABB) bool {
	for _, p := range f.Planes {
		var corner mgl32.Vec3
		for i := range 3 {
			if p.Normal[i] >= 0 {
				corner[i] = box.Max[i]
			} else {
				corner[i] = box.Min[i]
			}
		}
		if p.SignedDistance(corner) < 0 {
			return false
		}
	}
	return true
}
