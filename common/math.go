package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ClipSpaceRemap converts an OpenGL style clip-space z in [-w, w] into the WebGPU [0, w] range.
// Matrices built with mgl32 helpers are pre-multiplied by it before reaching the GPU.
var ClipSpaceRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PerspectiveRH creates a right-handed perspective projection matrix with WebGPU depth in [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: distance to the near clip plane
//   - far: distance to the far clip plane
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveRH(fovY, aspect, near, far float32) mgl32.Mat4 {
	return ClipSpaceRemap.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// OrthoRH creates a right-handed orthographic projection centered on the view axis.
// Points at view-space z = -zNear map to depth 0 and points at z = -zFar map to depth 1.
// zNear may be negative, which extends the volume behind the eye.
//
// Parameters:
//   - width: width of the view volume
//   - height: height of the view volume
//   - zNear: signed distance to the near plane
//   - zFar: signed distance to the far plane
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthoRH(width, height, zNear, zFar float32) mgl32.Mat4 {
	rangeInv := 1 / (zNear - zFar)
	return mgl32.Mat4{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, rangeInv, 0,
		0, 0, zNear * rangeInv, 1,
	}
}

// ZProjection returns the two coefficients needed to turn a [0, 1] perspective depth sample back into linear view depth.
// For a depth sample d the linear depth is Y / (d - X).
//
// Parameters:
//   - near: distance to the near clip plane
//   - far: distance to the far clip plane
//
// Returns:
//   - mgl32.Vec2: (far / (far - near), -far * near / (far - near))
func ZProjection(near, far float32) mgl32.Vec2 {
	depthRange := far - near
	return mgl32.Vec2{far / depthRange, -far * near / depthRange}
}

// LinearDepth reconstructs linear view depth from a [0, 1] depth sample using coefficients from ZProjection.
func LinearDepth(depth float32, zProjection mgl32.Vec2) float32 {
	return zProjection.Y() / (depth - zProjection.X())
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Translation returns the translation column of an affine transform.
func Translation(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{m[12], m[13], m[14]}
}
