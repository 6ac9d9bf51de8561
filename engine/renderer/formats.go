package renderer

// PixelFormat identifies the texel layout of a texture.
type PixelFormat int

const (
	PixelFormatUndefined PixelFormat = iota
	PixelFormatR32G32Float
	PixelFormatRGBA16Float
	PixelFormatRGBA8Unorm
	PixelFormatBGRA8Unorm
	PixelFormatDepth24Plus
	PixelFormatDepth32Float
)

// BytesPerPixel returns the size of one texel, or 0 for formats without a defined CPU layout.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatR32G32Float, PixelFormatRGBA16Float:
		return 8
	case PixelFormatRGBA8Unorm, PixelFormatBGRA8Unorm, PixelFormatDepth32Float:
		return 4
	default:
		return 0
	}
}

// IsBlendable reports whether render pipelines may enable blending on a target of this format.
// 32-bit float formats are not blendable without an optional device feature.
func (f PixelFormat) IsBlendable() bool {
	switch f {
	case PixelFormatRGBA16Float, PixelFormatRGBA8Unorm, PixelFormatBGRA8Unorm:
		return true
	default:
		return false
	}
}

// IsDepth reports whether the format holds depth data.
func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth24Plus || f == PixelFormatDepth32Float
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatR32G32Float:
		return "R32G32Float"
	case PixelFormatRGBA16Float:
		return "RGBA16Float"
	case PixelFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case PixelFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case PixelFormatDepth24Plus:
		return "Depth24Plus"
	case PixelFormatDepth32Float:
		return "Depth32Float"
	default:
		return "Undefined"
	}
}

// PrimitiveType is the topology used to assemble vertices into primitives.
type PrimitiveType int

const (
	PrimitiveTypeTriangleList PrimitiveType = iota
	PrimitiveTypeTriangleStrip
	PrimitiveTypeLineList
	PrimitiveTypeLineStrip
	PrimitiveTypePointList
)

// VertexFormat is the data type of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32x2 VertexFormat = iota
	VertexFormatFloat32x3
	VertexFormatFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	default:
		return 16
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)
