package renderer

// Texture is a GPU image owned by a backend. Render targets, depth buffers and swap chain images all satisfy it.
type Texture interface {
	// Width returns the width of the texture in pixels.
	Width() int

	// Height returns the height of the texture in pixels.
	Height() int

	// Format returns the pixel format of the texture.
	Format() PixelFormat

	// Label returns the debug label assigned at creation.
	Label() string

	// Release frees the GPU resources held by the texture. Calling Release more than once is a no-op.
	Release()
}

// TextureDescription describes a render target to be created by a Device.
type TextureDescription struct {
	Label  string
	Width  int
	Height int
	Format PixelFormat
}

// BufferUsage flags describe how a GPU buffer is used.
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
)

// Buffer is a GPU buffer owned by a backend.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Label returns the debug label assigned at creation.
	Label() string

	// Release frees the GPU resources held by the buffer.
	Release()
}

// VertexBufferBinding binds a vertex buffer together with the layout of the vertices it holds.
type VertexBufferBinding struct {
	Buffer Buffer
	Layout VertexBufferLayout
	Offset uint64
}

// IndexBufferBinding binds an index buffer.
type IndexBufferBinding struct {
	Buffer Buffer
	Format IndexFormat
	Offset uint64
}

// PipelineState is a compiled, backend specific pipeline. It is opaque to everything but the backend that produced it.
type PipelineState interface {
	Label() string
}

// Device creates GPU resources.
type Device interface {
	// CreateRenderTarget creates a texture that can be rendered to and sampled from.
	//
	// Parameters:
	//   - desc: the size, format and label of the target
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if creation fails
	CreateRenderTarget(desc TextureDescription) (Texture, error)

	// CreateBuffer creates a GPU buffer initialized with data.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - data: initial contents, also defining the buffer size
	//   - usage: how the buffer will be bound
	//
	// Returns:
	//   - Buffer: the created buffer
	//   - error: an error if creation or upload fails
	CreateBuffer(label string, data []byte, usage BufferUsage) (Buffer, error)
}

// TextureReader copies texture contents back to the CPU.
type TextureReader interface {
	// ReadTexture returns the tightly packed texels of t, row by row from the top.
	ReadTexture(t Texture) ([]byte, error)
}

// TextureCopier is implemented by command lists that can copy between textures of equal size and format.
type TextureCopier interface {
	// CopyTexture records a copy of src into dst.
	//
	// Parameters:
	//   - src: the texture to read
	//   - dst: the texture to write
	//
	// Returns:
	//   - error: an error if the textures differ in size or format
	CopyTexture(src, dst Texture) error
}
