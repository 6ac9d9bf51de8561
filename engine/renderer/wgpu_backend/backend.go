package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	PresentModeVSync PresentMode = iota
	PresentModeUncapped
)

// ErrNoFrame is returned when frame work is requested outside BeginFrame and EndFrame.
var ErrNoFrame = errors.New("no frame in progress")

// backend is the implementation of the Backend interface.
type backend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	surfaceFormat        wgpu.TextureFormat
	uniformChunkSize     uint64

	width  int
	height int
	color  *texture
	depth  *texture

	frameEncoder *wgpu.CommandEncoder
	frameList    *commandList
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	uniformChunks []*uniformChunk

	logger *log.Logger
}

// Backend is the WebGPU implementation of the renderer contracts. It owns the device, the optional
// window surface and the depth buffer of the frame, and hands out one CommandList per frame.
type Backend interface {
	renderer.Device
	renderer.TextureReader
	pipeline.Compiler

	// ConfigureSurface resizes the frame targets. It must be called before the first frame and
	// whenever the window size changes.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the frame targets could not be created
	ConfigureSurface(width, height int) error

	// SetPresentMode selects vsync or uncapped presentation. It applies on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the frame color target and opens a command list.
	//
	// Returns:
	//   - renderer.CommandList: the command list of the frame
	//   - renderer.Texture: the color target of the frame (the swap chain image when a surface exists)
	//   - error: an error if the frame could not be started
	BeginFrame() (renderer.CommandList, renderer.Texture, error)

	// EndFrame closes the command list and submits it.
	//
	// Returns:
	//   - error: an error if the commands could not be submitted
	EndFrame() error

	// Present shows the frame color target. It does nothing without a surface.
	Present()

	// DepthTexture returns the depth buffer of the frame.
	DepthTexture() renderer.Texture

	// SurfaceFormat returns the pixel format of the frame color target.
	SurfaceFormat() renderer.PixelFormat

	// Release frees every resource owned by the backend.
	Release()
}

var _ Backend = &backend{}

// NewBackend creates a backend presenting to the surface described by surfaceDescriptor. A nil descriptor
// creates a headless backend rendering into an offscreen color target.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, or nil
//   - opts: a variadic list of BackendBuilderOption functions to configure the backend
//
// Returns:
//   - Backend: the new backend
//   - error: an error if no adapter or device is available
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...BackendBuilderOption) (Backend, error) {
	runtime.LockOSThread()
	b := &backend{
		mu:               &sync.Mutex{},
		instance:         wgpu.CreateInstance(nil),
		presentMode:      wgpu.PresentModeFifo,
		surfaceFormat:    wgpu.TextureFormatRGBA8Unorm,
		uniformChunkSize: defaultUniformChunkSize,
		logger:           logging.Named("wgpu"),
	}
	for _, opt := range opts {
		opt(b)
	}

	if surfaceDescriptor != nil {
		b.surface = b.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-fog device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	b.logger.Info("webgpu device ready", "headless", b.surface == nil)
	return b, nil
}

func (b *backend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	b.width, b.height = width, height

	if b.surface != nil {
		capabilities := b.surface.GetCapabilities(b.adapter)
		b.surfaceFormat = capabilities.Formats[0]
		for _, f := range capabilities.Formats {
			if pixelFormat(f) != renderer.PixelFormatUndefined {
				b.surfaceFormat = f
				break
			}
		}
		b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      b.surfaceFormat,
			Width:       uint32(width),
			Height:      uint32(height),
			PresentMode: b.presentMode,
			AlphaMode:   capabilities.AlphaModes[0],
		})
	} else {
		if b.color != nil {
			b.color.Release()
		}
		color, err := b.createTexture(renderer.TextureDescription{
			Label:  "offscreen color",
			Width:  width,
			Height: height,
			Format: pixelFormat(b.surfaceFormat),
		})
		if err != nil {
			return err
		}
		b.color = color
	}

	if b.depth != nil {
		b.depth.Release()
	}
	depth, err := b.createTexture(renderer.TextureDescription{
		Label:  "scene depth",
		Width:  width,
		Height: height,
		Format: renderer.PixelFormatDepth32Float,
	})
	if err != nil {
		return err
	}
	b.depth = depth

	b.logger.Debug("surface configured", "width", width, "height", height, "format", pixelFormat(b.surfaceFormat))
	return nil
}

func (b *backend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *backend) BeginFrame() (renderer.CommandList, renderer.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return nil, nil, errors.New("previous frame not ended")
	}
	if b.depth == nil {
		return nil, nil, errors.New("surface not configured")
	}

	var target renderer.Texture = b.color
	if b.surface != nil {
		surfaceTexture, err := b.surface.GetCurrentTexture()
		if err != nil {
			return nil, nil, err
		}
		view, err := surfaceTexture.CreateView(nil)
		if err != nil {
			surfaceTexture.Release()
			return nil, nil, err
		}
		b.frameSurface, b.frameView = surfaceTexture, view
		target = WrapTextureView(view, b.width, b.height, b.surfaceFormat, "swap chain")
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.releaseFrameSurface()
		return nil, nil, err
	}
	b.frameEncoder = encoder
	b.frameList = newCommandList(b, encoder)
	return b.frameList, target, nil
}

func (b *backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	defer func() {
		b.frameList.release()
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.frameList = nil
	}()

	b.frameList.endPass()
	b.frameList.flushUniforms()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish frame: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *backend) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *backend) DepthTexture() renderer.Texture {
	return b.depth
}

func (b *backend) SurfaceFormat() renderer.PixelFormat {
	return pixelFormat(b.surfaceFormat)
}

func (b *backend) CreateRenderTarget(desc renderer.TextureDescription) (renderer.Texture, error) {
	return b.createTexture(desc)
}

func (b *backend) createTexture(desc renderer.TextureDescription) (*texture, error) {
	format, err := textureFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create render target %q: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create view of %q: %w", desc.Label, err)
	}

	return &texture{
		label:   desc.Label,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		texture: tex,
		view:    view,
		owned:   true,
	}, nil
}

func (b *backend) CreateBuffer(label string, data []byte, usage renderer.BufferUsage) (renderer.Buffer, error) {
	var wgpuUsage wgpu.BufferUsage = wgpu.BufferUsageCopyDst
	if usage&renderer.BufferUsageVertex != 0 {
		wgpuUsage |= wgpu.BufferUsageVertex
	}
	if usage&renderer.BufferUsageIndex != 0 {
		wgpuUsage |= wgpu.BufferUsageIndex
	}
	if usage&renderer.BufferUsageUniform != 0 {
		wgpuUsage |= wgpu.BufferUsageUniform
	}

	// queue writes must be a multiple of four bytes
	padded := data
	if rem := len(data) % 4; rem != 0 {
		padded = append(append([]byte(nil), data...), make([]byte, 4-rem)...)
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(padded)),
		Usage: wgpuUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, padded)

	return &buffer{label: label, size: uint64(len(data)), buffer: buf}, nil
}

func (b *backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	for _, chunk := range b.uniformChunks {
		chunk.buffer.Release()
	}
	b.uniformChunks = nil
	if b.color != nil {
		b.color.Release()
	}
	if b.depth != nil {
		b.depth.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
