package capture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/charmbracelet/log"
	"github.com/mrjoshuak/go-openexr/exr"
)

// ErrNoCopySupport is returned by Flush when the command list of the captured frame could not copy textures.
var ErrNoCopySupport = errors.New("command list cannot copy textures")

type snapshot struct {
	volume   int
	bounds   renderer.Texture
	backSide renderer.Texture
}

type capturer struct {
	mu *sync.Mutex

	device      renderer.Device
	dir         string
	prefix      string
	compression exr.Compression

	armed     bool
	frame     uint64
	snapshots []snapshot
	copyErr   error

	logger *log.Logger
}

// Capturer snapshots the min/max bound buffers and back-side buffers the fog compositor renders,
// and writes them to OpenEXR files once the frame has been submitted.
//
// Observe is a fog.BoundsObserver. During an armed frame it copies each volume's scratch buffers
// into targets owned by the capturer, so the pooled buffers can be reused for the next volume.
type Capturer interface {
	// Request arms the capturer for the next frame.
	Request()

	// Armed reports whether the next observed frame will be captured.
	Armed() bool

	// Observe records copies of the scratch buffers of one volume.
	//
	// Parameters:
	//   - cl: the command list of the frame
	//   - volume: the position of the volume in compositing order
	//   - bounds: the min/max bound buffer
	//   - backSide: the 1x1 back-side buffer
	Observe(cl renderer.CommandList, volume int, bounds, backSide renderer.Texture)

	// Flush reads back the snapshots of the captured frame and writes one EXR file per buffer.
	// It must be called after the frame was submitted. Flush does nothing when no snapshot is pending.
	//
	// Parameters:
	//   - reader: reads texture contents back to the CPU
	//
	// Returns:
	//   - []string: the written file paths
	//   - error: an error if a snapshot could not be read or written
	Flush(reader renderer.TextureReader) ([]string, error)

	// Release frees the snapshot targets that were not flushed.
	Release()
}

var _ Capturer = &capturer{}

// NewCapturer creates a capturer writing into dir.
//
// Parameters:
//   - device: creates the snapshot targets
//   - dir: the output directory, created on first flush
//   - opts: a variadic list of CapturerBuilderOption functions
//
// Returns:
//   - Capturer: the new capturer
func NewCapturer(device renderer.Device, dir string, opts ...CapturerBuilderOption) Capturer {
	c := &capturer{
		mu:          &sync.Mutex{},
		device:      device,
		dir:         dir,
		prefix:      "fog",
		compression: exr.CompressionZIP,
		logger:      logging.Named("capture"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *capturer) Request() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = true
}

func (c *capturer) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

func (c *capturer) Observe(cl renderer.CommandList, volume int, bounds, backSide renderer.Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed || c.copyErr != nil {
		return
	}
	copier, ok := cl.(renderer.TextureCopier)
	if !ok {
		c.copyErr = ErrNoCopySupport
		return
	}

	s := snapshot{volume: volume}
	var err error
	if s.bounds, err = c.copyOf(copier, bounds, fmt.Sprintf("capture bounds %d", volume)); err != nil {
		c.copyErr = err
		return
	}
	if s.backSide, err = c.copyOf(copier, backSide, fmt.Sprintf("capture back side %d", volume)); err != nil {
		s.bounds.Release()
		c.copyErr = err
		return
	}
	c.snapshots = append(c.snapshots, s)
}

func (c *capturer) copyOf(copier renderer.TextureCopier, src renderer.Texture, label string) (renderer.Texture, error) {
	dst, err := c.device.CreateRenderTarget(renderer.TextureDescription{
		Label:  label,
		Width:  src.Width(),
		Height: src.Height(),
		Format: src.Format(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	if err := copier.CopyTexture(src, dst); err != nil {
		dst.Release()
		return nil, fmt.Errorf("failed to copy %s: %w", src.Label(), err)
	}
	return dst, nil
}

func (c *capturer) Flush(reader renderer.TextureReader) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed {
		return nil, nil
	}
	snapshots, copyErr := c.snapshots, c.copyErr
	c.snapshots, c.copyErr = nil, nil
	c.armed = false
	c.frame++
	defer releaseSnapshots(snapshots)

	if copyErr != nil {
		return nil, copyErr
	}
	if len(snapshots) == 0 {
		c.logger.Debug("capture requested but no fog volume was drawn", "frame", c.frame)
		return nil, nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	var paths []string
	for _, s := range snapshots {
		for _, t := range []struct {
			kind string
			tex  renderer.Texture
		}{
			{"bounds", s.bounds},
			{"backside", s.backSide},
		} {
			path := filepath.Join(c.dir, fmt.Sprintf("%s_%04d_volume%d_%s.exr", c.prefix, c.frame, s.volume, t.kind))
			if err := c.write(reader, t.tex, path); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}

	c.logger.Info("fog buffers captured", "frame", c.frame, "files", len(paths), "dir", c.dir)
	return paths, nil
}

func (c *capturer) write(reader renderer.TextureReader, tex renderer.Texture, path string) error {
	data, err := reader.ReadTexture(tex)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", tex.Label(), err)
	}
	channels, err := decodeChannels(data, tex.Width(), tex.Height(), tex.Format())
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", tex.Label(), err)
	}
	return writeEXR(path, tex.Width(), tex.Height(), c.compression, channels)
}

func (c *capturer) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	releaseSnapshots(c.snapshots)
	c.snapshots = nil
}

func releaseSnapshots(snapshots []snapshot) {
	for _, s := range snapshots {
		s.bounds.Release()
		s.backSide.Release()
	}
}

// writeEXR writes the channels as a single-part scanline file with 32-bit float pixels.
func writeEXR(path string, width, height int, compression exr.Compression, channels []channel) error {
	header := exr.NewScanlineHeader(width, height)
	header.SetCompression(compression)

	list := exr.NewChannelList()
	for _, ch := range channels {
		list.Add(exr.NewChannel(ch.name, exr.PixelTypeFloat))
	}
	header.SetChannels(list)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer, err := exr.NewScanlineWriter(f, header)
	if err != nil {
		return fmt.Errorf("failed to create EXR writer: %w", err)
	}

	fb := exr.NewFrameBuffer()
	for _, ch := range channels {
		fb.Set(ch.name, exr.NewSliceFromFloat32(ch.data, width, height))
	}
	writer.SetFrameBuffer(fb)

	if err := writer.WritePixels(0, height-1); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return nil
}
