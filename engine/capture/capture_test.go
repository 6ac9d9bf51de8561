package capture

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/exrutil"
)

type fakeTexture struct {
	label         string
	width, height int
	format        renderer.PixelFormat
	data          []byte
	released      bool
}

func (t *fakeTexture) Width() int                   { return t.width }
func (t *fakeTexture) Height() int                  { return t.height }
func (t *fakeTexture) Format() renderer.PixelFormat { return t.format }
func (t *fakeTexture) Label() string                { return t.label }
func (t *fakeTexture) Release()                     { t.released = true }

type fakeDevice struct {
	created []*fakeTexture
}

func (d *fakeDevice) CreateRenderTarget(desc renderer.TextureDescription) (renderer.Texture, error) {
	t := &fakeTexture{label: desc.Label, width: desc.Width, height: desc.Height, format: desc.Format}
	d.created = append(d.created, t)
	return t, nil
}

func (d *fakeDevice) CreateBuffer(string, []byte, renderer.BufferUsage) (renderer.Buffer, error) {
	return nil, errors.New("not supported")
}

type fakeCommandList struct{}

func (fakeCommandList) Clear(renderer.Texture, renderer.Color4)                       {}
func (fakeCommandList) SetRenderTargetAndViewport(renderer.Texture, renderer.Texture) {}
func (fakeCommandList) PushRenderTargets() func()                                     { return func() {} }
func (fakeCommandList) RenderTargetFormat() renderer.PixelFormat                      { return renderer.PixelFormatUndefined }
func (fakeCommandList) SetPipelineState(renderer.PipelineState)                       {}
func (fakeCommandList) SetVertexBuffer(int, renderer.VertexBufferBinding)             {}
func (fakeCommandList) SetIndexBuffer(renderer.IndexBufferBinding)                    {}
func (fakeCommandList) Draw(uint32, uint32)                                           {}
func (fakeCommandList) DrawIndexed(uint32, uint32)                                    {}
func (fakeCommandList) ApplyParameters(*renderer.EffectBytecode, *renderer.ParameterCollection) error {
	return nil
}

// copyingCommandList copies texture contents immediately.
type copyingCommandList struct {
	fakeCommandList
}

func (copyingCommandList) CopyTexture(src, dst renderer.Texture) error {
	dst.(*fakeTexture).data = slices.Clone(src.(*fakeTexture).data)
	return nil
}

type textureReader struct{}

func (textureReader) ReadTexture(t renderer.Texture) ([]byte, error) {
	return t.(*fakeTexture).data, nil
}

func rg32(width, height int, texel func(x, y int) (float32, float32)) *fakeTexture {
	data := make([]byte, width*height*8)
	for y := range height {
		for x := range width {
			r, g := texel(x, y)
			i := (y*width + x) * 8
			binary.LittleEndian.PutUint32(data[i:], math.Float32bits(r))
			binary.LittleEndian.PutUint32(data[i+4:], math.Float32bits(g))
		}
	}
	return &fakeTexture{label: "scratch", width: width, height: height, format: renderer.PixelFormatR32G32Float, data: data}
}

func readChannel(t *testing.T, path, name string) []float32 {
	t.Helper()
	f, err := exr.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile(%s): %v", path, err)
	}
	defer f.Close()
	data, err := exrutil.ExtractChannel(f, name)
	if err != nil {
		t.Fatalf("ExtractChannel(%s): %v", name, err)
	}
	return data
}

func TestCaptureWritesBoundBuffers(t *testing.T) {
	dir := t.TempDir()
	device := &fakeDevice{}
	c := NewCapturer(device, dir, WithPrefix("test"))

	bounds := rg32(4, 2, func(x, y int) (float32, float32) {
		return float32(x) * 0.1, 1 - float32(y)*0.25
	})
	backSide := rg32(1, 1, func(int, int) (float32, float32) { return 0.5, 0.75 })

	c.Observe(copyingCommandList{}, 0, bounds, backSide)
	if len(device.created) != 0 {
		t.Fatal("an unarmed capturer must not copy")
	}

	c.Request()
	c.Observe(copyingCommandList{}, 0, bounds, backSide)
	for i := range bounds.data {
		bounds.data[i] = 0
	}

	paths, err := c.Flush(textureReader{})
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := []string{
		filepath.Join(dir, "test_0001_volume0_bounds.exr"),
		filepath.Join(dir, "test_0001_volume0_backside.exr"),
	}
	if !slices.Equal(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	red := readChannel(t, paths[0], "R")
	green := readChannel(t, paths[0], "G")
	if len(red) != 8 || len(green) != 8 {
		t.Fatalf("got %d/%d pixels, want 8", len(red), len(green))
	}
	if red[3] != float32(3)*0.1 || green[4] != 0.75 {
		t.Errorf("unexpected pixels: R[3]=%v G[4]=%v", red[3], green[4])
	}
	if back := readChannel(t, paths[1], "G"); back[0] != 0.75 {
		t.Errorf("back-side G = %v, want 0.75", back[0])
	}

	for _, tex := range device.created {
		if !tex.released {
			t.Errorf("snapshot %q not released", tex.label)
		}
	}
	if c.Armed() {
		t.Error("capturer should disarm after a flush")
	}
}

func TestCaptureWithoutCopySupport(t *testing.T) {
	c := NewCapturer(&fakeDevice{}, t.TempDir())
	c.Request()
	c.Observe(fakeCommandList{}, 0, rg32(1, 1, func(int, int) (float32, float32) { return 0, 0 }), rg32(1, 1, func(int, int) (float32, float32) { return 0, 0 }))

	if _, err := c.Flush(textureReader{}); !errors.Is(err, ErrNoCopySupport) {
		t.Errorf("Flush error = %v, want ErrNoCopySupport", err)
	}
}

func TestFlushWithoutRequest(t *testing.T) {
	c := NewCapturer(&fakeDevice{}, t.TempDir())
	paths, err := c.Flush(textureReader{})
	if err != nil || paths != nil {
		t.Errorf("Flush = %v, %v; want nothing", paths, err)
	}
}

func TestDecodeChannels(t *testing.T) {
	tex := rg32(2, 1, func(x, _ int) (float32, float32) { return float32(x), float32(x) + 10 })
	channels, err := decodeChannels(tex.data, 2, 1, renderer.PixelFormatR32G32Float)
	if err != nil {
		t.Fatal(err)
	}
	if channels[0].name != "G" || !slices.Equal(channels[0].data, []float32{10, 11}) {
		t.Errorf("G channel = %+v", channels[0])
	}
	if channels[1].name != "R" || !slices.Equal(channels[1].data, []float32{0, 1}) {
		t.Errorf("R channel = %+v", channels[1])
	}

	if _, err := decodeChannels(tex.data[:4], 2, 1, renderer.PixelFormatR32G32Float); err == nil {
		t.Error("short data accepted")
	}
	if _, err := decodeChannels(nil, 1, 1, renderer.PixelFormatDepth32Float); err == nil {
		t.Error("depth textures accepted")
	}
}
