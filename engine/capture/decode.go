package capture

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/mrjoshuak/go-openexr/half"
)

type channel struct {
	name string
	data []float32
}

// channelNames lists the EXR channels of each capturable format in alphabetical order.
var channelNames = map[renderer.PixelFormat][]string{
	renderer.PixelFormatR32G32Float: {"G", "R"},
	renderer.PixelFormatRGBA16Float: {"A", "B", "G", "R"},
}

// decodeChannels splits tightly packed texels into one float32 plane per channel.
func decodeChannels(data []byte, width, height int, format renderer.PixelFormat) ([]channel, error) {
	names, ok := channelNames[format]
	if !ok {
		return nil, fmt.Errorf("cannot capture %v textures", format)
	}
	if want := width * height * format.BytesPerPixel(); len(data) != want {
		return nil, fmt.Errorf("got %d bytes, want %d", len(data), want)
	}

	components := len(names)
	texels := make([]float32, width*height*components)
	switch format {
	case renderer.PixelFormatR32G32Float:
		for i := range texels {
			texels[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case renderer.PixelFormatRGBA16Float:
		half.ConvertBytesToFloat32(texels, data)
	}

	// texel components are stored R, G, B, A while names are sorted
	channels := make([]channel, components)
	for i, name := range names {
		component := componentIndex(name)
		plane := make([]float32, width*height)
		for p := range plane {
			plane[p] = texels[p*components+component]
		}
		channels[i] = channel{name: name, data: plane}
	}
	return channels, nil
}

func componentIndex(name string) int {
	switch name {
	case "G":
		return 1
	case "B":
		return 2
	case "A":
		return 3
	default:
		return 0
	}
}
