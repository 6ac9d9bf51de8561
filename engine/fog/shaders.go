package fog

import (
	"embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// Include names of the shared WGSL chunks.
const (
	ChunkFullscreen = "fullscreen"
	ChunkDepth      = "depth"
)

func shaderSource(file string) string {
	b, err := shaderFS.ReadFile("shaders/" + file)
	if err != nil {
		panic(fmt.Errorf("missing embedded shader %s: %w", file, err))
	}
	return string(b)
}

// MinMaxProgram returns the program rasterizing bounding geometry depth, registered under name.
// It reads the POSITION vertex element and takes WorldViewProjection.
func MinMaxProgram(name string) effect.Program {
	return effect.Program{Name: name, Source: shaderSource("volume_minmax.wgsl")}
}

// FogProgram returns the full-screen ray-march program, registered under name.
// Its uniform block members are the fog parameter keys and its texture slots are
// SlotBoundingBuffer, SlotBackSideBuffer and SlotSceneDepth.
func FogProgram(name string) effect.Program {
	return effect.Program{Name: name, Source: shaderSource("fog_volume.wgsl")}
}

// RegisterEffects adds the shared chunks and both fog programs to lib.
// Programs already registered under the same names are left untouched.
//
// Parameters:
//   - lib: the effect library
//   - minMaxName: the name of the bounding geometry program
//   - fogName: the name of the ray-march program
//
// Returns:
//   - error: an error if a program could not be registered
func RegisterEffects(lib effect.Library, minMaxName, fogName string) error {
	lib.RegisterChunk(ChunkFullscreen, shaderSource("fullscreen.wgsl"))
	lib.RegisterChunk(ChunkDepth, shaderSource("depth.wgsl"))

	for _, p := range []effect.Program{MinMaxProgram(minMaxName), FogProgram(fogName)} {
		if err := lib.Register(p); err != nil && !errors.Is(err, effect.ErrDuplicateEffect) {
			return fmt.Errorf("failed to register effect %q: %w", p.Name, err)
		}
	}
	return nil
}
