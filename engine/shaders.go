package engine

import (
	"embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// Effect names registered by the engine.
const (
	GeometryEffect = "GeometryUnlitFX"
	FogApplyEffect = "FogApplyFX"
)

// Parameter keys of the geometry effect.
const (
	KeyWorldViewProjection renderer.ParameterKey = "WorldViewProjection"
	KeyWorld               renderer.ParameterKey = "World"
	KeyColor               renderer.ParameterKey = "Color"
)

// slotLightBuffer is the texture slot of the fog apply effect.
const slotLightBuffer = 0

func shaderSource(file string) string {
	b, err := shaderFS.ReadFile("shaders/" + file)
	if err != nil {
		panic(fmt.Errorf("missing embedded shader %s: %w", file, err))
	}
	return string(b)
}

// GeometryProgram returns the flat-shaded program used for visible scene geometry.
func GeometryProgram() effect.Program {
	return effect.Program{Name: GeometryEffect, Source: shaderSource("geometry_unlit.wgsl")}
}

// FogApplyProgram returns the full-screen program blending the light buffer over the scene.
// It includes the full-screen chunk registered by the fog package.
func FogApplyProgram() effect.Program {
	return effect.Program{Name: FogApplyEffect, Source: shaderSource("fog_apply.wgsl")}
}

// registerEffects adds the engine programs to lib.
func registerEffects(lib effect.Library) error {
	for _, p := range []effect.Program{GeometryProgram(), FogApplyProgram()} {
		if err := lib.Register(p); err != nil && !errors.Is(err, effect.ErrDuplicateEffect) {
			return fmt.Errorf("failed to register effect %q: %w", p.Name, err)
		}
	}
	return nil
}
