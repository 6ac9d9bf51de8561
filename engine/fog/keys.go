package fog

import "github.com/Carmen-Shannon/oxy-fog/engine/renderer"

// Effect names used when none are configured.
const (
	DefaultMinMaxEffect = "VolumeMinMaxShaderFog"
	DefaultFogEffect    = "FogVolumeFX"
)

// Parameter keys of the fog effects.
const (
	KeyWorldViewProjection renderer.ParameterKey = "WorldViewProjection"

	KeyViewInverse       renderer.ParameterKey = "ViewInverse"
	KeyProjectionInverse renderer.ParameterKey = "ProjectionInverse"
	KeyEye               renderer.ParameterKey = "Eye"
	KeyZProjection       renderer.ParameterKey = "ZProjection"
	KeyBackSideRange     renderer.ParameterKey = "BackSideRange"
	KeyDensityFactor     renderer.ParameterKey = "DensityFactor"
	KeySampleCount       renderer.ParameterKey = "SampleCount"
)

// Texture slots of the fog effect.
const (
	SlotBoundingBuffer = 0
	SlotBackSideBuffer = 1
	SlotSceneDepth     = 2
)
