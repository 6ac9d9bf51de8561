package fog

import "github.com/google/uuid"

const (
	// DefaultSampleCount is the ray-march sample count of a new definition.
	DefaultSampleCount = 16
	// DefaultDensityFactor is the density of a new definition.
	DefaultDensityFactor = 0.1
)

// DefinitionBuilderOption configures a Definition created by NewDefinition.
type DefinitionBuilderOption func(*Definition)

// WithID sets the definition identity instead of generating one.
func WithID(id uuid.UUID) DefinitionBuilderOption {
	return func(d *Definition) {
		d.ID = id
	}
}

// WithSampleCount sets the ray-march sample count.
func WithSampleCount(n int) DefinitionBuilderOption {
	return func(d *Definition) {
		d.SampleCount = n
	}
}

// WithDensityFactor sets the fog density.
func WithDensityFactor(f float32) DefinitionBuilderOption {
	return func(d *Definition) {
		d.DensityFactor = f
	}
}

// WithEnabled sets whether the volume is rendered.
func WithEnabled(enabled bool) DefinitionBuilderOption {
	return func(d *Definition) {
		d.Enabled = enabled
	}
}

// WithSeparateBoundingVolumes restricts rasterization to the first bounding component of the volume.
func WithSeparateBoundingVolumes(separate bool) DefinitionBuilderOption {
	return func(d *Definition) {
		d.SeparateBoundingVolumes = separate
	}
}
