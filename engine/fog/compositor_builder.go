package fog

import "github.com/Carmen-Shannon/oxy-fog/engine/renderer"

// CompositorBuilderOption configures a Compositor created by NewCompositor.
type CompositorBuilderOption func(*compositor)

// WithLightBufferDownsampleLevel sets the downsample level of the fog buffer.
func WithLightBufferDownsampleLevel(level int) CompositorBuilderOption {
	return func(c *compositor) {
		c.lightLevel = level
	}
}

// WithBoundingVolumeBufferDownsampleLevel sets the downsample level of the bounding buffer.
func WithBoundingVolumeBufferDownsampleLevel(level int) CompositorBuilderOption {
	return func(c *compositor) {
		c.boundsLevel = level
	}
}

// WithBoundingBufferFormat sets the format of the scratch buffers. It needs at least two float
// channels that support min and max blending; Draw rejects formats that are not blendable.
func WithBoundingBufferFormat(format renderer.PixelFormat) CompositorBuilderOption {
	return func(c *compositor) {
		c.boundsFormat = format
	}
}

// WithMinMaxEffect sets the library name of the bounding geometry effect.
func WithMinMaxEffect(name string) CompositorBuilderOption {
	return func(c *compositor) {
		c.minMaxEffect = name
	}
}

// WithFogEffect sets the library name of the ray-march effect.
func WithFogEffect(name string) CompositorBuilderOption {
	return func(c *compositor) {
		c.fogEffect = name
	}
}

// WithBoundsObserver registers a callback receiving the scratch buffers of every drawn volume.
func WithBoundsObserver(fn BoundsObserver) CompositorBuilderOption {
	return func(c *compositor) {
		c.observer = fn
	}
}
