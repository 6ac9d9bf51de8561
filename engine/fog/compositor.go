package fog

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinDownsampleLevel and MaxDownsampleLevel bound both downsample levels of a Compositor.
	MinDownsampleLevel = 1
	MaxDownsampleLevel = 64

	DefaultLightBufferDownsampleLevel          = 2
	DefaultBoundingVolumeBufferDownsampleLevel = 8
)

// BoundingBufferFormat is the default format of the bounding and back-side scratch buffers.
// It must be blendable since the bounding passes min and max blend into it.
const BoundingBufferFormat = renderer.PixelFormatRGBA16Float

// boundingBufferClear is the value that min-blending in red and max-blending in green start from.
var boundingBufferClear = renderer.Color4{R: 1, G: 0, B: 0, A: 0}

// BoundsObserver receives the scratch buffers of a volume after both bounding passes were recorded.
// Work recorded on cl runs before the buffers are reused for the next volume.
type BoundsObserver func(cl renderer.CommandList, volume int, bounds, backSide renderer.Texture)

// compositor is the implementation of the Compositor interface.
type compositor struct {
	targets  renderer.TargetPool
	compiler pipeline.Compiler
	effects  effect.Library

	minMaxEffect string
	fogEffect    string

	lightLevel   int
	boundsLevel  int
	boundsFormat renderer.PixelFormat
	observer     BoundsObserver

	initialized bool
	rasterizer  *BoundsRasterizer
	fogShader   *effect.ImageEffectShader

	volumes   []VolumeRecord
	collected bool

	stats       FrameStats
	fogDeferred bool
	logger      *log.Logger
}

// Compositor renders the collected fog volumes of a frame into a fog buffer, one volume at a time:
// each volume's bounding geometry is rasterized into a downsampled bounding buffer, then a full-screen
// ray-march accumulates the volume's fog into the output.
type Compositor interface {
	// Initialize creates the effect instances and pipeline caches. Draw calls it on first use.
	//
	// Returns:
	//   - error: an error if the fog effects could not be registered
	Initialize() error

	// Destroy drops every pipeline and the collected volumes. The compositor can be initialized again.
	Destroy()

	// Collect takes the volumes published to ctx for the next Draw.
	//
	// Parameters:
	//   - ctx: the frame context
	Collect(ctx *FrameContext)

	// Draw records the fog of the collected volumes.
	//
	// Parameters:
	//   - dc: the draw context of the frame
	//   - depthStencil: the scene depth buffer
	//   - output: the fog buffer to write into
	//
	// Returns:
	//   - error: a *ConfigError for invalid settings, or an error from the backend
	Draw(dc *DrawContext, depthStencil, output renderer.Texture) error

	// LightBufferDownsampleLevel returns the downsample level of the fog buffer relative to the scene.
	LightBufferDownsampleLevel() int

	// SetLightBufferDownsampleLevel sets the downsample level of the fog buffer. It is validated by Draw.
	SetLightBufferDownsampleLevel(level int)

	// BoundingVolumeBufferDownsampleLevel returns the downsample level of the bounding buffer.
	BoundingVolumeBufferDownsampleLevel() int

	// SetBoundingVolumeBufferDownsampleLevel sets the downsample level of the bounding buffer. It is validated by Draw.
	SetBoundingVolumeBufferDownsampleLevel(level int)

	// LightBufferSize returns the fog buffer size for a scene size.
	LightBufferSize(sceneWidth, sceneHeight int) (int, int)

	// Stats returns what the last Draw did.
	Stats() FrameStats
}

var _ Compositor = &compositor{}

// NewCompositor creates a fog compositor.
//
// Parameters:
//   - targets: the pool supplying scratch render targets
//   - compiler: the backend pipeline compiler
//   - effects: the library owning the fog effects
//   - opts: a variadic list of CompositorBuilderOption functions to configure the compositor
//
// Returns:
//   - Compositor: the new compositor
func NewCompositor(targets renderer.TargetPool, compiler pipeline.Compiler, effects effect.Library, opts ...CompositorBuilderOption) Compositor {
	c := &compositor{
		targets:      targets,
		compiler:     compiler,
		effects:      effects,
		minMaxEffect: DefaultMinMaxEffect,
		fogEffect:    DefaultFogEffect,
		lightLevel:   DefaultLightBufferDownsampleLevel,
		boundsLevel:  DefaultBoundingVolumeBufferDownsampleLevel,
		boundsFormat: BoundingBufferFormat,
		logger:       logging.Named("fog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *compositor) Initialize() error {
	if c.initialized {
		return nil
	}
	if err := c.ensureEffects(); err != nil {
		return err
	}
	c.rasterizer = NewBoundsRasterizer(effect.NewDynamicEffectInstance(c.minMaxEffect, c.effects), c.compiler)
	c.fogShader = effect.NewImageEffectShader(c.fogEffect, c.effects, c.compiler)
	c.initialized = true
	return nil
}

// ensureEffects registers the built-in programs for effect names the library does not know.
func (c *compositor) ensureEffects() error {
	_, minMaxErr := c.effects.Status(c.minMaxEffect)
	_, fogErr := c.effects.Status(c.fogEffect)
	if !errors.Is(minMaxErr, effect.ErrUnknownEffect) && !errors.Is(fogErr, effect.ErrUnknownEffect) {
		return nil
	}
	return RegisterEffects(c.effects, c.minMaxEffect, c.fogEffect)
}

func (c *compositor) Destroy() {
	if c.rasterizer != nil {
		c.rasterizer.Reset()
	}
	if c.fogShader != nil {
		c.fogShader.Reset()
	}
	c.rasterizer = nil
	c.fogShader = nil
	c.initialized = false
	c.volumes = nil
	c.collected = false
}

func (c *compositor) Collect(ctx *FrameContext) {
	c.volumes, c.collected = ctx.FogVolumes()
}

// validate checks every setting Draw depends on before anything is recorded.
func (c *compositor) validate() error {
	if c.lightLevel < MinDownsampleLevel || c.lightLevel > MaxDownsampleLevel {
		return &ConfigError{Field: "LightBufferDownsampleLevel", Value: c.lightLevel, Reason: fmt.Sprintf("must be in [%d, %d]", MinDownsampleLevel, MaxDownsampleLevel)}
	}
	if c.boundsLevel < MinDownsampleLevel || c.boundsLevel > MaxDownsampleLevel {
		return &ConfigError{Field: "BoundingVolumeBufferDownsampleLevel", Value: c.boundsLevel, Reason: fmt.Sprintf("must be in [%d, %d]", MinDownsampleLevel, MaxDownsampleLevel)}
	}
	if !c.boundsFormat.IsBlendable() {
		return &ConfigError{Field: "BoundingBufferFormat", Value: c.boundsFormat, Reason: "must support min and max blending"}
	}
	for i, v := range c.volumes {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("fog volume %d: %w", i, err)
		}
	}
	return nil
}

func (c *compositor) Draw(dc *DrawContext, depthStencil, output renderer.Texture) error {
	c.stats.Collected, c.stats.Drawn, c.stats.Culled, c.stats.Deferred = 0, 0, 0, 0
	c.stats.BlendSequence = c.stats.BlendSequence[:0]
	if !c.collected {
		return nil
	}
	if err := c.validate(); err != nil {
		return err
	}

	c.stats.Collected = len(c.volumes)
	if len(c.volumes) == 0 {
		return nil
	}
	if err := c.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize fog compositor: %w", err)
	}

	bounds, err := c.targets.Acquire(renderer.TextureDescription{
		Label:  "fog/bounding-volumes",
		Width:  ScratchSize(depthStencil.Width(), c.boundsLevel),
		Height: ScratchSize(depthStencil.Height(), c.boundsLevel),
		Format: c.boundsFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to acquire bounding volume buffer: %w", err)
	}
	defer c.targets.Release(bounds)

	backSide, err := c.targets.Acquire(renderer.TextureDescription{
		Label:  "fog/back-side",
		Width:  1,
		Height: 1,
		Format: c.boundsFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to acquire back-side buffer: %w", err)
	}
	defer c.targets.Release(backSide)

	view := dc.View
	eye := view.Eye()
	params := c.fogShader.Parameters()
	params.SetMatrix(KeyViewInverse, view.ViewInverse())
	params.SetVector4(KeyEye, mgl32.Vec4{eye.X(), eye.Y(), eye.Z(), 1})
	params.SetVector2(KeyZProjection, common.ZProjection(view.NearClipPlane, view.FarClipPlane))
	params.SetMatrix(KeyProjectionInverse, view.ProjectionInverse())
	params.SetVector2(KeyBackSideRange, mgl32.Vec2{view.NearClipPlane, view.FarClipPlane})
	c.fogShader.SetInput(SlotSceneDepth, depthStencil)

	cl := dc.CommandList
	viewProjection := view.ViewProjection()
	backSideProjection := BackSideProjection(view)
	fogBufferUsed := false

	for i, volume := range c.volumes {
		set := volume.DrawBounds()

		restore := cl.PushRenderTargets()
		cl.Clear(bounds, boundingBufferClear)
		cl.SetRenderTargetAndViewport(nil, bounds)
		if !c.rasterizer.RasterizeBounds(cl, set, viewProjection) {
			restore()
			c.stats.Culled++
			continue
		}

		cl.Clear(backSide, boundingBufferClear)
		cl.SetRenderTargetAndViewport(nil, backSide)
		c.rasterizer.RasterizeBounds(cl, set, backSideProjection)
		restore()

		if c.observer != nil {
			c.observer(cl, i, bounds, backSide)
		}

		mode := BlendAdditive
		c.fogShader.SetBlendState(renderer.BlendStateAdditiveUnmultiplied)
		if !fogBufferUsed {
			mode = BlendReplace
			c.fogShader.SetBlendState(renderer.BlendStateOpaque)
		}

		c.fogShader.SetInput(SlotBoundingBuffer, bounds)
		c.fogShader.SetInput(SlotBackSideBuffer, backSide)
		params.SetInt(KeySampleCount, int32(volume.SampleCount))
		params.SetFloat(KeyDensityFactor, volume.DensityFactor)

		drawn, err := c.fogShader.Draw(cl, output)
		if err != nil {
			return fmt.Errorf("failed to draw fog volume %d: %w", i, err)
		}
		if !drawn {
			if !c.fogDeferred {
				c.logger.Debug("fog effect not ready", "name", c.fogEffect)
				c.fogDeferred = true
			}
			c.stats.Deferred++
			continue
		}
		c.fogDeferred = false
		fogBufferUsed = true
		c.stats.BlendSequence = append(c.stats.BlendSequence, mode)
		c.stats.Drawn++
	}

	c.logger.Debug("fog composited",
		"collected", c.stats.Collected,
		"drawn", c.stats.Drawn,
		"culled", c.stats.Culled,
		"deferred", c.stats.Deferred,
	)
	return nil
}

func (c *compositor) LightBufferDownsampleLevel() int {
	return c.lightLevel
}

func (c *compositor) SetLightBufferDownsampleLevel(level int) {
	c.lightLevel = level
}

func (c *compositor) BoundingVolumeBufferDownsampleLevel() int {
	return c.boundsLevel
}

func (c *compositor) SetBoundingVolumeBufferDownsampleLevel(level int) {
	c.boundsLevel = level
}

func (c *compositor) LightBufferSize(sceneWidth, sceneHeight int) (int, int) {
	return ScratchSize(sceneWidth, c.lightLevel), ScratchSize(sceneHeight, c.lightLevel)
}

func (c *compositor) Stats() FrameStats {
	return c.stats.clone()
}
