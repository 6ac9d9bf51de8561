package fog

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// FrameContext carries per-frame data from the collect phase to the draw phase.
type FrameContext struct {
	View camera.RenderView

	volumes   []VolumeRecord
	published bool
}

// PublishFogVolumes hands the active volumes of the frame to the compositor.
// The slice is borrowed until the next Reset.
func (c *FrameContext) PublishFogVolumes(v []VolumeRecord) {
	c.volumes = v
	c.published = true
}

// FogVolumes returns the published volumes.
//
// Returns:
//   - []VolumeRecord: the volumes, possibly empty
//   - bool: false if nothing was published this frame
func (c *FrameContext) FogVolumes() ([]VolumeRecord, bool) {
	return c.volumes, c.published
}

// Reset clears the published volumes for the next frame.
func (c *FrameContext) Reset() {
	c.volumes = nil
	c.published = false
}

// DrawContext is what the compositor needs to record a frame.
type DrawContext struct {
	CommandList renderer.CommandList
	View        camera.RenderView
}
