package engine

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/config"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/scene"
)

func (e *engine) RenderFrame() error {
	e.applyPendingSettings()

	cl, color, err := e.backend.BeginFrame()
	if err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	depth := e.backend.DepthTexture()
	cl.Clear(color, e.clearColor)
	cl.Clear(depth, renderer.Color4{R: 1})

	var stats fog.FrameStats
	var frameErr error
	for _, s := range e.activeScenes() {
		sceneStats, err := e.renderScene(cl, s, color, depth)
		if err != nil {
			frameErr = fmt.Errorf("scene %q: %w", s.Name(), err)
			break
		}
		stats = addStats(stats, sceneStats)
	}

	if err := e.backend.EndFrame(); err != nil {
		return errors.Join(frameErr, fmt.Errorf("failed to end frame: %w", err))
	}
	e.frameCount++

	if e.capturer != nil && e.capturer.Armed() {
		paths, err := e.capturer.Flush(e.backend)
		if err != nil {
			e.logger.Error("capture failed", "frame", e.frameCount, "err", err)
		} else if len(paths) > 0 {
			e.logger.Info("captured bounding buffers", "frame", e.frameCount, "files", paths)
		}
	}

	e.backend.Present()
	if e.profilingEnabled.Load() {
		e.profiler.Tick(stats)
	}
	return frameErr
}

// renderScene resolves the fog volumes of s, draws its geometry and blends its fog over color.
func (e *engine) renderScene(cl renderer.CommandList, s scene.Scene, color, depth renderer.Texture) (fog.FrameStats, error) {
	cam := s.Camera()
	cam.Update()
	view := cam.RenderView()

	agg := s.Aggregator()
	agg.Update(s)
	e.frame.Reset()
	e.frame.View = view
	agg.Publish(&e.frame)
	e.compositor.Collect(&e.frame)

	e.geometry.Draw(cl, s.Objects(), view, depth, color)
	if !e.FogEnabled() {
		return fog.FrameStats{}, nil
	}

	width, height := e.compositor.LightBufferSize(depth.Width(), depth.Height())
	light, err := e.targets.Acquire(renderer.TextureDescription{
		Label:  "fog/light-buffer",
		Width:  width,
		Height: height,
		Format: LightBufferFormat,
	})
	if err != nil {
		return fog.FrameStats{}, fmt.Errorf("failed to acquire light buffer: %w", err)
	}
	defer e.targets.Release(light)

	restore := cl.PushRenderTargets()
	defer restore()

	cl.Clear(light, renderer.Color4{})
	err = e.compositor.Draw(&fog.DrawContext{CommandList: cl, View: view}, depth, light)
	if errors.Is(err, fog.ErrConfiguration) {
		if !e.fogConfigWarned {
			e.logger.Warn("fog skipped", "scene", s.Name(), "err", err)
			e.fogConfigWarned = true
		}
		return fog.FrameStats{}, nil
	}
	if err != nil {
		return fog.FrameStats{}, err
	}

	stats := e.compositor.Stats()
	if stats.Drawn == 0 {
		return stats, nil
	}
	e.fogApply.SetInput(slotLightBuffer, light)
	if _, err := e.fogApply.Draw(cl, color); err != nil {
		return stats, fmt.Errorf("failed to apply fog: %w", err)
	}
	return stats, nil
}

func addStats(a, b fog.FrameStats) fog.FrameStats {
	a.Collected += b.Collected
	a.Drawn += b.Drawn
	a.Culled += b.Culled
	a.Deferred += b.Deferred
	a.BlendSequence = append(a.BlendSequence, b.BlendSequence...)
	return a
}

// applyPendingSettings applies settings queued by ApplySettings, if any.
func (e *engine) applyPendingSettings() {
	select {
	case s := <-e.settingsChannel:
		e.applySettings(s)
	default:
	}
}

// applySettings applies everything that can change while running: the log level, the downsample
// levels and the parameters of volumes the scenes already hold. Effect names only apply on restart.
func (e *engine) applySettings(s *config.Settings) {
	if err := logging.SetLevel(s.Log.Level); err != nil {
		e.logger.Warn("invalid log level", "level", s.Log.Level, "err", err)
	}
	e.compositor.SetLightBufferDownsampleLevel(s.Fog.LightBufferDownsampleLevel)
	e.compositor.SetBoundingVolumeBufferDownsampleLevel(s.Fog.BoundingVolumeBufferDownsampleLevel)
	if s.Fog.MinMaxEffect != e.settings.Fog.MinMaxEffect || s.Fog.FogEffect != e.settings.Fog.FogEffect {
		e.logger.Warn("fog effect names are only applied on restart")
	}

	updated := 0
	for _, sc := range e.activeScenes() {
		updated += applyVolumeSettings(sc, s)
	}
	e.settings = s
	e.fogConfigWarned = false
	e.logger.Info("settings applied",
		"lightLevel", s.Fog.LightBufferDownsampleLevel,
		"boundsLevel", s.Fog.BoundingVolumeBufferDownsampleLevel,
		"volumesUpdated", updated,
	)
}
