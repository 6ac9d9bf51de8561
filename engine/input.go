package engine

import (
	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/config"
)

const (
	orbitKeyStep   = 0.05  // radians per key press
	orbitDragScale = 0.005 // radians per dragged pixel
	zoomStep       = 0.5
)

// bindWindow routes window events to the engine. Every callback runs on the window thread, which is
// also the render thread.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			return
		}
		if err := e.backend.ConfigureSurface(width, height); err != nil {
			e.logger.Error("failed to resize surface", "width", width, "height", height, "err", err)
			return
		}
		for _, s := range e.Scenes() {
			if c := s.Camera(); c != nil {
				c.SetAspect(float32(width) / float32(height))
			}
		}
	})
	e.window.SetKeyCallback(e.handleKey)
	e.window.SetScrollCallback(func(delta float32) {
		e.zoom(delta * zoomStep)
	})
	e.window.SetDragCallback(func(dx, dy float32) {
		e.orbit(-dx*orbitDragScale, dy*orbitDragScale)
	})
}

// handleKey applies the debug key bindings:
//
//	C          capture the bounding buffers of the next frame
//	F          toggle fog
//	R          reload the settings file
//	Space      toggle the profiler
//	1-4        bounding volume buffer downsample level 2, 4, 8, 16
//	arrows/WASD orbit the camera
func (e *engine) handleKey(key common.Key, pressed bool) {
	if !pressed {
		return
	}
	switch key {
	case common.KeyC:
		e.RequestCapture()
	case common.KeyF:
		e.SetFogEnabled(!e.FogEnabled())
		e.logger.Info("fog toggled", "enabled", e.FogEnabled())
	case common.KeyR:
		e.reloadSettings()
	case common.KeySpace:
		if e.profilingEnabled.Load() {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
	case common.Key1, common.Key2, common.Key3, common.Key4:
		level := 2 << (key - common.Key1)
		e.compositor.SetBoundingVolumeBufferDownsampleLevel(int(level))
		e.logger.Info("bounding volume buffer downsample level", "level", level)
	case common.KeyLeft, common.KeyA:
		e.orbit(-orbitKeyStep, 0)
	case common.KeyRight, common.KeyD:
		e.orbit(orbitKeyStep, 0)
	case common.KeyUp, common.KeyW:
		e.orbit(0, orbitKeyStep)
	case common.KeyDown, common.KeyS:
		e.orbit(0, -orbitKeyStep)
	}
}

func (e *engine) reloadSettings() {
	if e.configPath == "" {
		e.logger.Warn("no settings file to reload")
		return
	}
	s, err := config.Load(e.configPath)
	if err != nil {
		e.logger.Error("failed to reload settings", "err", err)
		return
	}
	e.ApplySettings(s)
}

func (e *engine) orbit(azimuth, elevation float32) {
	for _, s := range e.activeScenes() {
		if ctrl := s.Camera().Controller(); ctrl != nil {
			ctrl.Orbit(azimuth, elevation)
		}
	}
}

func (e *engine) zoom(delta float32) {
	for _, s := range e.activeScenes() {
		if ctrl := s.Camera().Controller(); ctrl != nil {
			ctrl.Zoom(delta)
		}
	}
}
