package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-fog/engine/config"
	"github.com/Carmen-Shannon/oxy-fog/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/scene"
	"github.com/Carmen-Shannon/oxy-fog/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the profiler fed with the fog stats of every frame.
func WithProfiler(p profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for game logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets the window the engine presents to and takes input from.
// Without a window the engine renders headless.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are rendered in ascending key order during the render loop.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithSettings sets the initial settings. The capture directory follows the settings unless
// WithCaptureDir is applied after this option.
//
// Parameters:
//   - s: validated settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSettings(s *config.Settings) EngineBuilderOption {
	return func(e *engine) {
		if s == nil {
			return
		}
		e.settings = s
		e.captureDir = s.Capture.Dir
	}
}

// WithConfigFile watches the settings file at path and applies every valid change while running.
// The file is not read by this option; load it with config.Load and pass it to WithSettings.
func WithConfigFile(path string) EngineBuilderOption {
	return func(e *engine) {
		e.configPath = path
	}
}

// WithCaptureDir sets the directory bounding buffer captures are written to. An empty directory
// disables capturing.
func WithCaptureDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		e.captureDir = dir
	}
}

// WithEffectLibrary sets the effect library. By default the engine creates one compiling on a worker pool.
func WithEffectLibrary(lib effect.Library) EngineBuilderOption {
	return func(e *engine) {
		e.effects = lib
	}
}

// WithClearColor sets the color the frame is cleared to.
func WithClearColor(c renderer.Color4) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = c
	}
}

// WithFog sets whether fog is composited from the first frame.
func WithFog(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.fogEnabled.Store(enabled)
	}
}
