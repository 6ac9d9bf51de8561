package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fog/engine/capture"
	"github.com/Carmen-Shannon/oxy-fog/engine/config"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fog/engine/scene"
	"github.com/Carmen-Shannon/oxy-fog/engine/window"
	"github.com/charmbracelet/log"
)

// LightBufferFormat is the format of the buffer the fog of a scene is composited into.
const LightBufferFormat = renderer.PixelFormatRGBA16Float

var defaultClearColor = renderer.Color4{R: 0.09, G: 0.1, B: 0.12, A: 1}

// FrameBackend is the part of the GPU backend the frame loop drives. The WebGPU backend implements it.
type FrameBackend interface {
	renderer.Device
	renderer.TextureReader
	pipeline.Compiler

	ConfigureSurface(width, height int) error
	BeginFrame() (renderer.CommandList, renderer.Texture, error)
	EndFrame() error
	Present()
	DepthTexture() renderer.Texture
}

// engine implements the Engine interface.
// Runs game logic on a tick goroutine and renders on the thread that owns the window.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	settingsChannel chan *config.Settings

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	closeOnce   sync.Once

	window  window.Window
	backend FrameBackend

	settings   *config.Settings
	configPath string
	captureDir string
	watcher    config.Watcher

	effects    effect.Library
	targets    renderer.TargetPool
	compositor fog.Compositor
	geometry   *geometryRenderer
	fogApply   *effect.ImageEffectShader
	capturer   capture.Capturer
	frame      fog.FrameContext

	fogEnabled       atomic.Bool
	fogConfigWarned  bool
	clearColor       renderer.Color4
	frameCount       uint64
	profiler         profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	lastRender     time.Time

	scenesMu *sync.RWMutex
	scenes   map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	logger           *log.Logger
}

// Engine is the main entry point for the engine.
// It owns the frame loop: each frame it resolves the fog volumes of every active scene, draws the
// scene geometry, composites the fog into a light buffer and blends it over the frame.
type Engine interface {
	// Window returns the underlying window, or nil for a headless engine.
	Window() window.Window

	// Compositor returns the fog compositor.
	Compositor() fog.Compositor

	// Effects returns the effect library holding the engine and fog programs.
	Effects() effect.Library

	// Settings returns the settings applied most recently.
	Settings() *config.Settings

	// ApplySettings queues settings to be applied at the start of the next frame.
	// A pending value that was not applied yet is replaced.
	//
	// Parameters:
	//   - s: validated settings
	ApplySettings(s *config.Settings)

	// SetFogEnabled enables or disables fog compositing.
	SetFogEnabled(enabled bool)

	// FogEnabled reports whether fog is composited.
	FogEnabled() bool

	// RequestCapture writes the bounding buffers of every fog volume of the next frame to OpenEXR files.
	// It does nothing when capturing is disabled.
	RequestCapture()

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order, each with its own fog.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// RenderFrame renders and presents one frame on the calling goroutine.
	// Run calls it in a loop; headless programs may call it directly.
	//
	// Returns:
	//   - error: an error if the frame could not be recorded or submitted
	RenderFrame() error

	// Run starts the main engine loop (blocks until the window closes or Quit is called).
	// Resources owned by the engine are released when it returns.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close releases everything the engine created. The backend and window are left to the caller.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine rendering through backend.
// Registers the engine and fog effects, creates the fog compositor from the settings and, when a
// window is set, configures the surface to the window size.
//
// Parameters:
//   - backend: the GPU backend
//   - options: functional options for engine configuration (window, settings, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if the effects or the surface could not be set up
func NewEngine(backend FrameBackend, options ...EngineBuilderOption) (Engine, error) {
	if backend == nil {
		return nil, errors.New("engine: NewEngine requires a backend")
	}
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		settingsChannel: make(chan *config.Settings, 1),
		quitChannel:     make(chan struct{}),
		backend:         backend,
		settings:        config.Default(),
		clearColor:      defaultClearColor,
		engineTickRate:  time.Second / 60,
		scenesMu:        &sync.RWMutex{},
		scenes:          make(map[int]scene.Scene),
		logger:          logging.Named("engine"),
	}
	e.captureDir = e.settings.Capture.Dir
	e.fogEnabled.Store(true)

	for _, opt := range options {
		opt(e)
	}

	if err := logging.SetLevel(e.settings.Log.Level); err != nil {
		e.logger.Warn("invalid log level", "level", e.settings.Log.Level, "err", err)
	}
	if e.effects == nil {
		e.effects = effect.NewLibrary()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	if err := fog.RegisterEffects(e.effects, e.settings.Fog.MinMaxEffect, e.settings.Fog.FogEffect); err != nil {
		return nil, err
	}
	if err := registerEffects(e.effects); err != nil {
		return nil, err
	}

	e.targets = renderer.NewTargetPool(backend)
	compositorOptions := e.settings.Fog.CompositorOptions()
	if e.captureDir != "" {
		e.capturer = capture.NewCapturer(backend, e.captureDir)
		compositorOptions = append(compositorOptions, fog.WithBoundsObserver(e.capturer.Observe))
	}
	e.compositor = fog.NewCompositor(e.targets, backend, e.effects, compositorOptions...)
	e.geometry = newGeometryRenderer(e.effects, backend)
	e.fogApply = effect.NewImageEffectShader(FogApplyEffect, e.effects, backend)
	e.fogApply.SetBlendState(renderer.BlendStatePremultiplied)

	if e.window != nil {
		if err := backend.ConfigureSurface(e.window.Width(), e.window.Height()); err != nil {
			return nil, fmt.Errorf("failed to configure surface: %w", err)
		}
		e.bindWindow()
	}

	if e.configPath != "" {
		w, err := config.NewWatcher(e.configPath, e.ApplySettings)
		if err != nil {
			e.logger.Warn("settings will not be reloaded", "path", e.configPath, "err", err)
		} else {
			e.watcher = w
		}
	}

	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Compositor() fog.Compositor {
	return e.compositor
}

func (e *engine) Effects() effect.Library {
	return e.effects
}

func (e *engine) Settings() *config.Settings {
	return e.settings
}

func (e *engine) Run() {
	e.running = true
	e.lastRender = time.Now()
	e.handle()

	if e.window != nil {
		e.window.SetUpdateCallback(e.renderTick)
		e.window.ProcessMessages()
		e.signalQuit()
		_ = e.window.Close()
	} else {
		for !e.quitting() {
			e.renderTick()
		}
	}

	e.wg.Wait()
	e.Close()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) Close() {
	e.closeOnce.Do(func() {
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				e.logger.Warn("failed to stop settings watcher", "err", err)
			}
		}
		if e.capturer != nil {
			e.capturer.Release()
		}
		e.compositor.Destroy()
		e.geometry.Reset()
		e.fogApply.Reset()
		e.targets.Destroy()
	})
}

// handle launches the engine tick and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// renderTick renders one frame from the window loop.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) renderTick() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	if e.quitting() {
		if e.window != nil {
			_ = e.window.Close()
		}
		return
	}

	now := time.Now()
	dt := float32(now.Sub(e.lastRender).Seconds())
	e.lastRender = now

	if err := e.RenderFrame(); err != nil {
		e.logger.Error("frame failed", "err", err)
	}
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		elapsed := time.Since(now)
		if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetFogEnabled(enabled bool) {
	e.fogEnabled.Store(enabled)
}

func (e *engine) FogEnabled() bool {
	return e.fogEnabled.Load()
}

func (e *engine) RequestCapture() {
	if e.capturer == nil {
		e.logger.Warn("capture requested but no capture directory is configured")
		return
	}
	e.capturer.Request()
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		replacePending(e.tickRateChannel, newRate)
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) ApplySettings(s *config.Settings) {
	if s == nil {
		return
	}
	replacePending(e.settingsChannel, s)
}

// replacePending sends v without blocking, replacing a value nobody has received yet.
func replacePending[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
