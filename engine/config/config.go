// Package config loads the TOML settings of the fog demo and watches them for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidSettings is wrapped by every validation error.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the root of a settings file.
type Settings struct {
	Log     LogSettings      `toml:"log"`
	Window  WindowSettings   `toml:"window"`
	Fog     FogSettings      `toml:"fog"`
	Capture CaptureSettings  `toml:"capture"`
	Volumes []VolumeSettings `toml:"volumes"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	Level string `toml:"level"`
}

// WindowSettings configures the demo window.
type WindowSettings struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

// FogSettings configures the fog compositor.
type FogSettings struct {
	LightBufferDownsampleLevel          int    `toml:"light_buffer_downsample_level"`
	BoundingVolumeBufferDownsampleLevel int    `toml:"bounding_volume_buffer_downsample_level"`
	MinMaxEffect                        string `toml:"minmax_effect"`
	FogEffect                           string `toml:"fog_effect"`
}

// CaptureSettings configures the bound buffer capture.
type CaptureSettings struct {
	Dir string `toml:"dir"`
}

// VolumeSettings describes one fog volume and the boxes bounding it.
type VolumeSettings struct {
	// ID is an optional UUID. Volumes without one get a fresh identity on every load.
	ID string `toml:"id"`
	// Enabled defaults to true.
	Enabled *bool `toml:"enabled"`
	// SampleCount of zero selects fog.DefaultSampleCount.
	SampleCount int `toml:"sample_count"`
	// DensityFactor defaults to fog.DefaultDensityFactor.
	DensityFactor           *float32         `toml:"density_factor"`
	SeparateBoundingVolumes bool             `toml:"separate_bounding_volumes"`
	Bounds                  []BoundsSettings `toml:"bounds"`
}

// BoundsSettings places one bounding box. Rotation is in degrees. A zero scale selects 1.
type BoundsSettings struct {
	Position [3]float32 `toml:"position"`
	Rotation [3]float32 `toml:"rotation"`
	Scale    [3]float32 `toml:"scale"`
}

// Default returns the settings used when no file is given.
//
// Returns:
//   - *Settings: the default settings
func Default() *Settings {
	return &Settings{
		Log: LogSettings{Level: "info"},
		Window: WindowSettings{
			Title:  "oxy-fog",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Fog: FogSettings{
			LightBufferDownsampleLevel:          fog.DefaultLightBufferDownsampleLevel,
			BoundingVolumeBufferDownsampleLevel: fog.DefaultBoundingVolumeBufferDownsampleLevel,
			MinMaxEffect:                        fog.DefaultMinMaxEffect,
			FogEffect:                           fog.DefaultFogEffect,
		},
		Capture: CaptureSettings{Dir: "captures"},
	}
}

// Decode parses TOML on top of Default and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - *Settings: the decoded settings
//   - error: a decode error, or a validation error wrapping ErrInvalidSettings
func Decode(data []byte) (*Settings, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%w: line %d column %d: %s", ErrInvalidSettings, row, col, decodeErr.Error())
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and decodes a settings file.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Settings: the decoded settings
//   - error: a read, decode or validation error
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, fmt.Sprintf(format, args...))
}

func checkLevel(name string, level int) error {
	if level < fog.MinDownsampleLevel || level > fog.MaxDownsampleLevel {
		return invalid("fog.%s = %d must be in [%d, %d]", name, level, fog.MinDownsampleLevel, fog.MaxDownsampleLevel)
	}
	return nil
}

// Validate checks every value that Decode cannot check by type alone.
//
// Returns:
//   - error: an error wrapping ErrInvalidSettings, or nil
func (s *Settings) Validate() error {
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return invalid("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	if err := checkLevel("light_buffer_downsample_level", s.Fog.LightBufferDownsampleLevel); err != nil {
		return err
	}
	if err := checkLevel("bounding_volume_buffer_downsample_level", s.Fog.BoundingVolumeBufferDownsampleLevel); err != nil {
		return err
	}
	if s.Fog.MinMaxEffect == "" || s.Fog.FogEffect == "" {
		return invalid("fog effect names must not be empty")
	}

	ids := make(map[uuid.UUID]int, len(s.Volumes))
	for i, v := range s.Volumes {
		if err := v.validate(); err != nil {
			return fmt.Errorf("volumes[%d]: %w", i, err)
		}
		if v.ID == "" {
			continue
		}
		id := uuid.MustParse(v.ID)
		if j, dup := ids[id]; dup {
			return invalid("volumes[%d] repeats the id of volumes[%d]", i, j)
		}
		ids[id] = i
	}
	return nil
}

func (v VolumeSettings) validate() error {
	if v.ID != "" {
		if _, err := uuid.Parse(v.ID); err != nil {
			return invalid("id %q: %v", v.ID, err)
		}
	}
	if v.SampleCount < 0 {
		return invalid("sample_count = %d must not be negative", v.SampleCount)
	}
	if v.DensityFactor != nil && !common.IsFinite(*v.DensityFactor) {
		return invalid("density_factor = %v must be finite", *v.DensityFactor)
	}
	for i, b := range v.Bounds {
		for axis := range 3 {
			if !common.IsFinite(b.Position[axis]) || !common.IsFinite(b.Rotation[axis]) || !common.IsFinite(b.Scale[axis]) {
				return invalid("bounds[%d] has a non-finite component", i)
			}
		}
	}
	return nil
}

// IsEnabled reports the enabled flag, defaulting to true.
func (v VolumeSettings) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

// Definition converts the settings into a fog volume definition.
//
// Returns:
//   - *fog.Definition: the definition
//   - error: an error if the id cannot be parsed
func (v VolumeSettings) Definition() (*fog.Definition, error) {
	opts := []fog.DefinitionBuilderOption{
		fog.WithEnabled(v.IsEnabled()),
		fog.WithSeparateBoundingVolumes(v.SeparateBoundingVolumes),
	}
	if v.ID != "" {
		id, err := uuid.Parse(v.ID)
		if err != nil {
			return nil, invalid("id %q: %v", v.ID, err)
		}
		opts = append(opts, fog.WithID(id))
	}
	if v.SampleCount > 0 {
		opts = append(opts, fog.WithSampleCount(v.SampleCount))
	}
	if v.DensityFactor != nil {
		opts = append(opts, fog.WithDensityFactor(*v.DensityFactor))
	}
	return fog.NewDefinition(opts...), nil
}

// Apply copies the settings onto an existing definition. The identity is left untouched and unset
// values keep what the definition already has.
//
// Parameters:
//   - def: the definition to update
func (v VolumeSettings) Apply(def *fog.Definition) {
	def.Enabled = v.IsEnabled()
	def.SeparateBoundingVolumes = v.SeparateBoundingVolumes
	if v.SampleCount > 0 {
		def.SampleCount = v.SampleCount
	}
	if v.DensityFactor != nil {
		def.DensityFactor = *v.DensityFactor
	}
}

// ScaleOrDefault returns Scale with zero components replaced by 1.
func (b BoundsSettings) ScaleOrDefault() mgl32.Vec3 {
	scale := mgl32.Vec3(b.Scale)
	for i := range scale {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	return scale
}

// RotationRadians returns Rotation converted to radians.
func (b BoundsSettings) RotationRadians() mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.DegToRad(b.Rotation[0]),
		mgl32.DegToRad(b.Rotation[1]),
		mgl32.DegToRad(b.Rotation[2]),
	}
}

// CompositorOptions returns the compositor options selected by the fog settings.
//
// Returns:
//   - []fog.CompositorBuilderOption: options for fog.NewCompositor
func (f FogSettings) CompositorOptions() []fog.CompositorBuilderOption {
	return []fog.CompositorBuilderOption{
		fog.WithLightBufferDownsampleLevel(f.LightBufferDownsampleLevel),
		fog.WithBoundingVolumeBufferDownsampleLevel(f.BoundingVolumeBufferDownsampleLevel),
		fog.WithMinMaxEffect(f.MinMaxEffect),
		fog.WithFogEffect(f.FogEffect),
	}
}
