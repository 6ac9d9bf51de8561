package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const fullSettings = `
[log]
level = "debug"

[window]
title = "fog test"
width = 800
height = 600
vsync = false

[fog]
light_buffer_downsample_level = 4
bounding_volume_buffer_downsample_level = 16
minmax_effect = "CustomMinMax"
fog_effect = "CustomFog"

[capture]
dir = "out"

[[volumes]]
id = "6f1c2a7e-3b7d-4c55-9a43-0b3b6a2f1d10"
sample_count = 24
density_factor = 0.25
separate_bounding_volumes = true

  [[volumes.bounds]]
  position = [1.0, 2.0, 3.0]
  rotation = [0.0, 90.0, 0.0]
  scale = [10.0, 4.0, 10.0]

[[volumes]]
enabled = false
`

func TestDecodeFullSettings(t *testing.T) {
	s, err := Decode([]byte(fullSettings))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if s.Log.Level != "debug" || s.Window.Width != 800 || s.Window.VSync {
		t.Errorf("unexpected top-level settings %+v", s)
	}
	if s.Fog.LightBufferDownsampleLevel != 4 || s.Fog.BoundingVolumeBufferDownsampleLevel != 16 {
		t.Errorf("unexpected fog settings %+v", s.Fog)
	}
	if s.Capture.Dir != "out" {
		t.Errorf("capture dir = %q", s.Capture.Dir)
	}
	if len(s.Volumes) != 2 {
		t.Fatalf("got %d volumes, want 2", len(s.Volumes))
	}

	def, err := s.Volumes[0].Definition()
	if err != nil {
		t.Fatal(err)
	}
	if def.ID != uuid.MustParse("6f1c2a7e-3b7d-4c55-9a43-0b3b6a2f1d10") {
		t.Errorf("id = %v", def.ID)
	}
	if !def.Enabled || def.SampleCount != 24 || def.DensityFactor != 0.25 || !def.SeparateBoundingVolumes {
		t.Errorf("unexpected definition %+v", def)
	}

	b := s.Volumes[0].Bounds[0]
	if b.ScaleOrDefault() != (mgl32.Vec3{10, 4, 10}) {
		t.Errorf("scale = %v", b.ScaleOrDefault())
	}
	if got := b.RotationRadians().Y(); mgl32.Abs(got-mgl32.DegToRad(90)) > 1e-6 {
		t.Errorf("rotation y = %v rad", got)
	}

	disabled, err := s.Volumes[1].Definition()
	if err != nil {
		t.Fatal(err)
	}
	if disabled.Enabled {
		t.Error("enabled = false ignored")
	}
	if disabled.SampleCount != fog.DefaultSampleCount || disabled.DensityFactor != fog.DefaultDensityFactor {
		t.Errorf("defaults not applied: %+v", disabled)
	}
}

func TestDecodeEmptyUsesDefaults(t *testing.T) {
	s, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	def := Default()
	if s.Fog != def.Fog || s.Window != def.Window || s.Log != def.Log {
		t.Errorf("got %+v, want defaults %+v", s, def)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "level zero", doc: "[fog]\nlight_buffer_downsample_level = 0", want: "light_buffer_downsample_level"},
		{name: "level too high", doc: "[fog]\nbounding_volume_buffer_downsample_level = 65", want: "bounding_volume_buffer_downsample_level"},
		{name: "bad log level", doc: "[log]\nlevel = \"loud\"", want: "log.level"},
		{name: "bad uuid", doc: "[[volumes]]\nid = \"nope\"", want: "volumes[0]"},
		{name: "negative samples", doc: "[[volumes]]\nsample_count = -1", want: "sample_count"},
		{name: "non-finite density", doc: "[[volumes]]\ndensity_factor = nan", want: "density_factor"},
		{name: "duplicate ids", doc: "[[volumes]]\nid = \"6f1c2a7e-3b7d-4c55-9a43-0b3b6a2f1d10\"\n[[volumes]]\nid = \"6f1c2a7e-3b7d-4c55-9a43-0b3b6a2f1d10\"", want: "repeats"},
		{name: "empty effect", doc: "[fog]\nfog_effect = \"\"", want: "effect names"},
		{name: "unknown key", doc: "[fog]\nsamples = 3", want: ""},
		{name: "syntax error", doc: "[fog\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("Decode error = %v, want ErrInvalidSettings", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCompositorOptions(t *testing.T) {
	opts := Default().Fog.CompositorOptions()
	if len(opts) != 4 {
		t.Fatalf("got %d options, want 4", len(opts))
	}
	c := fog.NewCompositor(nil, nil, nil, opts...)
	if c.LightBufferDownsampleLevel() != fog.DefaultLightBufferDownsampleLevel {
		t.Errorf("light level = %d", c.LightBufferDownsampleLevel())
	}
	if c.BoundingVolumeBufferDownsampleLevel() != fog.DefaultBoundingVolumeBufferDownsampleLevel {
		t.Errorf("bounds level = %d", c.BoundingVolumeBufferDownsampleLevel())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir() + "/missing.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestVolumeSettingsApply(t *testing.T) {
	disabled := false
	density := float32(0.75)

	tests := []struct {
		name     string
		settings VolumeSettings
		want     fog.Definition
	}{
		{
			name:     "unset values keep the definition",
			settings: VolumeSettings{},
			want:     fog.Definition{Enabled: true, SampleCount: 12, DensityFactor: 0.5},
		},
		{
			name: "every value set",
			settings: VolumeSettings{
				Enabled:                 &disabled,
				SampleCount:             32,
				DensityFactor:           &density,
				SeparateBoundingVolumes: true,
			},
			want: fog.Definition{Enabled: false, SampleCount: 32, DensityFactor: 0.75, SeparateBoundingVolumes: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := fog.NewDefinition(fog.WithSampleCount(12), fog.WithDensityFactor(0.5))
			id := def.ID
			tt.settings.Apply(def)

			tt.want.ID = id
			if *def != tt.want {
				t.Errorf("definition = %+v, want %+v", *def, tt.want)
			}
		})
	}
}
