package fog

import (
	"iter"

	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Definition is the user-facing description of one fog volume.
type Definition struct {
	ID uuid.UUID

	Enabled                 bool
	SampleCount             int
	DensityFactor           float32
	SeparateBoundingVolumes bool
}

// NewDefinition creates an enabled fog volume definition with a fresh identity.
//
// Parameters:
//   - opts: a variadic list of DefinitionBuilderOption functions to configure the definition
//
// Returns:
//   - *Definition: the new definition
func NewDefinition(opts ...DefinitionBuilderOption) *Definition {
	d := &Definition{
		ID:            uuid.New(),
		Enabled:       true,
		SampleCount:   DefaultSampleCount,
		DensityFactor: DefaultDensityFactor,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Validate checks that the definition can be rendered.
//
// Returns:
//   - error: a *ConfigError wrapping ErrConfiguration, or nil
func (d *Definition) Validate() error {
	return validateVolume(d.SampleCount, d.DensityFactor)
}

func validateVolume(sampleCount int, density float32) error {
	if sampleCount < 1 {
		return &ConfigError{Field: "SampleCount", Value: sampleCount, Reason: "must be at least 1"}
	}
	if math32.IsNaN(density) || math32.IsInf(density, 0) {
		return &ConfigError{Field: "DensityFactor", Value: density, Reason: "must be finite"}
	}
	return nil
}

// BoundingComponent is a scene object whose geometry bounds a fog volume.
type BoundingComponent interface {
	// Enabled reports whether the component takes part in the current frame.
	Enabled() bool
	// FogVolume returns the definition this component bounds.
	FogVolume() (uuid.UUID, bool)
	// WorldMatrix returns the component's current world transform.
	WorldMatrix() mgl32.Mat4
	// Model returns the bound geometry, or nil.
	Model() model.Model
}

// Source supplies the fog definitions and bounding components of a scene.
type Source interface {
	// Definitions returns the fog definitions in compositing order.
	Definitions() []*Definition
	// BoundingComponents returns every bounding component of the scene.
	BoundingComponents() []BoundingComponent
}

// BoundingGeometryRecord is one piece of bounding geometry for the current frame.
// A nil Model means the component had no geometry.
type BoundingGeometryRecord struct {
	World mgl32.Mat4
	Model model.Model
}

// BoundingSet is a read-only view over the bounding geometry of one volume.
type BoundingSet struct {
	records []BoundingGeometryRecord
}

// NewBoundingSet wraps records in a BoundingSet. The set keeps a reference to the slice.
func NewBoundingSet(records []BoundingGeometryRecord) BoundingSet {
	return BoundingSet{records: records}
}

// Len returns the number of records.
func (s BoundingSet) Len() int {
	return len(s.records)
}

// At returns a copy of record i.
func (s BoundingSet) At(i int) BoundingGeometryRecord {
	return s.records[i]
}

// First returns a view holding at most the first record.
func (s BoundingSet) First() BoundingSet {
	if len(s.records) <= 1 {
		return s
	}
	return BoundingSet{records: s.records[:1:1]}
}

// All iterates over the records in order.
func (s BoundingSet) All() iter.Seq2[int, BoundingGeometryRecord] {
	return func(yield func(int, BoundingGeometryRecord) bool) {
		for i, r := range s.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// VolumeRecord is the per-frame render record of one active fog volume.
type VolumeRecord struct {
	SampleCount             int
	DensityFactor           float32
	Bounds                  BoundingSet
	SeparateBoundingVolumes bool
}

// Validate checks that the record can be rendered.
func (r VolumeRecord) Validate() error {
	return validateVolume(r.SampleCount, r.DensityFactor)
}

// DrawBounds returns the bounding geometry rasterized for this volume.
func (r VolumeRecord) DrawBounds() BoundingSet {
	if r.SeparateBoundingVolumes {
		return r.Bounds.First()
	}
	return r.Bounds
}
